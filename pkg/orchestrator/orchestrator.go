// Package orchestrator coordinates a multi-strategy simulation run: capital
// allocation, price table loading, strategy execution, trade merging and run
// bookkeeping.
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/raykavin/wheelhouse/pkg/config"
	"github.com/raykavin/wheelhouse/pkg/core"
	"github.com/raykavin/wheelhouse/pkg/feed"
	"github.com/raykavin/wheelhouse/pkg/logger"
	"github.com/raykavin/wheelhouse/pkg/strategy/rotator"
	"github.com/raykavin/wheelhouse/pkg/strategy/wheel"
)

// Status summarizes how a run went.
type Status string

const (
	StatusOK      Status = "ok"
	StatusPartial Status = "partial" // some strategies failed, others produced trades
	StatusFailed  Status = "failed"
)

// StrategyResult is the per-strategy outcome of a run.
type StrategyResult struct {
	Name       string
	Allocated  float64
	FinalValue float64
	TradeCount int
	Err        error
}

// Result is the combined outcome of ExecuteSimulation.
type Result struct {
	RunID          string
	Status         Status
	Weeks          int
	InitialCapital float64
	FinalValue     float64
	Trades         []core.TradeRecord
	Strategies     []StrategyResult

	// PortfolioHistory is the combined weekly value series, starting at the
	// initial capital, for performance metrics.
	PortfolioHistory []float64
}

// Orchestrator owns one simulation run over the configured strategies.
type Orchestrator struct {
	cfg      *config.Config
	log      logger.Logger
	simStart time.Time

	// priceSource, when set, overrides the per-mode source selection.
	priceSource core.PriceSource
	storage     core.TradeStorage
	recorder    core.RunRecorder
	notifier    core.Notifier

	onStrategyDone func(name string)

	strategies []core.Strategy
	tables     map[string]*feed.Table
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithPriceSource overrides the data-mode source selection for every asset
// class. Mainly for tests.
func WithPriceSource(source core.PriceSource) Option {
	return func(o *Orchestrator) { o.priceSource = source }
}

// WithTradeStorage persists every merged trade after the run.
func WithTradeStorage(storage core.TradeStorage) Option {
	return func(o *Orchestrator) { o.storage = storage }
}

// WithRunRecorder records run metadata around the simulation.
func WithRunRecorder(recorder core.RunRecorder) Option {
	return func(o *Orchestrator) { o.recorder = recorder }
}

// WithNotifier pushes run events to an external channel.
func WithNotifier(notifier core.Notifier) Option {
	return func(o *Orchestrator) { o.notifier = notifier }
}

// WithSimulationStart anchors simulated trade timestamps.
func WithSimulationStart(start time.Time) Option {
	return func(o *Orchestrator) { o.simStart = start }
}

// WithStrategyCompleted registers a callback fired after each strategy
// finishes, successful or not. Used by the CLI progress bar.
func WithStrategyCompleted(fn func(name string)) Option {
	return func(o *Orchestrator) { o.onStrategyDone = fn }
}

// New creates an orchestrator for the given configuration.
func New(cfg *config.Config, log logger.Logger, options ...Option) *Orchestrator {
	o := &Orchestrator{
		cfg:      cfg,
		log:      log,
		simStart: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
	}

	for _, option := range options {
		option(o)
	}

	return o
}

// ExecuteSimulation runs every enabled strategy over the given number of
// weeks and returns the merged, chronologically ordered trade list. A single
// strategy failing does not abort the run; its error lands in the result.
func (o *Orchestrator) ExecuteSimulation(ctx context.Context, weeks int) (*Result, error) {
	enabled := o.cfg.EnabledStrategies()
	if len(enabled) == 0 {
		return nil, &core.OrchestrationError{Op: "execute", Err: core.ErrNoStrategiesEnabled}
	}

	if weeks <= 0 {
		weeks = o.cfg.Weeks()
	}

	runID := fmt.Sprintf("sim_%s", time.Now().Format("20060102_150405"))
	o.log.Infof("starting run %s: %d weeks, strategies %v, capital $%.2f",
		runID, weeks, enabled, o.cfg.InitialCapital)

	o.startRun(runID, enabled)

	if err := o.buildStrategies(ctx, weeks); err != nil {
		o.completeRun(runID, 0, 0, err)
		return nil, err
	}

	result := &Result{
		RunID:          runID,
		Weeks:          weeks,
		InitialCapital: o.cfg.InitialCapital,
	}

	for _, strat := range o.strategies {
		trades, err := strat.Run(ctx, weeks)
		if err != nil {
			o.log.WithError(err).Errorf("strategy %s failed", strat.Name())
			if o.notifier != nil {
				o.notifier.OnError(&core.OrchestrationError{Op: strat.Name(), Err: err})
			}
		}

		result.Strategies = append(result.Strategies, StrategyResult{
			Name:       strat.Name(),
			Allocated:  strat.InitialCapital(),
			FinalValue: strat.CurrentPortfolioValue(),
			TradeCount: len(trades),
			Err:        err,
		})
		result.Trades = append(result.Trades, trades...)

		if o.onStrategyDone != nil {
			o.onStrategyDone(strat.Name())
		}
	}

	sortTrades(result.Trades)

	result.PortfolioHistory = o.portfolioHistory()
	result.FinalValue = o.TotalPortfolioValue()
	result.Status = runStatus(result.Strategies)

	o.persistTrades(result.Trades)
	o.completeRun(runID, len(result.Trades), result.FinalValue, firstError(result.Strategies))

	if o.notifier != nil {
		o.notifier.Notify(fmt.Sprintf(
			"Run %s finished (%s): %d trades over %d weeks, final value $%.2f",
			runID, result.Status, len(result.Trades), weeks, result.FinalValue))
	}

	o.log.Infof("run %s finished: status=%s trades=%d final=$%.2f",
		runID, result.Status, len(result.Trades), result.FinalValue)

	return result, nil
}

// TotalPortfolioValue sums the current value of every built strategy. Before
// ExecuteSimulation it returns 0.
func (o *Orchestrator) TotalPortfolioValue() float64 {
	return lo.SumBy(o.strategies, func(s core.Strategy) float64 {
		return s.CurrentPortfolioValue()
	})
}

// Strategies returns the built strategy controllers, in execution order.
func (o *Orchestrator) Strategies() []core.Strategy {
	return o.strategies
}

// Table returns the loaded price table for a strategy name, nil before
// ExecuteSimulation.
func (o *Orchestrator) Table(name string) *feed.Table {
	return o.tables[name]
}

type valueHistorian interface {
	ValueHistory() []float64
}

// portfolioHistory sums per-strategy weekly marks into one series, prefixed
// with the initial capital so returns measure against the starting point.
func (o *Orchestrator) portfolioHistory() []float64 {
	weeks := 0
	for _, strat := range o.strategies {
		if h, ok := strat.(valueHistorian); ok && len(h.ValueHistory()) > weeks {
			weeks = len(h.ValueHistory())
		}
	}
	if weeks == 0 {
		return nil
	}

	history := make([]float64, weeks+1)
	history[0] = o.cfg.InitialCapital

	for _, strat := range o.strategies {
		h, ok := strat.(valueHistorian)
		if !ok {
			continue
		}
		values := h.ValueHistory()
		for i := 0; i < weeks; i++ {
			v := strat.CurrentPortfolioValue()
			if i < len(values) {
				v = values[i]
			}
			history[i+1] += v
		}
	}

	return history
}

// CheckSources probes each configured data source with a one-period fetch and
// returns the per-class outcome. Mock sources always pass.
func (o *Orchestrator) CheckSources(ctx context.Context) map[string]error {
	checks := make(map[string]error, 2)

	if o.cfg.Enabled(config.StrategyWheel) {
		source := o.etfSource()
		_, err := source.Prices(ctx, o.cfg.WheelSymbols[0], core.AssetClassETF, 1)
		checks["etf"] = err
	}

	if o.cfg.Enabled(config.StrategyRotator) {
		source := o.cryptoSource()
		_, err := source.Prices(ctx, o.cfg.RotatorSymbols[0], core.AssetClassCrypto, 1)
		checks["crypto"] = err
	}

	return checks
}

// buildStrategies loads price tables and constructs the enabled controllers.
// Tables are loaded fully before any strategy runs; the weekly loops never
// touch the network.
func (o *Orchestrator) buildStrategies(ctx context.Context, weeks int) error {
	o.strategies = o.strategies[:0]
	o.tables = make(map[string]*feed.Table, 2)
	fallback := o.mockSource()

	for _, name := range o.cfg.EnabledStrategies() {
		capital := o.cfg.InitialCapital * o.cfg.AllocationFor(name)

		switch name {
		case config.StrategyWheel:
			table := feed.BuildTable(ctx, o.etfSource(), fallback,
				o.cfg.WheelSymbols, core.AssetClassETF, weeks+1, o.log)
			o.tables[name] = table

			o.strategies = append(o.strategies, wheel.New(
				capital,
				o.cfg.WheelSymbols,
				wheel.Params{
					PutStrikePct:   o.cfg.Wheel.PutStrikePct,
					CallStrikePct:  o.cfg.Wheel.CallStrikePct,
					PutPremiumPct:  o.cfg.Wheel.PutPremiumPct,
					CallPremiumPct: o.cfg.Wheel.CallPremiumPct,
				},
				table,
				o.log.WithField("strategy", core.StrategyWheel),
				wheel.WithSimulationStart(o.simStart),
			))

		case config.StrategyRotator:
			table := feed.BuildTable(ctx, o.cryptoSource(), fallback,
				o.cfg.RotatorSymbols, core.AssetClassCrypto, weeks, o.log)
			o.tables[name] = table

			o.strategies = append(o.strategies, rotator.New(
				capital,
				o.cfg.RotatorSymbols,
				table,
				o.log.WithField("strategy", core.StrategyRotator),
				rotator.WithSimulationStart(o.simStart),
			))

		default:
			return &core.OrchestrationError{Op: "build", Err: fmt.Errorf("unknown strategy %q", name)}
		}
	}

	return nil
}

// etfSource returns the price source for ETF symbols. There is no live ETF
// feed wired in; live and hybrid modes simulate the equity leg and say so.
func (o *Orchestrator) etfSource() core.PriceSource {
	if o.priceSource != nil {
		return o.priceSource
	}

	if o.cfg.DataMode != config.DataModeMock {
		o.log.Info("no live ETF feed configured, equity prices are simulated")
	}
	return o.mockSource()
}

// cryptoSource returns the price source for crypto symbols: Binance klines in
// live mode, CoinGecko daily closes in hybrid mode, mock otherwise.
func (o *Orchestrator) cryptoSource() core.PriceSource {
	if o.priceSource != nil {
		return o.priceSource
	}

	switch o.cfg.DataMode {
	case config.DataModeLive:
		return feed.NewBinance("", "")
	case config.DataModeHybrid:
		return feed.NewCoinGecko(o.cfg.CryptoIDs)
	default:
		return o.mockSource()
	}
}

func (o *Orchestrator) mockSource() *feed.MockSource {
	return feed.NewMockSource(o.cfg.Simulation.MockSeed, o.cfg.Simulation.Deterministic)
}

func (o *Orchestrator) persistTrades(trades []core.TradeRecord) {
	if o.storage == nil {
		return
	}

	for i := range trades {
		if err := o.storage.LogTrade(&trades[i]); err != nil {
			o.log.WithError(err).Warn("failed to persist trade")
			return
		}
	}
}

func (o *Orchestrator) startRun(runID string, strategies []string) {
	if o.recorder == nil {
		return
	}

	cfgJSON, err := json.Marshal(o.cfg)
	if err != nil {
		cfgJSON = []byte("{}")
	}

	if err := o.recorder.StartRun(runID, string(cfgJSON), strategies); err != nil {
		o.log.WithError(err).Warn("failed to record run start")
	}
}

func (o *Orchestrator) completeRun(runID string, totalTrades int, finalCapital float64, runErr error) {
	if o.recorder == nil {
		return
	}

	if err := o.recorder.CompleteRun(runID, totalTrades, finalCapital, runErr); err != nil {
		o.log.WithError(err).Warn("failed to record run completion")
	}
}

// sortTrades orders the merged list chronologically: numeric week index
// first, then the simulated timestamp within the week.
func sortTrades(trades []core.TradeRecord) {
	sort.SliceStable(trades, func(i, j int) bool {
		wi, wj := core.WeekIndex(trades[i].Week), core.WeekIndex(trades[j].Week)
		if wi != wj {
			return wi < wj
		}
		return trades[i].Timestamp.Before(trades[j].Timestamp)
	})
}

func runStatus(results []StrategyResult) Status {
	failed := lo.CountBy(results, func(r StrategyResult) bool { return r.Err != nil })

	switch {
	case failed == 0:
		return StatusOK
	case failed == len(results):
		return StatusFailed
	default:
		return StatusPartial
	}
}

func firstError(results []StrategyResult) error {
	for _, r := range results {
		if r.Err != nil {
			return r.Err
		}
	}
	return nil
}
