package wheel

import (
	"context"
	"fmt"
	"time"

	"github.com/raykavin/wheelhouse/pkg/core"
	"github.com/raykavin/wheelhouse/pkg/feed"
	"github.com/raykavin/wheelhouse/pkg/logger"
)

// Params are the per-trade tuning knobs. Zero values fall back to the
// defaults below.
type Params struct {
	PutStrikePct   float64 // put strike as a fraction of spot, default 0.95
	CallStrikePct  float64 // call strike as a fraction of spot, default 1.05
	PutPremiumPct  float64 // put premium as a fraction of strike, default 0.02
	CallPremiumPct float64 // call premium as a fraction of strike, default 0.015
}

func (p Params) withDefaults() Params {
	if p.PutStrikePct == 0 {
		p.PutStrikePct = 0.95
	}
	if p.CallStrikePct == 0 {
		p.CallStrikePct = 1.05
	}
	if p.PutPremiumPct == 0 {
		p.PutPremiumPct = 0.02
	}
	if p.CallPremiumPct == 0 {
		p.CallPremiumPct = 0.015
	}
	return p
}

// PnLBreakdown is the always-available profit decomposition.
type PnLBreakdown struct {
	PremiumsCollected float64
	RealizedGains     float64
	UnrealizedPnL     float64
	TotalPnL          float64
	TotalReturnPct    float64
}

// Controller runs one wheel Position per symbol, owns the strategy's capital
// accounting and aggregates weekly P&L.
type Controller struct {
	initialCapital float64
	capital        float64 // running balance: premiums, purchases and sales flow through here
	available      float64 // capital minus what open puts and held shares lock up
	symbols        []string
	params         Params
	prices         *feed.Table
	positions      map[string]*Position
	trades         []core.TradeRecord

	premiumsCollected float64
	realizedGains     float64
	valueHistory      []float64

	currentWeek int
	simStart    time.Time
	log         logger.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithSimulationStart anchors trade timestamps to a fixed start time, keeping
// repeated runs byte-identical.
func WithSimulationStart(start time.Time) Option {
	return func(c *Controller) {
		c.simStart = start
	}
}

// New creates a wheel controller for the given capital slice and symbols.
// The price table must already cover every symbol.
func New(capital float64, symbols []string, params Params, prices *feed.Table, log logger.Logger, options ...Option) *Controller {
	c := &Controller{
		initialCapital: capital,
		capital:        capital,
		available:      capital,
		symbols:        symbols,
		params:         params.withDefaults(),
		prices:         prices,
		positions:      make(map[string]*Position, len(symbols)),
		simStart:       time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		log:            log,
	}

	for _, symbol := range symbols {
		c.positions[symbol] = newPosition(symbol)
	}

	for _, option := range options {
		option(c)
	}

	return c
}

// Name implements core.Strategy.
func (c *Controller) Name() string { return core.StrategyWheel }

// InitialCapital implements core.Strategy.
func (c *Controller) InitialCapital() float64 { return c.initialCapital }

// Position returns the state machine for a symbol, mainly for inspection.
func (c *Controller) Position(symbol string) *Position {
	return c.positions[symbol]
}

// Trades returns the ordered trade history so far.
func (c *Controller) Trades() []core.TradeRecord { return c.trades }

// ValueHistory returns the end-of-week portfolio marks, one per simulated
// week.
func (c *Controller) ValueHistory() []float64 { return c.valueHistory }

// Run executes the weekly loop. Week 0 processes every symbol at its starting
// price; later weeks advance the series first. It returns the full ordered
// trade list.
func (c *Controller) Run(ctx context.Context, weeks int) ([]core.TradeRecord, error) {
	c.log.Infof("executing wheel strategy with $%.2f across %v", c.capital, c.symbols)

	for week := 0; week < weeks; week++ {
		if err := ctx.Err(); err != nil {
			return c.trades, err
		}

		if week > 0 {
			c.advanceWeek()
		}

		for _, symbol := range c.symbols {
			c.processSymbol(symbol)
		}

		c.updateAvailableCapital()
		c.valueHistory = append(c.valueHistory, c.CurrentPortfolioValue())

		pnl := c.PnL()
		c.log.Debugf("week %d P&L: total=$%.2f premiums=$%.2f unrealized=$%.2f",
			c.currentWeek, pnl.TotalPnL, pnl.PremiumsCollected, pnl.UnrealizedPnL)
	}

	final := c.PnL()
	c.log.Infof("wheel complete: %d trades, total P&L $%.2f (%.2f%%)",
		len(c.trades), final.TotalPnL, final.TotalReturnPct)

	return c.trades, nil
}

// CurrentPortfolioValue implements core.Strategy: the running capital plus
// unrealized appreciation of held shares. The locked/available split never
// feeds valuation.
func (c *Controller) CurrentPortfolioValue() float64 {
	total := c.capital
	for _, pos := range c.positions {
		if pos.Shares > 0 {
			price := c.currentPrice(pos.Symbol)
			total += (price - pos.CostBasis) * float64(pos.Shares)
		}
	}
	return total
}

// PnL returns the profit breakdown at the current week.
func (c *Controller) PnL() PnLBreakdown {
	unrealized := 0.0
	for _, pos := range c.positions {
		if pos.Shares > 0 {
			price := c.currentPrice(pos.Symbol)
			unrealized += (price - pos.CostBasis) * float64(pos.Shares)
		}
	}

	return PnLBreakdown{
		PremiumsCollected: c.premiumsCollected,
		RealizedGains:     c.realizedGains,
		UnrealizedPnL:     unrealized,
		TotalPnL:          c.premiumsCollected + c.realizedGains + unrealized,
		TotalReturnPct:    (c.capital + unrealized - c.initialCapital) / c.initialCapital * 100,
	}
}

func (c *Controller) advanceWeek() {
	c.currentWeek++
	for _, symbol := range c.symbols {
		c.log.Debugf("week %d %s: $%.2f", c.currentWeek, symbol, c.currentPrice(symbol))
	}
}

func (c *Controller) currentPrice(symbol string) float64 {
	return c.prices.Price(symbol, c.currentWeek)
}

// nextWeekPrice is used to resolve an expiring option during the current
// week's processing. When the series has no further data it falls back to the
// current price.
func (c *Controller) nextWeekPrice(symbol string) float64 {
	if price := c.prices.Price(symbol, c.currentWeek+1); price != 0 {
		return price
	}
	return c.currentPrice(symbol)
}

func (c *Controller) processSymbol(symbol string) {
	pos := c.positions[symbol]
	price := c.currentPrice(symbol)

	switch pos.State {
	case StateCashSecuredPut:
		c.handleCashSecuredPut(pos, price)
	case StateHoldingShares:
		c.handleCoveredCall(pos, price)
	}
}

// handleCashSecuredPut sells a new put when none is open, or resolves an
// expiring one against next week's price.
func (c *Controller) handleCashSecuredPut(pos *Position, price float64) {
	if !pos.HasOpenOption() {
		strike := core.Round2(price * c.params.PutStrikePct)
		premium := core.Round2(strike * c.params.PutPremiumPct)
		required := strike * SharesPerContract

		// Not enough free cash is a valid outcome, not an error: skip the
		// week and try again once capital unlocks.
		if c.available < required {
			c.log.Debugf("%s: skipping put, need $%.2f of free capital, have $%.2f",
				pos.Symbol, required, c.available)
			return
		}

		pos.Strike = strike
		pos.Expiration = c.currentWeek + 1
		pos.PremiumCollected += premium

		c.updateCapital(premium)
		c.premiumsCollected += premium

		c.logTrade(core.TradeRecord{
			Symbol:   pos.Symbol,
			Action:   core.ActionSellPut,
			Quantity: 1,
			Price:    premium,
			Strike:   strike,
			CashFlow: premium,
			Notes:    fmt.Sprintf("Sold put with strike $%.2f", strike),
		})
		return
	}

	if c.currentWeek >= pos.Expiration {
		if c.nextWeekPrice(pos.Symbol) < pos.Strike {
			c.assignPut(pos)
		} else {
			c.log.Debugf("%s: put expired worthless, keeping premium $%.2f",
				pos.Symbol, pos.PremiumCollected)
			pos.clearOption()
		}
	}
}

// assignPut buys the round lot at the strike and moves to share holding.
func (c *Controller) assignPut(pos *Position) {
	strike := pos.Strike
	cost := strike * SharesPerContract

	pos.Shares = SharesPerContract
	pos.CostBasis = strike
	pos.State = StateHoldingShares
	pos.clearOption()

	c.updateCapital(-cost)

	c.logTrade(core.TradeRecord{
		Symbol:   pos.Symbol,
		Action:   core.ActionBuyShares,
		Quantity: SharesPerContract,
		Price:    strike,
		CashFlow: -cost,
		Notes:    fmt.Sprintf("Put assigned, bought %d shares at $%.2f", SharesPerContract, strike),
	})
}

// handleCoveredCall sells a new call when none is open (shares back the call,
// no capital check), or resolves an expiring one against next week's price.
func (c *Controller) handleCoveredCall(pos *Position, price float64) {
	if !pos.HasOpenOption() {
		strike := core.Round2(price * c.params.CallStrikePct)
		premium := core.Round2(strike * c.params.CallPremiumPct)

		pos.Strike = strike
		pos.Expiration = c.currentWeek + 1
		pos.PremiumCollected += premium

		c.updateCapital(premium)
		c.premiumsCollected += premium

		c.logTrade(core.TradeRecord{
			Symbol:   pos.Symbol,
			Action:   core.ActionSellCall,
			Quantity: 1,
			Price:    premium,
			Strike:   strike,
			CashFlow: premium,
			Notes:    fmt.Sprintf("Sold call with strike $%.2f", strike),
		})
		return
	}

	if c.currentWeek >= pos.Expiration {
		if c.nextWeekPrice(pos.Symbol) > pos.Strike {
			c.exerciseCall(pos)
		} else {
			c.log.Debugf("%s: call expired worthless, keeping premium", pos.Symbol)
			pos.clearOption()
		}
	}
}

// exerciseCall sells the lot at the strike, realizes the capital gain and
// resets the cycle back to selling puts.
func (c *Controller) exerciseCall(pos *Position) {
	strike := pos.Strike
	proceeds := strike * SharesPerContract
	capitalGain := proceeds - pos.CostBasis*SharesPerContract
	cyclePremiums := pos.PremiumCollected

	c.updateCapital(proceeds)
	c.realizedGains += capitalGain

	pos.Shares = 0
	pos.CostBasis = 0
	pos.State = StateCashSecuredPut
	pos.clearOption()
	pos.PremiumCollected = 0

	c.logTrade(core.TradeRecord{
		Symbol:   pos.Symbol,
		Action:   core.ActionSellShares,
		Quantity: SharesPerContract,
		Price:    strike,
		CashFlow: proceeds,
		Notes: fmt.Sprintf("Call exercised, sold %d shares at $%.2f. Capital gain: $%.2f, Cycle premiums: $%.2f",
			SharesPerContract, strike, capitalGain, cyclePremiums),
	})
}

func (c *Controller) updateCapital(amount float64) {
	c.capital += amount
	c.updateAvailableCapital()
}

// updateAvailableCapital recomputes the unlocked view: open puts lock
// strike*100, held shares lock their book value.
func (c *Controller) updateAvailableCapital() {
	locked := 0.0
	for _, pos := range c.positions {
		if pos.State == StateCashSecuredPut && pos.HasOpenOption() {
			locked += pos.Strike * SharesPerContract
		} else if pos.Shares > 0 {
			locked += float64(pos.Shares) * pos.CostBasis
		}
	}
	c.available = c.capital - locked
}

func (c *Controller) logTrade(trade core.TradeRecord) {
	trade.Week = core.WeekLabel(c.currentWeek)
	trade.Strategy = core.StrategyWheel
	trade.Timestamp = c.simStart.
		AddDate(0, 0, 7*c.currentWeek).
		Add(time.Duration(len(c.trades)) * time.Second)

	c.trades = append(c.trades, trade)
	c.log.Info(trade.String())
}
