// Package rotator implements the momentum crypto rotation strategy: hold at
// most one coin, and every week rotate into the best performer of the
// candidate set.
package rotator

import (
	"context"
	"fmt"
	"time"

	"github.com/raykavin/wheelhouse/pkg/core"
	"github.com/raykavin/wheelhouse/pkg/feed"
	"github.com/raykavin/wheelhouse/pkg/logger"
)

// Snapshot records the portfolio mark for one simulated week.
type Snapshot struct {
	Week     int
	Holding  string
	Quantity float64
	Price    float64
	Value    float64
	Change   float64
}

// Controller holds at most one coin position at a time and owns the rotation
// decision loop.
type Controller struct {
	initialCapital float64
	capital        float64 // cash when nothing is held
	coins          []string
	prices         *feed.Table

	holding  string  // empty means all-cash
	quantity float64 // units of holding; non-zero iff holding is set
	value    float64 // last-computed USD mark

	trades        []core.TradeRecord
	weeklyReturns map[string]float64
	realizedPnL   float64
	history       []Snapshot

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

// New creates a rotation controller over the configured candidate coins. Coin
// order matters: it is the tie-break when weekly returns are equal.
func New(capital float64, coins []string, prices *feed.Table, log logger.Logger, options ...Option) *Controller {
	c := &Controller{
		initialCapital: capital,
		capital:        capital,
		coins:          coins,
		prices:         prices,
		weeklyReturns:  make(map[string]float64),
		simStart:       time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		log:            log,
	}

	for _, option := range options {
		option(c)
	}

	return c
}

// Name implements core.Strategy.
func (c *Controller) Name() string { return core.StrategyRotator }

// InitialCapital implements core.Strategy.
func (c *Controller) InitialCapital() float64 { return c.initialCapital }

// Holding returns the currently held coin ("" when all-cash) and quantity.
func (c *Controller) Holding() (string, float64) { return c.holding, c.quantity }

// Trades returns the ordered trade history so far.
func (c *Controller) Trades() []core.TradeRecord { return c.trades }

// History returns the weekly portfolio snapshots.
func (c *Controller) History() []Snapshot { return c.history }

// RealizedPnL returns gains locked in by completed sells.
func (c *Controller) RealizedPnL() float64 { return c.realizedPnL }

// ValueHistory returns the end-of-week portfolio marks, one per simulated
// week.
func (c *Controller) ValueHistory() []float64 {
	values := make([]float64, 0, len(c.history))
	for _, snap := range c.history {
		values = append(values, snap.Value)
	}
	return values
}

// BestWeek returns the snapshot with the largest week-over-week gain. The
// second return is false before any history exists.
func (c *Controller) BestWeek() (Snapshot, bool) {
	return c.extremeWeek(func(a, b float64) bool { return a > b })
}

// WorstWeek returns the snapshot with the largest week-over-week loss.
func (c *Controller) WorstWeek() (Snapshot, bool) {
	return c.extremeWeek(func(a, b float64) bool { return a < b })
}

func (c *Controller) extremeWeek(better func(a, b float64) bool) (Snapshot, bool) {
	// Week 0 has no prior value; its Change is always zero.
	if len(c.history) < 2 {
		return Snapshot{}, false
	}

	best := c.history[1]
	for _, snap := range c.history[2:] {
		if better(snap.Change, best.Change) {
			best = snap
		}
	}
	return best, true
}

// Run executes the weekly rotation loop and returns the full ordered trade
// list.
func (c *Controller) Run(ctx context.Context, weeks int) ([]core.TradeRecord, error) {
	c.log.Infof("executing crypto rotator with $%.2f across %v", c.capital, c.coins)

	for week := 0; week < weeks; week++ {
		if err := ctx.Err(); err != nil {
			return c.trades, err
		}

		if week > 0 {
			c.advanceWeek()
		}

		c.processRotation()
		c.recordSnapshot()
	}

	finalValue := c.CurrentPortfolioValue()
	c.log.Infof("rotator complete: %d trades, final value $%.2f (realized P&L $%+.2f)",
		len(c.trades), finalValue, c.realizedPnL)

	return c.trades, nil
}

// CurrentPortfolioValue implements core.Strategy: plain cash when nothing is
// held, otherwise the current mark of the holding.
func (c *Controller) CurrentPortfolioValue() float64 {
	if c.holding == "" {
		return c.capital
	}
	return c.quantity * c.currentPrice(c.holding)
}

// UnrealizedPnL is the current value minus the cost basis of the most recent
// matching buy.
func (c *Controller) UnrealizedPnL() float64 {
	if c.holding == "" {
		return 0
	}

	value := c.CurrentPortfolioValue()
	if cost, ok := c.lastBuyCost(c.holding); ok {
		return value - cost
	}
	return 0
}

// WeeklyReturns returns the most recently computed per-coin returns.
func (c *Controller) WeeklyReturns() map[string]float64 { return c.weeklyReturns }

func (c *Controller) advanceWeek() {
	c.currentWeek++
	for _, coin := range c.coins {
		c.log.Debugf("week %d %s: $%.2f", c.currentWeek, coin, c.currentPrice(coin))
	}
}

func (c *Controller) currentPrice(coin string) float64 {
	return c.prices.Price(coin, c.currentWeek)
}

// calculateWeeklyReturns computes (p[w]-p[w-1])/p[w-1] per coin. Zero or
// missing price data defaults the return to 0 instead of failing.
func (c *Controller) calculateWeeklyReturns() map[string]float64 {
	returns := make(map[string]float64, len(c.coins))
	for _, coin := range c.coins {
		returns[coin] = 0.0

		if c.currentWeek == 0 {
			continue
		}

		prev := c.prices.Price(coin, c.currentWeek-1)
		if prev > 0 {
			returns[coin] = (c.currentPrice(coin) - prev) / prev
		}
	}

	c.weeklyReturns = returns
	return returns
}

// bestPerformer picks the coin with the highest weekly return, breaking ties
// by candidate-list order rather than map iteration order.
func (c *Controller) bestPerformer(returns map[string]float64) string {
	best := c.coins[0]
	for _, coin := range c.coins[1:] {
		if returns[coin] > returns[best] {
			best = coin
		}
	}
	return best
}

func (c *Controller) processRotation() {
	// Week 0 has no prior-week data: the first coin in the candidate list is
	// the fixed starting allocation, not a performance decision.
	if c.currentWeek == 0 {
		c.buy(c.coins[0])
		return
	}

	returns := c.calculateWeeklyReturns()
	best := c.bestPerformer(returns)

	switch {
	case c.holding == "":
		c.buy(best)
	case c.holding != best:
		c.log.Infof("rotating from %s to %s", c.holding, best)
		c.sell()
		c.buy(best)
	default:
		c.log.Infof("staying with %s (still top performer)", c.holding)
	}
}

// buy deploys 100% of cash into the given coin. There is no partial sizing.
func (c *Controller) buy(coin string) {
	price := c.currentPrice(coin)
	if price <= 0 {
		c.log.Errorf("invalid price for %s, skipping buy", coin)
		return
	}

	deploy := c.capital
	if c.holding != "" {
		deploy = c.value
	}
	quantity := deploy / price

	c.holding = coin
	c.quantity = quantity
	c.value = deploy

	c.logTrade(core.TradeRecord{
		Symbol:   coin,
		Action:   core.ActionBuyCrypto,
		Quantity: quantity,
		Price:    price,
		CashFlow: -deploy,
		Notes:    fmt.Sprintf("Bought %.4f %s @ $%.2f", quantity, coin, price),
	})
}

// sell liquidates the whole position, realizing P&L against the most recent
// matching buy.
func (c *Controller) sell() {
	if c.holding == "" || c.quantity <= 0 {
		c.log.Warn("no crypto to sell")
		return
	}

	coin := c.holding
	price := c.currentPrice(coin)
	proceeds := c.quantity * price

	c.logTrade(core.TradeRecord{
		Symbol:   coin,
		Action:   core.ActionSellCrypto,
		Quantity: c.quantity,
		Price:    price,
		CashFlow: proceeds,
		Notes:    fmt.Sprintf("Sold %.4f %s @ $%.2f", c.quantity, coin, price),
	})

	if cost, ok := c.lastBuyCost(coin); ok {
		gain := proceeds - cost
		c.realizedPnL += gain
		c.log.Infof("realized P&L: $%+.2f (cost $%.2f, proceeds $%.2f)", gain, cost, proceeds)
	}

	c.capital = proceeds
	c.holding = ""
	c.quantity = 0
	c.value = proceeds
}

// lastBuyCost scans the trade history backward for the most recent buy of a
// coin and returns its absolute cash outflow.
func (c *Controller) lastBuyCost(coin string) (float64, bool) {
	for i := len(c.trades) - 1; i >= 0; i-- {
		t := c.trades[i]
		if t.Action == core.ActionBuyCrypto && t.Symbol == coin {
			cost := t.CashFlow
			if cost < 0 {
				cost = -cost
			}
			return cost, true
		}
	}
	return 0, false
}

func (c *Controller) recordSnapshot() {
	value := c.CurrentPortfolioValue()

	change := 0.0
	if len(c.history) > 0 {
		change = value - c.history[len(c.history)-1].Value
	}

	price := 0.0
	if c.holding != "" {
		price = c.currentPrice(c.holding)
	}

	c.history = append(c.history, Snapshot{
		Week:     c.currentWeek,
		Holding:  c.holding,
		Quantity: c.quantity,
		Price:    price,
		Value:    value,
		Change:   change,
	})
	c.value = value
}

func (c *Controller) logTrade(trade core.TradeRecord) {
	trade.Week = core.WeekLabel(c.currentWeek)
	trade.Strategy = core.StrategyRotator
	trade.Timestamp = c.simStart.
		AddDate(0, 0, 7*c.currentWeek).
		Add(time.Duration(len(c.trades)) * time.Second)

	c.trades = append(c.trades, trade)
	c.log.Info(trade.String())
}
