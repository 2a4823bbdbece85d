// Package recommend turns end-of-simulation state into next-week trade
// suggestions. Recommendations are advisory text; nothing here mutates
// positions.
package recommend

import (
	"fmt"

	"github.com/raykavin/wheelhouse/pkg/core"
	"github.com/raykavin/wheelhouse/pkg/feed"
	"github.com/raykavin/wheelhouse/pkg/indicator"
	"github.com/raykavin/wheelhouse/pkg/strategy/rotator"
	"github.com/raykavin/wheelhouse/pkg/strategy/wheel"
)

// Action is the suggested next move for a symbol.
type Action string

const (
	ActionSellPut  Action = "SELL_PUT"
	ActionSellCall Action = "SELL_CALL"
	ActionHold     Action = "HOLD"
	ActionBuy      Action = "BUY"
	ActionRotate   Action = "ROTATE"
)

const rsiPeriod = 4

// Recommendation is one advisory line for the run report.
type Recommendation struct {
	Strategy string
	Symbol   string
	Action   Action
	Reason   string
}

func (r Recommendation) String() string {
	return fmt.Sprintf("[%s] %s %s: %s", r.Strategy, r.Action, r.Symbol, r.Reason)
}

// ForWheel suggests the next option trade per symbol from the controller's
// final position state.
func ForWheel(ctrl *wheel.Controller, symbols []string, table *feed.Table) []Recommendation {
	recs := make([]Recommendation, 0, len(symbols))

	for _, symbol := range symbols {
		pos := ctrl.Position(symbol)
		if pos == nil {
			continue
		}

		series := table.Series(symbol)
		last := indicator.Last(series)

		rsi := 0.0
		if len(series) > rsiPeriod {
			rsi = indicator.Last(indicator.RSI(series, rsiPeriod))
		}

		rec := Recommendation{Strategy: core.StrategyWheel, Symbol: symbol}

		switch {
		case pos.HasOpenOption() && pos.Shares > 0:
			rec.Action = ActionHold
			rec.Reason = fmt.Sprintf("covered call open at $%.2f, wait for expiry", pos.Strike)
		case pos.HasOpenOption():
			rec.Action = ActionHold
			rec.Reason = fmt.Sprintf("cash-secured put open at $%.2f, wait for expiry", pos.Strike)
		case pos.Shares > 0:
			strike := core.Round2(last * 1.05)
			rec.Action = ActionSellCall
			rec.Reason = fmt.Sprintf("holding %d shares at $%.2f basis, sell call near $%.2f%s",
				pos.Shares, pos.CostBasis, strike, rsiNote(rsi))
		default:
			strike := core.Round2(last * 0.95)
			rec.Action = ActionSellPut
			rec.Reason = fmt.Sprintf("all cash, sell put near $%.2f%s", strike, rsiNote(rsi))
		}

		recs = append(recs, rec)
	}

	return recs
}

// ForRotator suggests whether to stay, enter or rotate, ranking coins by
// recent rate of change.
func ForRotator(ctrl *rotator.Controller, coins []string, table *feed.Table) []Recommendation {
	if len(coins) == 0 {
		return nil
	}

	best, bestROC := coins[0], rocFor(table.Series(coins[0]))
	for _, coin := range coins[1:] {
		if roc := rocFor(table.Series(coin)); roc > bestROC {
			best, bestROC = coin, roc
		}
	}

	holding, _ := ctrl.Holding()
	rec := Recommendation{Strategy: core.StrategyRotator, Symbol: best}

	switch {
	case holding == "":
		rec.Action = ActionBuy
		rec.Reason = fmt.Sprintf("all cash, %s leads with %.1f%% momentum", best, bestROC)
	case holding == best:
		rec.Action = ActionHold
		rec.Symbol = holding
		rec.Reason = fmt.Sprintf("%s still leads with %.1f%% momentum", holding, bestROC)
	default:
		rec.Action = ActionRotate
		rec.Reason = fmt.Sprintf("%s outpaces %s with %.1f%% momentum", best, holding, bestROC)
	}

	return []Recommendation{rec}
}

func rocFor(series []float64) float64 {
	period := rsiPeriod
	if len(series) <= period {
		period = len(series) - 1
	}
	if period < 1 {
		return 0
	}
	return indicator.Last(indicator.ROC(series, period))
}

func rsiNote(rsi float64) string {
	switch {
	case rsi <= 0:
		return ""
	case rsi > 70:
		return fmt.Sprintf(" (RSI %.0f, overbought)", rsi)
	case rsi < 30:
		return fmt.Sprintf(" (RSI %.0f, oversold)", rsi)
	default:
		return fmt.Sprintf(" (RSI %.0f)", rsi)
	}
}
