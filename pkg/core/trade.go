package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Action identifies what a trade did. The set is closed: strategies only
// ever emit these six values.
type Action string

const (
	ActionSellPut    Action = "SELL_PUT"
	ActionBuyShares  Action = "BUY_SHARES"
	ActionSellCall   Action = "SELL_CALL"
	ActionSellShares Action = "SELL_SHARES"
	ActionBuyCrypto  Action = "BUY_CRYPTO"
	ActionSellCrypto Action = "SELL_CRYPTO"
)

// Strategy tags carried on trade records.
const (
	StrategyWheel   = "Wheel"
	StrategyRotator = "Rotator"
)

// TradeRecord is an immutable fact describing one simulated trade. It is
// created exactly once by the strategy that executed the trade, appended to
// an in-memory list and exported verbatim.
type TradeRecord struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Week      string    `json:"week"`     // period label, e.g. "Week3"
	Strategy  string    `json:"strategy"` // "Wheel" or "Rotator"
	Symbol    string    `json:"symbol"`
	Action    Action    `json:"action"`
	Quantity  float64   `json:"quantity"` // contracts, shares or coin units
	Price     float64   `json:"price"`    // premium for options, spot otherwise
	Strike    float64   `json:"strike"`   // zero for non-option trades
	CashFlow  float64   `json:"cash_flow"`
	Notes     string    `json:"notes"`
	Timestamp time.Time `json:"timestamp"`
}

// String renders the record in the compact form used by trade summaries.
func (t TradeRecord) String() string {
	if t.Strike != 0 {
		return fmt.Sprintf("%s: %s %.4g %s @ $%.2f - $%+.2f",
			t.Week, t.Action, t.Quantity, t.Symbol, t.Strike, t.CashFlow)
	}
	return fmt.Sprintf("%s: %s %.4g %s - $%+.2f",
		t.Week, t.Action, t.Quantity, t.Symbol, t.CashFlow)
}

// WeekLabel formats a week index as a period label.
func WeekLabel(week int) string {
	return fmt.Sprintf("Week%d", week)
}

// WeekIndex parses a period label back to its index. Unparseable labels sort
// first.
func WeekIndex(label string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(label, "Week"))
	if err != nil {
		return -1
	}
	return n
}

// Round2 rounds a dollar amount to cents. Strike and premium math is defined
// in cents everywhere in the simulator.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
