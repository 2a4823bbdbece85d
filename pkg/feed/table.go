package feed

import (
	"context"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/raykavin/wheelhouse/pkg/core"
	"github.com/raykavin/wheelhouse/pkg/logger"
)

// Table is an in-memory price table indexed by symbol and week. Fetching
// happens once, up front; the weekly loop then reads it synchronously.
type Table struct {
	series map[string][]float64
}

// NewTable creates an empty price table.
func NewTable() *Table {
	return &Table{series: make(map[string][]float64)}
}

// Set replaces the series for a symbol.
func (t *Table) Set(symbol string, prices []float64) {
	t.series[symbol] = prices
}

// Price returns the price of a symbol at a week index, or 0 when the table
// has no data for it.
func (t *Table) Price(symbol string, week int) float64 {
	prices, ok := t.series[symbol]
	if !ok || week < 0 || week >= len(prices) {
		return 0
	}
	return prices[week]
}

// Series returns the raw series for a symbol.
func (t *Table) Series(symbol string) []float64 {
	return t.series[symbol]
}

// Symbols returns the symbols loaded into the table, sorted.
func (t *Table) Symbols() []string {
	symbols := maps.Keys(t.series)
	slices.Sort(symbols)
	return symbols
}

// BuildTable loads one series per symbol from the given source. Short series
// are padded by repeating the last known price; a symbol whose fetch fails
// falls back to the mock source so the rest of the run proceeds. Data-source
// errors are warnings, never fatal.
func BuildTable(
	ctx context.Context,
	source core.PriceSource,
	fallback *MockSource,
	symbols []string,
	class core.AssetClass,
	periods int,
	log logger.Logger,
) *Table {
	table := NewTable()

	for _, symbol := range symbols {
		prices, err := source.Prices(ctx, symbol, class, periods)
		if err != nil || len(prices) == 0 {
			if err != nil {
				log.WithError(err).Warnf("failed to fetch prices for %s, using mock data", symbol)
			} else {
				log.Warnf("no price data for %s, using mock data", symbol)
			}
			prices, _ = fallback.Prices(ctx, symbol, class, periods)
		}

		table.Set(symbol, padSeries(prices, periods))
	}

	return table
}

// padSeries trims or extends a series to the requested length, repeating the
// last known price when data runs short.
func padSeries(prices []float64, periods int) []float64 {
	if len(prices) == 0 {
		return make([]float64, periods)
	}
	if len(prices) >= periods {
		return prices[:periods]
	}

	padded := make([]float64, 0, periods)
	padded = append(padded, prices...)
	last := padded[len(padded)-1]
	for len(padded) < periods {
		padded = append(padded, last)
	}
	return padded
}
