// Package feed provides week-indexed price tables for the simulator: mock
// generators, live data sources and the pad-and-fallback table builder that
// the strategies consume.
package feed

import (
	"context"
	"hash/fnv"
	"math/rand"

	"github.com/raykavin/wheelhouse/pkg/core"
)

var etfBasePrices = map[string]float64{
	"SPY": 450,
	"QQQ": 370,
	"IWM": 210,
}

var cryptoBasePrices = map[string]float64{
	"BTC": 50000,
	"ETH": 3000,
	"SOL": 100,
}

// Deterministic weekly multiplier tables. The ETF path is tuned so a default
// wheel run exercises assignment and a profitable call exercise; the crypto
// tables force at least one rotation.
var etfMultipliers = []float64{1.0, 0.96, 1.02, 1.07, 1.10, 0.98, 1.05, 1.12}

var cryptoMultipliers = map[string][]float64{
	"BTC": {1.0, 1.08, 1.05, 1.12, 1.15, 1.10, 1.18, 1.22},
	"ETH": {1.0, 1.02, 1.15, 1.18, 1.12, 1.25, 1.20, 1.28},
	"SOL": {1.0, 1.12, 1.08, 1.10, 1.05, 1.08, 1.30, 1.35},
}

var defaultCryptoMultipliers = []float64{1.0, 1.05, 1.08, 1.10, 1.12, 1.15, 1.18, 1.20}

// MockSource generates simulated price series. Each instance owns its seed,
// so two concurrent simulations never share or perturb random state.
type MockSource struct {
	seed          int64
	deterministic bool
}

// NewMockSource creates a mock price source. With deterministic set, series
// come from fixed multiplier tables; otherwise from a seeded random walk.
func NewMockSource(seed int64, deterministic bool) *MockSource {
	return &MockSource{seed: seed, deterministic: deterministic}
}

// Prices implements core.PriceSource. It never fails.
func (m *MockSource) Prices(_ context.Context, symbol string, class core.AssetClass, periods int) ([]float64, error) {
	if periods <= 0 {
		return nil, nil
	}

	base := basePrice(symbol, class)

	if m.deterministic {
		return deterministicSeries(symbol, class, base, periods), nil
	}
	return m.randomWalk(symbol, class, base, periods), nil
}

func basePrice(symbol string, class core.AssetClass) float64 {
	if class == core.AssetClassCrypto {
		if base, ok := cryptoBasePrices[symbol]; ok {
			return base
		}
		return 1000
	}

	if base, ok := etfBasePrices[symbol]; ok {
		return base
	}
	return 400
}

// deterministicSeries returns at most one multiplier-table worth of data;
// the table builder pads longer simulations with the last known price.
func deterministicSeries(symbol string, class core.AssetClass, base float64, periods int) []float64 {
	multipliers := etfMultipliers
	if class == core.AssetClassCrypto {
		multipliers = defaultCryptoMultipliers
		if m, ok := cryptoMultipliers[symbol]; ok {
			multipliers = m
		}
	}

	if periods > len(multipliers) {
		periods = len(multipliers)
	}

	prices := make([]float64, periods)
	for i := 0; i < periods; i++ {
		prices[i] = base * multipliers[i]
	}
	return prices
}

// randomWalk generates a positively-biased weekly walk: -2%..+4% for ETFs,
// -5%..+20% for crypto.
func (m *MockSource) randomWalk(symbol string, class core.AssetClass, base float64, periods int) []float64 {
	rng := rand.New(rand.NewSource(m.seed + symbolOffset(symbol)))

	low, high := -0.02, 0.04
	if class == core.AssetClassCrypto {
		low, high = -0.05, 0.20
	}

	prices := make([]float64, 0, periods)
	prices = append(prices, base)
	for week := 1; week < periods; week++ {
		change := low + rng.Float64()*(high-low)
		prices = append(prices, core.Round2(prices[len(prices)-1]*(1+change)))
	}
	return prices
}

// symbolOffset derives a stable per-symbol seed offset.
func symbolOffset(symbol string) int64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(symbol))
	return int64(h.Sum32())
}
