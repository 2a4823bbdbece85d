package feed

import (
	"context"
	"fmt"
	"strconv"

	"github.com/adshao/go-binance/v2"
	"github.com/raykavin/wheelhouse/pkg/core"
)

// Binance fetches weekly closes from the Binance klines endpoint. It is the
// preferred live source for crypto symbols; ETFs are not listed there.
type Binance struct {
	client   *binance.Client
	quote    string
	interval string
}

// NewBinance creates a Binance price source. Keys may be empty: kline data is
// public.
func NewBinance(apiKey, secretKey string) *Binance {
	return &Binance{
		client:   binance.NewClient(apiKey, secretKey),
		quote:    "USDT",
		interval: "1w",
	}
}

// Prices implements core.PriceSource for crypto symbols, returning weekly
// closes oldest first.
func (b *Binance) Prices(ctx context.Context, symbol string, class core.AssetClass, periods int) ([]float64, error) {
	if class != core.AssetClassCrypto {
		return nil, fmt.Errorf("binance: unsupported asset class %q", class)
	}

	klines, err := b.client.NewKlinesService().
		Symbol(symbol + b.quote).
		Interval(b.interval).
		Limit(periods).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("binance: failed to fetch klines for %s: %w", symbol, err)
	}

	if len(klines) == 0 {
		return nil, core.ErrInsufficientData
	}

	prices := make([]float64, 0, len(klines))
	for _, k := range klines {
		close, err := strconv.ParseFloat(k.Close, 64)
		if err != nil {
			return nil, fmt.Errorf("binance: bad close %q for %s: %w", k.Close, symbol, err)
		}
		prices = append(prices, close)
	}

	return prices, nil
}
