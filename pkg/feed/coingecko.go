package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/jpillora/backoff"
	"github.com/raykavin/wheelhouse/pkg/core"
)

const defaultCoinGeckoBaseURL = "https://api.coingecko.com/api/v3"

// CoinGecko fetches daily cryptocurrency closes from the CoinGecko
// market_chart endpoint. Symbols are mapped to CoinGecko identifiers
// (BTC -> bitcoin) before the request.
type CoinGecko struct {
	client     *resty.Client
	symbolToID map[string]string
	attempts   int
}

// CoinGeckoOption configures the client.
type CoinGeckoOption func(*CoinGecko)

// WithCoinGeckoBaseURL overrides the API base URL.
func WithCoinGeckoBaseURL(baseURL string) CoinGeckoOption {
	return func(c *CoinGecko) {
		c.client.SetBaseURL(baseURL)
	}
}

// WithCoinGeckoTimeout sets the per-request timeout.
func WithCoinGeckoTimeout(timeout time.Duration) CoinGeckoOption {
	return func(c *CoinGecko) {
		c.client.SetTimeout(timeout)
	}
}

// NewCoinGecko creates a CoinGecko price source. symbolToID maps strategy
// symbols to API identifiers; unmapped symbols are passed through lowercased
// by the caller's config layer.
func NewCoinGecko(symbolToID map[string]string, options ...CoinGeckoOption) *CoinGecko {
	cg := &CoinGecko{
		client: resty.New().
			SetBaseURL(defaultCoinGeckoBaseURL).
			SetTimeout(30 * time.Second),
		symbolToID: symbolToID,
		attempts:   3,
	}

	for _, option := range options {
		option(cg)
	}

	return cg
}

type marketChartResponse struct {
	// Each entry is a [timestamp_ms, price] pair.
	Prices [][]float64 `json:"prices"`
}

// Prices implements core.PriceSource for crypto symbols.
func (c *CoinGecko) Prices(ctx context.Context, symbol string, class core.AssetClass, periods int) ([]float64, error) {
	if class != core.AssetClassCrypto {
		return nil, fmt.Errorf("coingecko: unsupported asset class %q", class)
	}

	id, ok := c.symbolToID[symbol]
	if !ok {
		id = symbol
	}

	result := &marketChartResponse{}
	retry := &backoff.Backoff{Min: time.Second, Max: 30 * time.Second, Factor: 2, Jitter: true}

	var lastErr error
	for attempt := 0; attempt < c.attempts; attempt++ {
		resp, err := c.client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"vs_currency": "usd",
				"days":        fmt.Sprintf("%d", periods),
				"interval":    "daily",
			}).
			SetResult(result).
			Get(fmt.Sprintf("/coins/%s/market_chart", id))

		if err == nil && resp.IsSuccess() {
			return flattenPrices(result.Prices)
		}

		if err != nil {
			lastErr = err
		} else {
			lastErr = fmt.Errorf("coingecko: %s returned %s", id, resp.Status())
		}

		select {
		case <-time.After(retry.Duration()):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("coingecko: failed to fetch %s after %d attempts: %w", id, c.attempts, lastErr)
}

func flattenPrices(pairs [][]float64) ([]float64, error) {
	if len(pairs) == 0 {
		return nil, core.ErrInsufficientData
	}

	prices := make([]float64, 0, len(pairs))
	for _, pair := range pairs {
		if len(pair) < 2 {
			continue
		}
		prices = append(prices, pair[1])
	}

	if len(prices) == 0 {
		return nil, core.ErrInsufficientData
	}
	return prices, nil
}
