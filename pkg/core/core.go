package core

import "context"

// AssetClass selects the market a symbol trades on.
type AssetClass string

const (
	AssetClassETF    AssetClass = "etf"
	AssetClassCrypto AssetClass = "crypto"
)

// PriceSource returns an ordered price series (oldest first) for a symbol.
// Implementations may fail; callers are expected to fall back to mock data
// per symbol rather than abort a whole run.
type PriceSource interface {
	Prices(ctx context.Context, symbol string, class AssetClass, periods int) ([]float64, error)
}

// Strategy is the contract every strategy controller implements. Run drives
// the controller's own weekly loop and returns the full ordered trade list.
type Strategy interface {
	Name() string
	Run(ctx context.Context, weeks int) ([]TradeRecord, error)
	CurrentPortfolioValue() float64
	InitialCapital() float64
}

// TradeStorage is the trade log sink. Purely append-and-query; the
// simulation core never reads its own trades back from storage.
type TradeStorage interface {
	LogTrade(trade *TradeRecord) error
	Trades(filters ...TradeFilter) ([]*TradeRecord, error)
	Close() error
}

// TradeFilter reports whether a trade should be included in a query result.
type TradeFilter func(trade TradeRecord) bool

// WithStrategyIn filters trades by strategy tag.
func WithStrategyIn(strategies ...string) TradeFilter {
	return func(trade TradeRecord) bool {
		for _, s := range strategies {
			if trade.Strategy == s {
				return true
			}
		}
		return false
	}
}

// WithSymbol filters trades by symbol.
func WithSymbol(symbol string) TradeFilter {
	return func(trade TradeRecord) bool {
		return trade.Symbol == symbol
	}
}

// WithAction filters trades by action kind.
func WithAction(action Action) TradeFilter {
	return func(trade TradeRecord) bool {
		return trade.Action == action
	}
}

// RunRecorder records run metadata around a simulation. Calls are
// fire-and-forget: a recorder failure must never fail the simulation.
type RunRecorder interface {
	StartRun(id string, configJSON string, strategies []string) error
	CompleteRun(id string, totalTrades int, finalCapital float64, runErr error) error
}

// Notifier pushes human-readable simulation events to an external channel.
type Notifier interface {
	Notify(message string)
	OnError(err error)
}
