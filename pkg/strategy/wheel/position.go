// Package wheel implements the options wheel strategy: selling cash-secured
// puts until assignment, then selling covered calls until exercise.
package wheel

// State is the wheel cycle state of a single symbol.
type State string

const (
	StateCashSecuredPut State = "csp"
	StateHoldingShares  State = "holding"

	// StateCoveredCall exists for completeness but is never assigned: an open
	// call is tracked as a non-zero Strike while the state remains
	// StateHoldingShares. The expiry look-ahead timing depends on this
	// two-state structure.
	StateCoveredCall State = "cc"
)

// SharesPerContract is the share count behind one option contract.
const SharesPerContract = 100

// Position tracks the wheel cycle for one symbol. It is owned exclusively by
// a single Controller; symbols never interact.
type Position struct {
	Symbol           string
	State            State
	Shares           int     // 0 or 100, one round lot per symbol
	CostBasis        float64 // per-share price paid; meaningless when Shares == 0
	Strike           float64 // zero when no option is open
	Expiration       int     // week index the open option expires, sale week + 1
	PremiumCollected float64 // running premium total for the current cycle
}

func newPosition(symbol string) *Position {
	return &Position{
		Symbol: symbol,
		State:  StateCashSecuredPut,
	}
}

// HasOpenOption reports whether an unresolved put or call exists.
func (p *Position) HasOpenOption() bool {
	return p.Strike != 0
}

// clearOption resolves the open option without touching share state.
func (p *Position) clearOption() {
	p.Strike = 0
	p.Expiration = 0
}
