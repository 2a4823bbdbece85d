package storage

import (
	"strings"
	"time"
)

// Run lifecycle states.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// RunRecord is the persisted metadata of one simulation run.
type RunRecord struct {
	ID           int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	RunID        string     `json:"run_id" gorm:"uniqueIndex"`
	Config       string     `json:"config"`
	Strategies   string     `json:"strategies"` // comma-separated, execution order
	Status       string     `json:"status"`
	TotalTrades  int        `json:"total_trades"`
	FinalCapital float64    `json:"final_capital"`
	Error        string     `json:"error,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
}

func joinStrategies(strategies []string) string {
	return strings.Join(strategies, ",")
}
