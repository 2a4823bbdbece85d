package core

import (
	"errors"
	"fmt"
)

var (
	ErrNoStrategiesEnabled = errors.New("no strategies enabled in configuration")
	ErrInvalidPrice        = errors.New("invalid price")
	ErrInsufficientData    = errors.New("insufficient price data")
)

// OrchestrationError marks a fatal orchestration-level failure, as opposed to
// a single strategy failing mid-run (which is tolerated).
type OrchestrationError struct {
	Op  string
	Err error
}

func (e *OrchestrationError) Error() string {
	return fmt.Sprintf("orchestration: %s: %v", e.Op, e.Err)
}

func (e *OrchestrationError) Unwrap() error { return e.Err }
