// Package storage persists trade ledgers and run metadata. The simulation
// itself never reads trades back; storage exists for exports, reporting and
// post-run inspection.
package storage

import (
	"encoding/json"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/tidwall/buntdb"

	"github.com/raykavin/wheelhouse/pkg/core"
)

const (
	tradeKeyPrefix = "trade:"
	runKeyPrefix   = "run:"
)

// BuntStorage implements core.TradeStorage and core.RunRecorder on BuntDB,
// either in memory or backed by a single append-only file.
type BuntStorage struct {
	lastID int64
	db     *buntdb.DB
}

// FromMemory creates an in-memory storage.
func FromMemory() (*BuntStorage, error) {
	return NewBuntStorage(":memory:")
}

// FromFile creates a file-based storage.
func FromFile(file string) (*BuntStorage, error) {
	return NewBuntStorage(file)
}

// NewBuntStorage opens a BuntDB storage instance.
func NewBuntStorage(sourceFile string) (*BuntStorage, error) {
	db, err := buntdb.Open(sourceFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open buntdb: %w", err)
	}

	err = db.CreateIndex("trade_time_index", tradeKeyPrefix+"*", buntdb.IndexJSON("timestamp"))
	if err != nil {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	return &BuntStorage{db: db}, nil
}

func (b *BuntStorage) getID() int64 {
	return atomic.AddInt64(&b.lastID, 1)
}

// LogTrade stores a trade, assigning it a fresh ID.
func (b *BuntStorage) LogTrade(trade *core.TradeRecord) error {
	return b.db.Update(func(tx *buntdb.Tx) error {
		trade.ID = b.getID()
		content, err := json.Marshal(trade)
		if err != nil {
			return fmt.Errorf("failed to marshal trade: %w", err)
		}

		_, _, err = tx.Set(tradeKeyPrefix+strconv.FormatInt(trade.ID, 10), string(content), nil)
		if err != nil {
			return fmt.Errorf("failed to store trade: %w", err)
		}

		return nil
	})
}

// Trades retrieves trades in timestamp order, applying the given filters.
func (b *BuntStorage) Trades(filters ...core.TradeFilter) ([]*core.TradeRecord, error) {
	trades := make([]*core.TradeRecord, 0)

	err := b.db.View(func(tx *buntdb.Tx) error {
		err := tx.Ascend("trade_time_index", func(_, value string) bool {
			var trade core.TradeRecord
			if err := json.Unmarshal([]byte(value), &trade); err != nil {
				// Skip corrupt entries and keep iterating.
				return true
			}

			for _, filter := range filters {
				if !filter(trade) {
					return true
				}
			}

			trades = append(trades, &trade)
			return true
		})

		if err != nil {
			return fmt.Errorf("failed to iterate over trades: %w", err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return trades, nil
}

// StartRun implements core.RunRecorder.
func (b *BuntStorage) StartRun(id string, configJSON string, strategies []string) error {
	record := RunRecord{
		RunID:      id,
		Config:     configJSON,
		Strategies: joinStrategies(strategies),
		Status:     RunStatusRunning,
		StartedAt:  time.Now().UTC(),
	}
	return b.saveRun(&record)
}

// CompleteRun implements core.RunRecorder.
func (b *BuntStorage) CompleteRun(id string, totalTrades int, finalCapital float64, runErr error) error {
	run, err := b.Run(id)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	run.TotalTrades = totalTrades
	run.FinalCapital = finalCapital
	run.FinishedAt = &now
	run.Status = RunStatusCompleted
	if runErr != nil {
		run.Status = RunStatusFailed
		run.Error = runErr.Error()
	}

	return b.saveRun(run)
}

// Run fetches a single run record by ID.
func (b *BuntStorage) Run(id string) (*RunRecord, error) {
	var run RunRecord

	err := b.db.View(func(tx *buntdb.Tx) error {
		value, err := tx.Get(runKeyPrefix + id)
		if err != nil {
			return fmt.Errorf("run not found: %w", err)
		}
		return json.Unmarshal([]byte(value), &run)
	})

	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (b *BuntStorage) saveRun(run *RunRecord) error {
	return b.db.Update(func(tx *buntdb.Tx) error {
		content, err := json.Marshal(run)
		if err != nil {
			return fmt.Errorf("failed to marshal run: %w", err)
		}

		_, _, err = tx.Set(runKeyPrefix+run.RunID, string(content), nil)
		if err != nil {
			return fmt.Errorf("failed to store run: %w", err)
		}

		return nil
	})
}

// Close closes the database connection.
func (b *BuntStorage) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}
