package storage

import (
	"fmt"
	"time"

	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/raykavin/wheelhouse/pkg/core"
)

// SQLStorage implements core.TradeStorage and core.RunRecorder on a SQL
// database via GORM.
type SQLStorage struct {
	db *gorm.DB
}

// FromSQL creates a new SQL storage instance and runs migrations.
func FromSQL(dialect gorm.Dialector, opts ...gorm.Option) (*SQLStorage, error) {
	db, err := gorm.Open(dialect, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	err = db.AutoMigrate(&core.TradeRecord{}, &RunRecord{})
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLStorage{db: db}, nil
}

// LogTrade stores a trade in the SQL database.
func (s *SQLStorage) LogTrade(trade *core.TradeRecord) error {
	result := s.db.Create(trade)
	if result.Error != nil {
		return fmt.Errorf("failed to create trade: %w", result.Error)
	}

	return nil
}

// Trades retrieves trades from the SQL database, applying the given filters.
func (s *SQLStorage) Trades(filters ...core.TradeFilter) ([]*core.TradeRecord, error) {
	var trades []*core.TradeRecord

	result := s.db.Order("timestamp").Find(&trades)
	if result.Error != nil && result.Error != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("failed to fetch trades: %w", result.Error)
	}

	// Filters are applied in memory; they are opaque predicates and cannot be
	// translated to WHERE clauses.
	filtered := lo.Filter(trades, func(trade *core.TradeRecord, _ int) bool {
		for _, filter := range filters {
			if !filter(*trade) {
				return false
			}
		}
		return true
	})

	return filtered, nil
}

// StartRun implements core.RunRecorder.
func (s *SQLStorage) StartRun(id string, configJSON string, strategies []string) error {
	record := RunRecord{
		RunID:      id,
		Config:     configJSON,
		Strategies: joinStrategies(strategies),
		Status:     RunStatusRunning,
		StartedAt:  time.Now().UTC(),
	}

	if result := s.db.Create(&record); result.Error != nil {
		return fmt.Errorf("failed to create run record: %w", result.Error)
	}
	return nil
}

// CompleteRun implements core.RunRecorder.
func (s *SQLStorage) CompleteRun(id string, totalTrades int, finalCapital float64, runErr error) error {
	var run RunRecord
	if result := s.db.Where("run_id = ?", id).First(&run); result.Error != nil {
		return fmt.Errorf("run not found: %w", result.Error)
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

	if result := s.db.Save(&run); result.Error != nil {
		return fmt.Errorf("failed to update run record: %w", result.Error)
	}
	return nil
}

// TradesWithQuery allows customized querying using GORM's query builder.
func (s *SQLStorage) TradesWithQuery(query func(*gorm.DB) *gorm.DB) ([]*core.TradeRecord, error) {
	var trades []*core.TradeRecord

	result := query(s.db).Find(&trades)
	if result.Error != nil && result.Error != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("failed to execute query: %w", result.Error)
	}

	return trades, nil
}

// Close closes the database connection.
func (s *SQLStorage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	return sqlDB.Close()
}
