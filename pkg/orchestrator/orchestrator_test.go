package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/raykavin/wheelhouse/pkg/config"
	"github.com/raykavin/wheelhouse/pkg/core"
	"github.com/raykavin/wheelhouse/pkg/logger"
	"github.com/raykavin/wheelhouse/pkg/storage"
)

var simStart = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

type failingSource struct{}

func (failingSource) Prices(context.Context, string, core.AssetClass, int) ([]float64, error) {
	return nil, errors.New("upstream unavailable")
}

func TestOrchestrator_NoStrategiesEnabled(t *testing.T) {
	cfg := config.Default()
	cfg.Strategies[config.StrategyWheel] = false
	cfg.Strategies[config.StrategyRotator] = false

	orch := New(cfg, logger.Nop())

	_, err := orch.ExecuteSimulation(context.Background(), 4)
	require.Error(t, err)
	require.ErrorIs(t, err, core.ErrNoStrategiesEnabled)

	var orchErr *core.OrchestrationError
	require.ErrorAs(t, err, &orchErr)
}

func TestOrchestrator_SingleStrategyGetsFullCapital(t *testing.T) {
	cfg := config.Default()
	cfg.Strategies[config.StrategyRotator] = false

	orch := New(cfg, logger.Nop(), WithSimulationStart(simStart))

	result, err := orch.ExecuteSimulation(context.Background(), 4)
	require.NoError(t, err)
	require.Len(t, result.Strategies, 1)
	require.Equal(t, cfg.InitialCapital, result.Strategies[0].Allocated)
	require.Equal(t, StatusOK, result.Status)
}

func TestOrchestrator_SplitsCapitalByAllocation(t *testing.T) {
	cfg := config.Default()
	cfg.Allocation[config.StrategyWheel] = 0.7
	cfg.Allocation[config.StrategyRotator] = 0.3

	orch := New(cfg, logger.Nop(), WithSimulationStart(simStart))

	result, err := orch.ExecuteSimulation(context.Background(), 4)
	require.NoError(t, err)
	require.Len(t, result.Strategies, 2)
	require.InDelta(t, 70000, result.Strategies[0].Allocated, 0.001)
	require.InDelta(t, 30000, result.Strategies[1].Allocated, 0.001)
}

func TestOrchestrator_DeterministicRunsAreIdentical(t *testing.T) {
	run := func() []core.TradeRecord {
		cfg := config.Default()
		orch := New(cfg, logger.Nop(), WithSimulationStart(simStart))

		result, err := orch.ExecuteSimulation(context.Background(), 8)
		require.NoError(t, err)
		return result.Trades
	}

	require.Equal(t, run(), run())
}

func TestOrchestrator_TradesSortedChronologically(t *testing.T) {
	cfg := config.Default()
	orch := New(cfg, logger.Nop(), WithSimulationStart(simStart))

	result, err := orch.ExecuteSimulation(context.Background(), 8)
	require.NoError(t, err)
	require.NotEmpty(t, result.Trades)

	for i := 1; i < len(result.Trades); i++ {
		prev, cur := result.Trades[i-1], result.Trades[i]
		require.LessOrEqual(t, core.WeekIndex(prev.Week), core.WeekIndex(cur.Week))
		if core.WeekIndex(prev.Week) == core.WeekIndex(cur.Week) {
			require.False(t, cur.Timestamp.Before(prev.Timestamp))
		}
	}
}

func TestOrchestrator_FetchFailureFallsBackToMock(t *testing.T) {
	cfg := config.Default()
	orch := New(cfg, logger.Nop(),
		WithSimulationStart(simStart),
		WithPriceSource(failingSource{}),
	)

	result, err := orch.ExecuteSimulation(context.Background(), 4)
	require.NoError(t, err)
	require.Equal(t, StatusOK, result.Status)
	require.NotEmpty(t, result.Trades)
}

func TestOrchestrator_PersistsTradesAndRunMetadata(t *testing.T) {
	store, err := storage.FromMemory()
	require.NoError(t, err)
	defer store.Close()

	cfg := config.Default()
	orch := New(cfg, logger.Nop(),
		WithSimulationStart(simStart),
		WithTradeStorage(store),
		WithRunRecorder(store),
	)

	result, err := orch.ExecuteSimulation(context.Background(), 4)
	require.NoError(t, err)

	stored, err := store.Trades()
	require.NoError(t, err)
	require.Len(t, stored, len(result.Trades))

	run, err := store.Run(result.RunID)
	require.NoError(t, err)
	require.Equal(t, storage.RunStatusCompleted, run.Status)
	require.Equal(t, len(result.Trades), run.TotalTrades)
}

func TestOrchestrator_PortfolioHistoryStartsAtInitialCapital(t *testing.T) {
	cfg := config.Default()
	orch := New(cfg, logger.Nop(), WithSimulationStart(simStart))

	result, err := orch.ExecuteSimulation(context.Background(), 4)
	require.NoError(t, err)

	require.Len(t, result.PortfolioHistory, 5)
	require.Equal(t, cfg.InitialCapital, result.PortfolioHistory[0])
}

func TestOrchestrator_CheckSourcesMockAlwaysPasses(t *testing.T) {
	cfg := config.Default()
	orch := New(cfg, logger.Nop())

	checks := orch.CheckSources(context.Background())
	require.Len(t, checks, 2)
	require.NoError(t, checks["etf"])
	require.NoError(t, checks["crypto"])
}
