package storage

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/raykavin/wheelhouse/pkg/core"
)

func openMemory(t *testing.T) *BuntStorage {
	t.Helper()

	store, err := FromMemory()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestBuntStorage_LogAndQueryTrades(t *testing.T) {
	store := openMemory(t)
	ts := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	put := &core.TradeRecord{
		Week: "Week0", Strategy: core.StrategyWheel, Symbol: "SPY",
		Action: core.ActionSellPut, CashFlow: 8.55, Timestamp: ts,
	}
	buy := &core.TradeRecord{
		Week: "Week0", Strategy: core.StrategyRotator, Symbol: "BTC",
		Action: core.ActionBuyCrypto, CashFlow: -100000, Timestamp: ts.Add(time.Second),
	}

	require.NoError(t, store.LogTrade(put))
	require.NoError(t, store.LogTrade(buy))
	require.Equal(t, int64(1), put.ID)
	require.Equal(t, int64(2), buy.ID)

	all, err := store.Trades()
	require.NoError(t, err)
	require.Len(t, all, 2)

	wheelOnly, err := store.Trades(core.WithStrategyIn(core.StrategyWheel))
	require.NoError(t, err)
	require.Len(t, wheelOnly, 1)
	require.Equal(t, "SPY", wheelOnly[0].Symbol)

	none, err := store.Trades(core.WithSymbol("ETH"))
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestBuntStorage_RunLifecycle(t *testing.T) {
	store := openMemory(t)

	require.NoError(t, store.StartRun("sim_test", `{"weeks":4}`, []string{"Wheel", "Rotator"}))

	run, err := store.Run("sim_test")
	require.NoError(t, err)
	require.Equal(t, RunStatusRunning, run.Status)
	require.Equal(t, "Wheel,Rotator", run.Strategies)
	require.Nil(t, run.FinishedAt)

	require.NoError(t, store.CompleteRun("sim_test", 12, 104500.00, nil))

	run, err = store.Run("sim_test")
	require.NoError(t, err)
	require.Equal(t, RunStatusCompleted, run.Status)
	require.Equal(t, 12, run.TotalTrades)
	require.InDelta(t, 104500.00, run.FinalCapital, 0.001)
	require.NotNil(t, run.FinishedAt)
}

func TestBuntStorage_FailedRunKeepsError(t *testing.T) {
	store := openMemory(t)

	require.NoError(t, store.StartRun("sim_fail", "{}", []string{"Wheel"}))
	require.NoError(t, store.CompleteRun("sim_fail", 0, 0, errors.New("boom")))

	run, err := store.Run("sim_fail")
	require.NoError(t, err)
	require.Equal(t, RunStatusFailed, run.Status)
	require.Equal(t, "boom", run.Error)
}

func TestBuntStorage_UnknownRun(t *testing.T) {
	store := openMemory(t)

	_, err := store.Run("missing")
	require.Error(t, err)
}
