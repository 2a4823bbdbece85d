package recommend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/raykavin/wheelhouse/pkg/feed"
	"github.com/raykavin/wheelhouse/pkg/logger"
	"github.com/raykavin/wheelhouse/pkg/strategy/rotator"
	"github.com/raykavin/wheelhouse/pkg/strategy/wheel"
)

func TestForWheel_SuggestsCallWhileHoldingShares(t *testing.T) {
	table := feed.NewTable()
	table.Set("SPY", []float64{450, 420, 410, 415, 425})

	ctrl := wheel.New(100000, []string{"SPY"}, wheel.Params{}, table, logger.Nop())
	_, err := ctrl.Run(context.Background(), 2)
	require.NoError(t, err)

	// After assignment the position holds shares with no open option yet.
	recs := ForWheel(ctrl, []string{"SPY"}, table)
	require.Len(t, recs, 1)
	require.Equal(t, ActionSellCall, recs[0].Action)
	require.Equal(t, "SPY", recs[0].Symbol)
	require.NotEmpty(t, recs[0].Reason)
}

func TestForWheel_SuggestsPutWhenAllCash(t *testing.T) {
	table := feed.NewTable()
	table.Set("SPY", []float64{450, 460})

	ctrl := wheel.New(10000, []string{"SPY"}, wheel.Params{}, table, logger.Nop())
	_, err := ctrl.Run(context.Background(), 1)
	require.NoError(t, err)

	recs := ForWheel(ctrl, []string{"SPY"}, table)
	require.Len(t, recs, 1)
	require.Equal(t, ActionSellPut, recs[0].Action)
}

func TestForWheel_HoldsWhileOptionOpen(t *testing.T) {
	table := feed.NewTable()
	table.Set("SPY", []float64{450, 460})

	ctrl := wheel.New(100000, []string{"SPY"}, wheel.Params{}, table, logger.Nop())
	_, err := ctrl.Run(context.Background(), 1)
	require.NoError(t, err)

	recs := ForWheel(ctrl, []string{"SPY"}, table)
	require.Len(t, recs, 1)
	require.Equal(t, ActionHold, recs[0].Action)
}

func TestForRotator_RotateAndHold(t *testing.T) {
	coins := []string{"BTC", "ETH"}

	table := feed.NewTable()
	table.Set("BTC", []float64{50000, 50500, 51000, 51500, 52000})
	table.Set("ETH", []float64{3000, 3300, 3600, 3900, 4200})

	ctrl := rotator.New(100000, coins, table, logger.Nop())
	_, err := ctrl.Run(context.Background(), 1)
	require.NoError(t, err)

	// Holding BTC while ETH shows the stronger momentum.
	recs := ForRotator(ctrl, coins, table)
	require.Len(t, recs, 1)
	require.Equal(t, ActionRotate, recs[0].Action)
	require.Equal(t, "ETH", recs[0].Symbol)
}
