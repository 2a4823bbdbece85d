package metric

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWeeklyReturns(t *testing.T) {
	returns := WeeklyReturns([]float64{100, 110, 99})
	require.Len(t, returns, 2)
	require.InDelta(t, 0.10, returns[0], 0.0001)
	require.InDelta(t, -0.10, returns[1], 0.0001)

	require.Nil(t, WeeklyReturns([]float64{100}))
	require.Nil(t, WeeklyReturns(nil))
}

func TestWeeklyReturns_ZeroPriorValue(t *testing.T) {
	returns := WeeklyReturns([]float64{0, 100, 110})
	require.Zero(t, returns[0])
	require.InDelta(t, 0.10, returns[1], 0.0001)
}

func TestMaxDrawdown(t *testing.T) {
	require.InDelta(t, 0.25, MaxDrawdown([]float64{100, 120, 90, 100}), 0.0001)
	require.Zero(t, MaxDrawdown([]float64{100, 110, 120}))
	require.Zero(t, MaxDrawdown(nil))
}

func TestCompute(t *testing.T) {
	report := Compute([]float64{100000, 104000, 102000, 108000})

	require.InDelta(t, 8.0, report.TotalReturnPct, 0.0001)
	require.InDelta(t, 2.0/3.0, report.WinRate, 0.0001)
	require.Greater(t, report.ProfitFactor, 1.0)
	require.Greater(t, report.AvgWinPct, 0.0)
	require.Less(t, report.AvgLossPct, 0.0)
	require.Len(t, report.WeeklyReturns, 3)
	require.InDelta(t, 1.9230, report.MaxDrawdownPct, 0.001) // 2000 off the 104000 peak
}

func TestCompute_ShortSeriesIsZero(t *testing.T) {
	require.Zero(t, Compute([]float64{100000}))
	require.Zero(t, Compute(nil))
}
