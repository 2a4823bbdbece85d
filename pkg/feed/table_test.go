package feed

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/raykavin/wheelhouse/pkg/core"
	"github.com/raykavin/wheelhouse/pkg/logger"
)

type staticSource struct {
	series map[string][]float64
	err    error
}

func (s staticSource) Prices(_ context.Context, symbol string, _ core.AssetClass, _ int) ([]float64, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.series[symbol], nil
}

func TestTable_PriceMissingDataIsZero(t *testing.T) {
	table := NewTable()
	table.Set("SPY", []float64{450, 460})

	require.Equal(t, 460.0, table.Price("SPY", 1))
	require.Zero(t, table.Price("SPY", 5))
	require.Zero(t, table.Price("SPY", -1))
	require.Zero(t, table.Price("QQQ", 0))
}

func TestBuildTable_PadsShortSeries(t *testing.T) {
	source := staticSource{series: map[string][]float64{"SPY": {450, 460}}}
	fallback := NewMockSource(42, true)

	table := BuildTable(context.Background(), source, fallback,
		[]string{"SPY"}, core.AssetClassETF, 5, logger.Nop())

	series := table.Series("SPY")
	require.Len(t, series, 5)
	require.Equal(t, []float64{450, 460, 460, 460, 460}, series)
}

func TestBuildTable_TrimsLongSeries(t *testing.T) {
	source := staticSource{series: map[string][]float64{"SPY": {450, 460, 470, 480}}}
	fallback := NewMockSource(42, true)

	table := BuildTable(context.Background(), source, fallback,
		[]string{"SPY"}, core.AssetClassETF, 2, logger.Nop())

	require.Equal(t, []float64{450, 460}, table.Series("SPY"))
}

func TestBuildTable_FallsBackPerSymbol(t *testing.T) {
	source := staticSource{err: errors.New("boom")}
	fallback := NewMockSource(42, true)

	table := BuildTable(context.Background(), source, fallback,
		[]string{"SPY", "QQQ"}, core.AssetClassETF, 4, logger.Nop())

	// Every symbol still gets a full series from the mock fallback.
	require.Len(t, table.Series("SPY"), 4)
	require.Len(t, table.Series("QQQ"), 4)
	require.Equal(t, 450.0, table.Price("SPY", 0))
	require.Equal(t, 370.0, table.Price("QQQ", 0))
}
