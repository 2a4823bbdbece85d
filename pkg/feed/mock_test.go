package feed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/raykavin/wheelhouse/pkg/core"
)

func TestMockSource_DeterministicSeries(t *testing.T) {
	source := NewMockSource(42, true)

	prices, err := source.Prices(context.Background(), "SPY", core.AssetClassETF, 8)
	require.NoError(t, err)
	require.Len(t, prices, 8)
	require.Equal(t, 450.0, prices[0])
	require.InDelta(t, 432.0, prices[1], 0.001) // 450 * 0.96

	again, err := source.Prices(context.Background(), "SPY", core.AssetClassETF, 8)
	require.NoError(t, err)
	require.Equal(t, prices, again)
}

func TestMockSource_DeterministicTruncatesLongRequests(t *testing.T) {
	source := NewMockSource(42, true)

	prices, err := source.Prices(context.Background(), "BTC", core.AssetClassCrypto, 20)
	require.NoError(t, err)
	require.Len(t, prices, 8) // table length; padding happens in BuildTable
}

func TestMockSource_UnknownSymbolUsesDefaultBase(t *testing.T) {
	source := NewMockSource(42, true)

	etf, err := source.Prices(context.Background(), "VTI", core.AssetClassETF, 1)
	require.NoError(t, err)
	require.Equal(t, 400.0, etf[0])

	crypto, err := source.Prices(context.Background(), "DOGE", core.AssetClassCrypto, 1)
	require.NoError(t, err)
	require.Equal(t, 1000.0, crypto[0])
}

func TestMockSource_RandomWalkIsSeedStable(t *testing.T) {
	a := NewMockSource(7, false)
	b := NewMockSource(7, false)

	pricesA, err := a.Prices(context.Background(), "BTC", core.AssetClassCrypto, 10)
	require.NoError(t, err)
	pricesB, err := b.Prices(context.Background(), "BTC", core.AssetClassCrypto, 10)
	require.NoError(t, err)

	require.Equal(t, pricesA, pricesB)

	other, err := NewMockSource(8, false).Prices(context.Background(), "BTC", core.AssetClassCrypto, 10)
	require.NoError(t, err)
	require.NotEqual(t, pricesA, other)
}

func TestMockSource_RandomWalkDiffersPerSymbol(t *testing.T) {
	source := NewMockSource(7, false)

	btc, err := source.Prices(context.Background(), "BTC", core.AssetClassCrypto, 10)
	require.NoError(t, err)
	eth, err := source.Prices(context.Background(), "ETH", core.AssetClassCrypto, 10)
	require.NoError(t, err)

	require.NotEqual(t, btc[1:], eth[1:])
}
