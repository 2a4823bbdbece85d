package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/raykavin/wheelhouse/pkg/core"
)

func sampleTrades() []core.TradeRecord {
	ts := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	return []core.TradeRecord{
		{
			ID: 1, Week: "Week0", Strategy: core.StrategyWheel, Symbol: "SPY",
			Action: core.ActionSellPut, Quantity: 1, Price: 8.55, Strike: 427.50,
			CashFlow: 8.55, Notes: "Sold put with strike $427.50", Timestamp: ts,
		},
		{
			ID: 2, Week: "Week0", Strategy: core.StrategyRotator, Symbol: "BTC",
			Action: core.ActionBuyCrypto, Quantity: 2, Price: 50000,
			CashFlow: -100000, Notes: "Bought 2.0000 BTC @ $50000.00", Timestamp: ts,
		},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriteStandardCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trades.csv")
	require.NoError(t, WriteStandardCSV(path, sampleTrades()))

	rows := readCSV(t, path)
	require.Len(t, rows, 3)
	require.Equal(t, []string{"Week", "Strategy", "Asset", "Action", "Quantity", "Price", "Amount"}, rows[0])
	require.Equal(t, []string{"Week0", "Wheel", "SPY", "SELL_PUT", "1", "8.55", "8.55"}, rows[1])
	require.Equal(t, []string{"Week0", "Rotator", "BTC", "BUY_CRYPTO", "2", "50000.00", "-100000.00"}, rows[2])
}

func TestWriteDetailedCSV_EmptyStrikeForNonOptions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "detailed.csv")
	require.NoError(t, WriteDetailedCSV(path, sampleTrades()))

	rows := readCSV(t, path)
	require.Len(t, rows, 3)

	// Column 7 is the strike: present for the option, empty for the crypto buy.
	require.Equal(t, "427.50", rows[1][7])
	require.Equal(t, "", rows[2][7])
	require.Equal(t, "2024-01-01 00:00:00", rows[1][10])
}

func TestWriteConsolidatedCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "consolidated.csv")
	require.NoError(t, WriteConsolidatedCSV(path, sampleTrades()))

	rows := readCSV(t, path)
	require.Equal(t, "strategy_name", rows[0][0])
	require.Equal(t, "Wheel", rows[1][0])
	require.Equal(t, "Rotator", rows[2][0])
}
