// Package export renders simulation results: CSV ledgers for spreadsheets and
// a terminal run summary.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/raykavin/wheelhouse/pkg/core"
)

// WriteStandardCSV writes the seven-column ledger most spreadsheets want:
// Week, Strategy, Asset, Action, Quantity, Price, Amount.
func WriteStandardCSV(path string, trades []core.TradeRecord) error {
	return writeCSV(path, standardHeader, func(w *csv.Writer) error {
		for _, t := range trades {
			err := w.Write([]string{
				t.Week,
				t.Strategy,
				t.Symbol,
				string(t.Action),
				formatQuantity(t.Quantity),
				formatMoney(t.Price),
				formatMoney(t.CashFlow),
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteDetailedCSV writes every field of every trade, including strike and
// notes. Strikes serialize empty for non-option trades.
func WriteDetailedCSV(path string, trades []core.TradeRecord) error {
	return writeCSV(path, detailedHeader, func(w *csv.Writer) error {
		for _, t := range trades {
			err := w.Write([]string{
				strconv.FormatInt(t.ID, 10),
				t.Week,
				t.Strategy,
				t.Symbol,
				string(t.Action),
				formatQuantity(t.Quantity),
				formatMoney(t.Price),
				formatStrike(t.Strike),
				formatMoney(t.CashFlow),
				t.Notes,
				t.Timestamp.UTC().Format("2006-01-02 15:04:05"),
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteConsolidatedCSV writes one merged multi-strategy ledger with an
// explicit strategy_name column, ready for cross-strategy pivots.
func WriteConsolidatedCSV(path string, trades []core.TradeRecord) error {
	return writeCSV(path, consolidatedHeader, func(w *csv.Writer) error {
		for _, t := range trades {
			err := w.Write([]string{
				t.Strategy,
				t.Week,
				t.Symbol,
				string(t.Action),
				formatQuantity(t.Quantity),
				formatMoney(t.Price),
				formatStrike(t.Strike),
				formatMoney(t.CashFlow),
				t.Notes,
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

var (
	standardHeader = []string{"Week", "Strategy", "Asset", "Action", "Quantity", "Price", "Amount"}

	detailedHeader = []string{
		"ID", "Week", "Strategy", "Asset", "Action",
		"Quantity", "Price", "Strike", "Amount", "Notes", "Timestamp",
	}

	consolidatedHeader = []string{
		"strategy_name", "Week", "Asset", "Action",
		"Quantity", "Price", "Strike", "Amount", "Notes",
	}
)

func writeCSV(path string, header []string, body func(w *csv.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	if err := body(w); err != nil {
		return fmt.Errorf("failed to write rows to %s: %w", path, err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}

	return nil
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatQuantity(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatStrike(v float64) string {
	if v == 0 {
		return ""
	}
	return formatMoney(v)
}
