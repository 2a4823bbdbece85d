package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/olekukonko/tablewriter"

	"github.com/raykavin/wheelhouse/pkg/metric"
	"github.com/raykavin/wheelhouse/pkg/orchestrator"
)

// WriteSummary renders the run outcome as a terminal table: one row per
// strategy plus a portfolio footer, followed by the portfolio performance
// stats and a histogram of weekly returns.
func WriteSummary(w io.Writer, result *orchestrator.Result, portfolio metric.Report) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Strategy", "Allocated", "Trades", "Final Value", "Return", "Status"})
	table.SetFooterAlignment(tablewriter.ALIGN_RIGHT)

	totalAllocated := 0.0
	totalTrades := 0

	for _, s := range result.Strategies {
		status := "ok"
		if s.Err != nil {
			status = "failed"
		}

		table.Append([]string{
			s.Name,
			fmt.Sprintf("$%.2f", s.Allocated),
			strconv.Itoa(s.TradeCount),
			fmt.Sprintf("$%.2f", s.FinalValue),
			fmt.Sprintf("%+.2f %%", returnPct(s.Allocated, s.FinalValue)),
			status,
		})

		totalAllocated += s.Allocated
		totalTrades += s.TradeCount
	}

	table.SetFooter([]string{
		"TOTAL",
		fmt.Sprintf("$%.2f", totalAllocated),
		strconv.Itoa(totalTrades),
		fmt.Sprintf("$%.2f", result.FinalValue),
		fmt.Sprintf("%+.2f %%", returnPct(totalAllocated, result.FinalValue)),
		string(result.Status),
	})
	table.Render()

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Total return:      %+.2f %%\n", portfolio.TotalReturnPct)
	fmt.Fprintf(w, "Annualized return: %+.2f %%\n", portfolio.AnnualizedReturnPct)
	fmt.Fprintf(w, "Annualized vol:    %.2f %%\n", portfolio.AnnualizedVolPct)
	fmt.Fprintf(w, "Sharpe ratio:      %.2f\n", portfolio.SharpeRatio)
	fmt.Fprintf(w, "Max drawdown:      %.2f %%\n", portfolio.MaxDrawdownPct)
	fmt.Fprintf(w, "Win rate:          %.1f %%\n", portfolio.WinRate*100)

	if len(portfolio.WeeklyReturns) > 1 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "------ WEEKLY RETURNS ------")

		returnsPercent := make([]float64, len(portfolio.WeeklyReturns))
		for i, r := range portfolio.WeeklyReturns {
			returnsPercent[i] = r * 100
		}

		hist := histogram.Hist(10, returnsPercent)
		if err := histogram.Fprint(w, hist, histogram.Linear(10)); err != nil {
			fmt.Fprintf(w, "histogram unavailable: %v\n", err)
		}
	}
}

func returnPct(initial, final float64) float64 {
	if initial <= 0 {
		return 0
	}
	return (final - initial) / initial * 100
}
