// Package metric computes portfolio performance statistics from a weekly
// value series.
package metric

import (
	"math"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"
)

const (
	weeksPerYear = 52
	// Annual risk-free rate used in the Sharpe ratio.
	riskFreeRate = 0.045
)

// Report is the performance summary for one strategy or the merged portfolio.
type Report struct {
	TotalReturnPct      float64
	AnnualizedReturnPct float64
	WeeklyVolatility    float64
	AnnualizedVolPct    float64
	SharpeRatio         float64
	MaxDrawdownPct      float64
	WinRate             float64 // fraction of positive weeks
	ProfitFactor        float64 // gross gains over gross losses
	AvgWinPct           float64
	AvgLossPct          float64
	WeeklyReturns       []float64
}

// Compute derives a full report from a weekly portfolio value series. It
// needs at least two points; shorter series yield a zero report.
func Compute(values []float64) Report {
	returns := WeeklyReturns(values)
	if len(returns) == 0 {
		return Report{}
	}

	first, last := values[0], values[len(values)-1]
	totalReturn := 0.0
	if first > 0 {
		totalReturn = (last - first) / first
	}

	years := float64(len(returns)) / weeksPerYear
	annualized := 0.0
	if years > 0 && totalReturn > -1 {
		annualized = math.Pow(1+totalReturn, 1/years) - 1
	}

	mean, stdDev := stat.MeanStdDev(returns, nil)
	if len(returns) < 2 {
		stdDev = 0
	}

	sharpe := 0.0
	if stdDev > 0 {
		weeklyRF := riskFreeRate / weeksPerYear
		sharpe = (mean - weeklyRF) / stdDev * math.Sqrt(weeksPerYear)
	}

	wins := lo.Filter(returns, func(r float64, _ int) bool { return r > 0 })
	losses := lo.Filter(returns, func(r float64, _ int) bool { return r < 0 })

	return Report{
		TotalReturnPct:      totalReturn * 100,
		AnnualizedReturnPct: annualized * 100,
		WeeklyVolatility:    stdDev,
		AnnualizedVolPct:    stdDev * math.Sqrt(weeksPerYear) * 100,
		SharpeRatio:         sharpe,
		MaxDrawdownPct:      MaxDrawdown(values) * 100,
		WinRate:             float64(len(wins)) / float64(len(returns)),
		ProfitFactor:        profitFactor(wins, losses),
		AvgWinPct:           mean100(wins),
		AvgLossPct:          mean100(losses),
		WeeklyReturns:       returns,
	}
}

// WeeklyReturns converts a value series to simple period returns. A zero
// prior value contributes a zero return rather than an infinity.
func WeeklyReturns(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}

	returns := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		if values[i-1] <= 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, (values[i]-values[i-1])/values[i-1])
	}
	return returns
}

// MaxDrawdown returns the largest peak-to-trough decline as a positive
// fraction.
func MaxDrawdown(values []float64) float64 {
	peak := math.Inf(-1)
	maxDD := 0.0

	for _, v := range values {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			dd := (peak - v) / peak
			if dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}

func profitFactor(wins, losses []float64) float64 {
	grossLoss := math.Abs(lo.Sum(losses))
	if grossLoss == 0 {
		return 0
	}
	return lo.Sum(wins) / grossLoss
}

func mean100(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil) * 100
}
