// Package indicator wraps the technical indicators the recommendation engine
// consumes.
package indicator

import "github.com/markcheno/go-talib"

// SMA calculates Simple Moving Average
func SMA(input []float64, period int) []float64 {
	return talib.Sma(input, period)
}

// EMA calculates Exponential Moving Average
func EMA(input []float64, period int) []float64 {
	return talib.Ema(input, period)
}

// RSI calculates the Relative Strength Index
func RSI(input []float64, period int) []float64 {
	return talib.Rsi(input, period)
}

// Momentum calculates the price momentum over the given period
func Momentum(input []float64, period int) []float64 {
	return talib.Mom(input, period)
}

// ROC calculates the rate of change as a percentage
func ROC(input []float64, period int) []float64 {
	return talib.Roc(input, period)
}

// Last returns the final value of an indicator series, or 0 when the series
// is empty.
func Last(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	return series[len(series)-1]
}
