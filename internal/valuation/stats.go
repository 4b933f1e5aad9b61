package valuation

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// SharpeRatio computes the annualized Sharpe ratio of a sequence of periodic
// returns (risk-free rate assumed zero). periodsPerYear scales the result
// (52 for weekly series). Returns 0 when there are fewer than two samples or
// the returns have no variance.
func SharpeRatio(returns []float64, periodsPerYear float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	mean := stat.Mean(returns, nil)
	std := stat.StdDev(returns, nil)
	if std == 0 {
		return 0
	}
	return mean / std * math.Sqrt(periodsPerYear)
}

// MaxDrawdown returns the largest peak-to-trough decline of a value series,
// as a positive percentage. An empty or monotonically rising series yields 0.
func MaxDrawdown(values []float64) float64 {
	var peak, maxDD float64
	for _, v := range values {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			if dd := (peak - v) / peak * 100; dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}

// WinRate returns the share of positive returns, as a percentage.
func WinRate(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	wins := 0
	for _, r := range returns {
		if r > 0 {
			wins++
		}
	}
	return float64(wins) / float64(len(returns)) * 100
}

// PeriodicReturns converts a value series into period-over-period returns.
// A zero value terminates the conversion early since later returns would be
// undefined.
func PeriodicReturns(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		if values[i-1] == 0 {
			break
		}
		returns = append(returns, values[i]/values[i-1]-1)
	}
	return returns
}
