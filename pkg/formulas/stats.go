// Package formulas provides numeric helpers shared by the analytics engines.
package formulas

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// TradingDaysPerYear is used to annualize daily statistics
const TradingDaysPerYear = 252

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// StdDev calculates the sample standard deviation of a slice of float64 values
func StdDev(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	return stat.StdDev(data, nil)
}

// Median returns the middle value of data, averaging the two central values
// for even-length input. The input slice is not modified.
// Returns false when data is empty.
func Median(data []float64) (float64, bool) {
	if len(data) == 0 {
		return 0, false
	}

	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid], true
	}
	return (sorted[mid-1] + sorted[mid]) / 2, true
}

// CalculateReturns converts a value series to simple period returns
// Returns[i] = (Value[i+1] - Value[i]) / Value[i]; periods with a zero base are skipped.
func CalculateReturns(values []float64) []float64 {
	if len(values) < 2 {
		return []float64{}
	}

	returns := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		if values[i-1] == 0 {
			continue
		}
		returns = append(returns, (values[i]-values[i-1])/values[i-1])
	}

	return returns
}

// AnnualizedVolatility calculates annualized volatility from daily returns
// Formula: StdDev(daily returns) * sqrt(252)
func AnnualizedVolatility(dailyReturns []float64) float64 {
	if len(dailyReturns) < 2 {
		return 0
	}
	return StdDev(dailyReturns) * math.Sqrt(TradingDaysPerYear)
}

// SharpeRatio annualizes (mean return - periodic risk-free rate) / stddev.
// riskFreeRate is annual. Nil for fewer than two returns or zero volatility.
func SharpeRatio(returns []float64, riskFreeRate float64, periodsPerYear int) *float64 {
	if len(returns) < 2 || periodsPerYear <= 0 {
		return nil
	}
	sd := StdDev(returns)
	if sd == 0 {
		return nil
	}
	sharpe := (Mean(returns) - riskFreeRate/float64(periodsPerYear)) / sd * math.Sqrt(float64(periodsPerYear))
	return &sharpe
}

// MaxDrawdown returns the largest peak-to-trough decline of a value series as a
// positive fraction (0.25 = 25% below the running peak). Nil for fewer than two points.
func MaxDrawdown(values []float64) *float64 {
	if len(values) < 2 {
		return nil
	}

	maxDrawdown := 0.0
	peak := values[0]
	for _, v := range values {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			if dd := (peak - v) / peak; dd > maxDrawdown {
				maxDrawdown = dd
			}
		}
	}

	return &maxDrawdown
}

// CAGR calculates the compound annual growth rate between two values over a
// number of years: (end/start)^(1/years) - 1. Nil when inputs are not positive.
func CAGR(start, end, years float64) *float64 {
	if start <= 0 || end <= 0 || years <= 0 {
		return nil
	}
	cagr := math.Pow(end/start, 1/years) - 1
	return &cagr
}
