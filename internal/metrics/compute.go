// Package metrics computes out-of-sample risk metrics for walk-forward folds.
package metrics

import "math"

// Sharpe returns mean(returns) / population_stddev(returns), scaled by
// sqrt(periodsPerYear) when periodsPerYear > 0.
// Returns 0 for an empty fold or zero variance.
func Sharpe(returns []float64, periodsPerYear float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	mean := computeMean(returns)
	std := math.Sqrt(populationVariance(returns, mean))
	if std == 0 {
		return 0
	}
	sr := mean / std
	if periodsPerYear > 0 {
		sr *= math.Sqrt(periodsPerYear)
	}
	return sr
}

// MaxDrawdown compounds returns from 1.0, tracks the running peak and returns
// the most negative cum/peak - 1. Returns 0 for an empty fold.
// Returns must be in chronological order.
func MaxDrawdown(returns []float64) float64 {
	cum := 1.0
	peak := 1.0
	maxDD := 0.0

	for _, r := range returns {
		cum *= 1 + r
		if cum > peak {
			peak = cum
		}
		dd := cum/peak - 1
		if dd < maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

// Variance returns the population variance of returns (0 when empty).
func Variance(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	return populationVariance(returns, computeMean(returns))
}

// computeMean calculates the arithmetic mean.
func computeMean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// populationVariance uses the n denominator.
func populationVariance(xs []float64, mean float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sumSq := 0.0
	for _, x := range xs {
		d := x - mean
		sumSq += d * d
	}
	return sumSq / float64(len(xs))
}

// sampleStddev uses the n-1 denominator. Needs at least 2 values.
func sampleStddev(xs []float64, mean float64) float64 {
	n := len(xs)
	if n < 2 {
		return 0
	}
	sumSq := 0.0
	for _, x := range xs {
		d := x - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(n-1))
}
