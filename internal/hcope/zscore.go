package hcope

import (
	"fmt"
	"math"
)

// zScore returns the standard normal quantile for p in (0, 1).
func zScore(p float64) float64 {
	return math.Sqrt2 * math.Erfinv(2*p-1)
}

func validateProbability(name string, p float64) error {
	if !(p > 0 && p < 1) {
		return fmt.Errorf("%w: %s must be in (0, 1), got %v", ErrInvalidConfig, name, p)
	}
	return nil
}
