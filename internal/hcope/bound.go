// Package hcope computes high-confidence lower bounds on policy performance
// and gates deployment on them.
package hcope

import (
	"fmt"
	"math"

	"strategy-gate/internal/domain"
)

// Estimator names.
const (
	EstimatorNormal    = "normal"
	EstimatorHoeffding = "hoeffding"
)

// BoundEstimator computes a one-sided lower confidence bound on the
// expected importance-weighted reward.
type BoundEstimator interface {
	Name() string
	LowerBound(records []domain.RewardRecord) (float64, error)
}

// NewEstimator returns the estimator registered under name.
func NewEstimator(name string, delta float64) (BoundEstimator, error) {
	if err := validateProbability("delta", delta); err != nil {
		return nil, err
	}
	switch name {
	case EstimatorNormal, "":
		return NormalBound{Delta: delta}, nil
	case EstimatorHoeffding:
		return HoeffdingBound{Delta: delta}, nil
	default:
		return nil, fmt.Errorf("%w: unknown estimator %q", ErrInvalidConfig, name)
	}
}

// NormalBound is the normal-approximation bound mean - z(1-delta) * s/sqrt(n),
// with s the sample standard deviation of the weighted rewards.
type NormalBound struct {
	Delta float64
}

// Name returns the estimator name.
func (b NormalBound) Name() string { return EstimatorNormal }

// Confidence returns 1 - Delta.
func (b NormalBound) Confidence() float64 { return 1 - b.Delta }

// LowerBound computes the bound over records.
// Records without a weight or policy probabilities count with weight 1.
func (b NormalBound) LowerBound(records []domain.RewardRecord) (float64, error) {
	weighted, err := weightedRewards(records)
	if err != nil {
		return 0, err
	}
	return normalBound(weighted, b.Delta)
}

// HoeffdingBound is the distribution-free bound mean - sqrt(ln(1/delta) / 2n).
// It assumes weighted rewards lie in [0, 1].
type HoeffdingBound struct {
	Delta float64
}

// Name returns the estimator name.
func (b HoeffdingBound) Name() string { return EstimatorHoeffding }

// Confidence returns 1 - Delta.
func (b HoeffdingBound) Confidence() float64 { return 1 - b.Delta }

// LowerBound computes the bound over records.
func (b HoeffdingBound) LowerBound(records []domain.RewardRecord) (float64, error) {
	weighted, err := weightedRewards(records)
	if err != nil {
		return 0, err
	}
	return hoeffdingBound(weighted, b.Delta)
}

// NormalLowerBound is the functional form of NormalBound.
// A nil weights slice means all weights are 1.
func NormalLowerBound(rewards, weights []float64, delta float64) (float64, error) {
	if len(rewards) == 0 {
		return 0, fmt.Errorf("%w: rewards must not be empty", ErrInvalidInput)
	}
	if weights != nil && len(weights) != len(rewards) {
		return 0, fmt.Errorf("%w: rewards and weights length mismatch (%d vs %d)",
			ErrInvalidInput, len(rewards), len(weights))
	}

	weighted := make([]float64, len(rewards))
	for i, r := range rewards {
		w := 1.0
		if weights != nil {
			w = weights[i]
		}
		weighted[i] = r * w
	}
	return normalBound(weighted, delta)
}

// HoeffdingLowerBound is the functional form of HoeffdingBound.
// Each reward is weighted by target[i] / behavior[i].
func HoeffdingLowerBound(rewards, behavior, target []float64, delta float64) (float64, error) {
	if len(rewards) == 0 {
		return 0, fmt.Errorf("%w: rewards must not be empty", ErrInvalidInput)
	}
	if len(behavior) != len(rewards) || len(target) != len(rewards) {
		return 0, fmt.Errorf("%w: rewards, behavior and target length mismatch (%d, %d, %d)",
			ErrInvalidInput, len(rewards), len(behavior), len(target))
	}

	weighted := make([]float64, len(rewards))
	for i, r := range rewards {
		w, err := importanceRatio(behavior[i], target[i])
		if err != nil {
			return 0, fmt.Errorf("record %d: %w", i, err)
		}
		weighted[i] = r * w
	}
	return hoeffdingBound(weighted, delta)
}

func normalBound(weighted []float64, delta float64) (float64, error) {
	if err := validateProbability("delta", delta); err != nil {
		return 0, err
	}
	if len(weighted) == 0 {
		return 0, fmt.Errorf("%w: rewards must not be empty", ErrInvalidInput)
	}

	n := float64(len(weighted))
	mu := mean(weighted)
	if len(weighted) == 1 {
		return mu, nil
	}

	var ss float64
	for _, x := range weighted {
		d := x - mu
		ss += d * d
	}
	sigma := math.Sqrt(ss / (n - 1))
	return mu - zScore(1-delta)*sigma/math.Sqrt(n), nil
}

func hoeffdingBound(weighted []float64, delta float64) (float64, error) {
	if err := validateProbability("delta", delta); err != nil {
		return 0, err
	}
	if len(weighted) == 0 {
		return 0, fmt.Errorf("%w: rewards must not be empty", ErrInvalidInput)
	}

	n := float64(len(weighted))
	return mean(weighted) - math.Sqrt(math.Log(1/delta)/(2*n)), nil
}

// weightedRewards applies each record's importance weight: the explicit
// Weight when set, otherwise TargetProb/BehaviorProb, otherwise 1.
func weightedRewards(records []domain.RewardRecord) ([]float64, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: rewards must not be empty", ErrInvalidInput)
	}

	out := make([]float64, len(records))
	for i, rec := range records {
		if math.IsNaN(rec.Reward) || math.IsInf(rec.Reward, 0) {
			return nil, fmt.Errorf("%w: record %d: reward must be finite", ErrInvalidInput, i)
		}
		w := 1.0
		switch {
		case rec.Weight != nil:
			w = *rec.Weight
			if math.IsNaN(w) || math.IsInf(w, 0) {
				return nil, fmt.Errorf("%w: record %d: weight must be finite", ErrInvalidInput, i)
			}
		case rec.HasProbabilities():
			ratio, err := importanceRatio(*rec.BehaviorProb, *rec.TargetProb)
			if err != nil {
				return nil, fmt.Errorf("record %d: %w", i, err)
			}
			w = ratio
		case rec.BehaviorProb != nil || rec.TargetProb != nil:
			return nil, fmt.Errorf("%w: record %d: behavior_prob and target_prob must be set together", ErrInvalidInput, i)
		}
		out[i] = rec.Reward * w
	}
	return out, nil
}

func importanceRatio(behavior, target float64) (float64, error) {
	if !(behavior > 0 && behavior <= 1) {
		return 0, fmt.Errorf("%w: behavior_prob must be in (0, 1], got %v", ErrInvalidInput, behavior)
	}
	if !(target >= 0 && target <= 1) {
		return 0, fmt.Errorf("%w: target_prob must be in [0, 1], got %v", ErrInvalidInput, target)
	}
	return target / behavior, nil
}

func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
