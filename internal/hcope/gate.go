package hcope

import (
	"fmt"
	"math"

	"strategy-gate/internal/domain"
)

// Canonical gate defaults.
const (
	DefaultThreshold  = 0.0
	DefaultConfidence = 0.95
	DefaultDelta      = 1 - DefaultConfidence
)

// Gate decides deployment from an aggregate estimate and its standard
// deviation: lcb = estimate - z(confidence) * std, passed when lcb >= threshold.
func Gate(estimate, std, threshold, confidence float64) (domain.GateDecision, error) {
	if err := validateProbability("confidence", confidence); err != nil {
		return domain.GateDecision{}, err
	}
	if !(std >= 0) || math.IsInf(std, 0) {
		return domain.GateDecision{}, fmt.Errorf("%w: std must be non-negative, got %v", ErrInvalidInput, std)
	}
	if math.IsNaN(estimate) || math.IsInf(estimate, 0) {
		return domain.GateDecision{}, fmt.Errorf("%w: estimate must be finite", ErrInvalidInput)
	}

	lcb := estimate - zScore(confidence)*std
	return domain.GateDecision{
		Passed:               lcb >= threshold,
		LowerConfidenceBound: lcb,
		Threshold:            threshold,
		Estimator:            "aggregate",
		Confidence:           confidence,
	}, nil
}

// Evaluate gates on the per-sample lower bound computed by estimator.
func Evaluate(estimator BoundEstimator, records []domain.RewardRecord, threshold float64) (domain.GateDecision, error) {
	lcb, err := estimator.LowerBound(records)
	if err != nil {
		return domain.GateDecision{}, err
	}

	decision := domain.GateDecision{
		Passed:               lcb >= threshold,
		LowerConfidenceBound: lcb,
		Threshold:            threshold,
		Estimator:            estimator.Name(),
		SampleCount:          len(records),
	}
	if c, ok := estimator.(interface{ Confidence() float64 }); ok {
		decision.Confidence = c.Confidence()
	}
	return decision, nil
}
