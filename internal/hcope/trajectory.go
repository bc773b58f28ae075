package hcope

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"strategy-gate/internal/domain"
)

// LoadTrajectory reads a JSON array of reward records from path.
func LoadTrajectory(path string) ([]domain.RewardRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open trajectory: %w", err)
	}
	defer f.Close()

	return ReadTrajectory(f)
}

// ReadTrajectory decodes a JSON array of reward records. Unknown fields are rejected.
func ReadTrajectory(r io.Reader) ([]domain.RewardRecord, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var records []domain.RewardRecord
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("%w: decode trajectory: %v", ErrInvalidInput, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: trajectory has no records", ErrInvalidInput)
	}
	return records, nil
}

// EvaluateFile loads a trajectory and gates it with estimator.
func EvaluateFile(path string, estimator BoundEstimator, threshold float64) (domain.GateDecision, error) {
	records, err := LoadTrajectory(path)
	if err != nil {
		return domain.GateDecision{}, err
	}
	return Evaluate(estimator, records, threshold)
}
