package hcope

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strategy-gate/internal/domain"
)

func TestGate(t *testing.T) {
	d, err := Gate(1.5, 0.2, 1.0, 0.95)
	require.NoError(t, err)
	assert.InDelta(t, 1.171029, d.LowerConfidenceBound, 1e-5)
	assert.True(t, d.Passed)
	assert.Equal(t, 1.0, d.Threshold)
	assert.Equal(t, 0.95, d.Confidence)
}

func TestGate_DefaultThreshold(t *testing.T) {
	pass, err := Gate(1.5, 0.4, DefaultThreshold, DefaultConfidence)
	require.NoError(t, err)
	assert.True(t, pass.Passed)

	fail, err := Gate(0.8, 0.6, DefaultThreshold, DefaultConfidence)
	require.NoError(t, err)
	assert.False(t, fail.Passed)
	assert.Less(t, fail.LowerConfidenceBound, 0.0)
}

func TestGate_EqualToThresholdPasses(t *testing.T) {
	d, err := Gate(0.7, 0, 0.7, 0.95)
	require.NoError(t, err)
	assert.Equal(t, 0.7, d.LowerConfidenceBound)
	assert.True(t, d.Passed)
}

func TestGate_Errors(t *testing.T) {
	_, err := Gate(1, -0.1, 0, 0.95)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = Gate(1, math.NaN(), 0, 0.95)
	assert.ErrorIs(t, err, ErrInvalidInput)

	for _, c := range []float64{0, 1, 1.2, -0.5} {
		_, err = Gate(1, 0.1, 0, c)
		assert.ErrorIs(t, err, ErrInvalidConfig, "confidence=%v", c)
	}
}

func TestEvaluate(t *testing.T) {
	records := []domain.RewardRecord{{Reward: 1}, {Reward: 0}, {Reward: 1}, {Reward: 1}, {Reward: 0}}

	d, err := Evaluate(NormalBound{Delta: 0.05}, records, 0.1)
	require.NoError(t, err)
	assert.True(t, d.Passed)
	assert.Equal(t, EstimatorNormal, d.Estimator)
	assert.Equal(t, 5, d.SampleCount)
	assert.InDelta(t, 0.95, d.Confidence, 1e-12)

	d, err = Evaluate(NormalBound{Delta: 0.05}, records, 0.6)
	require.NoError(t, err)
	assert.False(t, d.Passed)
}

func TestEvaluateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trajectory.json")
	content := `[
  {"reward": 1.0, "behavior_prob": 0.5, "target_prob": 0.5},
  {"reward": 1.0, "behavior_prob": 0.5, "target_prob": 0.5},
  {"reward": 0.0, "behavior_prob": 0.5, "target_prob": 0.5},
  {"reward": 1.0, "behavior_prob": 0.5, "target_prob": 0.5},
  {"reward": 1.0, "weight": 1.0},
  {"reward": 1.0}
]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	d, err := EvaluateFile(path, NormalBound{Delta: 0.05}, 0.1)
	require.NoError(t, err)
	assert.Greater(t, d.LowerConfidenceBound, 0.1)
	assert.True(t, d.Passed)
	assert.Equal(t, 6, d.SampleCount)
}

func TestReadTrajectory_Errors(t *testing.T) {
	_, err := ReadTrajectory(strings.NewReader(`[]`))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = ReadTrajectory(strings.NewReader(`{"reward": 1}`))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = ReadTrajectory(strings.NewReader(`[{"reward": 1, "prob": 0.3}]`))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = LoadTrajectory(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestRenderMarkdown(t *testing.T) {
	md := RenderMarkdown(domain.GateDecision{
		Passed:               false,
		LowerConfidenceBound: -0.25,
		Threshold:            0,
		Estimator:            EstimatorHoeffding,
		Confidence:           0.95,
		SampleCount:          12,
	})
	assert.Contains(t, md, "## Decision: NO-DEPLOY")
	assert.Contains(t, md, "| Estimator | hoeffding |")
	assert.Contains(t, md, "| Samples | 12 |")
	assert.Contains(t, md, "| Lower confidence bound | -0.250000 |")
	assert.Contains(t, md, "is below threshold")
}
