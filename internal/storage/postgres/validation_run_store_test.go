package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strategy-gate/internal/domain"
	"strategy-gate/internal/storage"
)

func TestValidationRunStore_InsertAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewValidationRunStore(pool)
	ctx := context.Background()

	run := &domain.ValidationRun{
		RunID:          "run1",
		StrategyID:     "momentum",
		CreatedAt:      1700000000000,
		SampleCount:    120,
		Splits:         5,
		EmbargoPct:     0.01,
		EmbargoMode:    "count",
		PeriodsPerYear: 252,
		Folds:          []domain.FoldMetrics{{Fold: 1}},
		Summary: domain.FoldSummary{
			Folds:            5,
			MeanSharpe:       0.8,
			StdSharpe:        0.3,
			WorstMaxDrawdown: -0.12,
			MeanVariance:     0.0004,
		},
		Decision: &domain.GateDecision{
			Passed:               true,
			LowerConfidenceBound: 0.58,
			Threshold:            0,
			Estimator:            "aggregate",
			Confidence:           0.95,
		},
	}

	require.NoError(t, store.Insert(ctx, run))

	got, err := store.GetByID(ctx, "run1")
	require.NoError(t, err)
	assert.Equal(t, run.StrategyID, got.StrategyID)
	assert.Equal(t, run.Summary, got.Summary)
	assert.Equal(t, run.EmbargoPct, got.EmbargoPct)
	assert.Equal(t, "count", got.EmbargoMode)
	assert.Nil(t, got.Folds)
	require.NotNil(t, got.Decision)
	assert.Equal(t, *run.Decision, *got.Decision)
}

func TestValidationRunStore_WithoutDecision(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewValidationRunStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, &domain.ValidationRun{RunID: "run2", StrategyID: "carry"}))

	got, err := store.GetByID(ctx, "run2")
	require.NoError(t, err)
	assert.Nil(t, got.Decision)
}

func TestValidationRunStore_Errors(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewValidationRunStore(pool)
	ctx := context.Background()

	run := &domain.ValidationRun{RunID: "dup", StrategyID: "s"}
	require.NoError(t, store.Insert(ctx, run))

	err := store.Insert(ctx, run)
	assert.True(t, errors.Is(err, storage.ErrDuplicateKey), "expected ErrDuplicateKey, got %v", err)

	_, err = store.GetByID(ctx, "missing")
	assert.True(t, errors.Is(err, storage.ErrNotFound), "expected ErrNotFound, got %v", err)
}
