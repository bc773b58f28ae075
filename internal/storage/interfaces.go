package storage

import (
	"context"

	"strategy-gate/internal/domain"
)

// ValidationRunStore provides access to validation_runs storage.
// Runs are stored with their summary; fold rows live in FoldMetricStore.
type ValidationRunStore interface {
	// Insert adds a new run. Returns ErrDuplicateKey if run_id exists.
	Insert(ctx context.Context, r *domain.ValidationRun) error

	// GetByID retrieves a run by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, runID string) (*domain.ValidationRun, error)
}

// FoldMetricStore provides access to fold_metrics storage.
type FoldMetricStore interface {
	// InsertBulk adds all folds of a run atomically.
	// Returns ErrDuplicateKey if (run_id, fold) exists, including within the batch.
	InsertBulk(ctx context.Context, runID string, folds []domain.FoldMetrics) error

	// GetByRunID retrieves all folds of a run, ordered by fold ASC.
	GetByRunID(ctx context.Context, runID string) ([]domain.FoldMetrics, error)
}

// GateDecisionStore provides access to gate_decisions storage.
type GateDecisionStore interface {
	// Insert adds a new decision. Returns ErrDuplicateKey if decision_id exists.
	Insert(ctx context.Context, d *domain.GateDecisionRecord) error

	// GetByRunID retrieves decisions for a run, ordered by created_at ASC.
	GetByRunID(ctx context.Context, runID string) ([]*domain.GateDecisionRecord, error)

	// GetByStrategy retrieves decisions for a strategy, ordered by created_at ASC.
	GetByStrategy(ctx context.Context, strategyID string) ([]*domain.GateDecisionRecord, error)
}

// CalibrationStore provides access to tca_calibrations storage.
type CalibrationStore interface {
	// Insert adds a new calibration. Returns ErrDuplicateKey if calibration_id exists.
	Insert(ctx context.Context, c *domain.Calibration) error

	// GetLatest retrieves the most recent calibration for a venue. Returns ErrNotFound if none.
	GetLatest(ctx context.Context, venue string) (*domain.Calibration, error)
}
