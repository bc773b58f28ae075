package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"strategy-gate/internal/domain"
	"strategy-gate/internal/storage"
)

// ValidationRunStore implements storage.ValidationRunStore using PostgreSQL.
// Fold rows are not stored here; GetByID returns a run with nil Folds.
type ValidationRunStore struct {
	pool *Pool
}

// NewValidationRunStore creates a new ValidationRunStore.
func NewValidationRunStore(pool *Pool) *ValidationRunStore {
	return &ValidationRunStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ValidationRunStore = (*ValidationRunStore)(nil)

// Insert adds a new run. Returns ErrDuplicateKey if run_id exists.
func (s *ValidationRunStore) Insert(ctx context.Context, r *domain.ValidationRun) error {
	if r == nil || r.RunID == "" {
		return storage.ErrInvalidInput
	}

	var decision []byte
	if r.Decision != nil {
		var err error
		decision, err = json.Marshal(r.Decision)
		if err != nil {
			return fmt.Errorf("encode decision: %w", err)
		}
	}

	query := `
		INSERT INTO validation_runs (
			run_id, strategy_id, created_at, sample_count,
			splits, embargo_pct, embargo_mode, periods_per_year,
			fold_count, mean_sharpe, std_sharpe, worst_max_drawdown, mean_variance,
			decision
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7, $8,
			$9, $10, $11, $12, $13,
			$14
		)
	`

	_, err := s.pool.Exec(ctx, query,
		r.RunID, r.StrategyID, r.CreatedAt, r.SampleCount,
		r.Splits, r.EmbargoPct, r.EmbargoMode, r.PeriodsPerYear,
		r.Summary.Folds, r.Summary.MeanSharpe, r.Summary.StdSharpe, r.Summary.WorstMaxDrawdown, r.Summary.MeanVariance,
		decision,
	)
	if err != nil {
		return translate("insert validation run", err)
	}
	return nil
}

// GetByID retrieves a run by its ID. Returns ErrNotFound if not exists.
func (s *ValidationRunStore) GetByID(ctx context.Context, runID string) (*domain.ValidationRun, error) {
	query := `
		SELECT
			run_id, strategy_id, created_at, sample_count,
			splits, embargo_pct, embargo_mode, periods_per_year,
			fold_count, mean_sharpe, std_sharpe, worst_max_drawdown, mean_variance,
			decision
		FROM validation_runs
		WHERE run_id = $1
	`

	var r domain.ValidationRun
	var decision []byte
	err := s.pool.QueryRow(ctx, query, runID).Scan(
		&r.RunID, &r.StrategyID, &r.CreatedAt, &r.SampleCount,
		&r.Splits, &r.EmbargoPct, &r.EmbargoMode, &r.PeriodsPerYear,
		&r.Summary.Folds, &r.Summary.MeanSharpe, &r.Summary.StdSharpe, &r.Summary.WorstMaxDrawdown, &r.Summary.MeanVariance,
		&decision,
	)
	if err != nil {
		return nil, translate("get validation run", err)
	}

	if len(decision) > 0 {
		var d domain.GateDecision
		if err := json.Unmarshal(decision, &d); err != nil {
			return nil, fmt.Errorf("decode decision: %w", err)
		}
		r.Decision = &d
	}

	return &r, nil
}
