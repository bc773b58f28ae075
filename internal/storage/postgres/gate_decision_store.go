package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"strategy-gate/internal/domain"
	"strategy-gate/internal/storage"
)

// GateDecisionStore implements storage.GateDecisionStore using PostgreSQL.
type GateDecisionStore struct {
	pool *Pool
}

// NewGateDecisionStore creates a new GateDecisionStore.
func NewGateDecisionStore(pool *Pool) *GateDecisionStore {
	return &GateDecisionStore{pool: pool}
}

// Compile-time interface check.
var _ storage.GateDecisionStore = (*GateDecisionStore)(nil)

// Insert adds a new decision. Returns ErrDuplicateKey if decision_id exists.
func (s *GateDecisionStore) Insert(ctx context.Context, d *domain.GateDecisionRecord) error {
	if d == nil || d.DecisionID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO gate_decisions (
			decision_id, run_id, strategy_id,
			passed, lcb, threshold, estimator, confidence, sample_count,
			created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := s.pool.Exec(ctx, query,
		d.DecisionID, d.RunID, d.StrategyID,
		d.Decision.Passed, d.Decision.LowerConfidenceBound, d.Decision.Threshold,
		d.Decision.Estimator, d.Decision.Confidence, d.Decision.SampleCount,
		d.CreatedAt,
	)
	if err != nil {
		return translate("insert gate decision", err)
	}
	return nil
}

// GetByRunID retrieves decisions for a run, ordered by created_at ASC.
func (s *GateDecisionStore) GetByRunID(ctx context.Context, runID string) ([]*domain.GateDecisionRecord, error) {
	query := `
		SELECT
			decision_id, run_id, strategy_id,
			passed, lcb, threshold, estimator, confidence, sample_count,
			created_at
		FROM gate_decisions
		WHERE run_id = $1
		ORDER BY created_at ASC, decision_id ASC
	`

	rows, err := s.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("query gate decisions by run: %w", err)
	}
	defer rows.Close()

	return scanGateDecisions(rows)
}

// GetByStrategy retrieves decisions for a strategy, ordered by created_at ASC.
func (s *GateDecisionStore) GetByStrategy(ctx context.Context, strategyID string) ([]*domain.GateDecisionRecord, error) {
	query := `
		SELECT
			decision_id, run_id, strategy_id,
			passed, lcb, threshold, estimator, confidence, sample_count,
			created_at
		FROM gate_decisions
		WHERE strategy_id = $1
		ORDER BY created_at ASC, decision_id ASC
	`

	rows, err := s.pool.Query(ctx, query, strategyID)
	if err != nil {
		return nil, fmt.Errorf("query gate decisions by strategy: %w", err)
	}
	defer rows.Close()

	return scanGateDecisions(rows)
}

func scanGateDecisions(rows pgx.Rows) ([]*domain.GateDecisionRecord, error) {
	var result []*domain.GateDecisionRecord
	for rows.Next() {
		var d domain.GateDecisionRecord
		err := rows.Scan(
			&d.DecisionID, &d.RunID, &d.StrategyID,
			&d.Decision.Passed, &d.Decision.LowerConfidenceBound, &d.Decision.Threshold,
			&d.Decision.Estimator, &d.Decision.Confidence, &d.Decision.SampleCount,
			&d.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan gate decision: %w", err)
		}
		result = append(result, &d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate gate decisions: %w", err)
	}

	return result, nil
}
