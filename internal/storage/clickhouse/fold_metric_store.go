package clickhouse

import (
	"context"
	"fmt"

	"strategy-gate/internal/domain"
	"strategy-gate/internal/storage"
)

// FoldMetricStore implements storage.FoldMetricStore using ClickHouse.
type FoldMetricStore struct {
	conn *Conn
}

// NewFoldMetricStore creates a new FoldMetricStore.
func NewFoldMetricStore(conn *Conn) *FoldMetricStore {
	return &FoldMetricStore{conn: conn}
}

// Compile-time interface check.
var _ storage.FoldMetricStore = (*FoldMetricStore)(nil)

// InsertBulk adds all folds of a run. Fails entire batch on any duplicate.
// MergeTree does not enforce uniqueness, so duplicates are checked before insert.
func (s *FoldMetricStore) InsertBulk(ctx context.Context, runID string, folds []domain.FoldMetrics) error {
	if runID == "" {
		return storage.ErrInvalidInput
	}
	if len(folds) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	seen := make(map[int]struct{}, len(folds))
	for _, f := range folds {
		if f.Fold < 1 {
			return storage.ErrInvalidInput
		}
		if _, exists := seen[f.Fold]; exists {
			return storage.ErrDuplicateKey
		}
		seen[f.Fold] = struct{}{}
	}

	// Check for duplicates against existing rows
	exists, err := s.runExists(ctx, runID)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return storage.ErrDuplicateKey
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO fold_metrics (
			run_id, fold, sharpe, max_drawdown, variance, test_size, train_size
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, f := range folds {
		err = batch.Append(
			runID, uint32(f.Fold), f.Sharpe, f.MaxDrawdown, f.Variance,
			uint32(f.TestSize), uint32(f.TrainSize),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByRunID retrieves all folds of a run, ordered by fold ASC.
func (s *FoldMetricStore) GetByRunID(ctx context.Context, runID string) ([]domain.FoldMetrics, error) {
	query := `
		SELECT fold, sharpe, max_drawdown, variance, test_size, train_size
		FROM fold_metrics
		WHERE run_id = ?
		ORDER BY fold ASC
	`

	rows, err := s.conn.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("query fold metrics: %w", err)
	}
	defer rows.Close()

	var result []domain.FoldMetrics
	for rows.Next() {
		var (
			fold, testSize, trainSize uint32
			f                         domain.FoldMetrics
		)
		if err := rows.Scan(&fold, &f.Sharpe, &f.MaxDrawdown, &f.Variance, &testSize, &trainSize); err != nil {
			return nil, fmt.Errorf("scan fold metrics: %w", err)
		}
		f.Fold = int(fold)
		f.TestSize = int(testSize)
		f.TrainSize = int(trainSize)
		result = append(result, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fold metrics: %w", err)
	}

	return result, nil
}

func (s *FoldMetricStore) runExists(ctx context.Context, runID string) (bool, error) {
	var count uint64
	err := s.conn.QueryRow(ctx, `SELECT count() FROM fold_metrics WHERE run_id = ?`, runID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
