package postgres

import (
	"context"

	"strategy-gate/internal/domain"
	"strategy-gate/internal/storage"
)

// CalibrationStore implements storage.CalibrationStore using PostgreSQL.
type CalibrationStore struct {
	pool *Pool
}

// NewCalibrationStore creates a new CalibrationStore.
func NewCalibrationStore(pool *Pool) *CalibrationStore {
	return &CalibrationStore{pool: pool}
}

// Compile-time interface check.
var _ storage.CalibrationStore = (*CalibrationStore)(nil)

// Insert adds a new calibration. Returns ErrDuplicateKey if calibration_id exists.
func (s *CalibrationStore) Insert(ctx context.Context, c *domain.Calibration) error {
	if c == nil || c.CalibrationID == "" || c.Venue == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO tca_calibrations (
			calibration_id, venue,
			fill_prob, adverse_selection, latency_ms, depth,
			rows_used, rows_skipped, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := s.pool.Exec(ctx, query,
		c.CalibrationID, c.Venue,
		c.Params.FillProb, c.Params.AdverseSelection, c.Params.LatencyMs, c.Params.Depth,
		c.RowsUsed, c.RowsSkipped, c.CreatedAt,
	)
	if err != nil {
		return translate("insert calibration", err)
	}
	return nil
}

// GetLatest retrieves the most recent calibration for a venue. Returns ErrNotFound if none.
func (s *CalibrationStore) GetLatest(ctx context.Context, venue string) (*domain.Calibration, error) {
	query := `
		SELECT
			calibration_id, venue,
			fill_prob, adverse_selection, latency_ms, depth,
			rows_used, rows_skipped, created_at
		FROM tca_calibrations
		WHERE venue = $1
		ORDER BY created_at DESC, calibration_id DESC
		LIMIT 1
	`

	var c domain.Calibration
	err := s.pool.QueryRow(ctx, query, venue).Scan(
		&c.CalibrationID, &c.Venue,
		&c.Params.FillProb, &c.Params.AdverseSelection, &c.Params.LatencyMs, &c.Params.Depth,
		&c.RowsUsed, &c.RowsSkipped, &c.CreatedAt,
	)
	if err != nil {
		return nil, translate("get latest calibration", err)
	}

	return &c, nil
}
