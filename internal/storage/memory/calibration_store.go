package memory

import (
	"context"
	"sync"

	"strategy-gate/internal/domain"
	"strategy-gate/internal/storage"
)

// CalibrationStore is an in-memory implementation of storage.CalibrationStore.
type CalibrationStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Calibration // keyed by calibration_id
}

// NewCalibrationStore creates a new in-memory calibration store.
func NewCalibrationStore() *CalibrationStore {
	return &CalibrationStore{
		data: make(map[string]*domain.Calibration),
	}
}

// Insert adds a new calibration. Returns ErrDuplicateKey if calibration_id exists.
func (s *CalibrationStore) Insert(_ context.Context, c *domain.Calibration) error {
	if c == nil || c.CalibrationID == "" || c.Venue == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[c.CalibrationID]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *c
	s.data[c.CalibrationID] = &copy
	return nil
}

// GetLatest retrieves the most recent calibration for a venue.
// Ties on created_at resolve to the greatest calibration_id.
func (s *CalibrationStore) GetLatest(_ context.Context, venue string) (*domain.Calibration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *domain.Calibration
	for _, c := range s.data {
		if c.Venue != venue {
			continue
		}
		if latest == nil || c.CreatedAt > latest.CreatedAt ||
			(c.CreatedAt == latest.CreatedAt && c.CalibrationID > latest.CalibrationID) {
			latest = c
		}
	}
	if latest == nil {
		return nil, storage.ErrNotFound
	}

	copy := *latest
	return &copy, nil
}

var _ storage.CalibrationStore = (*CalibrationStore)(nil)
