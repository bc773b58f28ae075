package memory

import (
	"context"
	"sync"

	"strategy-gate/internal/domain"
	"strategy-gate/internal/storage"
)

// ValidationRunStore is an in-memory implementation of storage.ValidationRunStore.
type ValidationRunStore struct {
	mu   sync.RWMutex
	data map[string]*domain.ValidationRun // keyed by run_id
}

// NewValidationRunStore creates a new in-memory validation run store.
func NewValidationRunStore() *ValidationRunStore {
	return &ValidationRunStore{
		data: make(map[string]*domain.ValidationRun),
	}
}

// Insert adds a new run. Returns ErrDuplicateKey if run_id exists.
func (s *ValidationRunStore) Insert(_ context.Context, r *domain.ValidationRun) error {
	if r == nil || r.RunID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[r.RunID]; exists {
		return storage.ErrDuplicateKey
	}

	s.data[r.RunID] = cloneRun(r)
	return nil
}

// GetByID retrieves a run by its ID. Returns ErrNotFound if not exists.
func (s *ValidationRunStore) GetByID(_ context.Context, runID string) (*domain.ValidationRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.data[runID]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return cloneRun(r), nil
}

func cloneRun(r *domain.ValidationRun) *domain.ValidationRun {
	c := *r
	if r.Folds != nil {
		c.Folds = append([]domain.FoldMetrics(nil), r.Folds...)
	}
	if r.Decision != nil {
		d := *r.Decision
		c.Decision = &d
	}
	return &c
}

var _ storage.ValidationRunStore = (*ValidationRunStore)(nil)
