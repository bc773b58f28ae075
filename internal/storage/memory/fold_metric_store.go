package memory

import (
	"context"
	"sort"
	"sync"

	"strategy-gate/internal/domain"
	"strategy-gate/internal/storage"
)

// FoldMetricStore is an in-memory implementation of storage.FoldMetricStore.
type FoldMetricStore struct {
	mu   sync.RWMutex
	data map[string]map[int]domain.FoldMetrics // run_id -> fold -> metrics
}

// NewFoldMetricStore creates a new in-memory fold metric store.
func NewFoldMetricStore() *FoldMetricStore {
	return &FoldMetricStore{
		data: make(map[string]map[int]domain.FoldMetrics),
	}
}

// InsertBulk adds all folds of a run atomically. Fails entire batch on any duplicate.
func (s *FoldMetricStore) InsertBulk(_ context.Context, runID string, folds []domain.FoldMetrics) error {
	if runID == "" {
		return storage.ErrInvalidInput
	}
	if len(folds) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.data[runID]
	batchKeys := make(map[int]struct{}, len(folds))

	// First pass: check for duplicates (existing + intra-batch)
	for _, f := range folds {
		if f.Fold < 1 {
			return storage.ErrInvalidInput
		}
		if _, exists := existing[f.Fold]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[f.Fold]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[f.Fold] = struct{}{}
	}

	// Second pass: insert all
	if existing == nil {
		existing = make(map[int]domain.FoldMetrics, len(folds))
		s.data[runID] = existing
	}
	for _, f := range folds {
		existing[f.Fold] = f
	}

	return nil
}

// GetByRunID retrieves all folds of a run, ordered by fold ASC.
func (s *FoldMetricStore) GetByRunID(_ context.Context, runID string) ([]domain.FoldMetrics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.FoldMetrics, 0, len(s.data[runID]))
	for _, f := range s.data[runID] {
		result = append(result, f)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Fold < result[j].Fold
	})

	return result, nil
}

var _ storage.FoldMetricStore = (*FoldMetricStore)(nil)
