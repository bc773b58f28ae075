package memory

import (
	"context"
	"sort"
	"sync"

	"strategy-gate/internal/domain"
	"strategy-gate/internal/storage"
)

// GateDecisionStore is an in-memory implementation of storage.GateDecisionStore.
type GateDecisionStore struct {
	mu   sync.RWMutex
	data map[string]*domain.GateDecisionRecord // keyed by decision_id
}

// NewGateDecisionStore creates a new in-memory gate decision store.
func NewGateDecisionStore() *GateDecisionStore {
	return &GateDecisionStore{
		data: make(map[string]*domain.GateDecisionRecord),
	}
}

// Insert adds a new decision. Returns ErrDuplicateKey if decision_id exists.
func (s *GateDecisionStore) Insert(_ context.Context, d *domain.GateDecisionRecord) error {
	if d == nil || d.DecisionID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[d.DecisionID]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *d
	s.data[d.DecisionID] = &copy
	return nil
}

// GetByRunID retrieves decisions for a run, ordered by created_at ASC.
func (s *GateDecisionStore) GetByRunID(_ context.Context, runID string) ([]*domain.GateDecisionRecord, error) {
	return s.filter(func(d *domain.GateDecisionRecord) bool { return d.RunID == runID }), nil
}

// GetByStrategy retrieves decisions for a strategy, ordered by created_at ASC.
func (s *GateDecisionStore) GetByStrategy(_ context.Context, strategyID string) ([]*domain.GateDecisionRecord, error) {
	return s.filter(func(d *domain.GateDecisionRecord) bool { return d.StrategyID == strategyID }), nil
}

func (s *GateDecisionStore) filter(match func(*domain.GateDecisionRecord) bool) []*domain.GateDecisionRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.GateDecisionRecord
	for _, d := range s.data {
		if match(d) {
			copy := *d
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt != result[j].CreatedAt {
			return result[i].CreatedAt < result[j].CreatedAt
		}
		return result[i].DecisionID < result[j].DecisionID
	})

	return result
}

var _ storage.GateDecisionStore = (*GateDecisionStore)(nil)
