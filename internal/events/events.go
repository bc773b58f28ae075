// Package events publishes gate decisions for downstream audit consumers.
package events

import (
	"context"
	"sync"

	"strategy-gate/internal/domain"
)

// DecisionEvent is the audit payload emitted for every gate decision.
type DecisionEvent struct {
	DecisionID string              `json:"decision_id"`
	RunID      string              `json:"run_id"`
	StrategyID string              `json:"strategy_id"`
	Decision   domain.GateDecision `json:"decision"`
	Summary    *domain.FoldSummary `json:"summary,omitempty"`
	CreatedAt  int64               `json:"created_at"` // Unix ms
}

// Publisher emits decision events.
type Publisher interface {
	PublishDecision(ctx context.Context, e DecisionEvent) error
}

// NopPublisher discards every event.
type NopPublisher struct{}

// PublishDecision does nothing.
func (NopPublisher) PublishDecision(context.Context, DecisionEvent) error { return nil }

// MemoryPublisher records events in memory.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []DecisionEvent
}

// NewMemoryPublisher creates an empty MemoryPublisher.
func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

// PublishDecision appends e.
func (p *MemoryPublisher) PublishDecision(_ context.Context, e DecisionEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

// Events returns a copy of all published events in order.
func (p *MemoryPublisher) Events() []DecisionEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]DecisionEvent(nil), p.events...)
}

var (
	_ Publisher = NopPublisher{}
	_ Publisher = (*MemoryPublisher)(nil)
)
