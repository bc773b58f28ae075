package reporting

import (
	"context"
	"fmt"
	"time"

	"strategy-gate/internal/storage"
)

// Generator assembles run reports from storage.
type Generator struct {
	runs      storage.ValidationRunStore
	folds     storage.FoldMetricStore
	decisions storage.GateDecisionStore
	now       func() time.Time
}

// NewGenerator creates a new report generator.
func NewGenerator(
	runs storage.ValidationRunStore,
	folds storage.FoldMetricStore,
	decisions storage.GateDecisionStore,
) *Generator {
	return &Generator{
		runs:      runs,
		folds:     folds,
		decisions: decisions,
		now:       time.Now,
	}
}

// WithClock overrides the report timestamp source.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate loads a run, its folds and its decisions.
// Returns storage.ErrNotFound if the run does not exist.
func (g *Generator) Generate(ctx context.Context, runID string) (*Report, error) {
	run, err := g.runs.GetByID(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("load run %s: %w", runID, err)
	}

	folds, err := g.folds.GetByRunID(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("load folds: %w", err)
	}
	run.Folds = folds

	decisions, err := g.decisions.GetByRunID(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("load decisions: %w", err)
	}

	return &Report{
		GeneratedAt: g.now().UTC(),
		Run:         *run,
		Decisions:   decisions,
	}, nil
}
