package reporting

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strategy-gate/internal/domain"
	"strategy-gate/internal/storage"
	"strategy-gate/internal/storage/memory"
)

func testFolds() []domain.FoldMetrics {
	return []domain.FoldMetrics{
		{Fold: 1, Sharpe: 1.23456, MaxDrawdown: -0.05, Variance: 0.0001, TestSize: 4, TrainSize: 5},
		{Fold: 2, Sharpe: -0.5, MaxDrawdown: -0.1234, Variance: 0.0004, TestSize: 3, TrainSize: 5},
	}
}

func TestRenderFoldTable(t *testing.T) {
	got := RenderFoldTable(testFolds())
	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "fold     sharpe     maxdd  variance", lines[0])
	assert.Equal(t, "1        1.2346   -0.0500    0.0001", lines[1])
	assert.Equal(t, "2       -0.5000   -0.1234    0.0004", lines[2])
}

func TestRenderFoldCSV(t *testing.T) {
	got := RenderFoldCSV(testFolds())
	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "fold,sharpe,maxdd,variance,test_size,train_size", lines[0])
	assert.Equal(t, "1,1.234560,-0.050000,0.000100,4,5", lines[1])
}

func TestRenderSimulationCSV(t *testing.T) {
	legs := []domain.Leg{{Side: domain.SideBuy, Quantity: 100, LimitPrice: 101, ArrivalMid: 100}}
	results := []domain.SimulationResult{{FilledQty: 36, AvgPrice: 100.05, ImplementationShortfall: 1.8}}

	got := RenderSimulationCSV(legs, results)
	assert.Contains(t, got, "0,buy,100.000000,101.000000,100.000000,36.000000,100.050000,1.800000\n")
}

func TestGenerator_Generate(t *testing.T) {
	ctx := context.Background()
	runs := memory.NewValidationRunStore()
	folds := memory.NewFoldMetricStore()
	decisions := memory.NewGateDecisionStore()

	decision := domain.GateDecision{Passed: true, LowerConfidenceBound: 0.21, Threshold: 0, Estimator: "aggregate", Confidence: 0.95}
	require.NoError(t, runs.Insert(ctx, &domain.ValidationRun{
		RunID:      "run1",
		StrategyID: "momentum",
		Splits:     2,
		Summary:    domain.FoldSummary{Folds: 2, MeanSharpe: 0.37},
		Decision:   &decision,
	}))
	require.NoError(t, folds.InsertBulk(ctx, "run1", testFolds()))
	require.NoError(t, decisions.Insert(ctx, &domain.GateDecisionRecord{
		DecisionID: "d1", RunID: "run1", StrategyID: "momentum", Decision: decision, CreatedAt: 1,
	}))

	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	report, err := NewGenerator(runs, folds, decisions).WithClock(func() time.Time { return fixed }).Generate(ctx, "run1")
	require.NoError(t, err)
	assert.Len(t, report.Run.Folds, 2)
	assert.Len(t, report.Decisions, 1)

	md := RenderRunMarkdown(report)
	assert.Contains(t, md, "Generated: 2024-05-01T12:00:00Z")
	assert.Contains(t, md, "| Strategy | momentum |")
	assert.Contains(t, md, "| 2 | -0.5000 | -0.1234 | 0.000400 | 3 | 5 |")
	assert.Contains(t, md, "Decision: **PASS**")
	assert.Contains(t, md, "| d1 | aggregate | 0.2100 | 0.0000 | PASS |")

	_, err = NewGenerator(runs, folds, decisions).Generate(ctx, "missing")
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestRenderRunMarkdown_Empty(t *testing.T) {
	md := RenderRunMarkdown(&Report{Run: domain.ValidationRun{RunID: "r"}})
	assert.Contains(t, md, "No fold metrics recorded.")
	assert.Contains(t, md, "No gate decision recorded.")
}
