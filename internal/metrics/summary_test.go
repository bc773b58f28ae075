package metrics

import (
	"math"
	"testing"

	"strategy-gate/internal/domain"
)

func TestSummarize_Empty(t *testing.T) {
	got := Summarize(nil)
	if got != (domain.FoldSummary{}) {
		t.Errorf("expected zero summary, got %+v", got)
	}
}

func TestSummarize_SingleFold(t *testing.T) {
	got := Summarize([]domain.FoldMetrics{{Fold: 1, Sharpe: 1.2, MaxDrawdown: -0.05, Variance: 0.01}})
	if got.Folds != 1 || got.MeanSharpe != 1.2 || got.StdSharpe != 0 {
		t.Errorf("unexpected summary %+v", got)
	}
	if got.WorstMaxDrawdown != -0.05 {
		t.Errorf("WorstMaxDrawdown = %f, want -0.05", got.WorstMaxDrawdown)
	}
}

func TestSummarize_MultipleFolds(t *testing.T) {
	folds := []domain.FoldMetrics{
		{Fold: 1, Sharpe: 1.0, MaxDrawdown: -0.10, Variance: 0.02},
		{Fold: 2, Sharpe: 2.0, MaxDrawdown: -0.30, Variance: 0.04},
		{Fold: 3, Sharpe: 3.0, MaxDrawdown: -0.20, Variance: 0.06},
	}

	got := Summarize(folds)

	if got.Folds != 3 {
		t.Errorf("Folds = %d, want 3", got.Folds)
	}
	if math.Abs(got.MeanSharpe-2.0) > 1e-12 {
		t.Errorf("MeanSharpe = %f, want 2.0", got.MeanSharpe)
	}
	if math.Abs(got.StdSharpe-1.0) > 1e-12 {
		t.Errorf("StdSharpe = %f, want 1.0", got.StdSharpe)
	}
	if got.WorstMaxDrawdown != -0.30 {
		t.Errorf("WorstMaxDrawdown = %f, want -0.30", got.WorstMaxDrawdown)
	}
	if math.Abs(got.MeanVariance-0.04) > 1e-12 {
		t.Errorf("MeanVariance = %f, want 0.04", got.MeanVariance)
	}
}
