package metrics

import "strategy-gate/internal/domain"

// Summarize aggregates fold metrics into the performance estimate used by
// the promotion gate: mean and sample stddev of fold Sharpe ratios, the
// worst drawdown across folds and mean variance.
func Summarize(folds []domain.FoldMetrics) domain.FoldSummary {
	n := len(folds)
	if n == 0 {
		return domain.FoldSummary{}
	}

	sharpes := make([]float64, n)
	variances := make([]float64, n)
	worst := 0.0
	for i, f := range folds {
		sharpes[i] = f.Sharpe
		variances[i] = f.Variance
		if f.MaxDrawdown < worst {
			worst = f.MaxDrawdown
		}
	}

	mean := computeMean(sharpes)
	return domain.FoldSummary{
		Folds:            n,
		MeanSharpe:       mean,
		StdSharpe:        sampleStddev(sharpes, mean),
		WorstMaxDrawdown: worst,
		MeanVariance:     computeMean(variances),
	}
}
