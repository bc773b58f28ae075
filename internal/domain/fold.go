package domain

// Fold is one train/test partition produced by the cross-validator.
// Test is a contiguous ascending block of sample indices, Train is the
// remainder after purge and embargo exclusion (also ascending).
type Fold struct {
	Index int   // 0-based position in split order
	Train []int // training indices
	Test  []int // test indices
}

// FoldMetrics holds out-of-sample risk metrics for one fold.
type FoldMetrics struct {
	Fold        int     `json:"fold"`     // 1-based fold number, follows split order
	Sharpe      float64 `json:"sharpe"`   // mean/std of test returns, optionally annualised
	MaxDrawdown float64 `json:"maxdd"`    // most negative cum/peak-1 on the compounded curve (<= 0)
	Variance    float64 `json:"variance"` // population variance of test returns
	TestSize    int     `json:"test_size"`
	TrainSize   int     `json:"train_size"`
}

// FoldSummary aggregates fold metrics into a single performance estimate.
type FoldSummary struct {
	Folds            int     `json:"folds"`
	MeanSharpe       float64 `json:"mean_sharpe"`
	StdSharpe        float64 `json:"std_sharpe"` // sample stddev across folds (0 when fewer than 2 folds)
	WorstMaxDrawdown float64 `json:"worst_maxdd"`
	MeanVariance     float64 `json:"mean_variance"`
}
