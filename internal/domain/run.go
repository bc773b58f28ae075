package domain

// ValidationRun is the persisted result of one end-to-end validation:
// walk-forward folds, their summary and the promotion decision.
type ValidationRun struct {
	RunID          string        `json:"run_id"`
	StrategyID     string        `json:"strategy_id"`
	CreatedAt      int64         `json:"created_at"` // Unix ms
	SampleCount    int           `json:"sample_count"`
	Splits         int           `json:"splits"`
	EmbargoPct     float64       `json:"embargo_pct"`
	EmbargoMode    string        `json:"embargo_mode"`
	PeriodsPerYear float64       `json:"periods_per_year"`
	Folds          []FoldMetrics `json:"folds,omitempty"`
	Summary        FoldSummary   `json:"summary"`
	Decision       *GateDecision `json:"decision,omitempty"`
}

// GateDecisionRecord is an audit row for a gate decision.
type GateDecisionRecord struct {
	DecisionID string       `json:"decision_id"`
	RunID      string       `json:"run_id"`
	StrategyID string       `json:"strategy_id"`
	Decision   GateDecision `json:"decision"`
	CreatedAt  int64        `json:"created_at"` // Unix ms
}
