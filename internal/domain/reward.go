package domain

// RewardRecord is one observed reward used for off-policy evaluation.
// Either Weight is set directly, or BehaviorProb/TargetProb are set and the
// importance weight is TargetProb/BehaviorProb.
type RewardRecord struct {
	Reward       float64  `json:"reward"`
	Weight       *float64 `json:"weight,omitempty"`
	BehaviorProb *float64 `json:"behavior_prob,omitempty"` // (0, 1]
	TargetProb   *float64 `json:"target_prob,omitempty"`   // [0, 1]
}

// HasProbabilities reports whether both policy probabilities are present.
func (r RewardRecord) HasProbabilities() bool {
	return r.BehaviorProb != nil && r.TargetProb != nil
}

// GateDecision is the outcome of a lower-confidence-bound gate.
// The bound is always carried alongside the boolean for audit logging.
type GateDecision struct {
	Passed               bool    `json:"passed"`
	LowerConfidenceBound float64 `json:"lcb"`
	Threshold            float64 `json:"threshold"`
	Estimator            string  `json:"estimator,omitempty"`
	Confidence           float64 `json:"confidence,omitempty"`
	SampleCount          int     `json:"sample_count,omitempty"`
}
