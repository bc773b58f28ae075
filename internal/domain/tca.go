package domain

import "strings"

// Side is the direction of a trade leg.
type Side string

// Side constants
const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// ParseSide normalises a side string. Returns false for unknown values.
func ParseSide(s string) (Side, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy":
		return SideBuy, true
	case "sell":
		return SideSell, true
	default:
		return "", false
	}
}

// TCAParams holds microstructure assumptions for the fill simulator.
// Immutable once a simulator is built from them.
type TCAParams struct {
	FillProb         float64 `json:"fill_prob"`         // base fill probability in [0, 1]
	AdverseSelection float64 `json:"adverse_selection"` // mean post-fill mid drift (price units per second of latency)
	LatencyMs        float64 `json:"latency_ms"`        // decision-to-exchange latency, >= 0
	Depth            float64 `json:"depth"`             // quantity resting at the limit price, > 0
}

// DefaultTCAParams are the fallback parameters used when calibration has no usable rows.
var DefaultTCAParams = TCAParams{
	FillProb:         1.0,
	AdverseSelection: 0.0,
	LatencyMs:        0.0,
	Depth:            1.0,
}

// Leg is a single intended resting limit order.
type Leg struct {
	Side       Side    `json:"side"`
	Quantity   float64 `json:"quantity"`    // > 0
	LimitPrice float64 `json:"limit_price"` // worst acceptable price
	ArrivalMid float64 `json:"arrival_mid"` // mid price at decision time (benchmark)
}

// SimulationResult is the simulated outcome for one leg.
type SimulationResult struct {
	FilledQty               float64 `json:"filled_qty"`
	AvgPrice                float64 `json:"avg_price"`
	ImplementationShortfall float64 `json:"implementation_shortfall"`
}

// ExecutionLogRow is one parsed row of a historical execution log.
type ExecutionLogRow struct {
	LatencyMs   float64
	Depth       float64
	ArrivalMid  float64
	PostFillMid float64
	Filled      bool
}

// Calibration is a persisted set of TCA parameters derived from a log.
type Calibration struct {
	CalibrationID string    `json:"calibration_id"`
	Venue         string    `json:"venue"`
	Params        TCAParams `json:"params"`
	RowsUsed      int       `json:"rows_used"`
	RowsSkipped   int       `json:"rows_skipped"`
	CreatedAt     int64     `json:"created_at"` // Unix ms
}
