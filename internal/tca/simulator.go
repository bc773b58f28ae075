// Package tca simulates resting limit-order execution and estimates
// implementation shortfall under simple microstructure assumptions.
package tca

import (
	"fmt"
	"math"

	"strategy-gate/internal/domain"
)

// Simulator models fill probability, adverse selection, latency and depth
// for single limit-order legs. Parameters are fixed at construction, so a
// Simulator is safe for concurrent use.
type Simulator struct {
	params domain.TCAParams
}

// New creates a simulator after validating params.
// FillProb must be in [0, 1], LatencyMs >= 0 and Depth > 0.
func New(params domain.TCAParams) (*Simulator, error) {
	if err := validateParams(params); err != nil {
		return nil, err
	}
	return &Simulator{params: params}, nil
}

func validateParams(p domain.TCAParams) error {
	if !(p.FillProb >= 0 && p.FillProb <= 1) {
		return fmt.Errorf("%w: fill_prob must be in [0, 1], got %v", ErrInvalidConfig, p.FillProb)
	}
	if !(p.LatencyMs >= 0) || math.IsInf(p.LatencyMs, 0) {
		return fmt.Errorf("%w: latency_ms must be >= 0, got %v", ErrInvalidConfig, p.LatencyMs)
	}
	if !(p.Depth > 0) || math.IsInf(p.Depth, 0) {
		return fmt.Errorf("%w: depth must be > 0, got %v", ErrInvalidConfig, p.Depth)
	}
	if math.IsNaN(p.AdverseSelection) || math.IsInf(p.AdverseSelection, 0) {
		return fmt.Errorf("%w: adverse_selection must be finite", ErrInvalidConfig)
	}
	return nil
}

// Params returns a copy of the simulator parameters.
func (s *Simulator) Params() domain.TCAParams {
	return s.params
}

// fillRatio is the expected filled fraction of qty:
// fill_prob * min(1, depth/qty) * max(0, 1 - latency_ms/1000).
func (s *Simulator) fillRatio(qty float64) float64 {
	depthRatio := math.Min(1, s.params.Depth/qty)
	latencyFactor := math.Max(0, 1-s.params.LatencyMs/1000)
	return s.params.FillProb * depthRatio * latencyFactor
}

// SimulateLeg estimates filled quantity, execution price and shortfall.
// The execution price never crosses the leg's limit in the adverse direction.
func (s *Simulator) SimulateLeg(leg domain.Leg) (domain.SimulationResult, error) {
	if !(leg.Quantity > 0) || math.IsInf(leg.Quantity, 0) {
		return domain.SimulationResult{}, fmt.Errorf("%w: quantity must be > 0, got %v", ErrInvalidLeg, leg.Quantity)
	}

	filledQty := leg.Quantity * s.fillRatio(leg.Quantity)
	adverseMove := s.params.AdverseSelection * (s.params.LatencyMs / 1000)

	var execPrice, shortfall float64
	switch leg.Side {
	case domain.SideBuy:
		execPrice = math.Min(leg.LimitPrice, leg.ArrivalMid+adverseMove)
		shortfall = (execPrice - leg.ArrivalMid) * filledQty
	case domain.SideSell:
		execPrice = math.Max(leg.LimitPrice, leg.ArrivalMid-adverseMove)
		shortfall = (leg.ArrivalMid - execPrice) * filledQty
	default:
		return domain.SimulationResult{}, fmt.Errorf("%w: unknown side %q", ErrInvalidLeg, leg.Side)
	}

	return domain.SimulationResult{
		FilledQty:               filledQty,
		AvgPrice:                execPrice,
		ImplementationShortfall: shortfall,
	}, nil
}

// SimulateOrder simulates each leg independently, in input order.
// No cross-leg interaction or inventory effects are modelled.
// An invalid leg fails the whole order; no partial results are returned.
func (s *Simulator) SimulateOrder(legs []domain.Leg) ([]domain.SimulationResult, error) {
	results := make([]domain.SimulationResult, len(legs))
	for i, leg := range legs {
		r, err := s.SimulateLeg(leg)
		if err != nil {
			return nil, fmt.Errorf("leg %d: %w", i, err)
		}
		results[i] = r
	}
	return results, nil
}

// OrderSummary totals per-leg simulation results.
type OrderSummary struct {
	Legs                    int     `json:"legs"`
	FilledQty               float64 `json:"filled_qty"`
	ImplementationShortfall float64 `json:"implementation_shortfall"`
}

// Summarize totals filled quantity and shortfall across legs.
func Summarize(results []domain.SimulationResult) OrderSummary {
	sum := OrderSummary{Legs: len(results)}
	for _, r := range results {
		sum.FilledQty += r.FilledQty
		sum.ImplementationShortfall += r.ImplementationShortfall
	}
	return sum
}
