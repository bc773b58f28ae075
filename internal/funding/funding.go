// Package funding provides perpetual-swap funding helpers: rate clamping,
// net edge in basis points and funding PnL aggregation.
package funding

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// ErrInvalidWindow is returned for a non-positive aggregation window.
var ErrInvalidWindow = errors.New("funding window must be positive")

// BasisPoints per unit rate.
const BasisPoints = 10_000

// Clamp bounds v to [floor, cap]: max(min(v, cap), floor).
// When floor > cap the floor wins.
func Clamp(v, floor, cap float64) float64 {
	return max(min(v, cap), floor)
}

// NetEdgeBps is the funding rate minus the clamped average premium, in basis points.
func NetEdgeBps(rate, avgPremium, floor, cap float64) float64 {
	return (rate - Clamp(avgPremium, floor, cap)) * BasisPoints
}

// Record is a single applied funding payment.
type Record struct {
	Timestamp time.Time
	Rate      float64 // decimal, 0.001 = 0.1%
	Position  float64 // base units; negative for short
	Price     float64 // mark price at Timestamp
}

// PnL returns position * price * rate.
func (r Record) PnL() float64 {
	return r.Position * r.Price * r.Rate
}

// Window is funding PnL accumulated over [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
	PnL   float64
}

// WindowedPnL aggregates funding PnL over consecutive fixed windows starting
// at the earliest record. Windows with no records are emitted with zero PnL,
// and the last window is always emitted. Input order does not matter.
func WindowedPnL(records []Record, window time.Duration) ([]Window, error) {
	if window <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidWindow, window)
	}
	if len(records) == 0 {
		return nil, nil
	}

	sorted := make([]Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	var out []Window
	cur := Window{Start: sorted[0].Timestamp, End: sorted[0].Timestamp.Add(window)}
	for _, r := range sorted {
		for !r.Timestamp.Before(cur.End) {
			out = append(out, cur)
			cur = Window{Start: cur.End, End: cur.End.Add(window)}
		}
		cur.PnL += r.PnL()
	}
	out = append(out, cur)

	return out, nil
}

// DateLayout is the key format used by DailyRollup.
const DateLayout = "2006-01-02"

// DailyRollup sums funding PnL over one-day windows anchored at the earliest
// record, keyed by the UTC date of each window start.
func DailyRollup(records []Record) map[string]float64 {
	windows, _ := WindowedPnL(records, 24*time.Hour)

	out := make(map[string]float64, len(windows))
	for _, w := range windows {
		out[w.Start.UTC().Format(DateLayout)] += w.PnL
	}
	return out
}
