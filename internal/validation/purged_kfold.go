// Package validation provides leakage-safe cross-validation for samples whose
// labels span a time interval.
package validation

import (
	"fmt"

	"strategy-gate/internal/domain"
)

// EmbargoMode selects how the embargo window after each test block is sized.
type EmbargoMode string

const (
	// EmbargoTime sizes the embargo as embargo_pct of the total time range
	// (starts[n-1] - starts[0]) and excludes samples overlapping
	// [test_end, test_end + window]. This is the default.
	EmbargoTime EmbargoMode = "time"

	// EmbargoCount excludes int(embargo_pct * n) observations on each side
	// of the test block, by index.
	EmbargoCount EmbargoMode = "count"
)

// ParseEmbargoMode converts a config string into an EmbargoMode.
func ParseEmbargoMode(s string) (EmbargoMode, error) {
	switch EmbargoMode(s) {
	case "", EmbargoTime:
		return EmbargoTime, nil
	case EmbargoCount:
		return EmbargoCount, nil
	default:
		return "", fmt.Errorf("%w: unknown embargo mode %q", ErrInvalidConfig, s)
	}
}

// PurgedKFold partitions ascending samples into contiguous test blocks and
// purges overlapping training samples.
// It holds only configuration and is safe for concurrent use.
type PurgedKFold struct {
	nSplits    int
	embargoPct float64
	mode       EmbargoMode
}

// Option configures a PurgedKFold.
type Option func(*PurgedKFold)

// WithEmbargoMode overrides the embargo sizing rule.
func WithEmbargoMode(mode EmbargoMode) Option {
	return func(p *PurgedKFold) {
		p.mode = mode
	}
}

// NewPurgedKFold creates a splitter.
// Returns ErrInvalidConfig if nSplits < 2 or embargoPct is outside [0, 0.5).
func NewPurgedKFold(nSplits int, embargoPct float64, opts ...Option) (*PurgedKFold, error) {
	if nSplits < 2 {
		return nil, fmt.Errorf("%w: n_splits must be at least 2, got %d", ErrInvalidConfig, nSplits)
	}
	if !(embargoPct >= 0 && embargoPct < 0.5) {
		return nil, fmt.Errorf("%w: embargo_pct must be in [0, 0.5), got %v", ErrInvalidConfig, embargoPct)
	}

	p := &PurgedKFold{
		nSplits:    nSplits,
		embargoPct: embargoPct,
		mode:       EmbargoTime,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.mode != EmbargoTime && p.mode != EmbargoCount {
		return nil, fmt.Errorf("%w: unknown embargo mode %q", ErrInvalidConfig, p.mode)
	}
	return p, nil
}

// NSplits returns the configured number of folds.
func (p *PurgedKFold) NSplits() int { return p.nSplits }

// EmbargoPct returns the configured embargo fraction.
func (p *PurgedKFold) EmbargoPct() float64 { return p.embargoPct }

// SplitSamples is Split over the Start/End fields of samples.
func (p *PurgedKFold) SplitSamples(samples []domain.Sample) ([]domain.Fold, error) {
	starts, ends, _ := domain.SampleColumns(samples)
	return p.Split(starts, ends)
}

// Split returns exactly NSplits folds ordered by test block start.
// starts[i] and ends[i] describe the label interval of sample i; both
// sequences must be ordered by starts ASC (not checked).
//
// For each fold the training set excludes the test block, every sample whose
// interval overlaps [test_start, test_end], and every sample inside the
// embargo window.
func (p *PurgedKFold) Split(starts, ends []float64) ([]domain.Fold, error) {
	n := len(starts)
	if n != len(ends) {
		return nil, fmt.Errorf("%w: starts and ends lengths differ (%d != %d)", ErrInvalidInput, n, len(ends))
	}
	if p.nSplits > n {
		return nil, fmt.Errorf("%w: n_splits %d exceeds sample count %d", ErrInvalidInput, p.nSplits, n)
	}

	blocks := testBlocks(n, p.nSplits)
	folds := make([]domain.Fold, 0, len(blocks))

	for k, b := range blocks {
		testStart := starts[b.first]
		testEnd := ends[b.last]

		isExcluded := p.embargoRule(starts, b, testEnd)

		test := make([]int, 0, b.last-b.first+1)
		for i := b.first; i <= b.last; i++ {
			test = append(test, i)
		}

		train := make([]int, 0, n-len(test))
		for i := 0; i < n; i++ {
			if i >= b.first && i <= b.last {
				continue
			}
			// Purge: label interval overlaps the test interval
			if overlaps(starts[i], ends[i], testStart, testEnd) {
				continue
			}
			if isExcluded(i, starts[i], ends[i]) {
				continue
			}
			train = append(train, i)
		}

		folds = append(folds, domain.Fold{Index: k, Train: train, Test: test})
	}

	return folds, nil
}

// embargoRule returns the per-sample embargo predicate for one test block.
func (p *PurgedKFold) embargoRule(starts []float64, b block, testEnd float64) func(idx int, start, end float64) bool {
	if p.embargoPct == 0 {
		return func(int, float64, float64) bool { return false }
	}

	switch p.mode {
	case EmbargoCount:
		width := int(p.embargoPct * float64(len(starts)))
		if width == 0 {
			return func(int, float64, float64) bool { return false }
		}
		lo, hi := b.first-width, b.last+width
		return func(idx int, _, _ float64) bool {
			return idx >= lo && idx <= hi
		}
	default:
		totalTime := starts[len(starts)-1] - starts[0]
		embargoStart := testEnd
		embargoEnd := testEnd + p.embargoPct*totalTime
		return func(_ int, start, end float64) bool {
			return overlaps(start, end, embargoStart, embargoEnd)
		}
	}
}

// block is an inclusive index range.
type block struct {
	first, last int
}

// testBlocks splits [0, n) into k contiguous blocks whose sizes differ by at
// most one; the earliest blocks absorb the remainder. Requires 1 <= k <= n.
func testBlocks(n, k int) []block {
	base := n / k
	extra := n % k

	blocks := make([]block, k)
	current := 0
	for i := 0; i < k; i++ {
		size := base
		if i < extra {
			size++
		}
		blocks[i] = block{first: current, last: current + size - 1}
		current += size
	}
	return blocks
}

// overlaps reports whether closed intervals [s1, e1] and [s2, e2] intersect.
func overlaps(s1, e1, s2, e2 float64) bool {
	return s1 <= e2 && e1 >= s2
}
