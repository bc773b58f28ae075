package metrics

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"strategy-gate/internal/domain"
)

// ErrNoSplitter is returned when a Runner is built without a splitter.
var ErrNoSplitter = errors.New("walk-forward runner requires a splitter")

// Splitter produces train/test folds for ordered samples.
type Splitter interface {
	SplitSamples(samples []domain.Sample) ([]domain.Fold, error)
}

// RunnerOptions configures a walk-forward Runner.
type RunnerOptions struct {
	Splitter       Splitter
	PeriodsPerYear float64 // Sharpe annualisation factor; <= 0 disables scaling
	Workers        int     // concurrent fold evaluations; <= 1 runs sequentially
}

// Runner evaluates per-fold metrics over the test block of each fold.
type Runner struct {
	splitter       Splitter
	periodsPerYear float64
	workers        int
}

// NewRunner creates a walk-forward runner.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	if opts.Splitter == nil {
		return nil, ErrNoSplitter
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	return &Runner{
		splitter:       opts.Splitter,
		periodsPerYear: opts.PeriodsPerYear,
		workers:        workers,
	}, nil
}

// Run splits samples and returns one FoldMetrics per fold, numbered from 1
// in split order. Folds are never reordered or deduplicated, regardless of
// the worker count.
func (r *Runner) Run(ctx context.Context, samples []domain.Sample) ([]domain.FoldMetrics, error) {
	folds, err := r.splitter.SplitSamples(samples)
	if err != nil {
		return nil, err
	}

	returns := make([]float64, len(samples))
	for i, s := range samples {
		returns[i] = s.Return
	}

	results := make([]domain.FoldMetrics, len(folds))

	if r.workers == 1 {
		for i, f := range folds {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			results[i] = EvaluateFold(i+1, f, returns, r.periodsPerYear)
		}
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, f := range folds {
		i, f := i, f
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = EvaluateFold(i+1, f, returns, r.periodsPerYear)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("evaluate folds: %w", err)
	}
	return results, nil
}

// EvaluateFold computes metrics over the test returns of a single fold.
func EvaluateFold(number int, f domain.Fold, returns []float64, periodsPerYear float64) domain.FoldMetrics {
	test := make([]float64, len(f.Test))
	for j, idx := range f.Test {
		test[j] = returns[idx]
	}

	return domain.FoldMetrics{
		Fold:        number,
		Sharpe:      Sharpe(test, periodsPerYear),
		MaxDrawdown: MaxDrawdown(test),
		Variance:    Variance(test),
		TestSize:    len(f.Test),
		TrainSize:   len(f.Train),
	}
}
