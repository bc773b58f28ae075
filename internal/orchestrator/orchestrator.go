// Package orchestrator provides the end-to-end validation flow.
// It coordinates: purged k-fold → fold metrics → summary → gate → storage → events
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"strategy-gate/internal/domain"
	"strategy-gate/internal/events"
	"strategy-gate/internal/hcope"
	"strategy-gate/internal/idhash"
	"strategy-gate/internal/metrics"
	"strategy-gate/internal/observability"
	"strategy-gate/internal/storage"
	"strategy-gate/internal/tca"
	"strategy-gate/internal/validation"
)

var (
	// ErrInvalidRequest is returned for a malformed run or calibration request.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrMissingStore is returned by New when a required store is nil.
	ErrMissingStore = errors.New("orchestrator store is required")
)

// Orchestrator coordinates validation runs and TCA calibrations.
type Orchestrator struct {
	// Stores
	runStore         storage.ValidationRunStore
	foldStore        storage.FoldMetricStore
	decisionStore    storage.GateDecisionStore
	calibrationStore storage.CalibrationStore

	publisher events.Publisher
	metrics   *observability.Metrics
	logger    zerolog.Logger

	// Options
	workers     int
	embargoMode validation.EmbargoMode
	now         func() time.Time
}

// Options for creating Orchestrator.
type Options struct {
	// Required stores
	RunStore      storage.ValidationRunStore
	FoldStore     storage.FoldMetricStore
	DecisionStore storage.GateDecisionStore

	// Optional; calibration operations fail with ErrMissingStore without it.
	CalibrationStore storage.CalibrationStore

	Publisher events.Publisher        // nil disables events
	Metrics   *observability.Metrics // nil disables metrics
	Logger    *zerolog.Logger        // nil disables logging

	Workers     int                    // concurrent fold evaluations
	EmbargoMode validation.EmbargoMode // "" means time embargo
	Now         func() time.Time       // nil means time.Now
}

// New creates a new Orchestrator.
func New(opts Options) (*Orchestrator, error) {
	if opts.RunStore == nil || opts.FoldStore == nil || opts.DecisionStore == nil {
		return nil, ErrMissingStore
	}

	mode, err := validation.ParseEmbargoMode(string(opts.EmbargoMode))
	if err != nil {
		return nil, err
	}

	o := &Orchestrator{
		runStore:         opts.RunStore,
		foldStore:        opts.FoldStore,
		decisionStore:    opts.DecisionStore,
		calibrationStore: opts.CalibrationStore,
		publisher:        opts.Publisher,
		metrics:          opts.Metrics,
		logger:           zerolog.Nop(),
		workers:          opts.Workers,
		embargoMode:      mode,
		now:              opts.Now,
	}
	if opts.Logger != nil {
		o.logger = *opts.Logger
	}
	if o.publisher == nil {
		o.publisher = events.NopPublisher{}
	}
	if o.now == nil {
		o.now = time.Now
	}
	return o, nil
}

// RunRequest describes one validation run.
type RunRequest struct {
	StrategyID     string
	Samples        []domain.Sample
	Splits         int
	EmbargoPct     float64
	EmbargoMode    string // "" means the orchestrator's configured mode
	PeriodsPerYear float64
	Threshold      float64
	Confidence     float64 // 0 means hcope.DefaultConfidence
}

// Run executes the full validation flow.
// Phases:
//  1. Split samples with purged k-fold
//  2. Evaluate fold metrics
//  3. Summarize and gate on the standard error of the mean fold Sharpe
//  4. Persist folds, decision, then the run row
//  5. Publish the decision event
//
// Configuration and input errors are returned before anything is persisted.
// The run row is written last: a run that can be read back always has its
// folds and decision.
func (o *Orchestrator) Run(ctx context.Context, req RunRequest) (*domain.ValidationRun, error) {
	started := o.now()
	run, err := o.run(ctx, req)
	elapsed := o.now().Sub(started)

	if err != nil {
		o.metrics.RecordRun(observability.StatusError, 0, len(req.Samples), 0, elapsed)
		o.logger.Error().Err(err).Str("strategy_id", req.StrategyID).Msg("validation run failed")
		return nil, err
	}

	o.metrics.RecordRun(observability.StatusOK, run.Summary.Folds, run.SampleCount, run.Summary.MeanSharpe, elapsed)
	o.metrics.RecordDecision(run.Decision.Estimator, run.Decision.Passed, run.Decision.LowerConfidenceBound)
	o.logger.Info().
		Str("run_id", run.RunID).
		Str("strategy_id", run.StrategyID).
		Int("folds", run.Summary.Folds).
		Float64("mean_sharpe", run.Summary.MeanSharpe).
		Float64("lcb", run.Decision.LowerConfidenceBound).
		Bool("passed", run.Decision.Passed).
		Dur("elapsed", elapsed).
		Msg("validation run complete")
	return run, nil
}

func (o *Orchestrator) run(ctx context.Context, req RunRequest) (*domain.ValidationRun, error) {
	if req.StrategyID == "" {
		return nil, fmt.Errorf("%w: strategy_id is required", ErrInvalidRequest)
	}
	if len(req.Samples) == 0 {
		return nil, fmt.Errorf("%w: samples are required", ErrInvalidRequest)
	}
	confidence := req.Confidence
	if confidence == 0 {
		confidence = hcope.DefaultConfidence
	}

	mode := o.embargoMode
	if req.EmbargoMode != "" {
		var err error
		if mode, err = validation.ParseEmbargoMode(req.EmbargoMode); err != nil {
			return nil, err
		}
	}

	// Phase 1-2: split and evaluate
	splitter, err := validation.NewPurgedKFold(req.Splits, req.EmbargoPct, validation.WithEmbargoMode(mode))
	if err != nil {
		return nil, err
	}
	runner, err := metrics.NewRunner(metrics.RunnerOptions{
		Splitter:       splitter,
		PeriodsPerYear: req.PeriodsPerYear,
		Workers:        o.workers,
	})
	if err != nil {
		return nil, err
	}
	folds, err := runner.Run(ctx, req.Samples)
	if err != nil {
		return nil, fmt.Errorf("walk-forward: %w", err)
	}

	// Phase 3: summarize and gate
	summary := metrics.Summarize(folds)
	stdErr := summary.StdSharpe / math.Sqrt(float64(summary.Folds))
	decision, err := hcope.Gate(summary.MeanSharpe, stdErr, req.Threshold, confidence)
	if err != nil {
		return nil, fmt.Errorf("gate: %w", err)
	}
	decision.SampleCount = summary.Folds

	createdAt := o.now().UnixMilli()
	run := &domain.ValidationRun{
		RunID: idhash.ComputeRunID(idhash.RunKey{
			StrategyID:     req.StrategyID,
			SamplesDigest:  idhash.SamplesDigest(req.Samples),
			Splits:         req.Splits,
			EmbargoPct:     req.EmbargoPct,
			EmbargoMode:    string(mode),
			PeriodsPerYear: req.PeriodsPerYear,
			Threshold:      req.Threshold,
			Confidence:     confidence,
			CreatedAt:      createdAt,
		}),
		StrategyID:     req.StrategyID,
		CreatedAt:      createdAt,
		SampleCount:    len(req.Samples),
		Splits:         req.Splits,
		EmbargoPct:     req.EmbargoPct,
		EmbargoMode:    string(mode),
		PeriodsPerYear: req.PeriodsPerYear,
		Folds:          folds,
		Summary:        summary,
		Decision:       &decision,
	}

	// Phase 4: persist; the run row commits the other two
	if err := o.foldStore.InsertBulk(ctx, run.RunID, folds); err != nil {
		return nil, fmt.Errorf("insert folds: %w", err)
	}
	record := &domain.GateDecisionRecord{
		DecisionID: uuid.NewString(),
		RunID:      run.RunID,
		StrategyID: run.StrategyID,
		Decision:   decision,
		CreatedAt:  createdAt,
	}
	if err := o.decisionStore.Insert(ctx, record); err != nil {
		return nil, fmt.Errorf("insert decision: %w", err)
	}
	if err := o.runStore.Insert(ctx, run); err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}

	// Phase 5: publish; the decision is already durable, so failures are logged only.
	err = o.publisher.PublishDecision(ctx, events.DecisionEvent{
		DecisionID: record.DecisionID,
		RunID:      run.RunID,
		StrategyID: run.StrategyID,
		Decision:   decision,
		Summary:    &run.Summary,
		CreatedAt:  createdAt,
	})
	o.metrics.RecordPublish(err)
	if err != nil {
		o.logger.Warn().Err(err).Str("run_id", run.RunID).Msg("decision event not published")
	}

	return run, nil
}

// Calibrate fits TCA parameters from an execution log and stores them
// as the latest calibration for venue.
func (o *Orchestrator) Calibrate(ctx context.Context, venue, logPath string) (*domain.Calibration, error) {
	if o.calibrationStore == nil {
		return nil, ErrMissingStore
	}
	if venue == "" {
		return nil, fmt.Errorf("%w: venue is required", ErrInvalidRequest)
	}

	res, err := tca.CalibrateFile(logPath)
	if err != nil {
		return nil, err
	}
	o.metrics.RecordCalibration(res.RowsSkipped)

	createdAt := o.now().UnixMilli()
	cal := &domain.Calibration{
		CalibrationID: idhash.ComputeCalibrationID(venue, res.Params, res.RowsUsed, createdAt),
		Venue:         venue,
		Params:        res.Params,
		RowsUsed:      res.RowsUsed,
		RowsSkipped:   res.RowsSkipped,
		CreatedAt:     createdAt,
	}
	if err := o.calibrationStore.Insert(ctx, cal); err != nil {
		return nil, fmt.Errorf("insert calibration: %w", err)
	}

	o.logger.Info().
		Str("venue", venue).
		Str("calibration_id", cal.CalibrationID).
		Int("rows_used", res.RowsUsed).
		Int("rows_skipped", res.RowsSkipped).
		Msg("calibration stored")
	return cal, nil
}

// Simulator builds a simulator from the latest calibration for venue.
// Falls back to fallback params when the venue has no calibration yet.
func (o *Orchestrator) Simulator(ctx context.Context, venue string, fallback domain.TCAParams) (*tca.Simulator, error) {
	params := fallback
	if o.calibrationStore != nil {
		cal, err := o.calibrationStore.GetLatest(ctx, venue)
		switch {
		case err == nil:
			params = cal.Params
		case errors.Is(err, storage.ErrNotFound):
		default:
			return nil, fmt.Errorf("load calibration: %w", err)
		}
	}
	return tca.New(params)
}
