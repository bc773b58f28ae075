package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"strategy-gate/internal/dataset"
	"strategy-gate/internal/domain"
	"strategy-gate/internal/hcope"
	"strategy-gate/internal/metrics"
	"strategy-gate/internal/orchestrator"
	"strategy-gate/internal/reporting"
	"strategy-gate/internal/tca"
	"strategy-gate/internal/validation"
)

// decode reads a JSON body strictly and runs struct validation.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: decode body: %v", errBadRequest, err)
	}
	if err := s.validate.StructCtx(r.Context(), v); err != nil {
		return validationError(err)
	}
	return nil
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	writeError(w, status, err)
}

func valueOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// sampleJSON is the wire form of domain.Sample.
type sampleJSON struct {
	Start  float64 `json:"start"`
	End    float64 `json:"t1"`
	Return float64 `json:"return"`
}

func toSamples(in []sampleJSON) ([]domain.Sample, error) {
	out := make([]domain.Sample, len(in))
	for i, s := range in {
		out[i] = domain.Sample{Start: s.Start, End: s.End, Return: s.Return}
	}
	if err := dataset.CheckOrder(out); err != nil {
		return nil, err
	}
	return out, nil
}

type wfoRequest struct {
	Samples        []sampleJSON `json:"samples" validate:"required,min=1"`
	Splits         int          `json:"splits"`
	EmbargoPct     *float64     `json:"embargo_pct"`
	EmbargoMode    string       `json:"embargo_mode"`
	PeriodsPerYear *float64     `json:"periods_per_year"`
}

type wfoResponse struct {
	Folds   []domain.FoldMetrics `json:"folds"`
	Summary domain.FoldSummary   `json:"summary"`
}

func (s *Server) handleWFO(w http.ResponseWriter, r *http.Request) {
	var req wfoRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	samples, err := toSamples(req.Samples)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	splits := req.Splits
	if splits == 0 {
		splits = s.defaults.Splits
	}
	modeName := req.EmbargoMode
	if modeName == "" {
		modeName = s.defaults.EmbargoMode
	}
	mode, err := validation.ParseEmbargoMode(modeName)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	splitter, err := validation.NewPurgedKFold(splits, valueOr(req.EmbargoPct, s.defaults.EmbargoPct), validation.WithEmbargoMode(mode))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	runner, err := metrics.NewRunner(metrics.RunnerOptions{
		Splitter:       splitter,
		PeriodsPerYear: valueOr(req.PeriodsPerYear, s.defaults.PeriodsPerYear),
		Workers:        s.workers,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	folds, err := runner.Run(r.Context(), samples)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, wfoResponse{Folds: folds, Summary: metrics.Summarize(folds)})
}

type gateRequest struct {
	Estimate   *float64 `json:"estimate" validate:"required"`
	Std        *float64 `json:"std" validate:"required"`
	Threshold  *float64 `json:"threshold"`
	Confidence *float64 `json:"confidence"`
}

func (s *Server) handleGate(w http.ResponseWriter, r *http.Request) {
	var req gateRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	d, err := hcope.Gate(*req.Estimate, *req.Std,
		valueOr(req.Threshold, s.defaults.Threshold),
		valueOr(req.Confidence, s.defaults.Confidence))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.metrics.RecordDecision(d.Estimator, d.Passed, d.LowerConfidenceBound)
	writeJSON(w, http.StatusOK, d)
}

type hcopeRequest struct {
	Records   []domain.RewardRecord `json:"records" validate:"required,min=1"`
	Estimator string                `json:"estimator" validate:"omitempty,oneof=normal hoeffding"`
	Delta     *float64              `json:"delta"`
	Threshold *float64              `json:"threshold"`
}

func (s *Server) handleHCOPE(w http.ResponseWriter, r *http.Request) {
	var req hcopeRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	name := req.Estimator
	if name == "" {
		name = s.defaults.Estimator
	}
	est, err := hcope.NewEstimator(name, valueOr(req.Delta, s.defaults.Delta))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	d, err := hcope.Evaluate(est, req.Records, valueOr(req.Threshold, s.defaults.Threshold))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.metrics.RecordDecision(d.Estimator, d.Passed, d.LowerConfidenceBound)
	writeJSON(w, http.StatusOK, d)
}

type simulateRequest struct {
	Legs   []domain.Leg      `json:"legs" validate:"required,min=1"`
	Params *domain.TCAParams `json:"params"`
	Venue  string            `json:"venue"`
}

type simulateResponse struct {
	Params  domain.TCAParams          `json:"params"`
	Results []domain.SimulationResult `json:"results"`
	Summary tca.OrderSummary          `json:"summary"`
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req simulateRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	sim, err := s.simulator(r, req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	results, err := sim.SimulateOrder(req.Legs)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	for i, res := range results {
		s.metrics.RecordLeg(string(req.Legs[i].Side), res.ImplementationShortfall)
	}

	writeJSON(w, http.StatusOK, simulateResponse{
		Params:  sim.Params(),
		Results: results,
		Summary: tca.Summarize(results),
	})
}

// simulator prefers explicit params, then the venue's latest calibration,
// then the configured defaults.
func (s *Server) simulator(r *http.Request, req simulateRequest) (*tca.Simulator, error) {
	if req.Params != nil {
		return tca.New(*req.Params)
	}
	if s.orch == nil {
		return tca.New(s.defaults.TCAParams)
	}
	venue := req.Venue
	if venue == "" {
		venue = s.defaults.Venue
	}
	return s.orch.Simulator(r.Context(), venue, s.defaults.TCAParams)
}

type runRequest struct {
	StrategyID     string       `json:"strategy_id" validate:"required"`
	Samples        []sampleJSON `json:"samples" validate:"required,min=1"`
	Splits         int          `json:"splits"`
	EmbargoPct     *float64     `json:"embargo_pct"`
	EmbargoMode    string       `json:"embargo_mode"`
	PeriodsPerYear *float64     `json:"periods_per_year"`
	Threshold      *float64     `json:"threshold"`
	Confidence     *float64     `json:"confidence"`
}

func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	samples, err := toSamples(req.Samples)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	splits := req.Splits
	if splits == 0 {
		splits = s.defaults.Splits
	}
	run, err := s.orch.Run(r.Context(), orchestrator.RunRequest{
		StrategyID:     req.StrategyID,
		Samples:        samples,
		Splits:         splits,
		EmbargoPct:     valueOr(req.EmbargoPct, s.defaults.EmbargoPct),
		EmbargoMode:    req.EmbargoMode,
		PeriodsPerYear: valueOr(req.PeriodsPerYear, s.defaults.PeriodsPerYear),
		Threshold:      valueOr(req.Threshold, s.defaults.Threshold),
		Confidence:     valueOr(req.Confidence, s.defaults.Confidence),
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, run)
}

type runReportResponse struct {
	GeneratedAt time.Time                    `json:"generated_at"`
	Run         domain.ValidationRun         `json:"run"`
	Decisions   []*domain.GateDecisionRecord `json:"decisions"`
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	report, err := s.reports.Generate(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if r.URL.Query().Get("format") == "markdown" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(reporting.RenderRunMarkdown(report)))
		return
	}
	writeJSON(w, http.StatusOK, runReportResponse{
		GeneratedAt: report.GeneratedAt,
		Run:         report.Run,
		Decisions:   report.Decisions,
	})
}
