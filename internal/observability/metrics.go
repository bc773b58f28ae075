// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultNamespace is used when NewMetrics gets an empty namespace.
const DefaultNamespace = "strategy_gate"

// Metrics holds all Prometheus metrics for the application.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Validation metrics
	RunsTotal       *prometheus.CounterVec
	RunDuration     prometheus.Histogram
	FoldsEvaluated  prometheus.Counter
	LastMeanSharpe  prometheus.Gauge
	SamplesIngested prometheus.Counter

	// Gate metrics
	GateDecisions *prometheus.CounterVec
	LastLCB       *prometheus.GaugeVec

	// TCA metrics
	LegsSimulated     *prometheus.CounterVec
	Calibrations      prometheus.Counter
	CalibrationSkips  prometheus.Counter
	ShortfallObserved prometheus.Histogram

	// Publisher metrics
	EventsPublished *prometheus.CounterVec

	// API metrics
	APIRequests       *prometheus.CounterVec
	APIRequestLatency *prometheus.HistogramVec
}

// NewMetrics creates a Metrics instance registered with reg.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	factory := promauto.With(reg)

	return &Metrics{
		// Validation metrics
		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "validation",
			Name:      "runs_total",
			Help:      "Total number of validation runs by status",
		}, []string{"status"}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "validation",
			Name:      "run_duration_seconds",
			Help:      "Validation run duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		FoldsEvaluated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "validation",
			Name:      "folds_evaluated_total",
			Help:      "Total number of walk-forward folds evaluated",
		}),
		LastMeanSharpe: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "validation",
			Name:      "last_mean_sharpe",
			Help:      "Mean fold Sharpe ratio of the most recent run",
		}),
		SamplesIngested: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "validation",
			Name:      "samples_total",
			Help:      "Total number of samples validated",
		}),

		// Gate metrics
		GateDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gate",
			Name:      "decisions_total",
			Help:      "Total number of gate decisions by estimator and outcome",
		}, []string{"estimator", "outcome"}),
		LastLCB: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "gate",
			Name:      "last_lcb",
			Help:      "Lower confidence bound of the most recent decision by estimator",
		}, []string{"estimator"}),

		// TCA metrics
		LegsSimulated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tca",
			Name:      "legs_simulated_total",
			Help:      "Total number of trade legs simulated by side",
		}, []string{"side"}),
		Calibrations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tca",
			Name:      "calibrations_total",
			Help:      "Total number of calibrations from execution logs",
		}),
		CalibrationSkips: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tca",
			Name:      "calibration_rows_skipped_total",
			Help:      "Total number of execution log rows skipped during calibration",
		}),
		ShortfallObserved: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "tca",
			Name:      "implementation_shortfall",
			Help:      "Simulated implementation shortfall per leg",
			Buckets:   []float64{0, 0.01, 0.1, 1, 10, 100, 1000},
		}),

		// Publisher metrics
		EventsPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "published_total",
			Help:      "Total number of decision events by status",
		}, []string{"status"}),

		// API metrics
		APIRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total number of API requests by route and status code",
		}, []string{"route", "code"}),
		APIRequestLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "API request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// RecordRun records a validation run.
func (m *Metrics) RecordRun(status string, folds, samples int, meanSharpe float64, d time.Duration) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(status).Inc()
	m.RunDuration.Observe(d.Seconds())
	m.FoldsEvaluated.Add(float64(folds))
	m.SamplesIngested.Add(float64(samples))
	if status == StatusOK {
		m.LastMeanSharpe.Set(meanSharpe)
	}
}

// RecordDecision records a gate decision.
func (m *Metrics) RecordDecision(estimator string, passed bool, lcb float64) {
	if m == nil {
		return
	}
	outcome := "fail"
	if passed {
		outcome = "pass"
	}
	m.GateDecisions.WithLabelValues(estimator, outcome).Inc()
	m.LastLCB.WithLabelValues(estimator).Set(lcb)
}

// RecordLeg records a simulated leg.
func (m *Metrics) RecordLeg(side string, shortfall float64) {
	if m == nil {
		return
	}
	m.LegsSimulated.WithLabelValues(side).Inc()
	m.ShortfallObserved.Observe(shortfall)
}

// RecordCalibration records a calibration and its skipped rows.
func (m *Metrics) RecordCalibration(rowsSkipped int) {
	if m == nil {
		return
	}
	m.Calibrations.Inc()
	m.CalibrationSkips.Add(float64(rowsSkipped))
}

// RecordPublish records a decision event publication.
func (m *Metrics) RecordPublish(err error) {
	if m == nil {
		return
	}
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	m.EventsPublished.WithLabelValues(status).Inc()
}

// RecordRequest records an API request.
func (m *Metrics) RecordRequest(route string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.APIRequests.WithLabelValues(route, statusText(code)).Inc()
	m.APIRequestLatency.WithLabelValues(route).Observe(d.Seconds())
}

// Status label values.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

func statusText(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
