// Package metrics provides Prometheus metrics for trip-refiner
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for trip-refiner
type Metrics struct {
	// Upstream LLM calls
	LLMRequestsTotal   *prometheus.CounterVec
	LLMRequestDuration *prometheus.HistogramVec

	// Prompt pipeline
	PipelineRunsTotal     *prometheus.CounterVec
	PipelineStageDuration *prometheus.HistogramVec

	// Planning session
	SessionOperationsTotal *prometheus.CounterVec
	TranscriptTurns        prometheus.Gauge

	// HTTP boundary
	ActionsTotal *prometheus.CounterVec
}

var (
	defaultMetrics *Metrics
	once           sync.Once
)

// Default returns the process-wide metrics registered on the default registry.
func Default() *Metrics {
	once.Do(func() {
		defaultMetrics = New(prometheus.DefaultRegisterer)
	})
	return defaultMetrics
}

// New creates metrics registered on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		LLMRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trip_refiner_llm_requests_total",
				Help: "Total number of generateContent calls by model and outcome",
			},
			[]string{"model", "outcome"},
		),
		LLMRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "trip_refiner_llm_request_duration_seconds",
				Help:    "Duration of generateContent calls in seconds",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 80},
			},
			[]string{"model"},
		),
		PipelineRunsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trip_refiner_pipeline_runs_total",
				Help: "Total number of prompt pipeline runs by outcome",
			},
			[]string{"outcome"},
		),
		PipelineStageDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "trip_refiner_pipeline_stage_duration_seconds",
				Help:    "Duration of prompt pipeline stages in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
		SessionOperationsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trip_refiner_session_operations_total",
				Help: "Total number of planning session operations by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		TranscriptTurns: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "trip_refiner_transcript_turns",
				Help: "Number of turns in the persisted planning transcript",
			},
		),
		ActionsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trip_refiner_actions_total",
				Help: "Total number of presentation boundary actions by action and outcome",
			},
			[]string{"action", "outcome"},
		),
	}
}

// ObserveLLM records one upstream call.
func (m *Metrics) ObserveLLM(model, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.LLMRequestsTotal.WithLabelValues(model, outcome).Inc()
	m.LLMRequestDuration.WithLabelValues(model).Observe(d.Seconds())
}

func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.PipelineStageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (m *Metrics) PipelineRun(outcome string) {
	if m == nil {
		return
	}
	m.PipelineRunsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SessionOperation(op, outcome string, turns int) {
	if m == nil {
		return
	}
	m.SessionOperationsTotal.WithLabelValues(op, outcome).Inc()
	if turns >= 0 {
		m.TranscriptTurns.Set(float64(turns))
	}
}

func (m *Metrics) Action(action, outcome string) {
	if m == nil {
		return
	}
	m.ActionsTotal.WithLabelValues(action, outcome).Inc()
}

// Outcome labels an error as "success" or "error".
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
