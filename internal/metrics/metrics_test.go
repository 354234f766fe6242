package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestObserveLLM(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveLLM("gemini-pro", "success", 2*time.Second)
	m.ObserveLLM("gemini-pro", "success", time.Second)
	m.ObserveLLM("gemini-pro", "upstream_error", time.Second)

	require.Equal(t, 2.0, testutil.ToFloat64(m.LLMRequestsTotal.WithLabelValues("gemini-pro", "success")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.LLMRequestsTotal.WithLabelValues("gemini-pro", "upstream_error")))
}

func TestSessionOperationSetsTurns(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.SessionOperation("start_plan", "success", 2)
	require.Equal(t, 2.0, testutil.ToFloat64(m.TranscriptTurns))

	m.SessionOperation("refine_plan", "error", -1)
	require.Equal(t, 2.0, testutil.ToFloat64(m.TranscriptTurns))
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	require.NotPanics(t, func() {
		m.ObserveLLM("x", "success", time.Second)
		m.ObserveStage("draft", time.Second)
		m.PipelineRun("success")
		m.SessionOperation("start_plan", "success", 2)
		m.Action("startTripPlan", "success")
	})
}

func TestOutcome(t *testing.T) {
	require.Equal(t, "success", Outcome(nil))
	require.Equal(t, "error", Outcome(errors.New("boom")))
}
