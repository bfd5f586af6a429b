// Package metrics holds the Prometheus counters of the chat loop.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeAnswer = "answer"
	OutcomeChart  = "chart"
	OutcomeError  = "error"

	RoundFunctions = "functions"
	RoundSummary   = "summary"

	StatusOK    = "ok"
	StatusError = "error"
)

type Metrics struct {
	TurnsTotal         *prometheus.CounterVec // labels: outcome
	ModelRequestsTotal *prometheus.CounterVec // labels: round
	FunctionCallsTotal *prometheus.CounterVec // labels: function, status
	FunctionDuration   *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// New registers all counters on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		TurnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockchat_turns_total",
			Help: "Chat turns by outcome (answer, chart, error)",
		}, []string{"outcome"}),
		ModelRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockchat_model_requests_total",
			Help: "Chat completion requests by round (functions, summary)",
		}, []string{"round"}),
		FunctionCallsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockchat_function_calls_total",
			Help: "Dispatched catalog functions by name and status",
		}, []string{"function", "status"}),
		FunctionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stockchat_function_duration_seconds",
			Help:    "Time spent fetching data and computing a catalog function",
			Buckets: prometheus.DefBuckets,
		}, []string{"function"}),
		gatherer: reg,
	}

	reg.MustRegister(
		m.TurnsTotal,
		m.ModelRequestsTotal,
		m.FunctionCallsTotal,
		m.FunctionDuration,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
