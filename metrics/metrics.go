// Package metrics holds the Prometheus collectors of the grain agent.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "grainagent"

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"route", "method", "code"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"route"},
	)

	turnDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turn_decisions_total",
			Help:      "Router decisions per chat turn",
		},
		[]string{"decision"}, // ask_question, recommend
	)

	recommendationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommendations_total",
			Help:      "Total number of blend recommendations",
		},
		[]string{"mode"},
	)

	contractViolationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "contract_violations_total",
			Help:      "Blend contract violations found in model output",
		},
		[]string{"mode"},
	)

	componentDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "component_duration_seconds",
			Help:      "Duration of flow and model runs in seconds",
			Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"component", "name"},
	)

	componentRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "component_runs_total",
			Help:      "Total number of flow and model runs",
		},
		[]string{"component", "name", "status"}, // status: success, error
	)

	allMetrics = []prometheus.Collector{
		httpRequestsTotal,
		httpRequestDuration,
		turnDecisionsTotal,
		recommendationsTotal,
		contractViolationsTotal,
		componentDuration,
		componentRunsTotal,
	}
)

// NewRegistry returns a registry with every grain agent collector plus the
// Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	for _, collector := range allMetrics {
		reg.MustRegister(collector)
	}
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

// Handler serves the registry in the Prometheus exposition format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func RecordHTTPRequest(route, method string, code int, durationSeconds float64) {
	httpRequestsTotal.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	httpRequestDuration.WithLabelValues(route).Observe(durationSeconds)
}

func RecordDecision(decision string) {
	turnDecisionsTotal.WithLabelValues(decision).Inc()
}

func RecordRecommendation(mode string, violations int) {
	recommendationsTotal.WithLabelValues(mode).Inc()
	if violations > 0 {
		contractViolationsTotal.WithLabelValues(mode).Add(float64(violations))
	}
}

func RecordComponentRun(component, name, status string, durationSeconds float64) {
	componentDuration.WithLabelValues(component, name).Observe(durationSeconds)
	componentRunsTotal.WithLabelValues(component, name, status).Inc()
}
