// ABOUTME: Prometheus instrumentation for script executions and event streaming
// ABOUTME: Collectors register on the default registry; Handler serves the scrape endpoint

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ExecutionsTotal counts finished executions by terminal status ("ok" or "error").
	ExecutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "script_gateway_executions_total",
		Help: "Completed script executions by terminal status.",
	}, []string{"status"})

	// ActiveExecutions tracks executions with a live worker goroutine.
	ActiveExecutions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "script_gateway_active_executions",
		Help: "Script executions currently running.",
	})

	// EventsEmitted counts stream events by type (stdout, stderr, result, error, exit).
	EventsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "script_gateway_events_total",
		Help: "Execution stream events emitted by type.",
	}, []string{"type"})

	// ExecutionDuration observes wall-clock script runtime.
	ExecutionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "script_gateway_execution_duration_seconds",
		Help:    "Wall-clock duration of script executions.",
		Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
	})
)

// Handler returns the Prometheus scrape handler for the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
