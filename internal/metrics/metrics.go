// Package metrics exposes the Prometheus instrumentation surface for
// Nexum: a set of package-level collectors registered once in init(),
// plus the Timer helper used to observe operation durations.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// CapsulesTotal tracks how many capsules are currently in each state.
	CapsulesTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "nexum_capsules_total",
			Help: "Total number of capsules by state",
		},
		[]string{"state"},
	)

	// RestoreTotal counts completed restore orchestrator runs by outcome.
	RestoreTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nexum_restore_total",
			Help: "Total number of restore runs by outcome",
		},
		[]string{"outcome"},
	)

	// RestoreDuration measures end-to-end restore orchestrator latency.
	RestoreDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nexum_restore_duration_seconds",
			Help:    "Time taken to run the restore orchestrator in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// RoutingCommandsTotal counts routing daemon commands by command and outcome kind.
	RoutingCommandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nexum_routing_commands_total",
			Help: "Total number of routing commands handled by command and outcome",
		},
		[]string{"cmd", "outcome"},
	)

	// DispatcherEventsTotal counts dispatcher-processed events by outcome.
	DispatcherEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nexum_dispatcher_events_total",
			Help: "Total number of dispatcher events processed by outcome",
		},
		[]string{"outcome"},
	)

	// CutoverDecisionsTotal counts cutover gate evaluations by capability and verdict.
	CutoverDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nexum_cutover_decisions_total",
			Help: "Total number of cutover gate evaluations by capability and verdict",
		},
		[]string{"capability", "allowed"},
	)
)

func init() {
	prometheus.MustRegister(CapsulesTotal)
	prometheus.MustRegister(RestoreTotal)
	prometheus.MustRegister(RestoreDuration)
	prometheus.MustRegister(RoutingCommandsTotal)
	prometheus.MustRegister(DispatcherEventsTotal)
	prometheus.MustRegister(CutoverDecisionsTotal)
}

// Handler returns the Prometheus HTTP handler for the daemon's /metrics route.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations.
type Timer struct {
	start time.Time
}

// NewTimer starts a timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the elapsed time to histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(time.Since(t.start).Seconds())
}

// ObserveDurationVec records the elapsed time to a histogram vec with labels.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	histogram.WithLabelValues(labels...).Observe(time.Since(t.start).Seconds())
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
