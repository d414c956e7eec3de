// Package metrics holds the Prometheus counters for the inspection workflow.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values shared by the counters.
const (
	OutcomeOK        = "ok"
	OutcomeDenied    = "denied"
	OutcomeCancelled = "cancelled"
	OutcomeEmpty     = "empty"
	OutcomeError     = "error"
)

type Metrics struct {
	registry *prometheus.Registry

	EntriesSubmitted   prometheus.Counter
	ValidationFailures *prometheus.CounterVec
	PhotosCaptured     prometheus.Counter
	Captures           *prometheus.CounterVec
	Exports            *prometheus.CounterVec
	InspectorChanges   *prometheus.CounterVec
}

// New registers every counter on a fresh registry, so separate instances
// never collide.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		EntriesSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fieldinspect",
			Name:      "entries_submitted_total",
			Help:      "Inspection entries accepted into the session.",
		}),
		ValidationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fieldinspect",
			Name:      "validation_failures_total",
			Help:      "Rejected submissions and edits by operation.",
		}, []string{"operation"}),
		PhotosCaptured: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fieldinspect",
			Name:      "photos_captured_total",
			Help:      "Photos stored with a geotag sidecar.",
		}),
		Captures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fieldinspect",
			Name:      "captures_total",
			Help:      "Capture attempts by outcome.",
		}, []string{"outcome"}),
		Exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fieldinspect",
			Name:      "exports_total",
			Help:      "Report exports by outcome.",
		}, []string{"outcome"}),
		InspectorChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fieldinspect",
			Name:      "inspector_changes_total",
			Help:      "Inspector roster mutations by action.",
		}, []string{"action"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		m.EntriesSubmitted,
		m.ValidationFailures,
		m.PhotosCaptured,
		m.Captures,
		m.Exports,
		m.InspectorChanges,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
