// Package metrics provides Prometheus instrumentation for configuration
// loading and variable resolution.
//
// # Overview
//
// The metrics package provides:
//   - Reload outcomes and latency per source format
//   - Placeholder linking counts by kind (direct, nested, undefined)
//   - Diagnostic counts by kind
//   - Variable update outcomes (set, reset, coercion fallback)
//
// # Basic Usage
//
//	timer := metrics.NewTimer("reload")
//	err := root.Reload()
//	metrics.ObserveReload("yaml", err, timer.Stop())
//
//	metrics.ReferencesLinked.WithLabelValues(metrics.LinkNested).Inc()
//
// All collectors are registered with the default Prometheus registry on
// package initialization.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Link kinds used as the "kind" label of ReferencesLinked.
const (
	LinkDirect    = "direct"
	LinkNested    = "nested"
	LinkUndefined = "undefined"
)

// Diagnostic kinds used as the "kind" label of Diagnostics.
const (
	DiagUndefinedVariable = "undefined_variable"
	DiagNestedPath        = "nested_path_failure"
	DiagUnknownType       = "unknown_type"
	DiagOrphanedReference = "orphaned_reference"
	DiagMalformedEntry    = "malformed_declaration"
)

// Update outcomes used as the "outcome" label of VariableUpdates.
const (
	UpdateSet      = "set"
	UpdateReset    = "reset"
	UpdateFallback = "coercion_fallback"
)

var (
	// Reloads counts configuration reloads.
	// Labels: format (json/yaml), status (success/failure)
	Reloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hablo_config_reloads_total",
			Help: "Total number of configuration reloads",
		},
		[]string{"format", "status"},
	)

	// ReloadDuration tracks how long a reload takes from read to reset.
	ReloadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "hablo_config_reload_duration_seconds",
			Help: "Configuration reload duration in seconds",
			Buckets: []float64{
				0.0001, // 100μs - small in-memory documents
				0.001,  // 1ms
				0.01,   // 10ms
				0.1,    // 100ms - large documents
				1,      // 1s
			},
		},
		[]string{"format"},
	)

	// ReferencesLinked counts placeholders replaced by references.
	// Deduplicated placeholders are counted once per tree position.
	ReferencesLinked = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hablo_references_linked_total",
			Help: "Total number of placeholders linked to references",
		},
		[]string{"kind"},
	)

	// Diagnostics counts warnings emitted during resolution and propagation.
	Diagnostics = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hablo_diagnostics_total",
			Help: "Total number of resolver diagnostics",
		},
		[]string{"kind"},
	)

	// VariableUpdates counts definition value changes.
	VariableUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hablo_variable_updates_total",
			Help: "Total number of variable definition updates",
		},
		[]string{"outcome"},
	)
)

// ObserveReload records the outcome and duration of one reload.
func ObserveReload(format string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	Reloads.WithLabelValues(format, status).Inc()
	ReloadDuration.WithLabelValues(format).Observe(d.Seconds())
}

// Timer provides a simple timing mechanism for measuring operation durations.
// It captures the start time on creation and calculates elapsed time on stop.
type Timer struct {
	start time.Time
	name  string
}

// NewTimer creates a new timer and starts timing immediately.
// The name parameter is for identification in logs.
func NewTimer(name string) *Timer {
	return &Timer{
		start: time.Now(),
		name:  name,
	}
}

// Name returns the name the timer was created with.
func (t *Timer) Name() string {
	return t.name
}

// Stop returns the elapsed duration since creation. It can be called
// more than once.
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}
