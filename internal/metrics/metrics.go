// Package metrics provides a small, backend-agnostic abstraction for
// recording operational metrics from the analysis pipeline.
//
// The package is intentionally minimal and opinionated:
//
//   - It exposes a narrow interface (Backend) focused on counters and timing
//     data.
//   - It provides a global, pluggable backend that defaults to a no-op
//     implementation, so metrics are always safe to call even when no real
//     backend is configured.
//   - It mirrors the storage abstraction pattern used elsewhere in the
//     project (storage.Repository), so the rest of the codebase depends only
//     on this interface while concrete metric systems stay isolated in
//     subpackages.
//
// The primary use case is instrumentation of the pipeline phases (read,
// parse, load, query) without coupling the core logic to a specific metrics
// system such as Prometheus.
package metrics

import "time"

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
// It is intentionally generic so we can plug in Prometheus, Datadog, etc.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordPhase is a convenience for the common pattern:
// measure latency + success/failure per pipeline phase.
func RecordPhase(job, phase string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	lbls := Labels{
		"job":    job,
		"phase":  phase,
		"status": status,
	}

	backend.IncCounter("logtop_phase_total", 1, lbls)
	backend.ObserveHistogram("logtop_phase_duration_seconds", d.Seconds(), lbls)
}

// RecordRows increments a row-level counter for the given job and kind.
//
// Typical kinds mirror the run report fields:
//   - "lines" for raw input lines
//   - "parsed" for entries that matched
//   - "inserted" for rows persisted
func RecordRows(job, kind string, n int64) {
	if n == 0 {
		return
	}
	backend.IncCounter("logtop_rows_total", float64(n), Labels{
		"job":  job,
		"kind": kind,
	})
}
