// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package.
//
// This package adapts the generic metrics.Backend interface to Prometheus by:
//
//   - Using client_golang CounterVec and SummaryVec collectors.
//   - Mapping the common pipeline labels (job, phase, status) onto Prometheus
//     labels.
//   - Pushing collected metrics to a Prometheus Pushgateway instance instead
//     of exposing an HTTP scrape endpoint, which suits a short-lived batch
//     process that exits before any scraper would reach it.
//
// The package intentionally contains all Prometheus-specific dependencies so
// that the rest of the project remains decoupled from Prometheus and can swap
// to alternative backends without changes to the pipeline core.
package prompush

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"logtop/internal/metrics"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string // e.g. http://pushgateway:9091
	jobName    string // Pushgateway "job" group
	reg        *prometheus.Registry

	// Phase-level metrics.
	phaseCounter  *prometheus.CounterVec // "logtop_phase_total"
	phaseDuration *prometheus.SummaryVec // "logtop_phase_duration_seconds"

	// Row-level metrics.
	rowCounter *prometheus.CounterVec // "logtop_rows_total"
}

// NewBackend constructs a Prometheus Pushgateway backend.
// jobName: the Pushgateway "job" name (often same as the pipeline job).
// gatewayURL: base URL of the Pushgateway server.
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "logtop"
	}

	reg := prometheus.NewRegistry()

	// job is the Pushgateway grouping key; phase and status are dynamic.
	phaseCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logtop_phase_total",
			Help: "Total number of pipeline phase executions, partitioned by phase and status.",
		},
		[]string{"phase", "status"},
	)
	phaseDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "logtop_phase_duration_seconds",
			Help:       "Duration of pipeline phases in seconds, partitioned by phase and status.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"phase", "status"},
	)
	rowCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logtop_rows_total",
			Help: "Row-level counts per kind (lines, parsed, inserted).",
		},
		[]string{"kind"},
	)

	if err := reg.Register(phaseCounter); err != nil {
		return nil, fmt.Errorf("prompush: register phase counter: %w", err)
	}
	if err := reg.Register(phaseDuration); err != nil {
		return nil, fmt.Errorf("prompush: register phase summary: %w", err)
	}
	if err := reg.Register(rowCounter); err != nil {
		return nil, fmt.Errorf("prompush: register row counter: %w", err)
	}

	return &Backend{
		gatewayURL:    gatewayURL,
		jobName:       jobName,
		reg:           reg,
		phaseCounter:  phaseCounter,
		phaseDuration: phaseDuration,
		rowCounter:    rowCounter,
	}, nil
}

// IncCounter implements metrics.Backend.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case "logtop_phase_total":
		if b.phaseCounter == nil {
			return
		}
		b.phaseCounter.WithLabelValues(labels["phase"], labels["status"]).Add(delta)

	case "logtop_rows_total":
		if b.rowCounter == nil {
			return
		}
		b.rowCounter.WithLabelValues(labels["kind"]).Add(delta)

	default:
		// unknown metric name: ignore
	}
}

// ObserveHistogram implements metrics.Backend.
func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != "logtop_phase_duration_seconds" || b.phaseDuration == nil {
		return
	}
	b.phaseDuration.WithLabelValues(labels["phase"], labels["status"]).Observe(value)
}

// Flush pushes the current registry to the Pushgateway.
func (b *Backend) Flush() error {
	return push.New(b.gatewayURL, b.jobName).
		Gatherer(b.reg).
		Push()
}
