package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Image outcomes recorded per hour.
const (
	OutcomeGenerated = "generated"
	OutcomeSkipped   = "skipped"
	OutcomeFailed    = "failed"
)

// Metrics counts what a generator run did. Each Metrics owns its registry so
// repeated runs in one process (watch mode, tests) never collide.
type Metrics struct {
	registry *prometheus.Registry

	// Per-hour outcome. Watch for: failed > 0 (unwritable output folder).
	Images *prometheus.CounterVec

	// Wall time of the last run.
	RunDuration prometheus.Gauge

	// Unix time the last run finished. Watch for: stale assets in CI caches.
	LastRun prometheus.Gauge
}

// NewMetrics creates and registers the generator metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Images: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "skygen",
			Name:      "images_total",
			Help:      "Hourly images by outcome (generated, skipped, failed).",
		}, []string{"outcome"}),
		RunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "skygen",
			Name:      "run_duration_seconds",
			Help:      "Duration of the last generator run.",
		}),
		LastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "skygen",
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last generator run finished.",
		}),
	}
	m.registry.MustRegister(m.Images, m.RunDuration, m.LastRun)
	for _, o := range []string{OutcomeGenerated, OutcomeSkipped, OutcomeFailed} {
		m.Images.WithLabelValues(o)
	}
	return m
}

// RecordImage counts one hour with the given outcome.
func (m *Metrics) RecordImage(outcome string) {
	m.Images.WithLabelValues(outcome).Inc()
}

// RecordRun stores the duration and finish time of a run.
func (m *Metrics) RecordRun(d time.Duration, finished time.Time) {
	m.RunDuration.Set(d.Seconds())
	m.LastRun.Set(float64(finished.Unix()))
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the metrics in the node exporter textfile format.
// The file is written atomically.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
