// Package metrics records per-run Prometheus metrics for a batch analysis and
// writes them in the node exporter textfile format.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "weldphase"

// File outcomes
const (
	StatusAnalyzed   = "analyzed"
	StatusMalformed  = "malformed"
	StatusUnreadable = "unreadable"
)

// Metrics holds the collectors of one run. Each run gets its own registry.
type Metrics struct {
	registry *prometheus.Registry

	files            *prometheus.CounterVec
	changePoints     *prometheus.HistogramVec
	phasesMissing    *prometheus.CounterVec
	thresholdMissing *prometheus.CounterVec
	fileDuration     prometheus.Histogram
	bytesRead        prometheus.Counter
	lastRun          prometheus.Gauge
}

// New creates and registers the run collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		files: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_total",
			Help:      "Weld files processed, by outcome.",
		}, []string{"status"}),
		changePoints: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "change_points",
			Help:      "Change points detected per file, by channel.",
			Buckets:   []float64{0, 1, 2, 3, 4, 5, 6, 8, 10, 15, 20},
		}, []string{"channel"}),
		phasesMissing: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "phases_missing_total",
			Help:      "Phase names left without a change point.",
		}, []string{"channel", "phase"}),
		thresholdMissing: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "threshold_not_found_total",
			Help:      "Torque rules that produced no crossing.",
		}, []string{"rule"}),
		fileDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "file_duration_seconds",
			Help:      "Time spent reading and analyzing one file.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
		bytesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_read_total",
			Help:      "Bytes of weld recordings parsed.",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished.",
		}),
	}

	m.registry.MustRegister(
		m.files,
		m.changePoints,
		m.phasesMissing,
		m.thresholdMissing,
		m.fileDuration,
		m.bytesRead,
		m.lastRun,
	)

	return m
}

// Registry returns the run's registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// FileDone counts a processed file with the given outcome
func (m *Metrics) FileDone(status string, elapsed time.Duration, bytes int64) {
	m.files.WithLabelValues(status).Inc()
	m.fileDuration.Observe(elapsed.Seconds())
	if bytes > 0 {
		m.bytesRead.Add(float64(bytes))
	}
}

// ChangePoints observes the number of change points found on a channel
func (m *Metrics) ChangePoints(channel string, n int) {
	m.changePoints.WithLabelValues(channel).Observe(float64(n))
}

// PhasesMissing counts the phase names of channel left absent
func (m *Metrics) PhasesMissing(channel string, phases []string) {
	for _, p := range phases {
		m.phasesMissing.WithLabelValues(channel, p).Inc()
	}
}

// ThresholdsNotFound counts the torque rules that did not fire
func (m *Metrics) ThresholdsNotFound(rules []string) {
	for _, r := range rules {
		m.thresholdMissing.WithLabelValues(r).Inc()
	}
}

// RunFinished stamps the end of the run
func (m *Metrics) RunFinished(t time.Time) {
	m.lastRun.Set(float64(t.Unix()))
}

// WriteTextfile writes every metric of the run to path, atomically, in the
// format read by the node exporter textfile collector
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
