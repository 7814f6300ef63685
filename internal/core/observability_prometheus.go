package core

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"latticegen/pkg/lattice"
)

// PrometheusMetricsRecorder keeps run metrics in a private registry so several
// generators in one process (or test binary) never collide on registration.
type PrometheusMetricsRecorder struct {
	registry *prometheus.Registry
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
	clusters *prometheus.CounterVec
}

// NewPrometheusMetricsRecorder builds the collectors under namespace
// ("latticegen" when empty).
func NewPrometheusMetricsRecorder(namespace string) *PrometheusMetricsRecorder {
	if namespace == "" {
		namespace = "latticegen"
	}
	registry := prometheus.NewRegistry()

	runs := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Generation runs by operation and status",
		},
		[]string{"operation", "status"},
	)
	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of a generation run",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
	clusters := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "clusters_total",
			Help:      "Clusters emitted by pipeline and radius class",
		},
		[]string{"pipeline", "class"},
	)
	registry.MustRegister(runs, duration, clusters)

	return &PrometheusMetricsRecorder{
		registry: registry,
		runs:     runs,
		duration: duration,
		clusters: clusters,
	}
}

// Registry exposes the gatherer, e.g. for promhttp.
func (p *PrometheusMetricsRecorder) Registry() *prometheus.Registry { return p.registry }

// Observe records one run outcome.
func (p *PrometheusMetricsRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	p.runs.WithLabelValues(operation, statusLabel(success)).Inc()
	p.duration.WithLabelValues(operation).Observe(duration.Seconds())
}

// ObserveClusters adds count to the per-class cluster counter.
func (p *PrometheusMetricsRecorder) ObserveClusters(_ context.Context, pipeline Pipeline, class lattice.RadiusClass, count int) {
	p.clusters.WithLabelValues(string(pipeline), string(class)).Add(float64(count))
}

// WriteTextfile writes the current metrics in the node-exporter textfile format.
func (p *PrometheusMetricsRecorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, p.registry); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}
