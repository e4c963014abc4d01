package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/harun/gearproc/pkg/scene"
)

// Metrics holds all Prometheus metrics for the application. It implements
// procedural.Observer.
type Metrics struct {
	registry *prometheus.Registry

	// Procedural metrics
	ProceduralExecutionsTotal   *prometheus.CounterVec
	ProceduralExecutionDuration *prometheus.HistogramVec
	ProceduralReportsTotal      *prometheus.CounterVec
	ProceduralsLoaded           prometheus.Gauge

	// Scene metrics
	SceneContextsTotal prometheus.Counter
}

// NewMetrics creates and registers all metrics
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,

		ProceduralExecutionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "procedural_executions_total",
				Help: "Total number of procedural executions",
			},
			[]string{"procedural", "status"},
		),
		ProceduralExecutionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "procedural_execution_duration_seconds",
				Help:    "Duration of procedural executions in seconds",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
			},
			[]string{"procedural"},
		),
		ProceduralReportsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "procedural_reports_total",
				Help: "Total number of diagnostics reported by procedurals",
			},
			[]string{"procedural", "severity"},
		),
		ProceduralsLoaded: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "procedurals_loaded",
				Help: "Number of currently loaded procedurals",
			},
		),

		SceneContextsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "scene_contexts_total",
				Help: "Total number of scene contexts evaluated",
			},
		),
	}

	m.registerMetrics()

	return m
}

// registerMetrics registers all metrics with the registry
func (m *Metrics) registerMetrics() {
	m.registry.MustRegister(m.ProceduralExecutionsTotal)
	m.registry.MustRegister(m.ProceduralExecutionDuration)
	m.registry.MustRegister(m.ProceduralReportsTotal)
	m.registry.MustRegister(m.ProceduralsLoaded)
	m.registry.MustRegister(m.SceneContextsTotal)
}

// ObserveExecution records one procedural execution
func (m *Metrics) ObserveExecution(id, status string, duration time.Duration) {
	m.ProceduralExecutionsTotal.WithLabelValues(id, status).Inc()
	m.ProceduralExecutionDuration.WithLabelValues(id).Observe(duration.Seconds())
}

// ObserveReport records one diagnostic
func (m *Metrics) ObserveReport(id string, severity scene.Severity) {
	m.ProceduralReportsTotal.WithLabelValues(id, severity.String()).Inc()
}

// SetLoaded sets the number of loaded procedurals
func (m *Metrics) SetLoaded(count int) {
	m.ProceduralsLoaded.Set(float64(count))
}

// Handler returns an HTTP handler for the metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Registry returns the Prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
