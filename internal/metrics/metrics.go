// Package metrics provides Prometheus metrics for copyforge
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for copyforge
type Metrics struct {
	Registry *prometheus.Registry

	// gRPC request metrics
	GrpcRequestsTotal    *prometheus.CounterVec
	GrpcRequestDuration  *prometheus.HistogramVec
	GrpcRequestsInFlight prometheus.Gauge

	// Storage metrics
	DbOperationsTotal   *prometheus.CounterVec
	DbOperationDuration *prometheus.HistogramVec

	// Content metrics
	GenerationsTotal      *prometheus.CounterVec
	GenerationDuration    prometheus.Histogram
	DriftCorrectionsTotal *prometheus.CounterVec
	OverrideEventsTotal   *prometheus.CounterVec
	VersionsRetained      *prometheus.GaugeVec

	// Export metrics
	ExportItemsTotal  *prometheus.CounterVec
	ExportRunDuration prometheus.Histogram

	ServerStartTime time.Time
}

// NewMetrics creates a fresh registry and registers all metrics on it
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewMetricsWith(reg)
}

// NewMetricsWith registers all metrics on reg
func NewMetricsWith(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		Registry:        reg,
		ServerStartTime: time.Now(),
	}
	f := promauto.With(reg)

	m.GrpcRequestsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "copyforge_grpc_requests_total",
			Help: "Total number of gRPC requests",
		},
		[]string{"method", "status"},
	)

	m.GrpcRequestDuration = f.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "copyforge_grpc_request_duration_seconds",
			Help:    "Duration of gRPC requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	m.GrpcRequestsInFlight = f.NewGauge(
		prometheus.GaugeOpts{
			Name: "copyforge_grpc_requests_in_flight",
			Help: "Number of gRPC requests currently being processed",
		},
	)

	m.DbOperationsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "copyforge_db_operations_total",
			Help: "Total number of storage operations",
		},
		[]string{"operation", "status"},
	)

	m.DbOperationDuration = f.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "copyforge_db_operation_duration_seconds",
			Help:    "Duration of storage operations in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)

	m.GenerationsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "copyforge_generations_total",
			Help: "Generator calls by tool, mode and outcome",
		},
		[]string{"tool", "mode", "status"},
	)

	m.GenerationDuration = f.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "copyforge_generation_duration_seconds",
			Help:    "Duration of generator calls in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
	)

	m.DriftCorrectionsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "copyforge_drift_corrections_total",
			Help: "Locked-fact drift detected in regenerated output",
		},
		[]string{"kind", "applied"},
	)

	m.OverrideEventsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "copyforge_override_events_total",
			Help: "Edit overlay transitions by outcome",
		},
		[]string{"outcome"},
	)

	m.VersionsRetained = f.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "copyforge_versions_retained",
			Help: "Version sets currently held in history",
		},
		[]string{"tool"},
	)

	m.ExportItemsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "copyforge_export_items_total",
			Help: "Exported items by outcome",
		},
		[]string{"status"},
	)

	m.ExportRunDuration = f.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "copyforge_export_run_duration_seconds",
			Help:    "Duration of whole export runs in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
	)

	f.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "copyforge_server_uptime_seconds",
			Help: "Server uptime in seconds",
		},
		func() float64 { return time.Since(m.ServerStartTime).Seconds() },
	)

	return m
}

// RecordGrpcRequest records a gRPC request with its status
func (m *Metrics) RecordGrpcRequest(method string, status string, duration time.Duration) {
	m.GrpcRequestsTotal.WithLabelValues(method, status).Inc()
	m.GrpcRequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordDbOperation records a storage operation
func (m *Metrics) RecordDbOperation(operation string, status string, duration time.Duration) {
	m.DbOperationsTotal.WithLabelValues(operation, status).Inc()
	m.DbOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordGeneration records one generator call. mode is "generate" or "regenerate".
func (m *Metrics) RecordGeneration(tool, mode, status string, duration time.Duration) {
	m.GenerationsTotal.WithLabelValues(tool, mode, status).Inc()
	m.GenerationDuration.Observe(duration.Seconds())
}

// RecordDrift records one drift correction
func (m *Metrics) RecordDrift(kind string, applied bool) {
	a := "false"
	if applied {
		a = "true"
	}
	m.DriftCorrectionsTotal.WithLabelValues(kind, a).Inc()
}

// RecordOverride records an edit overlay outcome
func (m *Metrics) RecordOverride(outcome string) {
	m.OverrideEventsTotal.WithLabelValues(outcome).Inc()
}

// SetVersions updates the retained-version gauge for a tool
func (m *Metrics) SetVersions(tool string, n int) {
	m.VersionsRetained.WithLabelValues(tool).Set(float64(n))
}

// RecordExportItem records one export queue step
func (m *Metrics) RecordExportItem(ok bool) {
	status := "ok"
	if !ok {
		status = "failed"
	}
	m.ExportItemsTotal.WithLabelValues(status).Inc()
}

// RecordExportRun records a finished export run
func (m *Metrics) RecordExportRun(duration time.Duration) {
	m.ExportRunDuration.Observe(duration.Seconds())
}
