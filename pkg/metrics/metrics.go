package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	apperrors "github.com/jwalitptl/clinic-records/pkg/errors"
)

// Metrics holds all application metrics. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// Workflow metrics
	Operations *prometheus.CounterVec

	// Database metrics
	DatabaseOperations  *prometheus.CounterVec
	DatabaseLatency     *prometheus.HistogramVec
	DatabaseConnections prometheus.Gauge

	// Catalog cache metrics
	CatalogCache *prometheus.CounterVec
}

// New creates all application metrics on a private registry.
func New(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Total number of workflow operations by outcome",
		}, []string{"operation", "status"}),
		DatabaseOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "database_operations_total",
			Help:      "Total number of database operations",
		}, []string{"operation", "status"}),
		DatabaseLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "database_operation_duration_seconds",
			Help:      "Duration of database operations",
			Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),
		DatabaseConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "database_connections",
			Help:      "Current number of open database connections",
		}),
		CatalogCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_cache_lookups_total",
			Help:      "Catalog list lookups by cache result",
		}, []string{"kind", "result"}),
	}

	m.registry.MustRegister(
		m.Operations,
		m.DatabaseOperations,
		m.DatabaseLatency,
		m.DatabaseConnections,
		m.CatalogCache,
	)

	return m
}

// Registry exposes the underlying registry for gathering.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveOperation counts one workflow operation, labelled by the error
// code of its failure or "ok".
func (m *Metrics) ObserveOperation(operation string, err error) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(operation, statusOf(err)).Inc()
}

// TimeDatabase starts timing a database operation; call the returned func
// with the operation's error when it completes.
func (m *Metrics) TimeDatabase(operation string) func(error) {
	if m == nil {
		return func(error) {}
	}
	start := time.Now()
	return func(err error) {
		m.DatabaseLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
		status := "ok"
		if err != nil {
			status = "error"
		}
		m.DatabaseOperations.WithLabelValues(operation, status).Inc()
	}
}

// SetConnections records the number of open database connections.
func (m *Metrics) SetConnections(n int) {
	if m == nil {
		return
	}
	m.DatabaseConnections.Set(float64(n))
}

// CacheLookup counts a catalog cache hit or miss.
func (m *Metrics) CacheLookup(kind string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CatalogCache.WithLabelValues(kind, result).Inc()
}

// WriteTextfile writes the current metric values in the text exposition
// format, suitable for a node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}

func statusOf(err error) string {
	if err == nil {
		return "ok"
	}
	if code := apperrors.CodeOf(err); code != 0 {
		return code.String()
	}
	return apperrors.ErrStoreFailure.String()
}
