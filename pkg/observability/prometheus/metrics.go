package prometheus

import (
	"database/sql"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace prefixes every metric name
const Namespace = "todos"

// NewRegistry returns a registry carrying the Go runtime and process collectors
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP request metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPRequestSize     *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Database pool metrics
	DatabaseConnectionsOpen  prometheus.Gauge
	DatabaseConnectionsIdle  prometheus.Gauge
	DatabaseConnectionsInUse prometheus.Gauge
	DatabaseConnectionsWait  prometheus.Counter
	DatabaseQueryDuration    *prometheus.HistogramVec
	DatabaseQueryErrors      *prometheus.CounterVec

	// Todo operation outcomes
	TodoOperationsTotal *prometheus.CounterVec

	mu       sync.Mutex
	lastWait int64
}

// NewMetrics registers the metrics with registerer
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.NewRegistry()
	}
	factory := promauto.With(registerer)

	return &Metrics{
		// HTTP request metrics
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "http_request_size_bytes",
				Help:      "HTTP request size in bytes",
				Buckets:   prometheus.ExponentialBuckets(100, 10, 5), // 100B to 1MB
			},
			[]string{"method", "route"},
		),
		HTTPResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "http_response_size_bytes",
				Help:      "HTTP response size in bytes",
				Buckets:   prometheus.ExponentialBuckets(100, 10, 5), // 100B to 1MB
			},
			[]string{"method", "route", "status"},
		),

		// Database pool metrics
		DatabaseConnectionsOpen: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Name:      "database_connections_open",
				Help:      "Number of open database connections",
			},
		),
		DatabaseConnectionsIdle: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Name:      "database_connections_idle",
				Help:      "Number of idle database connections",
			},
		),
		DatabaseConnectionsInUse: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Name:      "database_connections_in_use",
				Help:      "Number of database connections in use",
			},
		),
		DatabaseConnectionsWait: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "database_connections_wait_total",
				Help:      "Total number of database connection wait events",
			},
		),
		DatabaseQueryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "database_query_duration_seconds",
				Help:      "Database query duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"operation"}, // operation: query, query_row, exec
		),
		DatabaseQueryErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "database_query_errors_total",
				Help:      "Total number of failed database statements",
			},
			[]string{"operation"},
		),

		TodoOperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "operations_total",
				Help:      "Todo operations by outcome",
			},
			[]string{"operation", "outcome"},
		),
	}
}

// RecordHTTPRequest records an HTTP request metric
func (m *Metrics) RecordHTTPRequest(method, route, status string, duration time.Duration, requestSize, responseSize int64) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
	m.HTTPRequestSize.WithLabelValues(method, route).Observe(float64(requestSize))
	m.HTTPResponseSize.WithLabelValues(method, route, status).Observe(float64(responseSize))
}

// UpdateDatabasePool copies pool statistics into the gauges.
// WaitCount is cumulative in sql.DBStats, so only the increase is added.
func (m *Metrics) UpdateDatabasePool(stats sql.DBStats) {
	m.DatabaseConnectionsOpen.Set(float64(stats.OpenConnections))
	m.DatabaseConnectionsIdle.Set(float64(stats.Idle))
	m.DatabaseConnectionsInUse.Set(float64(stats.InUse))

	m.mu.Lock()
	defer m.mu.Unlock()
	if delta := stats.WaitCount - m.lastWait; delta > 0 {
		m.DatabaseConnectionsWait.Add(float64(delta))
	}
	m.lastWait = stats.WaitCount
}

// RecordDatabaseQuery records a database statement; its signature matches db.QueryObserver
func (m *Metrics) RecordDatabaseQuery(operation string, duration time.Duration, err error) {
	m.DatabaseQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		m.DatabaseQueryErrors.WithLabelValues(operation).Inc()
	}
}

// RecordTodoOperation counts a todo operation; its signature matches todo.OperationObserver
func (m *Metrics) RecordTodoOperation(operation, outcome string) {
	m.TodoOperationsTotal.WithLabelValues(operation, outcome).Inc()
}
