package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the backend.
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Driver metrics: one series per operation and outcome
	DriverOps      *prometheus.CounterVec
	DriverDuration *prometheus.HistogramVec

	// Job metrics
	JobsActive prometheus.Gauge
	JobsTotal  *prometheus.CounterVec

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time
}

// NewMetrics creates and registers the metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{
		startTime: time.Now(),

		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "filedock_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "filedock_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),

		DriverOps: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "filedock_driver_operations_total",
				Help: "Total driver operations by outcome",
			},
			[]string{"operation", "outcome"},
		),
		DriverDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "filedock_driver_operation_duration_seconds",
				Help:    "Driver operation duration in seconds",
				Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 30},
			},
			[]string{"operation"},
		),

		JobsActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "filedock_jobs_active",
				Help: "Number of currently running jobs",
			},
		),
		JobsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "filedock_jobs_total",
				Help: "Total jobs by terminal status",
			},
			[]string{"status"},
		),

		Uptime: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "filedock_uptime_seconds",
				Help: "Service uptime in seconds",
			},
		),
	}
}

// RecordDriverOp records one driver call with its outcome and duration.
func (m *Metrics) RecordDriverOp(operation, outcome string, duration time.Duration) {
	m.DriverOps.WithLabelValues(operation, outcome).Inc()
	m.DriverDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// JobStarted records a job entering the running state.
func (m *Metrics) JobStarted() {
	m.JobsActive.Inc()
}

// JobFinished records a job reaching a terminal status.
func (m *Metrics) JobFinished(status string) {
	m.JobsActive.Dec()
	m.JobsTotal.WithLabelValues(status).Inc()
}

// UpdateUptime refreshes the uptime gauge.
func (m *Metrics) UpdateUptime() {
	m.Uptime.Set(time.Since(m.startTime).Seconds())
}
