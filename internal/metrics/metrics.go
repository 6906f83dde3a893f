package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics for the masterlist backend
type Metrics struct {
	// HTTP metrics
	RequestsTotal          *prometheus.CounterVec
	RequestDurationSeconds *prometheus.HistogramVec

	// Auth metrics
	LoginSuccessTotal prometheus.Counter
	LoginFailedTotal  prometheus.Counter
	AccessDeniedTotal *prometheus.CounterVec

	// Activity log metrics
	ActivityAppendedTotal *prometheus.CounterVec
	ActivityDroppedTotal  prometheus.Counter
	ActivitySubscribers   prometheus.Gauge

	registry *prometheus.Registry
}

// New creates a Metrics instance with all metrics registered
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "masterlist_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "masterlist_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		LoginSuccessTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "masterlist_login_success_total",
				Help: "Total number of successful logins",
			},
		),
		LoginFailedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "masterlist_login_failed_total",
				Help: "Total number of failed login attempts",
			},
		),
		AccessDeniedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "masterlist_access_denied_total",
				Help: "Total number of denied access checks",
			},
			[]string{"reason"},
		),
		ActivityAppendedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "masterlist_activity_appended_total",
				Help: "Total number of activity log entries written",
			},
			[]string{"action"},
		),
		ActivityDroppedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "masterlist_activity_dropped_total",
				Help: "Total number of activity log writes that failed and were dropped",
			},
		),
		ActivitySubscribers: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "masterlist_activity_subscribers",
				Help: "Number of live activity log subscriptions",
			},
		),

		registry: reg,
	}

	reg.MustRegister(
		m.RequestsTotal,
		m.RequestDurationSeconds,
		m.LoginSuccessTotal,
		m.LoginFailedTotal,
		m.AccessDeniedTotal,
		m.ActivityAppendedTotal,
		m.ActivityDroppedTotal,
		m.ActivitySubscribers,
	)

	return m
}

// Registry returns the Prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
