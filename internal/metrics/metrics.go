package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds all Prometheus collectors for the pilotage server.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics.
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Auth metrics.
	AuthFailuresTotal  *prometheus.CounterVec
	AuthSuccessesTotal prometheus.Counter

	// Login throttle metrics.
	LoginThrottleRejectionsTotal prometheus.Counter

	// Recap job metrics.
	RecapRunsTotal     *prometheus.CounterVec
	RecapEmailsTotal   prometheus.Counter
	RecapRunDuration   prometheus.Histogram

	// Server lifecycle.
	ServerStartTime prometheus.Gauge
}

// New creates and registers all metrics on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,

		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pilotage_http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path_pattern", "status_code"}),

		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pilotage_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path_pattern"}),

		AuthFailuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pilotage_auth_failures_total",
			Help: "Total number of authentication failures.",
		}, []string{"reason"}),

		AuthSuccessesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pilotage_auth_successes_total",
			Help: "Total number of successful logins.",
		}),

		LoginThrottleRejectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pilotage_login_throttle_rejections_total",
			Help: "Total number of login attempts rejected by the throttle.",
		}),

		RecapRunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pilotage_recap_runs_total",
			Help: "Total number of monthly recap runs.",
		}, []string{"status"}),

		RecapEmailsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pilotage_recap_emails_total",
			Help: "Total number of recap emails sent.",
		}),

		RecapRunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pilotage_recap_run_duration_seconds",
			Help:    "Duration of recap runs in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		}),

		ServerStartTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pilotage_server_start_time_seconds",
			Help: "Unix timestamp when the server started.",
		}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.AuthFailuresTotal,
		m.AuthSuccessesTotal,
		m.LoginThrottleRejectionsTotal,
		m.RecapRunsTotal,
		m.RecapEmailsTotal,
		m.RecapRunDuration,
		m.ServerStartTime,
	)

	m.ServerStartTime.Set(float64(time.Now().Unix()))

	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return m
}

// Registry returns the private Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RegisterDBPoolCollector registers a custom DB pool stats collector.
func (m *Metrics) RegisterDBPoolCollector(statFunc DBPoolStatFunc) {
	m.registry.MustRegister(NewDBPoolCollector(statFunc))
}

// The recording helpers tolerate a nil receiver so callers built without
// metrics (tests, one-shot CLI commands) need no guards.

// ObserveHTTPRequest records one served request.
func (m *Metrics) ObserveHTTPRequest(method, pathPattern string, statusCode int, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, pathPattern, fmt.Sprintf("%d", statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, pathPattern).Observe(seconds)
}

// IncAuthFailure increments the auth failure counter for the given reason.
func (m *Metrics) IncAuthFailure(reason string) {
	if m == nil {
		return
	}
	m.AuthFailuresTotal.WithLabelValues(reason).Inc()
}

// IncAuthSuccess increments the successful login counter.
func (m *Metrics) IncAuthSuccess() {
	if m == nil {
		return
	}
	m.AuthSuccessesTotal.Inc()
}

// IncThrottleRejection increments the login throttle rejection counter.
func (m *Metrics) IncThrottleRejection() {
	if m == nil {
		return
	}
	m.LoginThrottleRejectionsTotal.Inc()
}

// ObserveRecapRun records one recap run with its outcome and duration.
func (m *Metrics) ObserveRecapRun(status string, seconds float64, emailsSent int) {
	if m == nil {
		return
	}
	m.RecapRunsTotal.WithLabelValues(status).Inc()
	m.RecapRunDuration.Observe(seconds)
	m.RecapEmailsTotal.Add(float64(emailsSent))
}
