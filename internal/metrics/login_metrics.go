package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// LoginMetrics provides Prometheus metrics for both sides of the login flow
type LoginMetrics struct {
	// Client side: form submissions and the requests they send
	Submissions    *prometheus.CounterVec
	StaleResults   prometheus.Counter
	ClientRequests *prometheus.CounterVec
	ClientErrors   prometheus.Counter
	ClientLatency  prometheus.Histogram

	// Server side: /api/login attempts
	Attempts        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ActiveRequests  *prometheus.GaugeVec
}

// NewLoginMetrics creates the login metrics and registers them with reg.
// A nil reg registers with the default Prometheus registry.
func NewLoginMetrics(reg prometheus.Registerer) *LoginMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &LoginMetrics{
		Submissions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loginform_submissions_total",
				Help: "Total number of settled form submissions by outcome",
			},
			[]string{"outcome"},
		),

		StaleResults: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "loginform_stale_results_total",
				Help: "Submissions whose result was discarded because a newer submission started",
			},
		),

		ClientRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loginform_client_requests_total",
				Help: "Login requests sent by the client by response status class",
			},
			[]string{"status_class"},
		),

		ClientErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "loginform_client_transport_errors_total",
				Help: "Login requests that failed before a response was obtained",
			},
		),

		ClientLatency: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name: "loginform_client_request_duration_seconds",
				Help: "Login request latency as seen by the client",
				Buckets: []float64{
					0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0,
				},
			},
		),

		Attempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "login_attempts_total",
				Help: "Login attempts handled by /api/login by result",
			},
			[]string{"result"},
		),

		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "api_request_duration_seconds",
				Help: "API request latency in seconds",
				Buckets: []float64{
					0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0,
				},
			},
			[]string{"method", "endpoint", "status"},
		),

		ActiveRequests: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "api_requests_active",
				Help: "Number of currently active API requests",
			},
			[]string{"method", "endpoint"},
		),
	}
}

// RecordSubmission implements loginform.Recorder
func (m *LoginMetrics) RecordSubmission(outcome string) {
	m.Submissions.WithLabelValues(outcome).Inc()
}

// RecordStaleResult implements loginform.Recorder
func (m *LoginMetrics) RecordStaleResult() {
	m.StaleResults.Inc()
}

// RecordAttempt records an /api/login attempt result
func (m *LoginMetrics) RecordAttempt(result string) {
	m.Attempts.WithLabelValues(result).Inc()
}

// RecordAPIRequest records an API request with its duration and status
func (m *LoginMetrics) RecordAPIRequest(method, endpoint string, status int, duration float64) {
	m.RequestDuration.WithLabelValues(method, endpoint, strconv.Itoa(status)).Observe(duration)
}

// IncActiveRequests increments active request count
func (m *LoginMetrics) IncActiveRequests(method, endpoint string) {
	m.ActiveRequests.WithLabelValues(method, endpoint).Inc()
}

// DecActiveRequests decrements active request count
func (m *LoginMetrics) DecActiveRequests(method, endpoint string) {
	m.ActiveRequests.WithLabelValues(method, endpoint).Dec()
}

// statusClass buckets a status code as "2xx", "4xx" and so on
func statusClass(code int) string {
	if code < 100 || code > 599 {
		return "unknown"
	}
	return strconv.Itoa(code/100) + "xx"
}
