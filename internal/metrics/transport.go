package metrics

import (
	"net/http"
	"time"
)

// Transport wraps an HTTP transport with login client metrics
type Transport struct {
	Transport http.RoundTripper
	Metrics   *LoginMetrics
}

// RoundTrip implements the http.RoundTripper interface with metrics
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	start := time.Now()
	resp, err := base.RoundTrip(req)
	latency := time.Since(start)

	if t.Metrics == nil {
		return resp, err
	}

	if err != nil {
		t.Metrics.ClientErrors.Inc()
		return resp, err
	}

	t.Metrics.ClientLatency.Observe(latency.Seconds())
	t.Metrics.ClientRequests.WithLabelValues(statusClass(resp.StatusCode)).Inc()

	return resp, nil
}

// NewHTTPClient creates an HTTP client with login metrics tracking.
// A zero timeout disables the client timeout.
func NewHTTPClient(timeout time.Duration, metrics *LoginMetrics) *http.Client {
	return NewInstrumentedClient(http.DefaultTransport, timeout, metrics)
}

// NewInstrumentedClient is NewHTTPClient over a caller-supplied base transport
func NewInstrumentedClient(base http.RoundTripper, timeout time.Duration, metrics *LoginMetrics) *http.Client {
	return &http.Client{
		Transport: &Transport{
			Transport: base,
			Metrics:   metrics,
		},
		Timeout: timeout,
	}
}
