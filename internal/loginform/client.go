package loginform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var (
	// ErrTransport wraps failures before a response was obtained
	ErrTransport = errors.New("login request failed")
	// ErrMalformedResponse wraps response bodies that are not valid JSON
	ErrMalformedResponse = errors.New("malformed login response")
)

// Response is a decoded login response
type Response struct {
	StatusCode int
	Message    string
	HasMessage bool
}

// OK reports whether the status is in the 2xx range
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Client sends credentials to the login endpoint
type Client struct {
	endpoint string
	doer     HTTPDoer
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithHTTPDoer replaces the HTTP capability
func WithHTTPDoer(doer HTTPDoer) ClientOption {
	return func(c *Client) {
		if doer != nil {
			c.doer = doer
		}
	}
}

// NewClient creates a login client for endpoint. A zero timeout means the
// request runs until it completes or the context is cancelled.
func NewClient(endpoint string, timeout time.Duration, opts ...ClientOption) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	c := &Client{
		endpoint: endpoint,
		doer:     &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the URL requests are sent to
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Login posts the credentials and decodes the response body.
// Errors wrap ErrTransport or ErrMalformedResponse.
func (c *Client) Login(ctx context.Context, creds Credentials) (*Response, error) {
	payload, err := json.Marshal(creds)
	if err != nil {
		return nil, fmt.Errorf("%w: encode credentials: %v", ErrTransport, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.doer.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrTransport, err)
	}

	decoded, err := decodeResponse(body)
	if err != nil {
		return nil, fmt.Errorf("status %d: %w", resp.StatusCode, err)
	}

	out := &Response{
		StatusCode: resp.StatusCode,
		Message:    decoded.message(),
		HasMessage: decoded.Message != nil,
	}

	// A failure body of null has no message to read and counts as a server error.
	// Success never reads the message.
	if decoded.Null && !out.OK() {
		return nil, fmt.Errorf("status %d: %w: null body", resp.StatusCode, ErrMalformedResponse)
	}

	return out, nil
}

// Classify maps a Login outcome onto the result shown to the user
func Classify(resp *Response, err error) Result {
	if err != nil || resp == nil {
		return Result{
			Outcome: OutcomeFailure,
			Message: MessageServerError,
			Err:     err,
		}
	}

	if resp.OK() {
		return Result{
			Outcome: OutcomeSuccess,
			Message: MessageSuccess,
			Status:  resp.StatusCode,
		}
	}

	msg := resp.Message
	if msg == "" {
		msg = MessageFailed
	}
	return Result{
		Outcome: OutcomeFailure,
		Message: msg,
		Status:  resp.StatusCode,
	}
}
