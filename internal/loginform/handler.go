package loginform

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Recorder receives submission outcomes
type Recorder interface {
	RecordSubmission(outcome string)
	RecordStaleResult()
}

// SubmitHandler mediates credential form submissions end to end: it reads
// the fields, sends one login request and writes the result to the display.
//
// Submissions may overlap. Each one takes a generation number and only the
// newest generation is allowed to write the display, so a slow earlier
// response can never overwrite the result of a later submission.
type SubmitHandler struct {
	username Field
	password Field
	display  Display
	client   *Client

	logger   zerolog.Logger
	recorder Recorder

	generation atomic.Uint64
	displayMu  sync.Mutex
}

// HandlerOption configures a SubmitHandler
type HandlerOption func(*SubmitHandler)

// WithLogger sets the handler's logger
func WithLogger(logger zerolog.Logger) HandlerOption {
	return func(h *SubmitHandler) {
		h.logger = logger
	}
}

// WithRecorder sets the metrics recorder
func WithRecorder(r Recorder) HandlerOption {
	return func(h *SubmitHandler) {
		h.recorder = r
	}
}

// NewSubmitHandler wires a handler to its form fields, display and client
func NewSubmitHandler(username, password Field, display Display, client *Client, opts ...HandlerOption) *SubmitHandler {
	h := &SubmitHandler{
		username: username,
		password: password,
		display:  display,
		client:   client,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HandleSubmit processes one submission. It never returns an error: every
// failure is turned into a displayed Result.
func (h *SubmitHandler) HandleSubmit(ctx context.Context, ev Event) Result {
	if ev != nil {
		ev.PreventDefault()
	}

	gen := h.generation.Add(1)
	creds := Credentials{
		Username: h.username.Value(),
		Password: h.password.Value(),
	}

	log := h.logger.With().Uint64("generation", gen).Str("endpoint", h.client.Endpoint()).Logger()
	log.Debug().Str("username", creds.Username).Msg("submitting credentials")

	result := h.submit(ctx, creds)
	result.Generation = gen

	if result.Err != nil {
		log.Debug().Err(result.Err).Msg("login request failed")
	}

	if !h.render(gen, result) {
		result.Stale = true
		log.Debug().Msg("discarding stale login result")
		if h.recorder != nil {
			h.recorder.RecordStaleResult()
		}
		return result
	}

	if h.recorder != nil {
		h.recorder.RecordSubmission(result.Outcome.String())
	}
	log.Info().
		Str("outcome", result.Outcome.String()).
		Int("status", result.Status).
		Msg("login submission settled")

	return result
}

// Go runs HandleSubmit asynchronously. The channel receives exactly one
// Result and is then closed.
func (h *SubmitHandler) Go(ctx context.Context, ev Event) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		out <- h.HandleSubmit(ctx, ev)
	}()
	return out
}

// Generation returns the number of submissions started so far
func (h *SubmitHandler) Generation() uint64 {
	return h.generation.Load()
}

// submit performs the request inside a single catch-all boundary
func (h *SubmitHandler) submit(ctx context.Context, creds Credentials) (result Result) {
	defer func() {
		if p := recover(); p != nil {
			result = Classify(nil, fmt.Errorf("%w: panic: %v", ErrTransport, p))
		}
	}()

	resp, err := h.client.Login(ctx, creds)
	return Classify(resp, err)
}

// render writes result to the display if gen is still the newest submission
func (h *SubmitHandler) render(gen uint64, result Result) bool {
	h.displayMu.Lock()
	defer h.displayMu.Unlock()

	if gen != h.generation.Load() {
		return false
	}

	h.display.SetVisible(true)
	h.display.SetClass(result.Outcome.Class())
	h.display.SetText(result.Message)
	return true
}
