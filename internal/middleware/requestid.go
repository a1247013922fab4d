package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// contextKey is an unexported type for context keys to prevent collisions
type contextKey int

const (
	requestIDKey contextKey = iota
	requestLoggerKey
)

// RequestIDHeader carries the request ID back to the client
const RequestIDHeader = "X-Request-ID"

// RequestIDMiddleware generates unique request IDs and embeds them into context
type RequestIDMiddleware struct {
	logger zerolog.Logger
}

// NewRequestIDMiddleware creates a new request ID middleware instance
func NewRequestIDMiddleware(logger zerolog.Logger) *RequestIDMiddleware {
	return &RequestIDMiddleware{
		logger: logger,
	}
}

// Middleware assigns each request an ID and a request-scoped logger.
// A well-formed UUID in the incoming X-Request-ID header is kept so a
// proxy's correlation ID survives, anything else is replaced.
func (m *RequestIDMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID, reused := incomingRequestID(r)
		if !reused {
			// Generate UUID for this request
			requestID = uuid.New().String()
		}

		// Create request-scoped logger with request ID
		requestLogger := m.logger.With().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Logger()

		// Embed both request ID and logger into context
		ctx := r.Context()
		ctx = WithRequestID(ctx, requestID)
		ctx = WithLogger(ctx, requestLogger)

		// Echo the ID so clients can correlate login failures with server logs
		w.Header().Set(RequestIDHeader, requestID)

		requestLogger.Debug().Bool("reused_id", reused).Msg("incoming request")

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// incomingRequestID returns the caller's request ID in canonical form
func incomingRequestID(r *http.Request) (string, bool) {
	raw := r.Header.Get(RequestIDHeader)
	if raw == "" {
		return "", false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", false
	}
	return id.String(), true
}

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext retrieves the request ID from the context
func RequestIDFromContext(ctx context.Context) (string, bool) {
	requestID, ok := ctx.Value(requestIDKey).(string)
	return requestID, ok
}

// MustRequestIDFromContext retrieves the request ID or returns empty string
func MustRequestIDFromContext(ctx context.Context) string {
	requestID, _ := RequestIDFromContext(ctx)
	return requestID
}

// WithLogger adds a logger to the context
func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, requestLoggerKey, &logger)
}

// LoggerFromContext retrieves the request-scoped logger from context
func LoggerFromContext(ctx context.Context) (zerolog.Logger, bool) {
	logger, ok := ctx.Value(requestLoggerKey).(*zerolog.Logger)
	if !ok || logger == nil {
		return zerolog.Logger{}, false
	}
	return *logger, true
}

// LoggerFromContextOr retrieves the request-scoped logger or returns fallback
func LoggerFromContextOr(ctx context.Context, fallback zerolog.Logger) zerolog.Logger {
	if logger, ok := LoggerFromContext(ctx); ok {
		return logger
	}
	return fallback
}
