package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRequestIDMiddleware(t *testing.T) {
	var (
		capturedRequestID string
		capturedLoggerOK  bool
	)

	handler := NewRequestIDMiddleware(zerolog.Nop()).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedRequestID, _ = RequestIDFromContext(r.Context())
		_, capturedLoggerOK = LoggerFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/login", nil))

	require.NotEmpty(t, capturedRequestID)
	_, err := uuid.Parse(capturedRequestID)
	assert.NoError(t, err, "request ID should be valid UUID")
	assert.True(t, capturedLoggerOK)
	assert.Equal(t, capturedRequestID, rec.Header().Get(RequestIDHeader))
}

func TestRequestIDMiddleware_UniquePerRequest(t *testing.T) {
	seen := make(map[string]bool)
	handler := NewRequestIDMiddleware(zerolog.Nop()).Middleware(okHandler)

	for i := 0; i < 50; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		id := rec.Header().Get(RequestIDHeader)
		assert.False(t, seen[id], "duplicate request ID %s", id)
		seen[id] = true
	}
}

func TestRequestIDMiddleware_IncomingHeader(t *testing.T) {
	valid := uuid.New().String()

	tests := []struct {
		name     string
		incoming string
		wantKept bool
		want     string
	}{
		{name: "valid uuid is kept", incoming: valid, wantKept: true, want: valid},
		{name: "uppercase uuid is normalised", incoming: strings.ToUpper(valid), wantKept: true, want: valid},
		{name: "garbage is replaced", incoming: "not-a-uuid"},
		{name: "header injection is replaced", incoming: "abc\r\nSet-Cookie: x=1"},
		{name: "missing header", incoming: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var captured string
			handler := NewRequestIDMiddleware(zerolog.Nop()).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				captured = MustRequestIDFromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, captured, rec.Header().Get(RequestIDHeader))
			_, err := uuid.Parse(captured)
			require.NoError(t, err)
			if tt.wantKept {
				assert.Equal(t, tt.want, captured)
			} else {
				assert.NotEqual(t, tt.incoming, captured)
			}
		})
	}
}

func TestLoggerFromContextOr(t *testing.T) {
	var buf bytes.Buffer
	fallback := zerolog.New(&buf)

	logger := LoggerFromContextOr(context.Background(), fallback)
	logger.Info().Msg("fallback used")
	assert.Contains(t, buf.String(), "fallback used")

	assert.Empty(t, MustRequestIDFromContext(context.Background()))
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	handler := NewLoggingMiddleware(logger).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Invalid credentials"}`))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/login", nil))

	out := buf.String()
	assert.Contains(t, out, `"status":401`)
	assert.Contains(t, out, `"path":"/api/login"`)
	assert.Contains(t, out, `"bytes":33`)
}

func TestCORSMiddleware(t *testing.T) {
	tests := []struct {
		name        string
		config      CORSConfig
		method      string
		origin      string
		preflight   bool
		wantStatus  int
		wantAllowed string
	}{
		{
			name:        "wildcard allows any origin",
			config:      CORSConfig{Enabled: true, AllowedOrigins: []string{"*"}},
			method:      http.MethodPost,
			origin:      "http://example.com",
			wantStatus:  http.StatusOK,
			wantAllowed: "*",
		},
		{
			name:        "specific origin echoed",
			config:      CORSConfig{Enabled: true, AllowedOrigins: []string{"http://localhost:3000"}},
			method:      http.MethodPost,
			origin:      "http://localhost:3000",
			wantStatus:  http.StatusOK,
			wantAllowed: "http://localhost:3000",
		},
		{
			name:        "unknown origin gets no header",
			config:      CORSConfig{Enabled: true, AllowedOrigins: []string{"http://localhost:3000"}},
			method:      http.MethodPost,
			origin:      "http://evil.test",
			wantStatus:  http.StatusOK,
			wantAllowed: "",
		},
		{
			name:        "preflight allowed",
			config:      CORSConfig{Enabled: true, AllowedOrigins: []string{"*"}},
			method:      http.MethodOptions,
			origin:      "http://example.com",
			preflight:   true,
			wantStatus:  http.StatusNoContent,
			wantAllowed: "*",
		},
		{
			name:        "preflight forbidden",
			config:      CORSConfig{Enabled: true, AllowedOrigins: []string{"http://localhost:3000"}},
			method:      http.MethodOptions,
			origin:      "http://evil.test",
			preflight:   true,
			wantStatus:  http.StatusForbidden,
			wantAllowed: "",
		},
		{
			name:        "disabled passes through",
			config:      CORSConfig{Enabled: false, AllowedOrigins: []string{"*"}},
			method:      http.MethodPost,
			origin:      "http://example.com",
			wantStatus:  http.StatusOK,
			wantAllowed: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewCORSMiddleware(tt.config).Middleware(okHandler)

			req := httptest.NewRequest(tt.method, "/api/login", nil)
			req.Header.Set("Origin", tt.origin)
			if tt.preflight {
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantAllowed, rec.Header().Get("Access-Control-Allow-Origin"))
			if tt.wantAllowed != "" {
				assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Content-Type")
			}
		})
	}
}

func TestRateLimiter_Middleware(t *testing.T) {
	tests := []struct {
		name          string
		config        RateLimiterConfig
		requests      int
		expectBlocked int
	}{
		{
			name:          "allows requests within limit",
			config:        RateLimiterConfig{Enabled: true, RequestsPerSec: 10, Burst: 5},
			requests:      3,
			expectBlocked: 0,
		},
		{
			name:          "blocks requests exceeding burst",
			config:        RateLimiterConfig{Enabled: true, RequestsPerSec: 0.001, Burst: 3},
			requests:      10,
			expectBlocked: 7,
		},
		{
			name:          "disabled rate limiting allows all",
			config:        RateLimiterConfig{Enabled: false, RequestsPerSec: 1, Burst: 1},
			requests:      100,
			expectBlocked: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewRateLimiter(tt.config).Middleware(okHandler)

			blocked := 0
			for i := 0; i < tt.requests; i++ {
				req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
				req.RemoteAddr = "192.0.2.1:1234"
				rec := httptest.NewRecorder()
				handler.ServeHTTP(rec, req)
				if rec.Code == http.StatusTooManyRequests {
					blocked++
				}
			}

			assert.Equal(t, tt.expectBlocked, blocked)
		})
	}
}

func TestRateLimiter_PerClient(t *testing.T) {
	handler := NewRateLimiter(RateLimiterConfig{Enabled: true, RequestsPerSec: 0.001, Burst: 1}).Middleware(okHandler)

	for _, addr := range []string{"192.0.2.1:1000", "192.0.2.2:1000"} {
		req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, "first request from %s", addr)
	}

	// same IP, different port shares the limiter
	req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
	req.RemoteAddr = "192.0.2.1:2000"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestRateLimiter_EvictIdle(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Enabled: true, RequestsPerSec: 1, Burst: 1})
	rl.getLimiter("192.0.2.1")
	rl.visitors["192.0.2.1"].lastSeen = time.Now().Add(-time.Hour)
	rl.getLimiter("192.0.2.2")

	rl.evictIdle(time.Minute)

	assert.NotContains(t, rl.visitors, "192.0.2.1")
	assert.Contains(t, rl.visitors, "192.0.2.2")
}

func TestSecureHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecureHeaders(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "form-action 'self'")
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	rec = httptest.NewRecorder()
	SecureHeaders(okHandler).ServeHTTP(rec, req)
	assert.NotEmpty(t, rec.Header().Get("Strict-Transport-Security"))
}
