package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/birddigital/login-form/internal/metrics"
	"github.com/birddigital/login-form/internal/storage"
)

// failingStore returns an error for every lookup
type failingStore struct{}

func (failingStore) FindByUsername(context.Context, string) (*storage.User, error) {
	return nil, errors.New("connection reset")
}

func (failingStore) CreateUser(context.Context, string, string) (*storage.User, error) {
	return nil, errors.New("connection reset")
}

func newSeededStore(t *testing.T) *storage.MemoryUserStore {
	t.Helper()
	store := storage.NewMemoryUserStore()
	_, err := store.CreateUser(context.Background(), "alice", "secret")
	require.NoError(t, err)
	return store
}

func TestLoginHandler(t *testing.T) {
	tests := []struct {
		name        string
		store       storage.UserStore
		body        string
		wantStatus  int
		wantMessage string
		wantResult  string
	}{
		{
			name:        "valid credentials",
			body:        `{"username":"alice","password":"secret"}`,
			wantStatus:  http.StatusOK,
			wantMessage: MessageLoginSuccessful,
			wantResult:  resultSuccess,
		},
		{
			name:        "wrong password",
			body:        `{"username":"alice","password":"nope"}`,
			wantStatus:  http.StatusUnauthorized,
			wantMessage: MessageInvalidCredentials,
			wantResult:  resultInvalidCredentials,
		},
		{
			name:        "unknown user",
			body:        `{"username":"mallory","password":"secret"}`,
			wantStatus:  http.StatusUnauthorized,
			wantMessage: MessageInvalidCredentials,
			wantResult:  resultInvalidCredentials,
		},
		{
			name:        "missing username",
			body:        `{"password":"secret"}`,
			wantStatus:  http.StatusUnauthorized,
			wantMessage: MessageInvalidCredentials,
			wantResult:  resultInvalidCredentials,
		},
		{
			name:        "empty password",
			body:        `{"username":"alice","password":""}`,
			wantStatus:  http.StatusUnauthorized,
			wantMessage: MessageInvalidCredentials,
			wantResult:  resultInvalidCredentials,
		},
		{
			name:        "malformed json",
			body:        `{"username":`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: MessageMalformedBody,
			wantResult:  resultMalformed,
		},
		{
			name:        "store failure",
			store:       failingStore{},
			body:        `{"username":"alice","password":"secret"}`,
			wantStatus:  http.StatusInternalServerError,
			wantMessage: MessageInternalError,
			wantResult:  resultError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := tt.store
			if store == nil {
				store = newSeededStore(t)
			}
			m := metrics.NewLoginMetrics(prometheus.NewRegistry())
			handler := NewLoginHandler(store, m, zerolog.Nop())

			req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			var resp MessageResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Equal(t, tt.wantMessage, resp.Message)

			assert.Equal(t, 1.0, testutil.ToFloat64(m.Attempts.WithLabelValues(tt.wantResult)))
		})
	}
}

type pingerFunc func(context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthChecker(t *testing.T) {
	tests := []struct {
		name       string
		db         Pinger
		wantStatus int
		wantBody   string
	}{
		{"in-memory store", nil, http.StatusOK, `"status":"healthy"`},
		{"database up", pingerFunc(func(context.Context) error { return nil }), http.StatusOK, `"status":"healthy"`},
		{"database down", pingerFunc(func(context.Context) error { return errors.New("refused") }), http.StatusServiceUnavailable, `"status":"unhealthy"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hc := NewHealthChecker(tt.db)
			w := httptest.NewRecorder()
			hc.HandleHealth()(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}
