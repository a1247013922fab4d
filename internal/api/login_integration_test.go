package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/birddigital/login-form/internal/storage"
	"github.com/birddigital/login-form/internal/testutil"
)

func TestIntegration_LoginAgainstPostgres(t *testing.T) {
	dsn := testutil.PostgresDSN(t)
	ctx := context.Background()

	require.NoError(t, storage.NewMigrationRunner(dsn, zerolog.Nop()).Up())

	pool, err := storage.NewPool(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	store := storage.NewPostgresUserStore(pool)
	require.NoError(t, storage.Seed(ctx, store, map[string]string{"alice": "secret"}))

	handler := NewLoginHandler(store, nil, zerolog.Nop())

	for body, want := range map[string]int{
		`{"username":"alice","password":"secret"}`: http.StatusOK,
		`{"username":"alice","password":"wrong"}`:  http.StatusUnauthorized,
		`{"username":"bob","password":"secret"}`:   http.StatusUnauthorized,
	} {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(body)))
		assert.Equal(t, want, w.Code, body)
	}

	w := httptest.NewRecorder()
	NewHealthChecker(pool).HandleHealth()(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
