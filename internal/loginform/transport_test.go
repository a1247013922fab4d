package loginform

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerTransport(t *testing.T) {
	var gotBody map[string]string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/login", r.URL.Path)
		assert.Equal(t, "/api/login", r.RequestURI)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Invalid credentials"}`))
	})

	display := NewStateDisplay()
	client := NewClient("http://in-process/api/login", 0,
		WithHTTPDoer(&http.Client{Transport: HandlerTransport(handler)}))
	h := NewSubmitHandler(FieldValue("alice"), FieldValue("pw"), display, client)

	result := h.HandleSubmit(context.Background(), NoopEvent)

	assert.Equal(t, map[string]string{"username": "alice", "password": "pw"}, gotBody)
	assert.Equal(t, http.StatusUnauthorized, result.Status)
	assert.Equal(t, "Invalid credentials", display.State().Text)
}

func TestHandlerTransport_ImplicitStatus(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	req, err := http.NewRequest(http.MethodPost, "http://in-process/", nil)
	require.NoError(t, err)

	resp, err := HandlerTransport(handler).RoundTrip(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "200 OK", resp.Status)
	assert.Equal(t, "{}", string(body))
}

func TestHandlerTransport_CancelledContext(t *testing.T) {
	called := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "http://in-process/", nil)
	require.NoError(t, err)

	_, err = HandlerTransport(handler).RoundTrip(req)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
