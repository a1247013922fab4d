package api

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/birddigital/login-form/internal/metrics"
	"github.com/birddigital/login-form/internal/middleware"
	"github.com/birddigital/login-form/internal/storage"
	"github.com/birddigital/login-form/internal/validation"
)

// Attempt results recorded in login_attempts_total
const (
	resultSuccess            = "success"
	resultInvalidCredentials = "invalid_credentials"
	resultMalformed          = "malformed"
	resultError              = "error"
)

// maxBodyBytes bounds the login request body
const maxBodyBytes = 1 << 16

// LoginHandler handles POST /api/login
type LoginHandler struct {
	users   storage.UserStore
	metrics *metrics.LoginMetrics
	logger  zerolog.Logger
}

// NewLoginHandler creates a login API handler. m may be nil.
func NewLoginHandler(users storage.UserStore, m *metrics.LoginMetrics, logger zerolog.Logger) *LoginHandler {
	return &LoginHandler{
		users:   users,
		metrics: m,
		logger:  logger,
	}
}

// ServeHTTP implements http.Handler
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	log := middleware.LoggerFromContextOr(r.Context(), h.logger)

	status, result := h.login(w, r, log)

	if h.metrics != nil {
		h.metrics.RecordAttempt(result)
		h.metrics.RecordAPIRequest(r.Method, "/api/login", status, time.Since(start).Seconds())
	}
}

func (h *LoginHandler) login(w http.ResponseWriter, r *http.Request, log zerolog.Logger) (int, string) {
	var input validation.LoginInput
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&input); err != nil {
		log.Debug().Err(err).Msg("malformed login body")
		writeMessage(w, http.StatusBadRequest, MessageMalformedBody)
		return http.StatusBadRequest, resultMalformed
	}

	if err := validation.ValidateStruct(r.Context(), input); err != nil {
		log.Debug().Err(err).Msg("login input rejected")
		writeMessage(w, http.StatusUnauthorized, MessageInvalidCredentials)
		return http.StatusUnauthorized, resultInvalidCredentials
	}

	user, err := h.users.FindByUsername(r.Context(), input.Username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Info().Str("username", input.Username).Msg("login failed: unknown user")
			writeMessage(w, http.StatusUnauthorized, MessageInvalidCredentials)
			return http.StatusUnauthorized, resultInvalidCredentials
		}
		log.Error().Err(err).Msg("user lookup failed")
		writeMessage(w, http.StatusInternalServerError, MessageInternalError)
		return http.StatusInternalServerError, resultError
	}

	if subtle.ConstantTimeCompare([]byte(user.Password), []byte(input.Password)) != 1 {
		log.Info().Str("username", input.Username).Msg("login failed: wrong password")
		writeMessage(w, http.StatusUnauthorized, MessageInvalidCredentials)
		return http.StatusUnauthorized, resultInvalidCredentials
	}

	log.Info().Str("username", user.Username).Msg("login successful")
	writeMessage(w, http.StatusOK, MessageLoginSuccessful)
	return http.StatusOK, resultSuccess
}
