package web

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/birddigital/login-form/internal/loginform"
	"github.com/birddigital/login-form/internal/middleware"
)

// LoginPageHandler handles GET / and renders an empty form
type LoginPageHandler struct{}

// NewLoginPageHandler creates a new login page handler
func NewLoginPageHandler() *LoginPageHandler {
	return &LoginPageHandler{}
}

// ServeHTTP implements http.Handler
func (h *LoginPageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusOK, LoginPageData{})
}

// LoginSubmitHandler handles POST /login. It runs the form submission
// against the login endpoint and re-renders the same page with the result,
// so a submission never navigates away.
type LoginSubmitHandler struct {
	client   *loginform.Client
	recorder loginform.Recorder
	logger   zerolog.Logger
}

// NewLoginSubmitHandler creates a submit handler. recorder may be nil.
func NewLoginSubmitHandler(client *loginform.Client, recorder loginform.Recorder, logger zerolog.Logger) *LoginSubmitHandler {
	return &LoginSubmitHandler{
		client:   client,
		recorder: recorder,
		logger:   logger,
	}
}

// ServeHTTP implements http.Handler
func (h *LoginSubmitHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.logger.Debug().Err(err).Msg("unparseable login form")
	}

	username := loginform.FieldValue(r.PostFormValue(UsernameID))
	password := loginform.FieldValue(r.PostFormValue(PasswordID))
	display := loginform.NewStateDisplay()

	opts := []loginform.HandlerOption{
		loginform.WithLogger(middleware.LoggerFromContextOr(r.Context(), h.logger)),
	}
	if h.recorder != nil {
		opts = append(opts, loginform.WithRecorder(h.recorder))
	}

	submit := loginform.NewSubmitHandler(username, password, display, h.client, opts...)
	submit.HandleSubmit(r.Context(), loginform.NoopEvent)

	render(w, r, http.StatusOK, LoginPageData{
		Username: username.Value(),
		Display:  display.State(),
	})
}

func render(w http.ResponseWriter, r *http.Request, status int, data LoginPageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := LoginPage(data).Render(r.Context(), w); err != nil {
		log := middleware.LoggerFromContextOr(r.Context(), zerolog.Nop())
		log.Error().Err(err).Msg("failed to render login page")
	}
}
