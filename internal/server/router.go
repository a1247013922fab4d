package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/birddigital/login-form/internal/api"
	"github.com/birddigital/login-form/internal/metrics"
	appmiddleware "github.com/birddigital/login-form/internal/middleware"
	"github.com/birddigital/login-form/internal/web"
)

// RouterConfig holds configuration for the HTTP router
type RouterConfig struct {
	Logger         zerolog.Logger
	EnableCORS     bool
	AllowedOrigins []string

	// TrustProxyHeaders takes the client IP from X-Forwarded-For / X-Real-IP.
	// Only enable behind a proxy that sets them.
	TrustProxyHeaders bool
	RequestTimeout time.Duration // defaults to 30s

	// RateLimiter is applied when non-nil. The caller owns its Cleanup loop.
	RateLimiter *appmiddleware.RateLimiter

	// Metrics tracks in-flight requests when non-nil
	Metrics *metrics.LoginMetrics
}

// Handlers are the endpoints served by the router
type Handlers struct {
	Login  http.Handler // POST /api/login
	Page   http.Handler // GET /
	Submit http.Handler // POST /login
	Health *api.HealthChecker
}

// NewRouter creates a Chi router with the middleware chain and routes
func NewRouter(cfg RouterConfig, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	r.Use(setupMiddleware(cfg)...)

	if h.Health != nil {
		r.Get("/healthz", h.Health.HandleHealth())
		r.Get("/livez", h.Health.HandleLiveness())
	}

	if h.Login != nil {
		r.With(activeRequests(cfg.Metrics, "/api/login")).Method(http.MethodPost, "/api/login", h.Login)
	}

	r.Group(func(r chi.Router) {
		r.Use(web.NoStore)
		if h.Page != nil {
			r.Method(http.MethodGet, "/", h.Page)
		}
		if h.Submit != nil {
			r.Method(http.MethodPost, "/login", h.Submit)
		}
	})

	return r
}

// setupMiddleware configures the middleware chain
func setupMiddleware(cfg RouterConfig) []func(http.Handler) http.Handler {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	// Request ID goes first so every later log line carries it
	middlewares := []func(http.Handler) http.Handler{
		appmiddleware.NewRequestIDMiddleware(cfg.Logger).Middleware,
	}

	if cfg.TrustProxyHeaders {
		middlewares = append(middlewares, middleware.RealIP)
	}

	middlewares = append(middlewares,
		appmiddleware.NewLoggingMiddleware(cfg.Logger).Middleware,
		panicRecoveryMiddleware(cfg.Logger),
		middleware.Timeout(timeout),
	)

	if cfg.EnableCORS {
		corsMiddleware := appmiddleware.NewCORSMiddleware(appmiddleware.CORSConfig{
			Enabled:        true,
			AllowedOrigins: cfg.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Requested-With"},
		})
		middlewares = append(middlewares, corsMiddleware.Middleware)
	}

	if cfg.RateLimiter != nil {
		middlewares = append(middlewares, cfg.RateLimiter.Middleware)
	}

	return append(middlewares, appmiddleware.SecureHeaders)
}

// activeRequests keeps the in-flight gauge for one endpoint
func activeRequests(m *metrics.LoginMetrics, endpoint string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m.IncActiveRequests(r.Method, endpoint)
			defer m.DecActiveRequests(r.Method, endpoint)
			next.ServeHTTP(w, r)
		})
	}
}

// panicRecoveryMiddleware handles panics and logs them with zerolog
func panicRecoveryMiddleware(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}

					log := appmiddleware.LoggerFromContextOr(r.Context(), logger)
					log.Error().
						Interface("panic", err).
						Str("remote_addr", r.RemoteAddr).
						Msg("panic_recovered")

					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
