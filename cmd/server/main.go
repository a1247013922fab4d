package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/birddigital/login-form/internal/api"
	"github.com/birddigital/login-form/internal/config"
	"github.com/birddigital/login-form/internal/logger"
	"github.com/birddigital/login-form/internal/loginform"
	"github.com/birddigital/login-form/internal/metrics"
	"github.com/birddigital/login-form/internal/middleware"
	"github.com/birddigital/login-form/internal/server"
	"github.com/birddigital/login-form/internal/storage"
	"github.com/birddigital/login-form/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Use basic logging before logger is initialized
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	closer, err := logger.Initialize(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		OutputPath: cfg.Logging.OutputPath,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
		Service:    "login-form",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	log := logger.Logger
	log.Info().
		Str("log_level", cfg.Logging.Level).
		Str("log_format", cfg.Logging.Format).
		Str("login_endpoint", cfg.Login.Endpoint).
		Msg("Starting login form server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("server exited with error")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	users, pinger, cleanup, err := openUserStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	seeds, err := storage.ParseSeedUsers(cfg.Storage.SeedUsers)
	if err != nil {
		return err
	}
	if err := storage.Seed(ctx, users, seeds); err != nil {
		return err
	}
	if len(seeds) > 0 {
		log.Info().Int("count", len(seeds)).Msg("Seeded users")
	}

	// Metrics registry shared by the API, the form client and the metrics server
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	loginMetrics := metrics.NewLoginMetrics(reg)

	metricsServer := metrics.NewMetricsServer(cfg.MetricsPort(), reg, logger.Component(log, "metrics"))
	go func() {
		if err := metricsServer.Start(); err != nil {
			log.Error().Err(err).Msg("Metrics server failed")
		}
	}()

	apiLogin := api.NewLoginHandler(users, loginMetrics, logger.Component(log, "api"))

	// In-process submissions reach the API handler without passing the rate limiter
	formHTTP := metrics.NewHTTPClient(cfg.Login.ClientTimeout, loginMetrics)
	if cfg.Login.InProcess {
		formHTTP = metrics.NewInstrumentedClient(loginform.HandlerTransport(apiLogin), cfg.Login.ClientTimeout, loginMetrics)
	}
	formClient := loginform.NewClient(cfg.Login.Endpoint, cfg.Login.ClientTimeout, loginform.WithHTTPDoer(formHTTP))

	var limiter *middleware.RateLimiter
	if cfg.Server.RateLimitEnabled {
		limiter = middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Enabled:        true,
			RequestsPerSec: cfg.Server.RateLimitRequestsPerSec,
			Burst:          cfg.Server.RateLimitBurst,
		})
		go limiter.Cleanup(ctx, time.Minute, 10*time.Minute)
	}

	router := server.NewRouter(server.RouterConfig{
		Logger:            log,
		EnableCORS:        cfg.Server.CORSEnabled,
		AllowedOrigins:    cfg.Server.CORSAllowedOrigins,
		TrustProxyHeaders: cfg.Server.TrustProxyHeaders,
		RateLimiter:       limiter,
		Metrics:           loginMetrics,
	}, server.Handlers{
		Login:  apiLogin,
		Page:   web.NewLoginPageHandler(),
		Submit: web.NewLoginSubmitHandler(formClient, loginMetrics, logger.Component(log, "loginform")),
		Health: api.NewHealthChecker(pinger),
	})

	httpServer := server.NewServer(router, log, server.ServerOptions{
		Port: cfg.ServerPort(),
	})

	// Blocks until the context is cancelled by a shutdown signal
	serveErr := httpServer.Start(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Metrics server shutdown error")
	}

	log.Info().Msg("Server stopped")
	return serveErr
}

// openUserStore selects PostgreSQL when DATABASE_URL is set and the
// in-memory store otherwise. pinger is nil for the in-memory store.
func openUserStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (storage.UserStore, api.Pinger, func(), error) {
	if cfg.Storage.DatabaseURL == "" {
		log.Warn().Msg("DATABASE_URL not set - using in-memory user store")
		return storage.NewMemoryUserStore(), nil, func() {}, nil
	}

	if err := storage.NewMigrationRunner(cfg.Storage.DatabaseURL, logger.Component(log, "migrate")).Up(); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	pool, err := storage.NewPool(ctx, cfg.Storage.DatabaseURL)
	if err != nil {
		return nil, nil, nil, err
	}
	log.Info().Msg("Database connected")

	return storage.NewPostgresUserStore(pool), pool, pool.Close, nil
}
