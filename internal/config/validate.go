package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/birddigital/login-form/internal/storage"
)

// Validate checks that all required configuration is present and valid
func (c *Config) Validate() error {
	var errors []string

	for _, check := range []func() error{
		c.validateServer,
		c.validateLogin,
		c.validateStorage,
		c.validateMonitoring,
		c.validateLogging,
	} {
		if err := check(); err != nil {
			errors = append(errors, err.Error())
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s",
			strings.Join(errors, "\n  - "))
	}

	return nil
}

func validatePort(name, value string) error {
	if value == "" {
		return fmt.Errorf("%s is required", name)
	}
	port, err := strconv.Atoi(value)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("%s must be a valid port number: %s", name, value)
	}
	return nil
}

func (c *Config) validateServer() error {
	if err := validatePort("HTTP_PORT", c.Server.HTTPPort); err != nil {
		return err
	}

	if c.Server.RateLimitEnabled {
		if c.Server.RateLimitRequestsPerSec <= 0 {
			return fmt.Errorf("RATE_LIMIT_RPS must be positive, got: %v", c.Server.RateLimitRequestsPerSec)
		}
		if c.Server.RateLimitBurst < 1 {
			return fmt.Errorf("RATE_LIMIT_BURST must be at least 1, got: %d", c.Server.RateLimitBurst)
		}
	}

	return nil
}

func (c *Config) validateLogin() error {
	if c.Login.Endpoint == "" {
		return fmt.Errorf("LOGIN_ENDPOINT is required")
	}

	parsedURL, err := url.Parse(c.Login.Endpoint)
	if err != nil {
		return fmt.Errorf("LOGIN_ENDPOINT must be a valid URL: %w", err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("LOGIN_ENDPOINT must use http or https scheme, got: %s",
			parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("LOGIN_ENDPOINT must include a host")
	}

	if c.Login.ClientTimeout < 0 {
		return fmt.Errorf("LOGIN_CLIENT_TIMEOUT must be a non-negative duration")
	}

	return nil
}

func (c *Config) validateStorage() error {
	if c.Storage.DatabaseURL != "" {
		parsedURL, err := url.Parse(c.Storage.DatabaseURL)
		if err != nil {
			return fmt.Errorf("DATABASE_URL must be a valid URL: %w", err)
		}
		if parsedURL.Scheme != "postgres" && parsedURL.Scheme != "postgresql" {
			return fmt.Errorf("DATABASE_URL must use postgres or postgresql scheme, got: %s",
				parsedURL.Scheme)
		}
	}

	if _, err := storage.ParseSeedUsers(c.Storage.SeedUsers); err != nil {
		return fmt.Errorf("LOGIN_SEED_USERS: %w", err)
	}

	return nil
}

func (c *Config) validateMonitoring() error {
	return validatePort("PROMETHEUS_PORT", c.Monitoring.PrometheusPort)
}

func (c *Config) validateLogging() error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("LOG_LEVEL must be one of: debug, info, warn, error, got: %s", c.Logging.Level)
	}

	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		return fmt.Errorf("LOG_FORMAT must be 'json' or 'console', got: %s", c.Logging.Format)
	}

	return nil
}
