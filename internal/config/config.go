package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Login client configuration
	Login LoginConfig

	// User store configuration
	Storage StorageConfig

	// Monitoring configuration
	Monitoring MonitoringConfig

	// Logging configuration
	Logging LoggingConfig
}

type ServerConfig struct {
	HTTPPort string // e.g., "8080"

	// Honor X-Forwarded-For / X-Real-IP. Only enable behind a proxy that sets them.
	TrustProxyHeaders bool

	// Rate Limiting
	RateLimitEnabled        bool    // Enable/disable rate limiting
	RateLimitRequestsPerSec float64 // Requests per second per IP
	RateLimitBurst          int     // Burst capacity

	// CORS
	CORSEnabled        bool     // Enable/disable CORS
	CORSAllowedOrigins []string // Allowed origins (comma-separated)
}

type LoginConfig struct {
	Endpoint      string        // e.g., "http://localhost:8080/api/login"
	ClientTimeout time.Duration // 0 disables the timeout

	// InProcess serves page submissions with this server's own API handler
	// instead of sending them over the network to Endpoint
	InProcess bool
}

type StorageConfig struct {
	DatabaseURL string // postgres://... ; empty selects the in-memory store
	SeedUsers   string // "alice:secret,bob:hunter2"
}

type MonitoringConfig struct {
	PrometheusPort string // e.g., "9090"
}

type LoggingConfig struct {
	Level      string // "debug", "info", "warn", "error"
	Format     string // "json", "console"
	OutputPath string // file path or "stdout"
	MaxSizeMB  int    // Max size in MB before rotation
	MaxBackups int    // Max number of old log files to retain
	MaxAgeDays int    // Max age in days for old log files
	Compress   bool   // Compress rotated logs
}

// Load reads environment variables and returns populated Config
// It will load from .env file if present, but env vars take precedence
func Load() (*Config, error) {
	// Environment variables already set will NOT be overwritten
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			HTTPPort:          getEnv("HTTP_PORT", "8080"),
			TrustProxyHeaders: getEnvAsBool("TRUST_PROXY_HEADERS", false),

			RateLimitEnabled:        getEnvAsBool("RATE_LIMIT_ENABLED", true),
			RateLimitRequestsPerSec: getEnvAsFloat("RATE_LIMIT_RPS", 10.0),
			RateLimitBurst:          getEnvAsInt("RATE_LIMIT_BURST", 20),

			CORSEnabled:        getEnvAsBool("CORS_ENABLED", true),
			CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Login: LoginConfig{
			Endpoint:      getEnv("LOGIN_ENDPOINT", "http://localhost:8080/api/login"),
			ClientTimeout: getEnvAsDuration("LOGIN_CLIENT_TIMEOUT", 0),
			InProcess:     getEnvAsBool("LOGIN_IN_PROCESS", true),
		},
		Storage: StorageConfig{
			DatabaseURL: getEnv("DATABASE_URL", ""),
			SeedUsers:   getEnv("LOGIN_SEED_USERS", ""),
		},
		Monitoring: MonitoringConfig{
			PrometheusPort: getEnv("PROMETHEUS_PORT", "9090"),
		},
		Logging: LoggingConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			Format:     getEnv("LOG_FORMAT", "json"),
			OutputPath: getEnv("LOG_OUTPUT_PATH", "stdout"),
			MaxSizeMB:  getEnvAsInt("LOG_MAX_SIZE_MB", 100),
			MaxBackups: getEnvAsInt("LOG_MAX_BACKUPS", 3),
			MaxAgeDays: getEnvAsInt("LOG_MAX_AGE_DAYS", 28),
			Compress:   getEnvAsBool("LOG_COMPRESS", true),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// getEnv retrieves environment variable or returns default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves environment variable as int or returns default
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// getEnvAsBool retrieves environment variable as bool or returns default
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// getEnvAsDuration retrieves environment variable as duration. Unparseable
// values are kept as -1ns so that Validate reports them.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return -1
	}

	return value
}

// getEnvAsFloat retrieves environment variable as float64 or returns default
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

// getEnvAsSlice retrieves environment variable as string slice (comma-separated) or returns default
func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var values []string
	for _, v := range strings.Split(valueStr, ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}

	if len(values) == 0 {
		return defaultValue
	}

	return values
}

// ServerPort returns the HTTP port as an integer
func (c *Config) ServerPort() int {
	port, _ := strconv.Atoi(c.Server.HTTPPort)
	return port
}

// MetricsPort returns the Prometheus port as an integer
func (c *Config) MetricsPort() int {
	port, _ := strconv.Atoi(c.Monitoring.PrometheusPort)
	return port
}
