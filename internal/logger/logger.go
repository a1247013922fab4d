package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the process-wide logger set by Initialize
var Logger = zerolog.Nop()

// Config holds logger configuration
type Config struct {
	Level      string // "debug", "info", "warn", "error"
	Format     string // "json", "console"
	OutputPath string // file path or "stdout"

	// Log rotation settings (for lumberjack)
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool

	// Service is attached to every entry when set
	Service string
}

// New builds a logger from cfg without touching global state. The returned
// closer releases the rotating log file, if any.
func New(cfg Config) (zerolog.Logger, io.Closer, error) {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		level = parsed
	}

	var (
		output io.Writer = os.Stdout
		closer io.Closer = io.NopCloser(nil)
	)

	if cfg.OutputPath != "" && cfg.OutputPath != "stdout" {
		rotating := &lumberjack.Logger{
			Filename:   cfg.OutputPath,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
		output = rotating
		closer = rotating
	}

	if strings.ToLower(cfg.Format) == "console" {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}
	}

	ctx := zerolog.New(output).Level(level).With().Timestamp()
	if cfg.Service != "" {
		ctx = ctx.Str("service", cfg.Service)
	}

	return ctx.Logger(), closer, nil
}

// Initialize builds the logger and installs it as the package and zerolog
// global logger
func Initialize(cfg Config) (io.Closer, error) {
	l, closer, err := New(cfg)
	if err != nil {
		return nil, err
	}

	zerolog.SetGlobalLevel(l.GetLevel())
	Logger = l
	log.Logger = l

	return closer, nil
}

// Component returns a child logger tagged with the component name
func Component(parent zerolog.Logger, name string) zerolog.Logger {
	return parent.With().Str("component", name).Logger()
}
