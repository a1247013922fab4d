package storage

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrationRunner applies the users schema
type MigrationRunner struct {
	dsn    string
	logger zerolog.Logger
}

// NewMigrationRunner creates a migration runner for dsn
func NewMigrationRunner(dsn string, logger zerolog.Logger) *MigrationRunner {
	return &MigrationRunner{dsn: dsn, logger: logger}
}

func (r *MigrationRunner) open() (*migrate.Migrate, error) {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to create migration source driver: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", sourceDriver, r.dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration instance: %w", err)
	}
	return m, nil
}

// Up executes all pending migrations
func (r *MigrationRunner) Up() error {
	m, err := r.open()
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if dirty {
		r.logger.Warn().Uint("version", version).Msg("migration version is dirty")
	} else {
		r.logger.Info().Uint("version", version).Msg("migrations applied")
	}

	return nil
}

// Down rolls back the last migration
func (r *MigrationRunner) Down() error {
	m, err := r.open()
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Steps(-1); err != nil {
		return fmt.Errorf("failed to rollback migration: %w", err)
	}
	return nil
}
