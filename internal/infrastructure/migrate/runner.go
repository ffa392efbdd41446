// Package migrate applies the SQL migrations under migrations/.
package migrate

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file" // file source for migrations
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

type Config struct {
	DatabaseURL    string
	MigrationsPath string
}

type Runner struct {
	config *Config
	logger *zap.Logger
}

func NewRunner(config *Config, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		config: config,
		logger: logger,
	}
}

// withMigrate opens a connection, builds a migrate instance and hands it to fn.
func (r *Runner) withMigrate(fn func(m *migrate.Migrate) error) error {
	if r.config.DatabaseURL == "" {
		return errors.New("database url is required")
	}

	db, err := sql.Open("postgres", r.config.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			r.logger.Warn("Failed to close database connection", zap.Error(closeErr))
		}
	}()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create postgres driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", r.config.MigrationsPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	return fn(m)
}

// Run executes pending migrations
func (r *Runner) Run() error {
	return r.withMigrate(func(m *migrate.Migrate) error {
		if upErr := m.Up(); upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
			return fmt.Errorf("failed to run migrations: %w", upErr)
		}
		return r.checkClean(m)
	})
}

// Steps applies n migrations; negative n rolls back.
func (r *Runner) Steps(n int) error {
	return r.withMigrate(func(m *migrate.Migrate) error {
		if err := m.Steps(n); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("failed to apply %d migration steps: %w", n, err)
		}
		return r.checkClean(m)
	})
}

// Rollback rolls back the last migration
func (r *Runner) Rollback() error {
	return r.Steps(-1)
}

// Version returns the current migration version
func (r *Runner) Version() (uint, bool, error) {
	var (
		version uint
		dirty   bool
	)
	err := r.withMigrate(func(m *migrate.Migrate) error {
		var err error
		version, dirty, err = m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			version, dirty = 0, false
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to get version: %w", err)
		}
		return nil
	})
	return version, dirty, err
}

func (r *Runner) checkClean(m *migrate.Migrate) error {
	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get version: %w", err)
	}
	if dirty {
		return fmt.Errorf("database is in dirty state at version %d", version)
	}
	r.logger.Info("Database migrated", zap.Uint("version", version))
	return nil
}
