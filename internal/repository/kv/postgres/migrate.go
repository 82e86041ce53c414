package postgres

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"goalTracker/internal/logger"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// migrateURL rewrites a libpq style URL to the scheme the pgx/v5 migrate
// driver registers under.
func migrateURL(connStr string) (string, error) {
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(connStr, prefix) {
			return "pgx5://" + strings.TrimPrefix(connStr, prefix), nil
		}
	}
	return "", fmt.Errorf("unsupported database url scheme: %q", connStr)
}

func (s *Storage) newMigrate() (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("open migrations: %w", err)
	}

	dbURL, err := migrateURL(s.connStr)
	if err != nil {
		return nil, err
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, dbURL)
	if err != nil {
		return nil, fmt.Errorf("init migrate: %w", err)
	}
	return m, nil
}

func closeMigrate(m *migrate.Migrate) {
	srcErr, dbErr := m.Close()
	if err := errors.Join(srcErr, dbErr); err != nil {
		logger.Warn("Repository: closing migrate", zap.Error(err))
	}
}

func (s *Storage) Migrate() error {
	logger.Info("Repository: applying migrations")

	m, err := s.newMigrate()
	if err != nil {
		logger.Error("Repository: migrations unavailable", err)
		return err
	}
	defer closeMigrate(m)

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Error("Repository: failed to apply migrations", err)
		return fmt.Errorf("migrate up: %w", err)
	}

	logger.Info("Repository: migrations applied")
	return nil
}

func (s *Storage) Down() error {
	logger.Info("Repository: rolling back migrations")

	m, err := s.newMigrate()
	if err != nil {
		logger.Error("Repository: migrations unavailable", err)
		return err
	}
	defer closeMigrate(m)

	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Error("Repository: failed to roll back migrations", err)
		return fmt.Errorf("migrate down: %w", err)
	}

	logger.Info("Repository: migrations rolled back")
	return nil
}
