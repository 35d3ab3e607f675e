package database

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// RunMigrations brings the documents schema up to date. A no-op when the
// schema is already current.
func RunMigrations(dsn, migrationsPath string) error {
	m, err := migrate.New(fmt.Sprintf("file://%s", migrationsPath), dsn)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	err = m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		slog.Info("database schema already current")
		return nil
	case err != nil:
		return fmt.Errorf("running migrations: %w", err)
	}

	ver, dirty, verErr := m.Version()
	if verErr != nil {
		slog.Warn("reading migration version", "error", verErr)
		return nil
	}
	slog.Info("database migrations applied", "version", ver, "dirty", dirty)
	return nil
}
