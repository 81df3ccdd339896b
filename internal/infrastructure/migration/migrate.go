package migration

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
)

// Migrator drives schema migrations over an open Postgres connection.
// It wraps golang-migrate so callers never see ErrNoChange: an already
// current schema is a no-op, not an error.
type Migrator struct {
	m   *migrate.Migrate
	log *zap.Logger
}

// New builds a Migrator reading SQL file pairs from migrationsPath.
func New(db *sql.DB, migrationsPath string, log *zap.Logger) (*Migrator, error) {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("postgres migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsPath, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("migrate instance: %w", err)
	}

	return &Migrator{m: m, log: log}, nil
}

// Up applies every pending migration.
func (mg *Migrator) Up() error {
	mg.log.Info("Applying pending migrations")

	if err := mg.m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			mg.log.Info("Schema already current")
			return nil
		}
		return fmt.Errorf("migrate up: %w", err)
	}
	return mg.logVersion("Migrations applied")
}

// Down rolls back every applied migration.
func (mg *Migrator) Down() error {
	mg.log.Info("Rolling back all migrations")

	if err := mg.m.Down(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			mg.log.Info("Nothing to roll back")
			return nil
		}
		return fmt.Errorf("migrate down: %w", err)
	}
	mg.log.Info("All migrations rolled back")
	return nil
}

// Steps applies n migrations; negative n rolls back.
func (mg *Migrator) Steps(n int) error {
	mg.log.Info("Applying migration steps", zap.Int("steps", n))

	if err := mg.m.Steps(n); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			mg.log.Info("Schema already current")
			return nil
		}
		return fmt.Errorf("migrate steps: %w", err)
	}
	return mg.logVersion("Migration steps applied")
}

// GoTo migrates up or down to exactly the given version.
func (mg *Migrator) GoTo(version uint) error {
	mg.log.Info("Migrating to version", zap.Uint("target", version))

	if err := mg.m.Migrate(version); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			mg.log.Info("Already at target version")
			return nil
		}
		return fmt.Errorf("migrate to version %d: %w", version, err)
	}
	mg.log.Info("Migrated", zap.Uint("version", version))
	return nil
}

// Version reports the current schema version. A fresh database reports
// version 0 and no error.
func (mg *Migrator) Version() (uint, bool, error) {
	version, dirty, err := mg.m.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("read schema version: %w", err)
	}
	return version, dirty, nil
}

// Force stamps the schema version without running any SQL. Only for
// recovering a dirty state after a failed migration.
func (mg *Migrator) Force(version int) error {
	mg.log.Warn("Forcing schema version", zap.Int("version", version))

	if err := mg.m.Force(version); err != nil {
		return fmt.Errorf("force version %d: %w", version, err)
	}
	return nil
}

// Drop removes every object in the database.
func (mg *Migrator) Drop() error {
	mg.log.Warn("Dropping all database objects")

	if err := mg.m.Drop(); err != nil {
		return fmt.Errorf("drop database: %w", err)
	}
	mg.log.Info("Database dropped")
	return nil
}

// Close releases the source and database handles.
func (mg *Migrator) Close() error {
	sourceErr, dbErr := mg.m.Close()
	if sourceErr != nil {
		return fmt.Errorf("close migration source: %w", sourceErr)
	}
	if dbErr != nil {
		return fmt.Errorf("close migration database: %w", dbErr)
	}
	return nil
}

func (mg *Migrator) logVersion(msg string) error {
	version, dirty, err := mg.m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("read schema version: %w", err)
	}
	mg.log.Info(msg, zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}
