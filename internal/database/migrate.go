package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"wiki-quiz/internal/config"
	"wiki-quiz/internal/logger"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations
var migrationFS embed.FS

// Migrator applies the embedded schema migrations for one driver.
type Migrator struct {
	m    *migrate.Migrate
	conn *sql.Conn
}

// NewMigrator wraps an open pool. The caller keeps ownership of db; Close
// only releases the connection the Migrator checked out of it.
func NewMigrator(db *sql.DB, driver string) (*Migrator, error) {
	var (
		instance migratedb.Driver
		conn     *sql.Conn
		err      error
	)
	switch driver {
	case config.DriverPostgres:
		ctx := context.Background()
		conn, err = db.Conn(ctx)
		if err != nil {
			return nil, fmt.Errorf("could not reserve migration connection: %w", err)
		}
		instance, err = postgres.WithConnection(ctx, conn, &postgres.Config{})
		if err != nil {
			conn.Close()
		}
	case config.DriverSQLite:
		instance, err = sqlite3.WithInstance(db, &sqlite3.Config{})
	default:
		return nil, fmt.Errorf("no migrations for driver %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("could not create migration driver: %w", err)
	}

	mg := &Migrator{conn: conn}
	source, err := iofs.New(migrationFS, "migrations/"+driver)
	if err != nil {
		mg.Close()
		return nil, fmt.Errorf("could not load migrations: %w", err)
	}

	mg.m, err = migrate.NewWithInstance("iofs", source, driver, instance)
	if err != nil {
		mg.Close()
		return nil, fmt.Errorf("could not initialise migrations: %w", err)
	}
	return mg, nil
}

// Up applies all pending migrations. An up-to-date schema is not an error.
func (mg *Migrator) Up() error {
	if err := mg.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	mg.logVersion("Migrations applied")
	return nil
}

// Down rolls back a single migration.
func (mg *Migrator) Down() error {
	if err := mg.m.Steps(-1); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate down: %w", err)
	}
	mg.logVersion("Migration rolled back")
	return nil
}

// Version returns the current schema version; 0 means no migration applied.
func (mg *Migrator) Version() (uint, bool, error) {
	v, dirty, err := mg.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return v, dirty, err
}

// Close hands the reserved connection back to the pool. The migrate
// instance is not closed because its sqlite3 driver would close db.
func (mg *Migrator) Close() error {
	if mg.conn == nil {
		return nil
	}
	err := mg.conn.Close()
	mg.conn = nil
	return err
}

func (mg *Migrator) logVersion(msg string) {
	v, dirty, err := mg.Version()
	if err != nil {
		logger.Get().Warn("Could not read schema version", zap.Error(err))
		return
	}
	logger.Get().Info(msg, zap.Uint("version", v), zap.Bool("dirty", dirty))
}

// RunMigrations applies pending migrations and returns every connection it
// used to the pool. db stays open.
func RunMigrations(db *sql.DB, driver string) error {
	mg, err := NewMigrator(db, driver)
	if err != nil {
		return err
	}
	defer mg.Close()
	return mg.Up()
}
