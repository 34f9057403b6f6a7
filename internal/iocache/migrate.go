package iocache

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/huangsam/gitinsight/internal/contract"
	"github.com/huangsam/gitinsight/schema"
)

// migrationsTable records the applied history schema version.
const migrationsTable = "gitinsight_schema_migrations"

//go:embed migrations
var migrationsFS embed.FS

// migration describes the outcome of one migrate call.
type migration struct {
	from    uint
	to      uint
	changed bool
}

// newMigrator binds the embedded migrations of backend to an open database.
func newMigrator(db *sql.DB, backend schema.DatabaseBackend) (*migrate.Migrate, error) {
	var driver database.Driver
	var err error
	switch backend {
	case schema.SQLiteBackend:
		driver, err = sqlite.WithInstance(db, &sqlite.Config{MigrationsTable: migrationsTable})
	case schema.MySQLBackend:
		driver, err = mysql.WithInstance(db, &mysql.Config{MigrationsTable: migrationsTable})
	case schema.PostgreSQLBackend:
		driver, err = pgx.WithInstance(db, &pgx.Config{MigrationsTable: migrationsTable})
	default:
		return nil, fmt.Errorf("migrations are not supported for %s backend", backend)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s migrate driver: %w", backend, err)
	}

	sub, err := fs.Sub(migrationsFS, "migrations/"+string(backend))
	if err != nil {
		return nil, fmt.Errorf("failed to access migrations directory: %w", err)
	}
	source, err := iofs.New(sub, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "gitinsight", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}

// runMigrations moves the history schema to targetVersion.
// A negative target means latest and zero rolls everything back.
func runMigrations(db *sql.DB, backend schema.DatabaseBackend, targetVersion int) (migration, error) {
	m, err := newMigrator(db, backend)
	if err != nil {
		return migration{}, err
	}

	current, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return migration{}, fmt.Errorf("failed to get current migration version: %w", err)
	}
	if dirty {
		return migration{}, fmt.Errorf("database is in a dirty state at version %d. Please fix manually or force version", current)
	}

	switch {
	case targetVersion < 0:
		err = m.Up()
	case targetVersion == 0:
		err = m.Down()
	default:
		err = m.Migrate(uint(targetVersion))
	}
	if errors.Is(err, migrate.ErrNoChange) {
		return migration{from: current, to: current}, nil
	}
	if err != nil {
		return migration{}, fmt.Errorf("failed to migrate from version %d: %w", current, err)
	}

	next, _, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return migration{}, fmt.Errorf("failed to read migrated version: %w", err)
	}
	return migration{from: current, to: next, changed: true}, nil
}

// MigrateHistory runs database migrations for the history store and reports the outcome to w.
// - If targetVersion < 0, it migrates to the latest version.
// - If targetVersion == 0, it rolls back all migrations (to initial state).
// - If targetVersion > 0, it migrates to the specified version.
func MigrateHistory(w io.Writer, backend schema.DatabaseBackend, connStr string, targetVersion int) error {
	if backend == schema.NoneBackend || backend == "" {
		return errors.New("migrations are not supported for NoneBackend")
	}

	db, err := openDB(backend, connStr, contract.GetHistoryDBFilePath())
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	result, err := runMigrations(db, backend, targetVersion)
	if err != nil {
		return err
	}

	switch {
	case !result.changed:
		_, _ = fmt.Fprintf(w, "No migration needed. Database is already at version %d\n", result.to)
	case result.to == 0:
		_, _ = fmt.Fprintf(w, "Successfully rolled back from version %d to version 0\n", result.from)
	default:
		_, _ = fmt.Fprintf(w, "Successfully migrated from version %d to version %d\n", result.from, result.to)
	}
	return nil
}
