package repository

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations
var migrationsFS embed.FS

// MigrationResult reports the schema version before and after a migration.
type MigrationResult struct {
	From    uint
	To      uint
	Changed bool
}

// Migrate moves the schema of the database at dsn to target. A negative
// target means the latest version and zero rolls everything back.
func Migrate(ctx context.Context, driver, dsn string, target int) (MigrationResult, error) {
	d, err := dialectFor(driver)
	if err != nil {
		return MigrationResult{}, err
	}
	db, err := d.open(dsn, true)
	if err != nil {
		return MigrationResult{}, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return MigrationResult{}, fmt.Errorf("ping %s: %w", driver, err)
	}

	m, err := newMigrator(d, db)
	if err != nil {
		_ = db.Close()
		return MigrationResult{}, err
	}
	// Closing the migrator closes db too.
	defer func() { _, _ = m.Close() }()

	from, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return MigrationResult{}, fmt.Errorf("read schema version: %w", err)
	}
	if dirty {
		return MigrationResult{From: from}, fmt.Errorf("%w at version %d", ErrDirtyMigration, from)
	}

	switch {
	case target < 0:
		err = m.Up()
	case target == 0:
		err = m.Down()
	default:
		err = m.Migrate(uint(target))
	}
	if errors.Is(err, migrate.ErrNoChange) {
		return MigrationResult{From: from, To: from}, nil
	}
	if err != nil {
		return MigrationResult{From: from}, fmt.Errorf("migrate %s to %d: %w", driver, target, err)
	}

	to, _, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return MigrationResult{From: from}, fmt.Errorf("read schema version: %w", err)
	}
	return MigrationResult{From: from, To: to, Changed: true}, nil
}

func newMigrator(d dialect, db *sql.DB) (*migrate.Migrate, error) {
	var (
		drv database.Driver
		err error
	)
	switch d.name {
	case "sqlite":
		drv, err = migratesqlite.WithInstance(db, &migratesqlite.Config{})
	case "postgres":
		drv, err = migratepgx.WithInstance(db, &migratepgx.Config{})
	case "mysql":
		drv, err = migratemysql.WithInstance(db, &migratemysql.Config{})
	}
	if err != nil {
		return nil, fmt.Errorf("create %s migrate driver: %w", d.name, err)
	}

	sub, err := fs.Sub(migrationsFS, "migrations/"+d.name)
	if err != nil {
		return nil, fmt.Errorf("open %s migrations: %w", d.name, err)
	}
	src, err := iofs.New(sub, ".")
	if err != nil {
		return nil, fmt.Errorf("create migration source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, d.name, drv)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return m, nil
}
