package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// dialect captures what differs between the supported SQL databases.
type dialect struct {
	name       string
	sqlDriver  string
	dollarArgs bool
}

var dialects = map[string]dialect{
	"sqlite":   {name: "sqlite", sqlDriver: "sqlite"},
	"postgres": {name: "postgres", sqlDriver: "pgx", dollarArgs: true},
	"mysql":    {name: "mysql", sqlDriver: "mysql"},
}

func dialectFor(driver string) (dialect, error) {
	d, ok := dialects[driver]
	if !ok {
		return dialect{}, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
	return d, nil
}

// open returns a handle for dsn. MySQL DSNs are normalised so that updates
// report matched rows, and migrations may run multi-statement files.
func (d dialect) open(dsn string, migrating bool) (*sql.DB, error) {
	if d.name == "mysql" {
		cfg, err := mysql.ParseDSN(dsn)
		if err != nil {
			return nil, fmt.Errorf("parse mysql dsn: %w", err)
		}
		cfg.ClientFoundRows = true
		cfg.MultiStatements = migrating
		dsn = cfg.FormatDSN()
	}
	db, err := sql.Open(d.sqlDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.name, err)
	}
	if d.name == "sqlite" {
		// One writer avoids "database is locked".
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

// rebind rewrites ? placeholders to $n for postgres.
func (d dialect) rebind(query string) string {
	if !d.dollarArgs {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// isUniqueViolation reports whether err is a primary key or unique
// constraint failure in any supported driver.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}
