// Package migrations owns the slot database schema. The *.sql files under
// files/ are compiled into the binary and applied with golang-migrate; the
// schema is a single slots table mapping a slot name to its current value.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed files/*.sql
var schemaFiles embed.FS

// Status describes where a slot database's schema stands relative to the
// migrations embedded in this binary.
type Status struct {
	Version uint // applied schema version; 0 when nothing has run yet
	Latest  uint // highest version embedded in the binary
	Dirty   bool // a previous migration stopped partway through
}

// UpToDate reports whether the schema needs no work before use.
func (s Status) UpToDate() bool {
	return !s.Dirty && s.Version == s.Latest
}

// Check reads the schema version of db without applying migrations. Callers
// decide what to do with the answer: the slot package migrates databases
// that are behind and refuses ones that are dirty or ahead.
func Check(db *sql.DB) (Status, error) {
	var st Status

	m, src, err := newMigrate(db)
	if err != nil {
		return st, err
	}
	defer src.Close()
	// m itself is deliberately not closed: closing a migrate instance
	// closes the db it wraps, and the caller owns db.

	st.Latest, err = latest(src)
	if err != nil {
		return st, fmt.Errorf("walking embedded migrations: %w", err)
	}

	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		// Fresh database; Version stays 0.
	case err != nil:
		return st, fmt.Errorf("reading schema version: %w", err)
	default:
		st.Version = version
		st.Dirty = dirty
	}

	return st, nil
}

// MigrateUp applies any pending schema migrations. A database already at
// the latest version is left untouched.
func MigrateUp(db *sql.DB) error {
	m, src, err := newMigrate(db)
	if err != nil {
		return err
	}
	defer src.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("applying migrations: %w", err)
	}
	return nil
}

// newMigrate wires the embedded migration files to db. The source driver is
// returned alongside so callers can inspect the migration sequence; closing
// it does not touch db.
func newMigrate(db *sql.DB) (*migrate.Migrate, source.Driver, error) {
	src, err := iofs.New(schemaFiles, "files")
	if err != nil {
		return nil, nil, fmt.Errorf("reading embedded migrations: %w", err)
	}

	drv, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		src.Close()
		return nil, nil, fmt.Errorf("preparing sqlite migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", drv)
	if err != nil {
		src.Close()
		return nil, nil, fmt.Errorf("assembling migrator: %w", err)
	}

	return m, src, nil
}

// latest walks the embedded migration sequence to its last version. The
// iofs driver signals the end of the sequence through an error from Next.
func latest(src source.Driver) (uint, error) {
	v, err := src.First()
	if err != nil {
		return 0, err
	}
	for {
		next, err := src.Next(v)
		if err != nil {
			return v, nil
		}
		v = next
	}
}
