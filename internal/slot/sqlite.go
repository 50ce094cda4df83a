package slot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"qrscan-go/internal/scan"
	"qrscan-go/internal/slot/migrations"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLite is a SQLite-backed implementation of the Slot interface.
// All slots live in a single `slots` table keyed by name. A write replaces
// the row in one upsert statement, so readers never observe a torn value.
type SQLite struct {
	db   *sql.DB
	path string
}

// NewSQLite opens (or creates) a slot database at the given path and brings
// its schema up to date. path can be a file path or ":memory:" for an
// in-memory database. A database left dirty by an interrupted migration, or
// written by a newer build, is refused rather than repaired.
func NewSQLite(path string) (*SQLite, error) {
	db, err := openConnection(path)
	if err != nil {
		return nil, err
	}

	st, err := migrations.Check(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("checking slot schema: %w", err)
	}
	switch {
	case st.Dirty:
		db.Close()
		return nil, fmt.Errorf("slot database %s stopped mid-migration at schema version %d; restore or delete it", path, st.Version)
	case st.Version > st.Latest:
		db.Close()
		return nil, fmt.Errorf("slot database %s is at schema version %d, newer than this build understands (%d)", path, st.Version, st.Latest)
	case !st.UpToDate():
		if err := migrations.MigrateUp(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrating slot database: %w", err)
		}
	}

	return &SQLite{db: db, path: path}, nil
}

// openConnection opens and configures a SQLite database connection with appropriate PRAGMAs.
func openConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign key constraints (SQLite default is OFF for backward compatibility)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// Read returns the current value of the named slot.
func (s *SQLite) Read(name string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(context.Background(),
		"SELECT value FROM slots WHERE name = ?", name).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("reading slot %q: %w", name, scan.ErrSlotNotFound)
		}
		return nil, fmt.Errorf("reading slot %q: %w", name, err)
	}
	return value, nil
}

// Write replaces the value of the named slot.
func (s *SQLite) Write(name string, data []byte) error {
	_, err := s.db.ExecContext(context.Background(), `
		INSERT INTO slots (name, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		name, data, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("writing slot %q: %w", name, err)
	}
	return nil
}

// Path returns the database file path (or ":memory:" for in-memory databases).
func (s *SQLite) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Compile-time check that SQLite implements scan.Slot interface
var _ scan.Slot = (*SQLite)(nil)
