package slot

import (
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"qrscan-go/internal/scan"
)

func TestSQLite_WriteAndRead(t *testing.T) {
	store, err := NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("NewSQLite() error = %v", err)
	}
	defer store.Close()

	data := `[{"id":"id-1","content":"https://example.com"}]`
	if err := store.Write("history", []byte(data)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := store.Read("history")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if string(got) != data {
		t.Errorf("Read() = %q, want %q", got, data)
	}
}

func TestSQLite_ReadNotFound(t *testing.T) {
	store, err := NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("NewSQLite() error = %v", err)
	}
	defer store.Close()

	_, err = store.Read("nonexistent")
	if err == nil {
		t.Fatal("Read() expected error for nonexistent slot, got nil")
	}
	if !errors.Is(err, scan.ErrSlotNotFound) {
		t.Errorf("Read() error = %v, want ErrSlotNotFound", err)
	}
}

func TestSQLite_Overwrite(t *testing.T) {
	store, err := NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("NewSQLite() error = %v", err)
	}
	defer store.Close()

	if err := store.Write("history", []byte("first")); err != nil {
		t.Fatalf("first Write() error = %v", err)
	}
	if err := store.Write("history", []byte("second")); err != nil {
		t.Fatalf("second Write() error = %v", err)
	}

	got, err := store.Read("history")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if string(got) != "second" {
		t.Errorf("Read() = %q, want %q", got, "second")
	}
}

func TestSQLite_IndependentSlots(t *testing.T) {
	store, err := NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("NewSQLite() error = %v", err)
	}
	defer store.Close()

	if err := store.Write("history", []byte("scans")); err != nil {
		t.Fatalf("Write(history) error = %v", err)
	}
	if err := store.Write("archive", []byte("older scans")); err != nil {
		t.Fatalf("Write(archive) error = %v", err)
	}

	got, err := store.Read("history")
	if err != nil {
		t.Fatalf("Read(history) error = %v", err)
	}
	if string(got) != "scans" {
		t.Errorf("Read(history) = %q, want %q", got, "scans")
	}
}

func TestSQLite_PersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slots.db")

	first, err := NewSQLite(path)
	if err != nil {
		t.Fatalf("NewSQLite() error = %v", err)
	}
	if err := first.Write("history", []byte("durable")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	second, err := NewSQLite(path)
	if err != nil {
		t.Fatalf("second NewSQLite() error = %v", err)
	}
	defer second.Close()

	got, err := second.Read("history")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if string(got) != "durable" {
		t.Errorf("Read() = %q, want %q", got, "durable")
	}
}

func TestSQLite_RefusesDirtySchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slots.db")

	store, err := NewSQLite(path)
	if err != nil {
		t.Fatalf("NewSQLite() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// Mark the schema as if a migration had been interrupted.
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("opening database directly: %v", err)
	}
	if _, err := db.Exec("UPDATE schema_migrations SET dirty = 1"); err != nil {
		t.Fatalf("marking schema dirty: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("closing database: %v", err)
	}

	_, err = NewSQLite(path)
	if err == nil {
		t.Fatal("NewSQLite() on a dirty schema expected error, got nil")
	}
	if !strings.Contains(err.Error(), "mid-migration") {
		t.Errorf("NewSQLite() error = %v, want mention of the interrupted migration", err)
	}
}
