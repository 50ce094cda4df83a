package slot

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"qrscan-go/internal/scan"
)

func TestFileSystem_WriteAndRead(t *testing.T) {
	store, err := NewFileSystem(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileSystem() error = %v", err)
	}

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

func TestFileSystem_ReadNotFound(t *testing.T) {
	store, err := NewFileSystem(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileSystem() error = %v", err)
	}

	_, err = store.Read("nonexistent")
	if err == nil {
		t.Fatal("Read() expected error for nonexistent slot, got nil")
	}
	if !errors.Is(err, scan.ErrSlotNotFound) {
		t.Errorf("Read() error = %v, want ErrSlotNotFound", err)
	}
}

func TestFileSystem_Overwrite(t *testing.T) {
	store, err := NewFileSystem(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileSystem() error = %v", err)
	}

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

func TestFileSystem_PersistsAcrossInstances(t *testing.T) {
	root := t.TempDir()

	first, err := NewFileSystem(root)
	if err != nil {
		t.Fatalf("NewFileSystem() error = %v", err)
	}
	if err := first.Write("history", []byte("durable")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	second, err := NewFileSystem(root)
	if err != nil {
		t.Fatalf("second NewFileSystem() error = %v", err)
	}
	got, err := second.Read("history")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if string(got) != "durable" {
		t.Errorf("Read() = %q, want %q", got, "durable")
	}
}

func TestFileSystem_CreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "history")

	if _, err := NewFileSystem(root); err != nil {
		t.Fatalf("NewFileSystem() error = %v", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		t.Fatalf("root directory not created: %v", err)
	}
	if !info.IsDir() {
		t.Errorf("root is not a directory: %s", root)
	}
}

func TestFileSystem_NoTempFilesLeftBehind(t *testing.T) {
	root := t.TempDir()
	store, err := NewFileSystem(root)
	if err != nil {
		t.Fatalf("NewFileSystem() error = %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := store.Write("history", []byte("value")); err != nil {
			t.Fatalf("Write() iteration %d error = %v", i+1, err)
		}
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("root contains %d entries %v, want only history.json", len(entries), names)
	}
}
