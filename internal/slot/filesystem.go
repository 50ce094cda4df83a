package slot

import (
	"fmt"
	"os"
	"path/filepath"

	"qrscan-go/internal/scan"
)

// FileSystem is a filesystem-based implementation of the Slot interface.
// Each slot is stored as a single file in the root directory:
//
//	<root>/
//	  <name>.json    (one file per slot, whole value)
type FileSystem struct {
	root string
}

// NewFileSystem creates a new filesystem slot store rooted at the given path.
func NewFileSystem(root string) (*FileSystem, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create slot directory: %w", err)
	}
	return &FileSystem{root: root}, nil
}

// Read returns the current value of the named slot.
func (fs *FileSystem) Read(name string) ([]byte, error) {
	data, err := os.ReadFile(fs.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("reading slot %q: %w", name, scan.ErrSlotNotFound)
		}
		return nil, fmt.Errorf("reading slot %q: %w", name, err)
	}
	return data, nil
}

// Write replaces the value of the named slot using atomic write
// (temp file + rename), so a crash mid-write leaves the previous value
// intact.
func (fs *FileSystem) Write(name string, data []byte) error {
	destPath := fs.path(name)

	// Create temp file in the same directory to ensure atomic rename works
	tmpFile, err := os.CreateTemp(fs.root, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	// Clean up temp file on failure
	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

// Close is a no-op for the filesystem store.
func (fs *FileSystem) Close() error {
	return nil
}

func (fs *FileSystem) path(name string) string {
	return filepath.Join(fs.root, name+".json")
}

// Compile-time check that FileSystem implements scan.Slot interface
var _ scan.Slot = (*FileSystem)(nil)
