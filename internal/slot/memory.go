package slot

import (
	"fmt"
	"sync"

	"qrscan-go/internal/scan"
)

// Memory is an in-memory implementation of the Slot interface.
// It stores all slot values in memory, making it useful for testing and
// throwaway histories. This implementation is safe for concurrent use.
type Memory struct {
	values map[string][]byte
	mu     sync.RWMutex
}

// NewMemory creates a new in-memory slot store.
func NewMemory() *Memory {
	return &Memory{
		values: make(map[string][]byte),
	}
}

// Read returns the current value of the named slot.
func (m *Memory) Read(name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.values[name]
	if !ok {
		return nil, fmt.Errorf("reading slot %q: %w", name, scan.ErrSlotNotFound)
	}

	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Write replaces the value of the named slot.
func (m *Memory) Write(name string, data []byte) error {
	stored := make([]byte, len(data))
	copy(stored, data)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[name] = stored
	return nil
}

// Close is a no-op for the in-memory store.
func (m *Memory) Close() error {
	return nil
}

// Compile-time check that Memory implements scan.Slot interface
var _ scan.Slot = (*Memory)(nil)
