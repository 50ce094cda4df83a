package testutil

import (
	"sync"

	"qrscan-go/internal/scan"
	"qrscan-go/internal/slot"
)

// NewTestSlot creates a new in-memory slot store for testing.
func NewTestSlot() scan.Slot {
	return slot.NewMemory()
}

// FailingSlot wraps another slot store and fails writes on demand. Reads
// pass through unchanged. Use it to exercise the store's behavior when
// persistence breaks while the in-memory state keeps working.
type FailingSlot struct {
	inner scan.Slot

	mu       sync.Mutex
	writeErr error
	writes   int
}

// NewFailingSlot wraps inner. Writes succeed until FailWrites is called.
func NewFailingSlot(inner scan.Slot) *FailingSlot {
	return &FailingSlot{inner: inner}
}

// FailWrites makes all subsequent writes return err. Pass nil to restore
// normal behavior.
func (s *FailingSlot) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeErr = err
}

// Writes returns the number of Write calls, including failed ones.
func (s *FailingSlot) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

func (s *FailingSlot) Read(name string) ([]byte, error) {
	return s.inner.Read(name)
}

func (s *FailingSlot) Write(name string, data []byte) error {
	s.mu.Lock()
	s.writes++
	err := s.writeErr
	s.mu.Unlock()

	if err != nil {
		return err
	}
	return s.inner.Write(name, data)
}

func (s *FailingSlot) Close() error {
	return s.inner.Close()
}

// Compile-time check
var _ scan.Slot = (*FailingSlot)(nil)
