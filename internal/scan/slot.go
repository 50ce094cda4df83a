package scan

import "errors"

// ErrSlotNotFound reports that a named slot has never been written.
// Implementations return it (possibly wrapped) from Read; callers check
// with errors.Is.
var ErrSlotNotFound = errors.New("slot not found")

// Slot is a named-blob persistence target. The store serializes its entire
// history into a single slot on every mutation, so implementations only
// need whole-value reads and overwrites, never partial updates or listing.
//
// Write must be effectively atomic: a reader that races or follows a
// crashed writer sees either the previous value or the new one, never a
// torn mix.
type Slot interface {
	// Read returns the current value of the named slot, or ErrSlotNotFound.
	Read(name string) ([]byte, error)

	// Write replaces the value of the named slot.
	Write(name string, data []byte) error

	// Close releases any underlying resources.
	Close() error
}
