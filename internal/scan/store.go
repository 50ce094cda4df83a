package scan

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// DefaultSlotName is the slot the store persists under when the config
// does not name one.
const DefaultSlotName = "history"

// Store holds the scan history: an insertion-ordered, newest-first sequence
// of records in which no two records share the same content.
//
// Every mutation re-serializes the full sequence and overwrites the slot;
// there is no incremental persistence. Mutations are serialized by an
// internal lock and the slot write happens inside the critical section, so
// the persisted blob always reflects exactly the in-memory state it claims
// to. A failed write is logged and returned as an advisory error; the
// in-memory mutation has already committed.
type Store struct {
	slot     Slot
	slotName string
	logger   Logger
	clock    Clock
	idgen    IDGenerator

	mu        sync.RWMutex
	records   []Record
	byContent map[string]bool

	subMu   sync.Mutex
	subs    map[int]func(Event)
	nextSub int
}

// NewStore creates a Store backed by the given slot and loads any persisted
// history. A missing slot or an undecodable payload degrades to an empty
// store with a logged warning; construction never fails on bad data.
func NewStore(slot Slot, slotName string, logger Logger, clock Clock, idgen IDGenerator) *Store {
	if slotName == "" {
		slotName = DefaultSlotName
	}
	s := &Store{
		slot:      slot,
		slotName:  slotName,
		logger:    logger,
		clock:     clock,
		idgen:     idgen,
		byContent: make(map[string]bool),
		subs:      make(map[int]func(Event)),
	}
	s.load()
	return s
}

// load reads the persisted history. Best effort: any failure leaves the
// store empty.
func (s *Store) load() {
	data, err := s.slot.Read(s.slotName)
	if err != nil {
		if !errors.Is(err, ErrSlotNotFound) {
			s.logger.Warn("history unavailable, starting empty", "slot", s.slotName, "error", err)
		}
		return
	}

	records, skipped, err := decodeRecords(data)
	if err != nil {
		s.logger.Warn("history payload undecodable, starting empty", "slot", s.slotName, "error", err)
		return
	}
	if skipped > 0 {
		s.logger.Warn("dropped malformed history entries", "slot", s.slotName, "count", skipped)
	}

	s.records = records
	for _, r := range records {
		s.byContent[r.Content] = true
	}
}

// Add classifies content and inserts a new record at the front of the
// history. If content exactly matches an existing record's content the call
// is a no-op and inserted is false. A non-nil error reports a failed
// persistence write only; when inserted is true the record is in the store
// regardless.
func (s *Store) Add(content string) (rec Record, inserted bool, err error) {
	s.mu.Lock()
	if s.byContent[content] {
		s.mu.Unlock()
		s.logger.Debug("duplicate scan ignored")
		return Record{}, false, nil
	}

	rec = Record{
		ID:        s.idgen.New(),
		Content:   content,
		Timestamp: s.clock.Now(),
		Category:  Classify(content),
	}
	s.records = append([]Record{rec}, s.records...)
	s.byContent[content] = true
	err = s.persistLocked()
	s.mu.Unlock()

	s.notify(Event{Op: EventAdded, Record: rec})
	s.logger.Info("scan recorded", "id", rec.ID, "category", string(rec.Category))
	return rec, true, err
}

// Delete removes the record with the given id and reports whether a removal
// occurred. Deleting an unknown id leaves the store untouched and writes
// nothing.
func (s *Store) Delete(id string) (bool, error) {
	s.mu.Lock()
	idx := -1
	for i, r := range s.records {
		if r.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return false, nil
	}

	rec := s.records[idx]
	s.records = append(s.records[:idx], s.records[idx+1:]...)
	delete(s.byContent, rec.Content)
	err := s.persistLocked()
	s.mu.Unlock()

	s.notify(Event{Op: EventDeleted, Record: rec})
	s.logger.Info("scan deleted", "id", id)
	return true, err
}

// Clear empties the history.
func (s *Store) Clear() error {
	s.mu.Lock()
	s.records = nil
	s.byContent = make(map[string]bool)
	err := s.persistLocked()
	s.mu.Unlock()

	s.notify(Event{Op: EventCleared})
	s.logger.Info("history cleared")
	return err
}

// Search returns the records whose content contains query, matched
// case-insensitively, preserving store order. An empty query returns the
// full history.
func (s *Store) Search(query string) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if query == "" {
		return append([]Record(nil), s.records...)
	}

	q := strings.ToLower(query)
	var out []Record
	for _, r := range s.records {
		if strings.Contains(strings.ToLower(r.Content), q) {
			out = append(out, r)
		}
	}
	return out
}

// Records returns a copy of the history, newest first.
func (s *Store) Records() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Record(nil), s.records...)
}

// Get returns the record with the given id.
func (s *Store) Get(id string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.records {
		if r.ID == id {
			return r, true
		}
	}
	return Record{}, false
}

// Len returns the number of records in the history.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// persistLocked serializes the full sequence and overwrites the slot.
// Callers must hold mu.
func (s *Store) persistLocked() error {
	data, err := encodeRecords(s.records)
	if err != nil {
		s.logger.Error("encoding history failed", "slot", s.slotName, "error", err)
		return fmt.Errorf("encoding history: %w", err)
	}
	if err := s.slot.Write(s.slotName, data); err != nil {
		s.logger.Error("writing history failed", "slot", s.slotName, "error", err)
		return fmt.Errorf("writing history: %w", err)
	}
	return nil
}
