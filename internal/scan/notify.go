package scan

// EventOp identifies the kind of store mutation an Event describes.
type EventOp string

const (
	EventAdded   EventOp = "added"
	EventDeleted EventOp = "deleted"
	EventCleared EventOp = "cleared"
)

// Event describes one committed store mutation. Record is the zero value
// for EventCleared.
type Event struct {
	Op     EventOp `json:"op"`
	Record Record  `json:"record"`
}

// Subscribe registers fn to run after every committed mutation and returns
// a cancel function that removes the subscription. Callbacks run
// synchronously on the mutating goroutine after the store lock is
// released; a slow callback delays the caller that mutated the store.
func (s *Store) Subscribe(fn func(Event)) (cancel func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

// notify delivers ev to all current subscribers.
func (s *Store) notify(ev Event) {
	s.subMu.Lock()
	fns := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
