package store

import (
	"sync"

	"discovrr/internal/observability"
)

// Listener is notified after every reduced action with the resulting state.
// Listeners see states in the order they were reduced and must not dispatch.
type Listener func(State, Action)

// Store owns the application state. Readers get immutable snapshots; all
// writes go through Dispatch.
type Store struct {
	mu        sync.RWMutex
	state     State
	listeners map[int]Listener
	nextID    int
	logger    *observability.StoreLogger

	// seq numbers reductions; delivered counts those whose listeners ran.
	seq       uint64
	delivered uint64
	turn      *sync.Cond
}

// New creates a store seeded with initial.
func New(initial State) *Store {
	return &Store{
		state:     initial,
		listeners: make(map[int]Listener),
		logger:    observability.NewStoreLogger("root"),
		turn:      sync.NewCond(&sync.Mutex{}),
	}
}

// State returns a snapshot of the current state. Snapshots never change.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Dispatch reduces action into the state and notifies listeners.
func (s *Store) Dispatch(action Action) {
	s.DispatchIf(nil, action)
}

// DispatchIf reduces action only when cond holds for the current state. The
// check and the write happen under one lock, so two callers racing on the
// same precondition cannot both pass it. A nil cond always passes.
func (s *Store) DispatchIf(cond func(State) bool, action Action) bool {
	s.mu.Lock()
	if cond != nil && !cond(s.state) {
		s.mu.Unlock()
		return false
	}
	s.state = Reduce(s.state, action)
	next := s.state
	seq := s.seq
	s.seq++
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	s.logger.LogDispatch(action.Type())
	s.notify(seq, next, action, listeners)
	return true
}

// notify runs listeners for reduction seq once every earlier reduction has
// been delivered.
func (s *Store) notify(seq uint64, next State, action Action, listeners []Listener) {
	s.turn.L.Lock()
	defer s.turn.L.Unlock()
	for s.delivered != seq {
		s.turn.Wait()
	}
	for _, l := range listeners {
		l(next, action)
	}
	s.delivered++
	s.turn.Broadcast()
}

// Subscribe registers l and returns a function removing it.
func (s *Store) Subscribe(l Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}
