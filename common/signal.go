package common

import (
	"sort"
	"sync"
)

// Signal is a minimal observer list. Handlers run synchronously on Emit in connection order.
// Emit takes a snapshot of the handler list, so handlers may connect or disconnect freely.
type Signal[T any] struct {
	mu       sync.Mutex
	nextID   int
	handlers map[int]func(T)
}

// Connect registers fn and returns an id for Disconnect.
//
// Parameters:
//   - fn: the handler invoked on every Emit
//
// Returns:
//   - int: the connection id
func (s *Signal[T]) Connect(fn func(T)) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handlers == nil {
		s.handlers = make(map[int]func(T))
	}
	s.nextID++
	s.handlers[s.nextID] = fn
	return s.nextID
}

// Disconnect removes the handler registered under id. Unknown ids are ignored.
func (s *Signal[T]) Disconnect(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.handlers, id)
}

// IsConnected reports whether id is still registered.
func (s *Signal[T]) IsConnected(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.handlers[id]
	return ok
}

// Len returns the number of connected handlers.
func (s *Signal[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handlers)
}

// Emit calls every connected handler with v.
func (s *Signal[T]) Emit(v T) {
	s.mu.Lock()
	ids := make([]int, 0, len(s.handlers))
	for id := range s.handlers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(T), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.handlers[id])
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}
