// Package event provides synchronous, ordered observer lists.
package event

// Signal holds the subscribers for one event kind. Handlers run on the
// emitting goroutine in subscription order. A Signal with no subscribers
// drops events.
//
// Signal is not safe for concurrent use.
type Signal[T any] struct {
	handlers []subscriber[T]
	nextID   int
}

type subscriber[T any] struct {
	id int
	fn func(T)
}

// Subscribe appends fn and returns a function that removes it again.
func (s *Signal[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	s.nextID++
	id := s.nextID
	s.handlers = append(s.handlers, subscriber[T]{id: id, fn: fn})

	return func() {
		for i, h := range s.handlers {
			if h.id == id {
				s.handlers = append(s.handlers[:i:i], s.handlers[i+1:]...)
				return
			}
		}
	}
}

// Emit delivers v to every subscriber registered when Emit was called.
func (s *Signal[T]) Emit(v T) {
	if len(s.handlers) == 0 {
		return
	}
	snapshot := make([]subscriber[T], len(s.handlers))
	copy(snapshot, s.handlers)
	for _, h := range snapshot {
		h.fn(v)
	}
}

// Len returns the number of subscribers.
func (s *Signal[T]) Len() int {
	return len(s.handlers)
}
