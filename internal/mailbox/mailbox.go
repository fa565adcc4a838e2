// Package mailbox provides a single-slot value holder filled by the first
// event that arrives after it is armed.
package mailbox

import "sync"

// Slot holds at most one value per arming
type Slot[T any] struct {
	mu     sync.Mutex
	armed  bool
	filled bool
	value  T
}

// Arm clears any previous value and accepts the next Offer
func (s *Slot[T]) Arm() {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	s.armed = true
	s.filled = false
	s.value = zero
}

// Offer stores v if the slot is armed and still empty. It reports whether v was kept.
func (s *Slot[T]) Offer(v T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.armed || s.filled {
		return false
	}
	s.value = v
	s.filled = true
	s.armed = false
	return true
}

// Peek returns the stored value without consuming it
func (s *Slot[T]) Peek() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value, s.filled
}

// Take returns the stored value and empties the slot
func (s *Slot[T]) Take() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	v, ok := s.value, s.filled
	s.value = zero
	s.filled = false
	return v, ok
}
