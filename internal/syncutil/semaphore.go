package syncutil

import "sync"

// Semaphore is a counting semaphore, grounded on original_source's
// sync/Semaphore.h (a thin POSIX sem_t wrapper): Down blocks while the
// value is zero, Up increments it and wakes one blocked Down.
type Semaphore struct {
	mu    sync.Mutex
	cond  *sync.Cond
	value int
}

// NewSemaphore returns a semaphore initialized to value.
func NewSemaphore(value int) *Semaphore {
	s := &Semaphore{value: value}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Up increases the semaphore's value by one, waking one blocked Down.
func (s *Semaphore) Up() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value++
	s.cond.Signal()
}

// Down decrements the value, blocking while it is zero.
func (s *Semaphore) Down() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.value == 0 {
		s.cond.Wait()
	}
	s.value--
}

// Value returns the current count. As in the original, this may already
// be stale by the time the caller observes it.
func (s *Semaphore) Value() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}
