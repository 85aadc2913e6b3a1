// Package syncutil implements the concurrency primitives the worker pool
// and Engine state machine are built from (§4.9, §5): a one-shot signal,
// a blocking FIFO queue, and a counting semaphore. Grounded on
// original_source's sync/{Signaler.h, WaitCondition.h, Semaphore.h}, but
// built on Go's own sync.Cond/channels rather than POSIX primitives.
package syncutil

import "sync"

// Signal is a monotone, set-once boolean: once Set, it stays set, and
// every call to Wait after that returns immediately. Grounded on
// original_source's Signaler — used by Engine to publish its
// Created->Running->Done transitions to any goroutine blocked in Wait.
type Signal struct {
	mu     sync.Mutex
	cond   *sync.Cond
	status bool
}

// NewSignal returns a Signal initialized to the given status.
func NewSignal(status bool) *Signal {
	s := &Signal{status: status}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Poll reads the current status without blocking.
func (s *Signal) Poll() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Wait blocks until the status is true.
func (s *Signal) Wait() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for !s.status {
		s.cond.Wait()
	}
}

// Set sets the status to true and wakes every blocked Wait call. Setting
// an already-set Signal is a harmless no-op.
func (s *Signal) Set() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.status {
		s.status = true
		s.cond.Broadcast()
	}
}
