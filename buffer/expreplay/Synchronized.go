package expreplay

import "sync"

// Synchronized wraps a Prioritized buffer with an exclusive lock so
// that transitions can be stored by one goroutine while another
// goroutine samples batches and updates priorities.
//
// Indices returned by Sample may be overwritten by a concurrent Store
// before UpdatePriorities is called, in which case the new transition
// receives the priority computed for the old one.
type Synchronized[T any] struct {
	mu     sync.Mutex
	replay *Prioritized[T]
}

// NewSynchronized returns a Synchronized buffer guarding replay. The
// argument buffer should not be used directly afterwards.
func NewSynchronized[T any](replay *Prioritized[T]) *Synchronized[T] {
	return &Synchronized[T]{replay: replay}
}

// Store implements the Replayer interface
func (s *Synchronized[T]) Store(record T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replay.Store(record)
}

// Sample implements the Replayer interface
func (s *Synchronized[T]) Sample(batchSize int) ([]int, []T, []float64,
	error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replay.Sample(batchSize)
}

// UpdatePriorities implements the Replayer interface
func (s *Synchronized[T]) UpdatePriorities(indices []int,
	tdErrors []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replay.UpdatePriorities(indices, tdErrors)
}

// Len implements the Replayer interface
func (s *Synchronized[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replay.Len()
}

// Capacity implements the Replayer interface
func (s *Synchronized[T]) Capacity() int {
	return s.replay.Capacity()
}

// Stats implements the Replayer interface
func (s *Synchronized[T]) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replay.Stats()
}
