// Package expreplay implements prioritized experience replay buffers.
//
// A replay buffer stores transitions of type T and samples batches of
// them with probability proportional to their priority, along with
// importance sampling weights which correct for the non-uniform
// sampling. After a learner has computed the TD error of each sampled
// transition, UpdatePriorities should be called so that transitions
// with large errors are replayed more often. A typical training step
// looks like:
//
//	indices, batch, weights, err := replay.Sample(batchSize)
//	tdErrors := learner.Learn(batch, weights)
//	err = replay.UpdatePriorities(indices, tdErrors)
package expreplay

import "fmt"

// Replayer implements a prioritized experience replay buffer
type Replayer[T any] interface {
	// Store adds a transition to the buffer
	Store(record T)

	// Sample samples a batch of transitions and returns their indices,
	// the transitions, and their importance sampling weights
	Sample(batchSize int) ([]int, []T, []float64, error)

	// UpdatePriorities sets the priorities of the transitions at
	// indices from their TD errors
	UpdatePriorities(indices []int, tdErrors []float64) error

	// Len returns the current number of transitions in the buffer
	Len() int

	// Capacity returns the maximum number of transitions in the buffer
	Capacity() int

	// Stats returns a snapshot of the buffer
	Stats() Stats
}

// Stats describes the occupancy and priorities of a replay buffer at
// some point in time
type Stats struct {
	Len           int
	Capacity      int
	TotalPriority float64
	MinPriority   float64
	MaxPriority   float64
	Beta          float64 // Importance sampling exponent
}

// Utilization returns the fraction of the buffer which is occupied
func (s Stats) Utilization() float64 {
	if s.Capacity == 0 {
		return 0
	}
	return float64(s.Len) / float64(s.Capacity)
}

func (s Stats) String() string {
	str := "Stats | Len: %v/%v  |  Total: %.4f  |  Min: %.4f  |  " +
		"Max: %.4f  |  β: %.4f"
	return fmt.Sprintf(str, s.Len, s.Capacity, s.TotalPriority,
		s.MinPriority, s.MaxPriority, s.Beta)
}
