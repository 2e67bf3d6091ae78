package expreplay

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/samuelfneumann/doomrl/buffer/sumtree"
	"github.com/samuelfneumann/doomrl/utils/floatutils"
)

// PriorityCeiling is the largest priority any transition may have. New
// transitions are never given a larger priority, and priorities
// computed from TD errors saturate at this value.
const PriorityCeiling float64 = 1.0

// Prioritized implements a prioritized experience replay buffer.
// Transitions are stored in a ring buffer and sampled with probability
// proportional to their priority. Sampled batches come with importance
// sampling weights which correct for the bias introduced by
// non-uniform sampling.
//
// Prioritized is not safe for concurrent use. Use Synchronized when
// transitions are stored and sampled from separate goroutines.
type Prioritized[T any] struct {
	tree *sumtree.SumTree[T]

	priorityFloor       float64 // ε
	priorityExponent    float64 // α
	importanceExponent  float64 // β
	importanceIncrement float64

	source rand.Source
}

// NewPrioritized returns a new prioritized replay buffer which holds
// at most capacity transitions. The priorityFloor is added to each
// absolute TD error before it is converted to a priority,
// priorityExponent determines how strongly sampling favours high
// priorities, and importanceExponent is the initial importance
// sampling exponent which is increased by importanceIncrement on each
// call to Sample until it reaches 1.
func NewPrioritized[T any](capacity int, priorityFloor, priorityExponent,
	importanceExponent, importanceIncrement float64,
	seed uint64) (*Prioritized[T], error) {
	tree, err := sumtree.New[T](capacity)
	if err != nil {
		return nil, &ExpReplayError{Op: "new", Err: err}
	}

	config := Config{
		Capacity:            capacity,
		PriorityFloor:       priorityFloor,
		PriorityExponent:    priorityExponent,
		ImportanceExponent:  importanceExponent,
		ImportanceIncrement: importanceIncrement,
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}

	return &Prioritized[T]{
		tree:                tree,
		priorityFloor:       priorityFloor,
		priorityExponent:    priorityExponent,
		importanceExponent:  importanceExponent,
		importanceIncrement: importanceIncrement,
		source:              rand.NewSource(seed),
	}, nil
}

// String returns the string representation of the buffer
func (p *Prioritized[T]) String() string {
	return fmt.Sprintf("Prioritized | ε: %v  |  α: %v  |  β: %.4f  |  %v",
		p.priorityFloor, p.priorityExponent, p.importanceExponent, p.tree)
}

// Len returns the number of transitions in the buffer
func (p *Prioritized[T]) Len() int {
	return p.tree.Len()
}

// Capacity returns the maximum number of transitions in the buffer
func (p *Prioritized[T]) Capacity() int {
	return p.tree.Capacity()
}

// Full returns whether the buffer is full. Once full, each Store
// evicts the oldest transition.
func (p *Prioritized[T]) Full() bool {
	return p.tree.Full()
}

// Beta returns the current importance sampling exponent
func (p *Prioritized[T]) Beta() float64 {
	return p.importanceExponent
}

// TotalPriority returns the sum of priorities of all transitions
func (p *Prioritized[T]) TotalPriority() float64 {
	return p.tree.Total()
}

// Priority returns the priority of the transition at index
func (p *Prioritized[T]) Priority(index int) (float64, error) {
	priority, err := p.tree.Priority(index)
	if err != nil {
		return 0, &ExpReplayError{Op: "priority", Err: err}
	}
	return priority, nil
}

// Stats returns a snapshot of the buffer's occupancy and priorities
func (p *Prioritized[T]) Stats() Stats {
	return Stats{
		Len:           p.tree.Len(),
		Capacity:      p.tree.Capacity(),
		TotalPriority: p.tree.Total(),
		MinPriority:   p.tree.MinPriority(),
		MaxPriority:   p.tree.MaxPriority(),
		Beta:          p.importanceExponent,
	}
}

// Store adds a transition to the buffer, evicting the oldest
// transition if the buffer is full.
//
// New transitions are given the largest priority currently in the
// buffer, or PriorityCeiling if no transition has a positive priority,
// so that each transition is likely to be sampled at least once before
// its priority is corrected by a TD error.
func (p *Prioritized[T]) Store(record T) {
	priority := p.tree.MaxPriority()
	if priority <= 0 {
		priority = PriorityCeiling
	}
	p.tree.Add(math.Min(priority, PriorityCeiling), record)
}

// Sample samples a batch of batchSize transitions from the buffer. The
// returned values are the indices of the sampled transitions, which
// should be passed to UpdatePriorities, the transitions, and their
// importance sampling weights.
//
// Sampling is stratified: the total priority is split into batchSize
// equal segments and one transition is drawn from each. Importance
// sampling weights are normalized by the weight of the least likely
// transition in the buffer, so all weights lie in (0, 1].
func (p *Prioritized[T]) Sample(batchSize int) ([]int, []T, []float64,
	error) {
	if batchSize <= 0 || batchSize > p.Len() {
		err := &ExpReplayError{
			Op: "sample",
			Err: fmt.Errorf("%w \n\twant(1 <= batch size <= %v) "+
				"\n\thave(%v)", errInvalidBatchSize, p.Len(), batchSize),
		}
		return nil, nil, nil, err
	}

	total := p.tree.Total()
	if total <= 0 {
		// Leaf reports the empty tree
		_, _, _, err := p.tree.Leaf(0)
		return nil, nil, nil, &ExpReplayError{Op: "sample", Err: err}
	}

	p.importanceExponent = math.Min(1.0,
		p.importanceExponent+p.importanceIncrement)
	β := p.importanceExponent

	indices := make([]int, batchSize)
	records := make([]T, batchSize)
	weights := make([]float64, batchSize)

	n := float64(p.Len())
	minProb := p.tree.MinPriority() / total
	maxWeight := math.Pow(minProb*n, -β)

	segment := total / float64(batchSize)
	for i := 0; i < batchSize; i++ {
		dist := distuv.Uniform{
			Min: segment * float64(i),
			Max: segment * float64(i+1),
			Src: p.source,
		}
		v := floatutils.Clip(dist.Rand(), 0, total)

		leaf, priority, record, err := p.tree.Leaf(v)
		if err != nil {
			return nil, nil, nil, &ExpReplayError{Op: "sample", Err: err}
		}

		prob := priority / total
		indices[i] = leaf
		records[i] = record
		weights[i] = math.Pow(prob*n, -β) / maxWeight
	}

	return indices, records, weights, nil
}

// UpdatePriorities sets the priority of each transition at indices
// from its corresponding TD error. The priority of a transition with
// TD error δ is min(|δ| + ε, PriorityCeiling)^α.
//
// All indices are checked before any priority is changed, so if an
// error is returned no priorities are updated.
func (p *Prioritized[T]) UpdatePriorities(indices []int,
	tdErrors []float64) error {
	if len(indices) != len(tdErrors) {
		return &ExpReplayError{
			Op: "updatePriorities",
			Err: fmt.Errorf("%w \n\twant(%v) \n\thave(%v)",
				errLengthMismatch, len(indices), len(tdErrors)),
		}
	}

	for i, index := range indices {
		if _, err := p.tree.Priority(index); err != nil {
			return &ExpReplayError{Op: "updatePriorities", Err: err}
		}
		if math.IsNaN(tdErrors[i]) {
			return &ExpReplayError{
				Op:  "updatePriorities",
				Err: fmt.Errorf("%w at index %v", errInvalidTdError, index),
			}
		}
	}

	for i, index := range indices {
		if err := p.tree.Update(index, p.priority(tdErrors[i])); err != nil {
			return &ExpReplayError{Op: "updatePriorities", Err: err}
		}
	}
	return nil
}

// priority converts a TD error into a priority
func (p *Prioritized[T]) priority(tdError float64) float64 {
	clipped := math.Min(math.Abs(tdError)+p.priorityFloor, PriorityCeiling)
	return math.Pow(clipped, p.priorityExponent)
}
