// Package sumtree implements a sum tree, a complete binary tree over a
// fixed number of slots in which each internal node stores the sum of
// the priorities below it. Sum trees allow data to be sampled with
// probability proportional to its priority in logarithmic time.
package sumtree

import (
	"fmt"
	"math"
)

// SumTree implements an array-backed sum tree of priorities, where
// each leaf of the tree is associated with one record of type T.
//
// The tree is laid out in a flat slice of 2*capacity-1 values. Indices
// [0, capacity-2] are internal nodes, each holding the sum of its two
// children, and indices [capacity-1, 2*capacity-2] are leaves holding
// the priority of a single record. The children of node i are found
// at 2*i+1 and 2*i+2 and the parent of node i at (i-1)/2.
//
// Two further trees with the same layout hold the minimum and maximum
// priority below each node, so that the extremes over occupied leaves
// are available without scanning. Unoccupied leaves hold +Inf in the
// minimum tree and -Inf in the maximum tree.
//
// Records are written into the tree as a ring buffer. Once the tree
// is full, each call to Add overwrites the oldest record and its
// priority.
//
// SumTree is not safe for concurrent use.
type SumTree[T any] struct {
	capacity int
	tree     []float64
	min      []float64
	max      []float64
	data     []T

	cursor int // Next data slot to write to
	size   int // Number of occupied data slots
}

// New returns a new SumTree holding at most capacity records
func New[T any](capacity int) (*SumTree[T], error) {
	if capacity <= 0 {
		return nil, &Error{Op: "new", Err: errInvalidCapacity}
	}

	s := &SumTree[T]{
		capacity: capacity,
		tree:     make([]float64, 2*capacity-1),
		min:      make([]float64, 2*capacity-1),
		max:      make([]float64, 2*capacity-1),
		data:     make([]T, capacity),
	}
	for i := range s.min {
		s.min[i] = math.Inf(1)
		s.max[i] = math.Inf(-1)
	}
	return s, nil
}

// String returns the string representation of the SumTree
func (s *SumTree[T]) String() string {
	return fmt.Sprintf("SumTree | Capacity: %v  |  Occupied: %v  |  "+
		"Total: %.4f  |  Leaves: %v", s.capacity, s.size, s.Total(),
		s.leaves())
}

// Capacity returns the maximum number of records in the tree
func (s *SumTree[T]) Capacity() int {
	return s.capacity
}

// Len returns the number of occupied slots in the tree
func (s *SumTree[T]) Len() int {
	return s.size
}

// Full returns whether every slot of the tree is occupied, in which
// case the next call to Add evicts the oldest record
func (s *SumTree[T]) Full() bool {
	return s.size == s.capacity
}

// Total returns the sum of all leaf priorities
func (s *SumTree[T]) Total() float64 {
	return s.tree[0]
}

// LeafIndex returns the index in the tree of the leaf associated with
// the data slot dataIndex
func (s *SumTree[T]) LeafIndex(dataIndex int) int {
	return dataIndex + s.capacity - 1
}

// DataIndex returns the data slot associated with the leaf at index
// leaf in the tree
func (s *SumTree[T]) DataIndex(leaf int) int {
	return leaf - s.capacity + 1
}

// Add writes a record to the next slot of the ring buffer and sets its
// priority. If the tree is full, the oldest record is overwritten.
func (s *SumTree[T]) Add(priority float64, record T) {
	leaf := s.LeafIndex(s.cursor)
	s.data[s.cursor] = record

	if s.size < s.capacity {
		s.size++
	}
	s.set(leaf, priority)

	s.cursor = (s.cursor + 1) % s.capacity
}

// Update sets the priority of the leaf at index leaf and propagates
// the change in priority up through all ancestors of the leaf.
func (s *SumTree[T]) Update(leaf int, priority float64) error {
	if !s.occupied(leaf) {
		return &Error{
			Op:  "update",
			Err: fmt.Errorf("%w: %v", errIndexOutOfRange, leaf),
		}
	}

	s.set(leaf, priority)
	return nil
}

// set assigns a priority to a leaf, adds the change in priority to
// every ancestor of the leaf, and recomputes the extremes of every
// ancestor from its children
func (s *SumTree[T]) set(leaf int, priority float64) {
	delta := priority - s.tree[leaf]
	s.tree[leaf] = priority
	s.min[leaf] = priority
	s.max[leaf] = priority

	for leaf != 0 {
		leaf = (leaf - 1) / 2
		s.tree[leaf] += delta

		left := 2*leaf + 1
		s.min[leaf] = math.Min(s.min[left], s.min[left+1])
		s.max[leaf] = math.Max(s.max[left], s.max[left+1])
	}
}

// Priority returns the priority stored at the leaf with index leaf
func (s *SumTree[T]) Priority(leaf int) (float64, error) {
	if !s.occupied(leaf) {
		return 0, &Error{
			Op:  "priority",
			Err: fmt.Errorf("%w: %v", errIndexOutOfRange, leaf),
		}
	}
	return s.tree[leaf], nil
}

// Record returns the record stored at the leaf with index leaf
func (s *SumTree[T]) Record(leaf int) (T, error) {
	if !s.occupied(leaf) {
		var zero T
		return zero, &Error{
			Op:  "record",
			Err: fmt.Errorf("%w: %v", errIndexOutOfRange, leaf),
		}
	}
	return s.data[s.DataIndex(leaf)], nil
}

// Leaf finds the leaf whose cumulative priority interval contains v
// and returns the index of that leaf in the tree, along with its
// priority and record.
//
// Starting at the root, the search descends left whenever v is at most
// the sum of the left subtree. Otherwise, the sum of the left subtree
// is subtracted from v and the search descends right. Hence, at every
// step v is the remaining cumulative priority within the current
// subtree.
//
// The argument v should be in [0, Total()]. Values outside this
// interval are clipped to it.
func (s *SumTree[T]) Leaf(v float64) (int, float64, T, error) {
	total := s.Total()
	if total <= 0 {
		var zero T
		return 0, 0, zero, &Error{Op: "leaf", Err: errEmptyTree}
	}

	if v < 0 {
		v = 0
	} else if v > total {
		v = total
	}

	parent := 0
	for {
		left := 2*parent + 1
		right := left + 1

		if left >= len(s.tree) {
			break
		}

		// Neither subtree is entered if it holds no mass while its
		// sibling does. Partial sums may drift through floating point
		// error, and when capacity is not a power of two the leftmost
		// leaves are not the first data slots, so a target of 0 could
		// otherwise lead the search to an empty leaf.
		if s.tree[left] > 0 && (v <= s.tree[left] || s.tree[right] <= 0) {
			parent = left
		} else {
			v -= s.tree[left]
			parent = right
		}
	}

	return parent, s.tree[parent], s.data[s.DataIndex(parent)], nil
}

// MaxPriority returns the largest priority over all occupied leaves,
// or 0 if the tree is empty
func (s *SumTree[T]) MaxPriority() float64 {
	if s.size == 0 {
		return 0
	}
	return s.max[0]
}

// MinPriority returns the smallest priority over all occupied leaves,
// or 0 if the tree is empty
func (s *SumTree[T]) MinPriority() float64 {
	if s.size == 0 {
		return 0
	}
	return s.min[0]
}

// leaves returns the priorities of the occupied leaves. Slots are
// filled in order, so the occupied leaves are always a prefix of all
// leaves.
func (s *SumTree[T]) leaves() []float64 {
	first := s.LeafIndex(0)
	return s.tree[first : first+s.size]
}

// occupied returns whether leaf is the index of an occupied leaf
func (s *SumTree[T]) occupied(leaf int) bool {
	dataIndex := s.DataIndex(leaf)
	return dataIndex >= 0 && dataIndex < s.size
}
