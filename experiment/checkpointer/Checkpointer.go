// Package checkpointer implements periodic saving of learned weights
// during an experiment
package checkpointer

import "encoding"

// Serializable is an object that can be saved/serialized, such as the
// *mat.Dense weights of a linear policy
type Serializable interface {
	encoding.BinaryMarshaler
}

// Checkpointer checkpoints/saves serializable objects based on the
// number of steps taken in an experiment
type Checkpointer interface {
	Checkpoint(step int) error
}
