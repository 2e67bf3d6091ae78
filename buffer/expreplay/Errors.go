package expreplay

import (
	"errors"

	"github.com/samuelfneumann/doomrl/buffer/sumtree"
)

// ExpReplayError implements errors unique to an experience replay
// buffer.
type ExpReplayError struct {
	Op  string
	Err error
}

// Error satisifes the error interface
func (e *ExpReplayError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

// Unwrap returns the underlying error
func (e *ExpReplayError) Unwrap() error {
	return e.Err
}

var errInvalidBatchSize = errors.New("batch size must be positive and " +
	"at most the number of stored transitions")

var errLengthMismatch = errors.New("number of indices and TD errors " +
	"differ")

var errInvalidTdError = errors.New("TD error is NaN")

// IsInvalidBatchSize returns whether or not an error reports that a
// batch was requested which is non-positive or larger than the number
// of samples in the buffer.
func IsInvalidBatchSize(err error) bool {
	return errors.Is(err, errInvalidBatchSize)
}

// IsLengthMismatch returns whether or not an error reports that the
// indices and TD errors given to a priority update differ in length.
func IsLengthMismatch(err error) bool {
	return errors.Is(err, errLengthMismatch)
}

// IsInvalidTdError returns whether or not an error reports that a
// priority update was attempted with a NaN TD error.
func IsInvalidTdError(err error) bool {
	return errors.Is(err, errInvalidTdError)
}

// IsInvalidCapacity returns whether or not an error reports that a
// buffer was constructed with a non-positive capacity.
func IsInvalidCapacity(err error) bool {
	return sumtree.IsInvalidCapacity(err)
}

// IsIndexOutOfRange returns whether or not an error reports that a
// priority update referred to an index which holds no transition.
func IsIndexOutOfRange(err error) bool {
	return sumtree.IsIndexOutOfRange(err)
}

// IsEmptyTree returns whether or not an error reports that a replay
// buffer was sampled while it held no priority mass. Priorities are
// at least ε^α, so this only happens if priorities are zeroed outside
// of UpdatePriorities.
func IsEmptyTree(err error) bool {
	return sumtree.IsEmptyTree(err)
}
