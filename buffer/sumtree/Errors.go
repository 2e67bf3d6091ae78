package sumtree

import "errors"

// Error implements errors unique to a SumTree.
type Error struct {
	Op  string
	Err error
}

// Error satisfies the error interface
func (e *Error) Error() string {
	return e.Op + ": " + e.Err.Error()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

var errInvalidCapacity = errors.New("capacity must be positive")

var errIndexOutOfRange = errors.New("leaf index does not refer to an " +
	"occupied slot")

var errEmptyTree = errors.New("total priority is zero")

// IsInvalidCapacity returns whether or not an error reports that a
// SumTree was constructed with a non-positive capacity.
func IsInvalidCapacity(err error) bool {
	return errors.Is(err, errInvalidCapacity)
}

// IsIndexOutOfRange returns whether or not an error reports that a
// leaf index outside of the occupied leaves was accessed.
func IsIndexOutOfRange(err error) bool {
	return errors.Is(err, errIndexOutOfRange)
}

// IsEmptyTree returns whether or not an error reports that a SumTree
// was sampled while holding no priority mass.
//
// A tree holds no priority mass if it is empty or if all its occupied
// leaves have priority 0.
func IsEmptyTree(err error) bool {
	return errors.Is(err, errEmptyTree)
}
