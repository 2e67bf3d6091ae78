package checkpointer

import (
	"fmt"
	"os"
)

// nStep implements checkpointing every N steps
type nStep struct {
	interval int
	object   Serializable // Object to save

	// filename returns the string filename of the file to save the object
	// in.
	//
	// If each serialized object should be saved in a separate file with
	// each file having an incremented number as a suffix (e.g.
	// file1.bin, file2.bin, ..., fileK.bin), then simply use the
	// static function FilenameEnumerator, which will return a function
	// that will enumerate filenames.
	filename func() string
}

// NewNStep returns a checkpointer that checkpoints every n steps.
func NewNStep(n int, object Serializable,
	filename func() string) (Checkpointer, error) {
	if n <= 0 {
		return nil, fmt.Errorf("newNStep: interval must be positive "+
			"\n\twant(>0) \n\thave(%v)", n)
	}

	return &nStep{
		interval: n,
		object:   object,
		filename: filename,
	}, nil
}

// Checkpoint saves the binary encoding of the Checkpointer's object if
// step is a multiple of the checkpointing interval
func (n *nStep) Checkpoint(step int) error {
	if step%n.interval != 0 {
		return nil
	}

	data, err := n.object.MarshalBinary()
	if err != nil {
		return fmt.Errorf("checkpoint: %v", err)
	}
	if err := os.WriteFile(n.filename(), data, 0o644); err != nil {
		return fmt.Errorf("checkpoint: %v", err)
	}
	return nil
}
