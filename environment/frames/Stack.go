package frames

import "fmt"

// DefaultStackSize is the default number of frames in a Stack
const DefaultStackSize int = 4

// Stack holds the most recent frames of an episode. Each call to Push
// returns the held frames stacked along a new axis, so that an
// observation carries motion information:
//
//	(height, width, frames, channels)
//
// where frames are ordered oldest to newest.
type Stack struct {
	size     int
	frameLen int
	channels int
	frames   [][]float64
	next     int
	stacked  []float64
	isPrimed bool
}

// NewStack returns a new Stack of size frames, each of which has
// frameLen elements laid out with channels last.
func NewStack(size, frameLen, channels int) (*Stack, error) {
	if size <= 0 {
		return nil, fmt.Errorf("newStack: size must be positive "+
			"\n\twant(>0) \n\thave(%v)", size)
	}
	if channels <= 0 || frameLen <= 0 || frameLen%channels != 0 {
		return nil, fmt.Errorf("newStack: frame length %v is not a "+
			"positive multiple of channels %v", frameLen, channels)
	}

	frames := make([][]float64, size)
	for i := range frames {
		frames[i] = make([]float64, frameLen)
	}

	return &Stack{
		size:     size,
		frameLen: frameLen,
		channels: channels,
		frames:   frames,
		stacked:  make([]float64, size*frameLen),
	}, nil
}

// Len returns the number of elements of a stacked observation
func (s *Stack) Len() int {
	return s.size * s.frameLen
}

// Size returns the number of frames in the stack
func (s *Stack) Size() int {
	return s.size
}

// Reset clears the stack so that the next pushed frame fills every
// position, as at the start of an episode
func (s *Stack) Reset() {
	s.isPrimed = false
	s.next = 0
}

// Push adds frame as the newest frame, evicting the oldest, and returns
// the stacked frames. The first frame pushed after construction or
// Reset is repeated in every position. The returned slice is reused by
// the next call to Push.
func (s *Stack) Push(frame []float64) ([]float64, error) {
	if len(frame) != s.frameLen {
		return nil, fmt.Errorf("push: invalid frame length "+
			"\n\twant(%v) \n\thave(%v)", s.frameLen, len(frame))
	}

	if !s.isPrimed {
		for i := range s.frames {
			copy(s.frames[i], frame)
		}
		s.next = 0
		s.isPrimed = true
	} else {
		copy(s.frames[s.next], frame)
		s.next = (s.next + 1) % s.size
	}

	// s.next now indexes the oldest frame
	pixels := s.frameLen / s.channels
	for p := 0; p < pixels; p++ {
		for k := 0; k < s.size; k++ {
			frame := s.frames[(s.next+k)%s.size]
			dst := (p*s.size + k) * s.channels
			copy(s.stacked[dst:dst+s.channels],
				frame[p*s.channels:(p+1)*s.channels])
		}
	}

	return s.stacked, nil
}
