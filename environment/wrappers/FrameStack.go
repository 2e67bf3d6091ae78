// Package wrappers implements wrappers of environments which modify
// the observations that environments return
package wrappers

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/doomrl/environment"
	"github.com/samuelfneumann/doomrl/environment/frames"
	ts "github.com/samuelfneumann/doomrl/timestep"
)

// FrameStack wraps an environment.Framer so that observations are the
// most recent frames of the wrapped environment, preprocessed and
// stacked. Each frame is resized to height rows and width columns,
// optionally converted to grayscale, and scaled to [0, 1]. Observations
// are laid out in row major order as:
//
//	(height, width, stack size, channels)
//
// FrameStack implements the environment.Environment interface
type FrameStack struct {
	environment.Framer
	width, height int
	gray          bool
	stack         *frames.Stack
}

// NewFrameStack returns a new FrameStack wrapping env, along with the
// first timestep of the wrapped environment's new episode
func NewFrameStack(env environment.Framer, width, height, stackSize int,
	gray bool) (*FrameStack, ts.TimeStep, error) {
	channels := frames.Channels(gray)
	stack, err := frames.NewStack(stackSize, width*height*channels,
		channels)
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("newFrameStack: %v", err)
	}

	f := &FrameStack{
		Framer: env,
		width:  width,
		height: height,
		gray:   gray,
		stack:  stack,
	}

	step, err := f.Reset()
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("newFrameStack: %v", err)
	}
	return f, step, nil
}

// Reset resets the wrapped environment and fills the frame stack with
// the first frame of the new episode
func (f *FrameStack) Reset() (ts.TimeStep, error) {
	step, err := f.Framer.Reset()
	if err != nil {
		return ts.TimeStep{}, err
	}

	f.stack.Reset()
	return f.observe(step)
}

// Step takes one step in the wrapped environment and pushes the new
// frame onto the frame stack
func (f *FrameStack) Step(action *mat.VecDense) (ts.TimeStep, bool, error) {
	step, done, err := f.Framer.Step(action)
	if err != nil {
		return ts.TimeStep{}, false, err
	}

	step, err = f.observe(step)
	return step, done, err
}

// observe replaces the observation of step with the stacked frames
func (f *FrameStack) observe(step ts.TimeStep) (ts.TimeStep, error) {
	frame, err := frames.Preprocess(f.Frame(), f.width, f.height, f.gray)
	if err != nil {
		return ts.TimeStep{}, fmt.Errorf("observe: %v", err)
	}

	stacked, err := f.stack.Push(frame)
	if err != nil {
		return ts.TimeStep{}, fmt.Errorf("observe: %v", err)
	}

	// The stack reuses its buffer between calls
	obs := make([]float64, len(stacked))
	copy(obs, stacked)
	step.Observation = mat.NewVecDense(len(obs), obs)

	return step, nil
}

// ObservationSpec returns the observation specification of the
// environment
func (f *FrameStack) ObservationSpec() environment.Spec {
	return environment.NewBoxSpec(environment.Observation, f.stack.Len(),
		0, 1)
}

func (f *FrameStack) String() string {
	return fmt.Sprintf("FrameStack(%v, %vx%vx%v, gray=%v)", f.Framer,
		f.height, f.width, f.stack.Size(), f.gray)
}
