// Package environment outlines the interfaces and sturcts needed to implement
// concrete environments
package environment

import (
	"image"

	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/doomrl/timestep"
)

// Starter implements a distribution of starting states and samples starting
// states for environments
type Starter interface {
	Start() mat.Vector
}

// Ender determines when an episode should end
type Ender interface {
	// End returns whether the episode should end at the argument
	// TimeStep. If so, End changes the TimeStep's StepType to
	// timestep.Last.
	End(*timestep.TimeStep) bool
}

// Task implements a specific task in an environment: how starting
// states are sampled, how rewards are given, and when episodes end
type Task interface {
	Starter
	Ender

	// GetReward returns the reward for taking action in state and
	// transitioning to nextState
	GetReward(state, action, nextState mat.Vector) float64

	// AtGoal returns whether the argument state completes the task
	AtGoal(state mat.Vector) bool

	RewardSpec() Spec
}

// Environment implements a simualted environment
type Environment interface {
	// Reset resets the environment between episodes and returns the
	// first TimeStep of the new episode
	Reset() (timestep.TimeStep, error)

	// Step takes an action in the environment and returns the next
	// TimeStep along with whether the episode has ended
	Step(action *mat.VecDense) (timestep.TimeStep, bool, error)

	ObservationSpec() Spec
	ActionSpec() Spec
	DiscountSpec() Spec
}

// Framer is an Environment which renders its state to a screen buffer,
// such as the environments of first-person games. The observations of a
// Framer are raw pixel values of the current frame.
type Framer interface {
	Environment

	// Frame returns the frame of the most recent TimeStep
	Frame() image.Image
}
