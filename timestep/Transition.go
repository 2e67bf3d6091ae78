package timestep

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Transition is a single (s, a, r, γ, s') tuple of experience. It is
// the record stored in experience replay buffers.
//
// Discount is the discount applied to the value of NextState. It is 0
// when NextState is terminal.
type Transition struct {
	State     mat.Vector
	Action    mat.Vector
	Reward    float64
	Discount  float64
	NextState mat.Vector
	Terminal  bool
}

// NewTransition returns the Transition from step to nextStep after
// taking action in step. The observations of both timesteps are copied,
// so that environments may reuse their observation vectors.
func NewTransition(step TimeStep, action mat.Vector,
	nextStep TimeStep) Transition {
	t := newTransition(action, nextStep)
	t.State = mat.VecDenseCopyOf(step.Observation)
	return t
}

// Next returns the Transition following t, from t.NextState to
// nextStep after taking action. The returned Transition shares its
// State with t's NextState rather than copying it, so a sequence of
// transitions built with Next holds each observation once. Stored
// observations must therefore not be modified.
func (t Transition) Next(action mat.Vector, nextStep TimeStep) Transition {
	next := newTransition(action, nextStep)
	next.State = t.NextState
	return next
}

// newTransition returns a Transition to nextStep without a State
func newTransition(action mat.Vector, nextStep TimeStep) Transition {
	discount := nextStep.Discount
	if nextStep.Last() {
		discount = 0
	}

	return Transition{
		Action:    mat.VecDenseCopyOf(action),
		Reward:    nextStep.Reward,
		Discount:  discount,
		NextState: mat.VecDenseCopyOf(nextStep.Observation),
		Terminal:  nextStep.Last(),
	}
}

func (t Transition) String() string {
	str := "Transition | Action: %v  |  Reward: %.2f  |  Discount: %.2f  " +
		"|  Terminal: %v"
	return fmt.Sprintf(str, mat.Formatted(t.Action.T()), t.Reward,
		t.Discount, t.Terminal)
}
