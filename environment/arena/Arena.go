// Package arena implements a small first-person shooting environment
// rendered to a screen buffer
package arena

import (
	"fmt"
	"image"
	"math"

	"github.com/fogleman/gg"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"

	"github.com/samuelfneumann/doomrl/environment"
	ts "github.com/samuelfneumann/doomrl/timestep"
	"github.com/samuelfneumann/doomrl/utils/floatutils"
)

// Actions
const (
	Left int = iota
	Right
	Fire
)

const (
	Actions int = 3

	DefaultWidth        int = 160
	DefaultHeight       int = 120
	DefaultEpisodeSteps int = 300

	// World units
	MaxPosition  float64 = 1.0
	MaxVelocity  float64 = 0.02
	TurnRate     float64 = 0.1
	TargetRadius float64 = 0.08
	ViewWidth    float64 = 0.5 // Half width of the field of view
)

// Indices of the state features
const (
	aimIndex int = iota
	targetIndex
	velocityIndex
	hitIndex
	stateDims
)

// Arena implements a first-person shooting environment. A target moves
// back and forth along a wall in front of the player, bouncing off the
// ends of the wall. The player can turn left or right to aim the
// crosshair, or fire. Firing while the target is under the crosshair
// kills the target and ends the episode.
//
// Actions are 1-dimensional and discrete in (0, 1, 2):
//
//	Action	Meaning
//	  0		Turn left
//	  1		Turn right
//	  2		Fire
//
// Observations are the raw RGB pixels of the rendered frame in row
// major order with channels last, with values in [0, 255].
//
// Arena implements the environment.Framer interface
type Arena struct {
	environment.Task
	width, height int
	discount      float64
	state         *mat.VecDense
	lastStep      ts.TimeStep
	dc            *gg.Context
}

// New returns a new Arena with the argument task and screen
// resolution
func New(t environment.Task, width, height int, discount float64) (*Arena,
	ts.TimeStep, error) {
	if width <= 0 || height <= 0 {
		return nil, ts.TimeStep{}, fmt.Errorf("new: screen resolution must "+
			"be positive \n\twant(>0, >0) \n\thave(%v, %v)", width, height)
	}

	a := &Arena{
		Task:     t,
		width:    width,
		height:   height,
		discount: discount,
		dc:       gg.NewContext(width, height),
	}

	step, err := a.Reset()
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("new: %v", err)
	}
	return a, step, nil
}

// NewDefault returns a new Arena with the default screen resolution,
// a Shoot task, and target starting states sampled uniformly
func NewDefault(seed uint64, discount float64) (*Arena, ts.TimeStep,
	error) {
	bounds := []r1.Interval{
		{Min: -MaxPosition, Max: MaxPosition},
		{Min: -MaxVelocity, Max: MaxVelocity},
	}
	s := environment.NewUniformStarter(bounds, seed)
	task := NewShoot(s, DefaultEpisodeSteps)

	return New(task, DefaultWidth, DefaultHeight, discount)
}

// Reset resets the environment and returns a starting state drawn from
// the environment Starter
func (a *Arena) Reset() (ts.TimeStep, error) {
	start := a.Start()
	if start.Len() != 2 {
		return ts.TimeStep{}, fmt.Errorf("reset: starting state should "+
			"have target position and velocity \n\twant(2) \n\thave(%v)",
			start.Len())
	}

	target := floatutils.Clip(start.AtVec(0), -MaxPosition, MaxPosition)
	velocity := floatutils.Clip(start.AtVec(1), -MaxVelocity, MaxVelocity)
	a.state = mat.NewVecDense(stateDims, []float64{0, target, velocity, 0})

	a.lastStep = ts.New(ts.First, 0, a.discount, a.render(), 0)
	return a.lastStep, nil
}

// Step takes one environmental step given action and returns the next
// timestep and whether the episode has ended
func (a *Arena) Step(action *mat.VecDense) (ts.TimeStep, bool, error) {
	if action.Len() != 1 {
		return ts.TimeStep{}, false, fmt.Errorf("step: actions should be "+
			"1-dimensional \n\twant(1) \n\thave(%v)", action.Len())
	}
	act := int(action.AtVec(0))
	if act < Left || act > Fire || float64(act) != action.AtVec(0) {
		return ts.TimeStep{}, false, fmt.Errorf("step: illegal action %v "+
			"∉ (0, 1, 2)", action.AtVec(0))
	}
	if a.lastStep.Last() {
		return ts.TimeStep{}, false, fmt.Errorf("step: episode has " +
			"ended, call Reset")
	}

	nextState := a.nextState(act)
	reward := a.GetReward(a.state, action, nextState)
	a.state = nextState

	nextStep := ts.New(ts.Mid, reward, a.discount, a.render(),
		a.lastStep.Number+1)
	if a.AtGoal(nextState) {
		nextStep.StepType = ts.Last
	} else {
		a.End(&nextStep)
	}

	a.lastStep = nextStep
	return nextStep, nextStep.Last(), nil
}

// nextState returns the state after taking action in the current state.
// Shots are resolved before the target moves.
func (a *Arena) nextState(action int) *mat.VecDense {
	aim := a.state.AtVec(aimIndex)
	target := a.state.AtVec(targetIndex)
	velocity := a.state.AtVec(velocityIndex)

	hit := 0.0
	switch action {
	case Left:
		aim -= TurnRate
	case Right:
		aim += TurnRate
	case Fire:
		if math.Abs(target-aim) <= TargetRadius {
			hit = 1.0
		}
	}
	aim = floatutils.Clip(aim, -MaxPosition, MaxPosition)

	target += velocity
	if target <= -MaxPosition || target >= MaxPosition {
		velocity = -velocity
		target = floatutils.Clip(target, -MaxPosition, MaxPosition)
	}

	return mat.NewVecDense(stateDims, []float64{aim, target, velocity, hit})
}

// render draws the current state and returns the frame's pixels
func (a *Arena) render() *mat.VecDense {
	w, h := float64(a.width), float64(a.height)
	dc := a.dc

	// Ceiling and floor
	dc.SetRGB(0.3, 0.3, 0.35)
	dc.Clear()
	dc.SetRGB(0.4, 0.3, 0.2)
	dc.DrawRectangle(0, h/2, w, h/2)
	dc.Fill()

	// Target, in view coordinates relative to the crosshair
	scale := w / (2 * ViewWidth)
	offset := a.state.AtVec(targetIndex) - a.state.AtVec(aimIndex)
	if a.state.AtVec(hitIndex) == 1.0 {
		dc.SetRGB(0.4, 0.05, 0.05)
	} else {
		dc.SetRGB(0.8, 0.1, 0.1)
	}
	dc.DrawCircle(w/2+offset*scale, h/2, TargetRadius*scale)
	dc.Fill()

	// Crosshair
	size := math.Max(w/40, 1)
	dc.SetRGB(1, 1, 1)
	dc.SetLineWidth(1)
	dc.DrawLine(w/2-size, h/2, w/2+size, h/2)
	dc.DrawLine(w/2, h/2-size, w/2, h/2+size)
	dc.Stroke()

	return a.pixels()
}

// pixels returns the RGB values of the current frame
func (a *Arena) pixels() *mat.VecDense {
	img := a.dc.Image()
	bounds := img.Bounds()

	data := make([]float64, 0, a.width*a.height*3)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			data = append(data, float64(r>>8), float64(g>>8), float64(b>>8))
		}
	}
	return mat.NewVecDense(len(data), data)
}

// Frame returns the most recently rendered frame. The returned image
// is redrawn by the next call to Step or Reset.
func (a *Arena) Frame() image.Image {
	return a.dc.Image()
}

// Width returns the width of rendered frames in pixels
func (a *Arena) Width() int {
	return a.width
}

// Height returns the height of rendered frames in pixels
func (a *Arena) Height() int {
	return a.height
}

// ObservationSpec returns the observation specification of the
// environment
func (a *Arena) ObservationSpec() environment.Spec {
	return environment.NewBoxSpec(environment.Observation,
		a.width*a.height*3, 0, 255)
}

// ActionSpec returns the action specification of the environment
func (a *Arena) ActionSpec() environment.Spec {
	return environment.NewDiscreteActionSpec(Actions)
}

// DiscountSpec returns the discounting specification of the environment
func (a *Arena) DiscountSpec() environment.Spec {
	shape := mat.NewVecDense(1, nil)
	lowerBound := mat.NewVecDense(1, []float64{a.discount})
	upperBound := mat.NewVecDense(1, []float64{a.discount})

	return environment.NewSpec(shape, environment.Discount, lowerBound,
		upperBound, environment.Continuous)
}

func (a *Arena) String() string {
	str := "Arena  |  Aim: %.2f  |  Target: %.2f  |  Velocity: %.3f"
	return fmt.Sprintf(str, a.state.AtVec(aimIndex),
		a.state.AtVec(targetIndex), a.state.AtVec(velocityIndex))
}
