package arena

import (
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/doomrl/environment"
	"github.com/samuelfneumann/doomrl/timestep"
)

const (
	LivingReward float64 = -1.0
	MissReward   float64 = -5.0
	KillReward   float64 = 100.0
)

// Shoot implements the task of shooting the target. The agent receives
// a reward of -1 each timestep, -5 for each missed shot, and 100 for
// shooting the target, which ends the episode. Episodes also end after
// a step limit.
type Shoot struct {
	environment.Starter
	stepEnder environment.StepLimit
}

// NewShoot returns a new Shoot task. The Starter s must sample
// 2-dimensional starting states of the target's position and
// velocity.
func NewShoot(s environment.Starter, episodeSteps int) *Shoot {
	return &Shoot{s, environment.NewStepLimit(episodeSteps)}
}

// GetReward implements the environment.Task interface
func (s *Shoot) GetReward(_, action, nextState mat.Vector) float64 {
	if s.AtGoal(nextState) {
		return KillReward
	}
	if int(action.AtVec(0)) == Fire {
		return MissReward
	}
	return LivingReward
}

// AtGoal returns whether the target was shot in the argument state
func (s *Shoot) AtGoal(state mat.Vector) bool {
	return state.AtVec(hitIndex) == 1.0
}

// End implements the environment.Ender interface
func (s *Shoot) End(t *timestep.TimeStep) bool {
	return s.stepEnder.End(t)
}

// RewardSpec returns the reward specification of the task
func (s *Shoot) RewardSpec() environment.Spec {
	shape := mat.NewVecDense(1, nil)
	lowerBound := mat.NewVecDense(1, []float64{MissReward})
	upperBound := mat.NewVecDense(1, []float64{KillReward})

	return environment.NewSpec(shape, environment.Reward, lowerBound,
		upperBound, environment.Discrete)
}
