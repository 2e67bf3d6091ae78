// Package agent defines an agent interface
package agent

import (
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/doomrl/environment"
	"github.com/samuelfneumann/doomrl/timestep"
)

// Agent determines the implementation details of an agent or algorithm
//
// An Agent is composed of a BatchLearner, which learns weights from
// replayed experience, and a Policy which chooses actions in each
// state. The Policy chooses which actions are taken, and the
// BatchLearner uses the resulting transitions to update the Policy.
type Agent interface {
	BatchLearner
	Policy
}

// BatchLearner implements a learning algorithm which updates weights
// from batches of transitions sampled from an experience replay buffer
type BatchLearner interface {
	// Learn performs a single update using the argument batch. Each
	// transition's contribution to the update is scaled by the
	// corresponding importance sampling weight. Learn returns the TD
	// error of each transition in the batch, computed before the
	// update.
	Learn(batch []timestep.Transition, weights []float64) ([]float64, error)
}

// TdErrorer can return the TD error of some transition
type TdErrorer interface {
	// TdError returns the TD error on a transition
	TdError(t timestep.Transition) float64
}

// Policy represents a policy that an agent can have.
//
// For a given agent, the Policy and Learner should have pointers to
// the same weights so that any changes the learner makes to the
// weights are reflected in the actions the Policy chooses
type Policy interface {
	SelectAction(t timestep.TimeStep) *mat.VecDense
	Eval()        // Set policy to evaluation mode
	Train()       // Set policy to training mode
	IsEval() bool // Indicates if in evaluation mode
}

// Config implements a configuration of an Agent
type Config interface {
	// CreateAgent creates the Agent described by the Config for the
	// argument environment
	CreateAgent(env environment.Environment, seed uint64) (Agent, error)
	Validate() error
}
