// Package policy implements policies using linear function
// approximation
package policy

import (
	"fmt"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/samuelfneumann/doomrl/environment"
	"github.com/samuelfneumann/doomrl/timestep"
	"github.com/samuelfneumann/doomrl/utils/matutils"
)

// EGreedy implements an ε-greedy policy using linear function
// approximation. In evaluation mode, the policy is greedy.
type EGreedy struct {
	weights *mat.Dense
	epsilon float64
	seed    rand.Source // Seed for random number generation
	eval    bool
}

// NewEGreedy constructs a new EGreedy policy, where e=epislon is the
// probability with which a random action is selected. The weights
// have one row per action of env and one column per feature of env's
// observations.
func NewEGreedy(e float64, seed uint64,
	env environment.Environment) (*EGreedy, error) {
	if e < 0 || e > 1 {
		return nil, fmt.Errorf("newEGreedy: epsilon must be in [0, 1] "+
			"\n\thave(%v)", e)
	}

	actions, err := env.ActionSpec().Actions()
	if err != nil {
		return nil, fmt.Errorf("newEGreedy: %v", err)
	}
	features := env.ObservationSpec().Shape.Len()

	// Create the weight matrix: rows = actions, cols = features
	weights := mat.NewDense(actions, features, nil)

	return &EGreedy{weights, e, rand.NewSource(seed), false}, nil
}

// Weights returns the weights of the policy. The returned matrix is
// the policy's own.
func (p *EGreedy) Weights() *mat.Dense {
	return p.weights
}

// Epsilon returns the probability of selecting a random action
func (p *EGreedy) Epsilon() float64 {
	return p.epsilon
}

// SetEpsilon sets the probability of selecting a random action
func (p *EGreedy) SetEpsilon(e float64) {
	p.epsilon = e
}

// Eval sets the policy to greedy evaluation mode
func (p *EGreedy) Eval() { p.eval = true }

// Train sets the policy to ε-greedy training mode
func (p *EGreedy) Train() { p.eval = false }

// IsEval returns whether the policy is in evaluation mode
func (p *EGreedy) IsEval() bool { return p.eval }

// SelectAction selects and action from an ε-greedy policy
func (p *EGreedy) SelectAction(t timestep.TimeStep) *mat.VecDense {
	obs := t.Observation

	// Calculate all action values
	numActions, _ := p.weights.Dims()
	actionValues := mat.NewVecDense(numActions, nil)
	actionValues.MulVec(p.weights, obs)

	// Find the greedy action
	greedyAction := matutils.MaxVec(actionValues)
	if p.eval {
		return mat.NewVecDense(1, []float64{float64(greedyAction)})
	}

	// Calculate the ε probability of choosing any action at random
	prob := p.epsilon / float64(numActions)
	actionProbabilites := make([]float64, numActions)
	for i := 0; i < numActions; i++ {
		actionProbabilites[i] = prob
	}

	// Adjust the probability of choosing the greedy action
	actionProbabilites[greedyAction] += 1.0 - p.epsilon

	// Construct a categorical distribution over actions using action
	// probabilities
	dist := distuv.NewCategorical(actionProbabilites, p.seed)

	// Sample an action given the action probabilites and return
	return mat.NewVecDense(1, []float64{dist.Rand()})
}
