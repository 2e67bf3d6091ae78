// Package qlearning implements the Q-Learning algorithm with linear
// function approximation, learning from batches of replayed
// transitions.
package qlearning

import (
	"fmt"

	"github.com/samuelfneumann/doomrl/agent/linear/policy"
	"github.com/samuelfneumann/doomrl/environment"
)

// QLearning implements the Q-Learning algorithm. The behaviour policy
// is ε-greedy with respect to the learned action values.
type QLearning struct {
	*QLearner
	*policy.EGreedy
}

// New creates a new QLearning agent for the argument environment
func New(env environment.Environment, c Config,
	seed uint64) (*QLearning, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}

	behaviour, err := policy.NewEGreedy(c.Epsilon, seed, env)
	if err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}

	learner, err := NewQLearner(behaviour.Weights(), c.LearningRate)
	if err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}

	return &QLearning{learner, behaviour}, nil
}
