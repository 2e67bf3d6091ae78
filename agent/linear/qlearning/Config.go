package qlearning

import (
	"fmt"

	"github.com/samuelfneumann/doomrl/agent"
	"github.com/samuelfneumann/doomrl/environment"
)

// Config represents a configuration for the QLearning agent
type Config struct {
	Epsilon      float64 `mapstructure:"epsilon"` // epislon for behaviour policy
	LearningRate float64 `mapstructure:"learning_rate"`
}

// DefaultConfig returns the default QLearning configuration
func DefaultConfig() Config {
	return Config{Epsilon: 0.1, LearningRate: 1e-4}
}

// CreateAgent creates the agent from the Config. Agent weights are
// always initialized to zero.
func (c Config) CreateAgent(env environment.Environment,
	seed uint64) (agent.Agent, error) {
	q, err := New(env, c, seed)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// Validate ensures that the Config is valid
func (c Config) Validate() error {
	if c.Epsilon < 0 || c.Epsilon > 1 {
		return fmt.Errorf("validate: epsilon must be in [0, 1] "+
			"\n\thave(%v)", c.Epsilon)
	}
	if c.LearningRate <= 0 {
		return fmt.Errorf("validate: learning rate must be positive "+
			"\n\twant(>0) \n\thave(%v)", c.LearningRate)
	}
	return nil
}
