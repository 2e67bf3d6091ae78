package expreplay

import (
	"fmt"
)

// Default hyperparameters of a prioritized replay buffer
const (
	DefaultPriorityFloor       float64 = 0.01
	DefaultPriorityExponent    float64 = 0.6
	DefaultImportanceExponent  float64 = 0.4
	DefaultImportanceIncrement float64 = 0.001
)

// Config implements a specific configuration of a prioritized
// experience replay buffer
type Config struct {
	Capacity int `mapstructure:"capacity"`

	// PriorityFloor is added to each absolute TD error so that no
	// transition has zero probability of being sampled
	PriorityFloor float64 `mapstructure:"priority_floor"`

	// PriorityExponent determines how strongly priorities bias
	// sampling. A value of 0 results in uniform sampling.
	PriorityExponent float64 `mapstructure:"priority_exponent"`

	// ImportanceExponent is the initial exponent of the
	// importance sampling weights. It is annealed toward 1 by
	// ImportanceIncrement on each call to Sample.
	ImportanceExponent  float64 `mapstructure:"importance_exponent"`
	ImportanceIncrement float64 `mapstructure:"importance_increment"`
}

// DefaultConfig returns a Config with the commonly used
// hyperparameters and the argument capacity
func DefaultConfig(capacity int) Config {
	return Config{
		Capacity:            capacity,
		PriorityFloor:       DefaultPriorityFloor,
		PriorityExponent:    DefaultPriorityExponent,
		ImportanceExponent:  DefaultImportanceExponent,
		ImportanceIncrement: DefaultImportanceIncrement,
	}
}

// Validate checks a Config to ensure it describes a valid buffer
func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return fmt.Errorf("validate: capacity must be positive \n\t"+
			"want(>0) \n\thave(%v)", c.Capacity)
	}
	if c.PriorityFloor <= 0 {
		return fmt.Errorf("validate: priority floor must be positive \n\t"+
			"want(>0) \n\thave(%v)", c.PriorityFloor)
	}
	if c.PriorityExponent < 0 || c.PriorityExponent > 1 {
		return fmt.Errorf("validate: priority exponent out of range \n\t"+
			"want([0, 1]) \n\thave(%v)", c.PriorityExponent)
	}
	if c.ImportanceExponent <= 0 || c.ImportanceExponent > 1 {
		return fmt.Errorf("validate: importance exponent out of range "+
			"\n\twant((0, 1]) \n\thave(%v)", c.ImportanceExponent)
	}
	if c.ImportanceIncrement <= 0 {
		return fmt.Errorf("validate: importance increment must be "+
			"positive \n\twant(>0) \n\thave(%v)", c.ImportanceIncrement)
	}
	return nil
}

// Create creates and returns the prioritized replay buffer described
// by the Config
func Create[T any](c Config, seed uint64) (*Prioritized[T], error) {
	return NewPrioritized[T](c.Capacity, c.PriorityFloor,
		c.PriorityExponent, c.ImportanceExponent, c.ImportanceIncrement, seed)
}
