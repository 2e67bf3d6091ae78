// Package experiment implements functionality for running an experiment
package experiment

import "fmt"

// Config represents a configuration of an Online experiment
type Config struct {
	// MaxSteps is the number of environment steps to train for
	MaxSteps int `mapstructure:"max_steps"`

	// PretrainEpisodes is the number of episodes of random actions
	// used to fill the replay buffer before training
	PretrainEpisodes int `mapstructure:"pretrain_episodes"`

	BatchSize  int `mapstructure:"batch_size"`
	TrainEvery int `mapstructure:"train_every"`

	// LogEvery is the number of steps between logging replay buffer
	// statistics. Zero disables logging of statistics.
	LogEvery int `mapstructure:"log_every"`
}

// Default returns the default experiment configuration
func Default() Config {
	return Config{
		MaxSteps:         100_000,
		PretrainEpisodes: 10,
		BatchSize:        64,
		TrainEvery:       4,
		LogEvery:         1000,
	}
}

// Validate ensures that the Config is valid
func (c Config) Validate() error {
	if c.MaxSteps <= 0 {
		return fmt.Errorf("validate: max steps must be positive "+
			"\n\twant(>0) \n\thave(%v)", c.MaxSteps)
	}
	if c.PretrainEpisodes < 0 {
		return fmt.Errorf("validate: pretraining episodes cannot be "+
			"negative \n\twant(>=0) \n\thave(%v)", c.PretrainEpisodes)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("validate: batch size must be positive "+
			"\n\twant(>0) \n\thave(%v)", c.BatchSize)
	}
	if c.TrainEvery <= 0 {
		return fmt.Errorf("validate: train every must be positive "+
			"\n\twant(>0) \n\thave(%v)", c.TrainEvery)
	}
	if c.LogEvery < 0 {
		return fmt.Errorf("validate: log every cannot be negative "+
			"\n\twant(>=0) \n\thave(%v)", c.LogEvery)
	}
	return nil
}
