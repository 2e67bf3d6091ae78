package main

import (
	"fmt"

	"github.com/samuelfneumann/doomrl/agent/linear/qlearning"
	"github.com/samuelfneumann/doomrl/buffer/expreplay"
	"github.com/samuelfneumann/doomrl/environment/arena"
	"github.com/samuelfneumann/doomrl/environment/frames"
	"github.com/samuelfneumann/doomrl/experiment"
)

// config holds all settings of a training run
type config struct {
	Seed     uint64 `mapstructure:"seed"`
	LogLevel string `mapstructure:"log_level"`
	Progress bool   `mapstructure:"progress"`

	// Output files. Checkpointing is disabled when CheckpointEvery is 0.
	Returns         string `mapstructure:"returns"`
	CheckpointDir   string `mapstructure:"checkpoint_dir"`
	CheckpointEvery int    `mapstructure:"checkpoint_every"`

	Env        envConfig         `mapstructure:"env"`
	Agent      qlearning.Config  `mapstructure:"agent"`
	Replay     expreplay.Config  `mapstructure:"replay"`
	Experiment experiment.Config `mapstructure:"experiment"`
}

// envConfig configures the arena and the preprocessing of its frames
type envConfig struct {
	ScreenWidth  int     `mapstructure:"screen_width"`
	ScreenHeight int     `mapstructure:"screen_height"`
	EpisodeSteps int     `mapstructure:"episode_steps"`
	Discount     float64 `mapstructure:"discount"`

	Width     int  `mapstructure:"width"`
	Height    int  `mapstructure:"height"`
	StackSize int  `mapstructure:"stack_size"`
	Gray      bool `mapstructure:"gray"`
}

// defaultReplayCapacity keeps a full buffer of default observations,
// 100x120 pixels in 4 gray frames, at about 770 MB. See replayBytes.
const defaultReplayCapacity = 2_000

func defaultConfig() config {
	agent := qlearning.DefaultConfig()
	agent.LearningRate = 1e-5

	return config{
		Seed:            1,
		LogLevel:        "info",
		Returns:         "returns.bin",
		CheckpointDir:   "checkpoints",
		CheckpointEvery: 0,
		Env: envConfig{
			ScreenWidth:  arena.DefaultWidth,
			ScreenHeight: arena.DefaultHeight,
			EpisodeSteps: arena.DefaultEpisodeSteps,
			Discount:     0.99,
			Width:        frames.DefaultWidth,
			Height:       frames.DefaultHeight,
			StackSize:    frames.DefaultStackSize,
			Gray:         true,
		},
		Agent:      agent,
		Replay:     expreplay.DefaultConfig(defaultReplayCapacity),
		Experiment: experiment.Default(),
	}
}

// Validate checks the settings which are not validated by the
// constructors of the components they configure
func (c config) Validate() error {
	if c.Env.Discount < 0 || c.Env.Discount > 1 {
		return fmt.Errorf("validate: discount out of range "+
			"\n\twant([0, 1]) \n\thave(%v)", c.Env.Discount)
	}
	if c.Env.EpisodeSteps <= 0 {
		return fmt.Errorf("validate: episode steps must be positive "+
			"\n\twant(>0) \n\thave(%v)", c.Env.EpisodeSteps)
	}
	if c.CheckpointEvery < 0 {
		return fmt.Errorf("validate: checkpoint every cannot be negative "+
			"\n\twant(>=0) \n\thave(%v)", c.CheckpointEvery)
	}
	if err := c.Agent.Validate(); err != nil {
		return err
	}
	if err := c.Replay.Validate(); err != nil {
		return err
	}
	return c.Experiment.Validate()
}

// observationLen returns the number of features in an observation
func (c config) observationLen() int {
	return c.Env.Width * c.Env.Height * c.Env.StackSize *
		frames.Channels(c.Env.Gray)
}

// replayBytes estimates the memory used by the observations in a full
// replay buffer. Consecutive transitions share an observation, so each
// stored transition holds about one observation of float64 features.
func (c config) replayBytes() int {
	return c.Replay.Capacity * c.observationLen() * 8
}
