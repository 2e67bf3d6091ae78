package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gonum.org/v1/gonum/spatial/r1"

	"github.com/samuelfneumann/doomrl/agent/linear/qlearning"
	"github.com/samuelfneumann/doomrl/buffer/expreplay"
	"github.com/samuelfneumann/doomrl/environment"
	"github.com/samuelfneumann/doomrl/environment/arena"
	"github.com/samuelfneumann/doomrl/environment/wrappers"
	"github.com/samuelfneumann/doomrl/experiment"
	"github.com/samuelfneumann/doomrl/experiment/checkpointer"
	"github.com/samuelfneumann/doomrl/experiment/trackers"
	ts "github.com/samuelfneumann/doomrl/timestep"
	"github.com/samuelfneumann/doomrl/utils/progressbar"
)

// flags maps each flag to its configuration key
var flags = map[string]string{
	"seed":             "seed",
	"log-level":        "log_level",
	"progress":         "progress",
	"returns":          "returns",
	"checkpoint-dir":   "checkpoint_dir",
	"checkpoint-every": "checkpoint_every",

	"screen-width":  "env.screen_width",
	"screen-height": "env.screen_height",
	"episode-steps": "env.episode_steps",
	"discount":      "env.discount",
	"width":         "env.width",
	"height":        "env.height",
	"stack-size":    "env.stack_size",
	"gray":          "env.gray",

	"epsilon":       "agent.epsilon",
	"learning-rate": "agent.learning_rate",

	"capacity":             "replay.capacity",
	"priority-floor":       "replay.priority_floor",
	"priority-exponent":    "replay.priority_exponent",
	"importance-exponent":  "replay.importance_exponent",
	"importance-increment": "replay.importance_increment",

	"max-steps":         "experiment.max_steps",
	"pretrain-episodes": "experiment.pretrain_episodes",
	"batch-size":        "experiment.batch_size",
	"train-every":       "experiment.train_every",
	"log-every":         "experiment.log_every",
}

// newRootCmd returns the doomrl command with its flags registered
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doomrl",
		Short: "Train an agent with prioritized experience replay",
		Long: `doomrl trains a Q-learning agent on a first-person shooting arena.

Frames rendered by the arena are preprocessed and stacked into
observations. Every transition is stored in a prioritized experience
replay buffer, from which the agent learns on importance weighted
batches.`,
		RunE: run,
	}

	cfg := defaultConfig()
	f := cmd.Flags()

	f.String("config", "", "Configuration file (yaml, toml, json)")

	// Run settings
	f.Uint64("seed", cfg.Seed, "Random seed")
	f.String("log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	f.Bool("progress", cfg.Progress, "Display a progress bar")
	f.String("returns", cfg.Returns, "File to save episodic returns to")
	f.String("checkpoint-dir", cfg.CheckpointDir, "Directory to save weights to")
	f.Int("checkpoint-every", cfg.CheckpointEvery, "Steps between weight checkpoints (0 disables)")

	// Environment settings
	f.Int("screen-width", cfg.Env.ScreenWidth, "Width of rendered frames")
	f.Int("screen-height", cfg.Env.ScreenHeight, "Height of rendered frames")
	f.Int("episode-steps", cfg.Env.EpisodeSteps, "Maximum steps per episode")
	f.Float64("discount", cfg.Env.Discount, "Discount factor")
	f.Int("width", cfg.Env.Width, "Width of preprocessed frames")
	f.Int("height", cfg.Env.Height, "Height of preprocessed frames")
	f.Int("stack-size", cfg.Env.StackSize, "Number of stacked frames per observation")
	f.Bool("gray", cfg.Env.Gray, "Convert frames to grayscale")

	// Agent settings
	f.Float64("epsilon", cfg.Agent.Epsilon, "Probability of a random action")
	f.Float64("learning-rate", cfg.Agent.LearningRate, "Learning rate")

	// Replay settings
	f.Int("capacity", cfg.Replay.Capacity, "Replay buffer capacity")
	f.Float64("priority-floor", cfg.Replay.PriorityFloor, "Constant added to absolute TD errors")
	f.Float64("priority-exponent", cfg.Replay.PriorityExponent, "Prioritization exponent α")
	f.Float64("importance-exponent", cfg.Replay.ImportanceExponent, "Initial importance sampling exponent β")
	f.Float64("importance-increment", cfg.Replay.ImportanceIncrement, "Increment of β per sampled batch")

	// Experiment settings
	f.Int("max-steps", cfg.Experiment.MaxSteps, "Number of training steps")
	f.Int("pretrain-episodes", cfg.Experiment.PretrainEpisodes, "Random episodes used to fill the replay buffer")
	f.Int("batch-size", cfg.Experiment.BatchSize, "Batch size")
	f.Int("train-every", cfg.Experiment.TrainEvery, "Steps between updates")
	f.Int("log-every", cfg.Experiment.LogEvery, "Steps between replay statistics logs (0 disables)")

	return cmd
}

// loadConfig reads the configuration of cmd from its flags, environment
// variables, e.g. DOOMRL_REPLAY_CAPACITY, and the configuration file,
// in decreasing precedence
func loadConfig(cmd *cobra.Command) (config, error) {
	v := viper.New()
	for flag, key := range flags {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return config{}, fmt.Errorf("loadConfig: %v", err)
		}
	}
	v.SetEnvPrefix("DOOMRL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	configFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return config{}, fmt.Errorf("loadConfig: %v", err)
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return config{}, fmt.Errorf("loadConfig: %v", err)
		}
	}

	var cfg config
	if err := v.Unmarshal(&cfg); err != nil {
		return config{}, fmt.Errorf("loadConfig: %v", err)
	}
	return cfg, cfg.Validate()
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("invalid configuration: %v", err)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level: %v", err)
	}
	logger := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	// Create the environment
	bounds := []r1.Interval{
		{Min: -arena.MaxPosition, Max: arena.MaxPosition},
		{Min: -arena.MaxVelocity, Max: arena.MaxVelocity},
	}
	s := environment.NewUniformStarter(bounds, cfg.Seed)
	task := arena.NewShoot(s, cfg.Env.EpisodeSteps)
	a, _, err := arena.New(task, cfg.Env.ScreenWidth, cfg.Env.ScreenHeight,
		cfg.Env.Discount)
	if err != nil {
		return err
	}

	env, _, err := wrappers.NewFrameStack(a, cfg.Env.Width, cfg.Env.Height,
		cfg.Env.StackSize, cfg.Env.Gray)
	if err != nil {
		return err
	}

	// Create the agent and replay buffer
	q, err := qlearning.New(env, cfg.Agent, cfg.Seed)
	if err != nil {
		return err
	}
	replay, err := expreplay.Create[ts.Transition](cfg.Replay, cfg.Seed)
	if err != nil {
		return err
	}

	e, err := experiment.NewOnline(env, q, replay, cfg.Experiment, logger,
		cfg.Seed)
	if err != nil {
		return err
	}
	returns := trackers.NewReturn(cfg.Returns)
	e.Register(returns)

	if cfg.CheckpointEvery > 0 {
		if err := os.MkdirAll(cfg.CheckpointDir, 0o755); err != nil {
			return err
		}
		filename := checkpointer.FilenameEnumerator(1,
			filepath.Join(cfg.CheckpointDir, "weights"), ".bin")
		c, err := checkpointer.NewNStep(cfg.CheckpointEvery, q.Weights(),
			filename)
		if err != nil {
			return err
		}
		e.AddCheckpointer(c)
	}

	if cfg.Progress {
		pbar := progressbar.NewProgressBar(50, cfg.Experiment.MaxSteps,
			time.Second)
		pbar.Display()
		defer pbar.Close()
		e.SetProgressBar(pbar)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt,
		syscall.SIGTERM)
	defer stop()

	logger.Info().
		Str("env", env.String()).
		Int("features", env.ObservationSpec().Shape.Len()).
		Int("capacity", replay.Capacity()).
		Int("replay_bytes", cfg.replayBytes()).
		Int("max_steps", cfg.Experiment.MaxSteps).
		Msg("starting experiment")

	runErr := e.Run(ctx)
	if runErr != nil && ctx.Err() == nil {
		return runErr
	}

	if err := e.Save(); err != nil {
		return err
	}
	mean, std := returns.Summary(100)
	logger.Info().
		Int("steps", e.Steps()).
		Float64("return_mean", mean).
		Float64("return_std", std).
		Int("episodes", e.Episodes()).
		Int("updates", e.Updates()).
		Str("replay", replay.Stats().String()).
		Msg("experiment finished")
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
