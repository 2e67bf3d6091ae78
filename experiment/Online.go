package experiment

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/samuelfneumann/doomrl/agent"
	"github.com/samuelfneumann/doomrl/buffer/expreplay"
	env "github.com/samuelfneumann/doomrl/environment"
	"github.com/samuelfneumann/doomrl/experiment/checkpointer"
	"github.com/samuelfneumann/doomrl/experiment/trackers"
	ts "github.com/samuelfneumann/doomrl/timestep"
	"github.com/samuelfneumann/doomrl/utils/progressbar"
)

// Replayer is the experience replay buffer used by an Online experiment
type Replayer = expreplay.Replayer[ts.Transition]

// losser is an agent which reports the loss of its most recent update
type losser interface {
	Loss() float64
}

// Online is an Experiment that runs an agent online, learning from
// transitions replayed from a prioritized experience replay buffer.
// Every transition is stored in the buffer. Once the buffer holds at
// least a batch of transitions, every TrainEvery steps a batch is
// sampled, the agent learns from it, and the priorities of the
// sampled transitions are updated with the agent's TD errors.
type Online struct {
	env.Environment
	agent.Agent
	replay Replayer
	config Config

	random   *distuv.Categorical
	steps    int
	episodes int
	updates  int

	trackers      []trackers.Tracker
	checkpointers []checkpointer.Checkpointer
	progress      *progressbar.ProgressBar
	logger        zerolog.Logger
}

// NewOnline creates and returns a new online experiment on a given
// environment with a given agent and replay buffer
func NewOnline(e env.Environment, a agent.Agent, replay Replayer, c Config,
	logger zerolog.Logger, seed uint64) (*Online, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("newOnline: %v", err)
	}
	if c.BatchSize > replay.Capacity() {
		return nil, fmt.Errorf("newOnline: batch size larger than replay "+
			"capacity \n\twant(<=%v) \n\thave(%v)", replay.Capacity(),
			c.BatchSize)
	}

	actions, err := e.ActionSpec().Actions()
	if err != nil {
		return nil, fmt.Errorf("newOnline: %v", err)
	}
	probs := make([]float64, actions)
	for i := range probs {
		probs[i] = 1.0
	}
	random := distuv.NewCategorical(probs, rand.NewSource(seed))

	return &Online{
		Environment: e,
		Agent:       a,
		replay:      replay,
		config:      c,
		random:      &random,
		logger:      logger,
	}, nil
}

// Register registers a Tracker with an Experiment so that data
// generated during the experiment can be tracked and saved
func (o *Online) Register(t trackers.Tracker) {
	o.trackers = append(o.trackers, t)
}

// AddCheckpointer adds a Checkpointer which is called after each step
// with the total number of steps taken
func (o *Online) AddCheckpointer(c checkpointer.Checkpointer) {
	o.checkpointers = append(o.checkpointers, c)
}

// SetProgressBar sets a progress bar which is incremented on each step
func (o *Online) SetProgressBar(p *progressbar.ProgressBar) {
	o.progress = p
}

// Steps returns the number of training steps taken
func (o *Online) Steps() int {
	return o.steps
}

// Episodes returns the number of training episodes completed
func (o *Online) Episodes() int {
	return o.episodes
}

// Updates returns the number of batch updates performed
func (o *Online) Updates() int {
	return o.updates
}

// Pretrain fills the replay buffer with transitions from episodes of
// uniform random actions. Pretraining steps are not tracked and do not
// count towards the experiment's step limit.
func (o *Online) Pretrain(ctx context.Context, episodes int) error {
	for i := 0; i < episodes; i++ {
		step, err := o.Reset()
		if err != nil {
			return fmt.Errorf("pretrain: %v", err)
		}

		var transition *ts.Transition

		for !step.Last() {
			if err := ctx.Err(); err != nil {
				return err
			}

			action := mat.NewVecDense(1, []float64{o.random.Rand()})
			next, _, err := o.Environment.Step(action)
			if err != nil {
				return fmt.Errorf("pretrain: %v", err)
			}

			transition = o.transition(transition, step, action, next)
			o.replay.Store(*transition)
			step = next
		}
	}

	o.logger.Info().
		Int("episodes", episodes).
		Int("transitions", o.replay.Len()).
		Msg("pretraining complete")
	return nil
}

// Run runs the entire experiment until the step limit is reached or
// ctx is cancelled
func (o *Online) Run(ctx context.Context) error {
	if err := o.Pretrain(ctx, o.config.PretrainEpisodes); err != nil {
		return err
	}

	for {
		ended, err := o.RunEpisode(ctx)
		if err != nil {
			return err
		}
		if ended {
			return nil
		}
	}
}

// RunEpisode runs a single episode of the experiment and returns
// whether or not the step limit has been reached
func (o *Online) RunEpisode(ctx context.Context) (bool, error) {
	step, err := o.Reset()
	if err != nil {
		return false, fmt.Errorf("runEpisode: %v", err)
	}
	o.track(step)

	var transition *ts.Transition
	episodeReturn := 0.0
	for !step.Last() && o.steps < o.config.MaxSteps {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		o.steps++

		// Select action, step in environment
		action := o.SelectAction(step)
		next, _, err := o.Environment.Step(action)
		if err != nil {
			return false, fmt.Errorf("runEpisode: %v", err)
		}
		o.track(next)
		episodeReturn += next.Reward

		transition = o.transition(transition, step, action, next)
		o.replay.Store(*transition)
		if o.replay.Len() >= o.config.BatchSize &&
			o.steps%o.config.TrainEvery == 0 {
			if err := o.train(); err != nil {
				return false, fmt.Errorf("runEpisode: %v", err)
			}
		}

		for _, c := range o.checkpointers {
			if err := c.Checkpoint(o.steps); err != nil {
				return false, fmt.Errorf("runEpisode: %v", err)
			}
		}
		if o.config.LogEvery > 0 && o.steps%o.config.LogEvery == 0 {
			o.logStats()
		}
		if o.progress != nil {
			o.progress.Increment()
		}

		step = next
	}

	if step.Last() {
		o.episodes++
		o.logger.Debug().
			Int("episode", o.episodes).
			Int("length", step.Number).
			Float64("return", episodeReturn).
			Msg("episode ended")
	}

	// Return whether or not the max timestep limit has been reached
	return o.steps >= o.config.MaxSteps, nil
}

// transition returns the Transition from step to next. Within an
// episode, each Transition shares its State with the NextState of the
// previous one, so that every stored observation is held once.
func (o *Online) transition(prev *ts.Transition, step ts.TimeStep,
	action mat.Vector, next ts.TimeStep) *ts.Transition {
	var t ts.Transition
	if prev == nil {
		t = ts.NewTransition(step, action, next)
	} else {
		t = prev.Next(action, next)
	}
	return &t
}

// train samples a batch from the replay buffer, updates the agent with
// the batch, and updates the priorities of the sampled transitions
func (o *Online) train() error {
	indices, batch, weights, err := o.replay.Sample(o.config.BatchSize)
	if err != nil {
		return fmt.Errorf("train: %v", err)
	}

	tdErrors, err := o.Learn(batch, weights)
	if err != nil {
		return fmt.Errorf("train: %v", err)
	}

	if err := o.replay.UpdatePriorities(indices, tdErrors); err != nil {
		return fmt.Errorf("train: %v", err)
	}

	o.updates++
	return nil
}

// logStats logs the statistics of the replay buffer
func (o *Online) logStats() {
	stats := o.replay.Stats()
	event := o.logger.Info().
		Int("step", o.steps).
		Int("episodes", o.episodes).
		Int("updates", o.updates).
		Int("replay_len", stats.Len).
		Float64("utilization", stats.Utilization()).
		Float64("total_priority", stats.TotalPriority).
		Float64("min_priority", stats.MinPriority).
		Float64("max_priority", stats.MaxPriority).
		Float64("beta", stats.Beta)

	if l, ok := o.Agent.(losser); ok {
		event = event.Float64("loss", l.Loss())
	}
	event.Msg("replay statistics")
}

// Save saves all the data cached by the Trackers to disk
func (o *Online) Save() error {
	for _, t := range o.trackers {
		if err := t.Save(); err != nil {
			return fmt.Errorf("save: %v", err)
		}
	}
	return nil
}

// track tracks the current timestep by caching its data in each Tracker
func (o *Online) track(t ts.TimeStep) {
	for _, tracker := range o.trackers {
		tracker.Track(t)
	}
}
