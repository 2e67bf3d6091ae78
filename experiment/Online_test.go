package experiment

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/doomrl/agent/linear/qlearning"
	"github.com/samuelfneumann/doomrl/buffer/expreplay"
	"github.com/samuelfneumann/doomrl/environment"
	"github.com/samuelfneumann/doomrl/experiment/checkpointer"
	"github.com/samuelfneumann/doomrl/experiment/trackers"
	ts "github.com/samuelfneumann/doomrl/timestep"
)

const chainLength = 4

// chain is a corridor of chainLength one-hot states. Action 1 moves
// right, any other action moves left. Reaching the right end gives a
// reward of 10 and ends the episode, other steps give -1.
type chain struct {
	position int
	limit    environment.StepLimit
	last     ts.TimeStep
}

func newChain() *chain {
	return &chain{limit: environment.NewStepLimit(20)}
}

func (c *chain) observation() *mat.VecDense {
	obs := mat.NewVecDense(chainLength, nil)
	obs.SetVec(c.position, 1)
	return obs
}

func (c *chain) Reset() (ts.TimeStep, error) {
	c.position = 0
	c.last = ts.New(ts.First, 0, 0.9, c.observation(), 0)
	return c.last, nil
}

func (c *chain) Step(a *mat.VecDense) (ts.TimeStep, bool, error) {
	if a.AtVec(0) == 1 {
		c.position++
	} else if c.position > 0 {
		c.position--
	}

	reward := -1.0
	stepType := ts.Mid
	if c.position == chainLength-1 {
		reward = 10
		stepType = ts.Last
	}

	c.last = ts.New(stepType, reward, 0.9, c.observation(), c.last.Number+1)
	c.limit.End(&c.last)
	return c.last, c.last.Last(), nil
}

func (c *chain) ObservationSpec() environment.Spec {
	return environment.NewBoxSpec(environment.Observation, chainLength, 0, 1)
}

func (c *chain) ActionSpec() environment.Spec {
	return environment.NewDiscreteActionSpec(3)
}

func (c *chain) DiscountSpec() environment.Spec {
	return environment.NewBoxSpec(environment.Discount, 1, 0.9, 0.9)
}

type fixture struct {
	online *Online
	agent  *qlearning.QLearning
	replay *expreplay.Prioritized[ts.Transition]
}

func newFixture(t *testing.T, c Config) fixture {
	t.Helper()

	env := newChain()
	q, err := qlearning.New(env, qlearning.Config{
		Epsilon:      0.2,
		LearningRate: 0.1,
	}, 1)
	require.NoError(t, err)

	replay, err := expreplay.Create[ts.Transition](
		expreplay.DefaultConfig(1000), 1)
	require.NoError(t, err)

	o, err := NewOnline(env, q, replay, c, zerolog.Nop(), 1)
	require.NoError(t, err)

	return fixture{o, q, replay}
}

func TestPretrain(t *testing.T) {
	f := newFixture(t, Default())

	require.NoError(t, f.online.Pretrain(context.Background(), 3))
	assert.Greater(t, f.replay.Len(), 3)
	assert.Zero(t, f.online.Steps())
	assert.Zero(t, f.online.Updates())
}

func TestRun(t *testing.T) {
	c := Config{
		MaxSteps:         300,
		PretrainEpisodes: 2,
		BatchSize:        8,
		TrainEvery:       2,
		LogEvery:         50,
	}
	f := newFixture(t, c)

	dir := t.TempDir()
	returns := trackers.NewReturn(filepath.Join(dir, "returns.bin"))
	f.online.Register(returns)

	check, err := checkpointer.NewNStep(100, f.agent.Weights(),
		checkpointer.FilenameEnumerator(1, filepath.Join(dir, "weights"),
			".bin"))
	require.NoError(t, err)
	f.online.AddCheckpointer(check)

	require.NoError(t, f.online.Run(context.Background()))

	assert.Equal(t, c.MaxSteps, f.online.Steps())
	assert.Equal(t, c.MaxSteps/c.TrainEvery, f.online.Updates())
	assert.Greater(t, f.online.Episodes(), 0)
	assert.Len(t, returns.Returns(), f.online.Episodes())

	// Sampling anneals the importance sampling exponent
	assert.Greater(t, f.replay.Beta(), expreplay.DefaultImportanceExponent)

	// Moving right is learned to be better than moving left
	start := mat.NewVecDense(chainLength, []float64{1, 0, 0, 0})
	f.agent.Eval()
	action := f.agent.SelectAction(ts.New(ts.First, 0, 0.9, start, 0))
	assert.Equal(t, 1.0, action.AtVec(0))

	require.NoError(t, f.online.Save())
	data, err := trackers.LoadData(filepath.Join(dir, "returns.bin"))
	require.NoError(t, err)
	assert.Equal(t, returns.Returns(), data)

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, files, 4) // 3 checkpoints and the returns
}

func TestRunCancelled(t *testing.T) {
	f := newFixture(t, Default())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := f.online.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewOnlineInvalid(t *testing.T) {
	env := newChain()
	q, err := qlearning.New(env, qlearning.DefaultConfig(), 1)
	require.NoError(t, err)
	replay, err := expreplay.Create[ts.Transition](
		expreplay.DefaultConfig(4), 1)
	require.NoError(t, err)

	c := Default()
	_, err = NewOnline(env, q, replay, c, zerolog.Nop(), 1)
	assert.Error(t, err, "batch size larger than capacity")

	c.BatchSize = 0
	_, err = NewOnline(env, q, replay, c, zerolog.Nop(), 1)
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, Default().Validate())

	for _, c := range []Config{
		{MaxSteps: 0, BatchSize: 1, TrainEvery: 1},
		{MaxSteps: 1, BatchSize: 0, TrainEvery: 1},
		{MaxSteps: 1, BatchSize: 1, TrainEvery: 0},
		{MaxSteps: 1, BatchSize: 1, TrainEvery: 1, PretrainEpisodes: -1},
		{MaxSteps: 1, BatchSize: 1, TrainEvery: 1, LogEvery: -1},
	} {
		assert.Error(t, c.Validate())
	}
}

// recorder keeps every transition stored in the wrapped buffer
type recorder struct {
	Replayer
	stored []ts.Transition
}

func (r *recorder) Store(t ts.Transition) {
	r.stored = append(r.stored, t)
	r.Replayer.Store(t)
}

func TestStoredTransitionsShareObservations(t *testing.T) {
	env := newChain()
	q, err := qlearning.New(env, qlearning.DefaultConfig(), 1)
	require.NoError(t, err)

	replay, err := expreplay.Create[ts.Transition](
		expreplay.DefaultConfig(1000), 1)
	require.NoError(t, err)
	r := &recorder{Replayer: replay}

	c := Config{MaxSteps: 40, PretrainEpisodes: 2, BatchSize: 4,
		TrainEvery: 1}
	o, err := NewOnline(env, q, r, c, zerolog.Nop(), 1)
	require.NoError(t, err)
	require.NoError(t, o.Run(context.Background()))
	require.NotEmpty(t, r.stored)

	for i := 1; i < len(r.stored); i++ {
		prev, cur := r.stored[i-1], r.stored[i]
		if prev.Terminal {
			// A new episode starts with its own first observation
			assert.NotSame(t, prev.NextState, cur.State)
		} else {
			assert.Same(t, prev.NextState, cur.State, "transition %d", i)
		}
	}
}
