package wrappers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"

	"github.com/samuelfneumann/doomrl/environment"
	"github.com/samuelfneumann/doomrl/environment/arena"
)

func newFrameStack(t *testing.T, gray bool) (*FrameStack, []float64) {
	t.Helper()

	bounds := []r1.Interval{{Min: 0.2, Max: 0.2}, {Min: 0, Max: 0}}
	s := environment.NewUniformStarter(bounds, 1)
	env, _, err := arena.New(arena.NewShoot(s, 10), 40, 30, 0.99)
	require.NoError(t, err)

	f, step, err := NewFrameStack(env, 12, 10, 4, gray)
	require.NoError(t, err)

	return f, mat.Col(nil, 0, step.Observation)
}

func TestFrameStackObservation(t *testing.T) {
	for _, gray := range []bool{true, false} {
		f, obs := newFrameStack(t, gray)

		channels := 3
		if gray {
			channels = 1
		}
		require.Len(t, obs, 12*10*4*channels)
		assert.Equal(t, len(obs), f.ObservationSpec().Shape.Len())
		assert.GreaterOrEqual(t, floats.Min(obs), 0.0)
		assert.LessOrEqual(t, floats.Max(obs), 1.0)
	}
}

func TestFrameStackPrimedWithFirstFrame(t *testing.T) {
	_, obs := newFrameStack(t, true)

	// Every pixel holds 4 copies of the first frame
	for p := 0; p < len(obs); p += 4 {
		for k := 1; k < 4; k++ {
			assert.Equal(t, obs[p], obs[p+k])
		}
	}
}

func TestFrameStackStep(t *testing.T) {
	f, first := newFrameStack(t, true)

	step, done, err := f.Step(mat.NewVecDense(1, []float64{float64(arena.Right)}))
	require.NoError(t, err)
	assert.False(t, done)
	assert.Equal(t, arena.LivingReward, step.Reward)

	obs := mat.Col(nil, 0, step.Observation)
	require.Len(t, obs, len(first))

	// The three oldest frames are still the first frame
	changed := false
	for p := 0; p < len(obs); p += 4 {
		for k := 0; k < 3; k++ {
			assert.Equal(t, first[p+k], obs[p+k])
		}
		if obs[p+3] != first[p+3] {
			changed = true
		}
	}
	assert.True(t, changed, "newest frame did not change after turning")

	_, _, err = f.Step(mat.NewVecDense(1, []float64{7}))
	assert.Error(t, err)

	step, err = f.Reset()
	require.NoError(t, err)
	assert.True(t, step.First())
}
