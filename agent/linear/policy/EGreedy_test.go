package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/doomrl/environment"
	"github.com/samuelfneumann/doomrl/timestep"
)

// env only provides specifications
type env struct {
	environment.Environment
	features, actions int
}

func (e env) ObservationSpec() environment.Spec {
	return environment.NewBoxSpec(environment.Observation, e.features, 0, 1)
}

func (e env) ActionSpec() environment.Spec {
	return environment.NewDiscreteActionSpec(e.actions)
}

func step(obs ...float64) timestep.TimeStep {
	return timestep.New(timestep.Mid, 0, 1,
		mat.NewVecDense(len(obs), obs), 1)
}

func TestEGreedyGreedy(t *testing.T) {
	p, err := NewEGreedy(0, 1, env{features: 2, actions: 3})
	require.NoError(t, err)

	r, c := p.Weights().Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 2, c)

	p.Weights().SetRow(2, []float64{1, 1})
	for i := 0; i < 50; i++ {
		assert.Equal(t, 2.0, p.SelectAction(step(1, 1)).AtVec(0))
	}
}

func TestEGreedyEval(t *testing.T) {
	p, err := NewEGreedy(1, 1, env{features: 1, actions: 4})
	require.NoError(t, err)
	p.Weights().SetRow(1, []float64{5})

	p.Eval()
	assert.True(t, p.IsEval())
	for i := 0; i < 50; i++ {
		assert.Equal(t, 1.0, p.SelectAction(step(1)).AtVec(0))
	}

	p.Train()
	assert.False(t, p.IsEval())
}

func TestEGreedyRandom(t *testing.T) {
	const samples = 8000

	p, err := NewEGreedy(1, 3, env{features: 1, actions: 4})
	require.NoError(t, err)

	counts := make([]int, 4)
	for i := 0; i < samples; i++ {
		counts[int(p.SelectAction(step(1)).AtVec(0))]++
	}
	for _, c := range counts {
		assert.InDelta(t, 0.25, float64(c)/samples, 0.03)
	}

	p.SetEpsilon(0.5)
	assert.Equal(t, 0.5, p.Epsilon())
}

func TestNewEGreedyInvalid(t *testing.T) {
	_, err := NewEGreedy(1.5, 1, env{features: 1, actions: 2})
	assert.Error(t, err)

	e := env{features: 1, actions: 2}
	_, err = NewEGreedy(0.1, 1, badActions{e})
	assert.Error(t, err)
}

type badActions struct{ env }

func (b badActions) ActionSpec() environment.Spec {
	return environment.NewBoxSpec(environment.Action, 1, -1, 1)
}
