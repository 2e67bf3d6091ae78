package environment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r1"

	"github.com/samuelfneumann/doomrl/timestep"
)

func TestDiscreteActionSpec(t *testing.T) {
	s := NewDiscreteActionSpec(3)
	n, err := s.Actions()
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = NewBoxSpec(Action, 2, -1, 1).Actions()
	assert.Error(t, err)
}

func TestStepLimit(t *testing.T) {
	limit := NewStepLimit(3)

	step := timestep.New(timestep.Mid, 0, 1, nil, 2)
	assert.False(t, limit.End(&step))
	assert.True(t, step.Mid())

	step.Number = 3
	assert.True(t, limit.End(&step))
	assert.True(t, step.Last())
}

func TestUniformStarter(t *testing.T) {
	bounds := []r1.Interval{{Min: -1, Max: 1}, {Min: 5, Max: 6}}
	s := NewUniformStarter(bounds, 1)

	for i := 0; i < 100; i++ {
		start := s.Start()
		require.Equal(t, 2, start.Len())
		for j, b := range bounds {
			assert.GreaterOrEqual(t, start.AtVec(j), b.Min)
			assert.LessOrEqual(t, start.AtVec(j), b.Max)
		}
	}
}
