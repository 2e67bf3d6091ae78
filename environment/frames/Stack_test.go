package frames

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStackPrimeAndEvict(t *testing.T) {
	s, err := NewStack(3, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, 6, s.Len())

	tests := []struct {
		frame []float64
		want  []float64
	}{
		{[]float64{1, 1}, []float64{1, 1, 1, 1, 1, 1}},
		{[]float64{2, 2}, []float64{1, 1, 2, 1, 1, 2}},
		{[]float64{3, 3}, []float64{1, 2, 3, 1, 2, 3}},
		{[]float64{4, 4}, []float64{2, 3, 4, 2, 3, 4}},
	}
	for _, test := range tests {
		got, err := s.Push(test.frame)
		require.NoError(t, err)
		assert.Equal(t, test.want, got)
	}

	s.Reset()
	got, err := s.Push([]float64{9, 8})
	require.NoError(t, err)
	assert.Equal(t, []float64{9, 9, 9, 8, 8, 8}, got)
}

func TestStackChannelsLast(t *testing.T) {
	s, err := NewStack(2, 4, 2)
	require.NoError(t, err)

	got, err := s.Push([]float64{1, 2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 1, 2, 3, 4, 3, 4}, got)

	got, err = s.Push([]float64{5, 6, 7, 8})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 5, 6, 3, 4, 7, 8}, got)
}

func TestStackInvalid(t *testing.T) {
	_, err := NewStack(0, 4, 1)
	assert.Error(t, err)

	_, err = NewStack(2, 5, 2)
	assert.Error(t, err)

	s, err := NewStack(2, 4, 1)
	require.NoError(t, err)
	_, err = s.Push([]float64{1})
	assert.Error(t, err)
}
