package tensorutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestFromSlice(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5, 6}
	d, err := FromSlice(data, 2, 3)
	require.NoError(t, err)

	assert.Equal(t, []int{2, 3}, []int(d.Shape()))
	v, err := d.At(1, 0)
	require.NoError(t, err)
	assert.Equal(t, 4.0, v)

	_, err = FromSlice(data, 4, 2)
	assert.Error(t, err)
}

func TestFromVectors(t *testing.T) {
	a := mat.NewVecDense(2, []float64{1, 2})
	b := mat.NewVecDense(2, []float64{3, 4})

	d, err := FromVectors([]mat.Vector{a, b})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2}, []int(d.Shape()))
	assert.Equal(t, []float64{1, 2, 3, 4}, d.Data())

	// Values are copied
	a.SetVec(0, 100)
	assert.Equal(t, 1.0, d.Data().([]float64)[0])

	_, err = FromVectors(nil)
	assert.Error(t, err)

	_, err = FromVectors([]mat.Vector{a, mat.NewVecDense(3, nil)})
	assert.Error(t, err)
}
