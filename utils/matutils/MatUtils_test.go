package matutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestMaxVec(t *testing.T) {
	tests := []struct {
		values []float64
		want   int
	}{
		{[]float64{1}, 0},
		{[]float64{1, 3, 2}, 1},
		{[]float64{-5, -1, -1}, 1},
		{[]float64{2, 2, 2}, 0},
	}
	for _, test := range tests {
		v := mat.NewVecDense(len(test.values), test.values)
		assert.Equal(t, test.want, MaxVec(v))
	}
}
