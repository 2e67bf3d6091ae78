// Package tensorutils converts batches of data to tensors
package tensorutils

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gorgonia.org/tensor"
)

// FromSlice returns a tensor backed by data with the given shape
func FromSlice(data []float64, shape ...int) (*tensor.Dense, error) {
	size := 1
	for _, dim := range shape {
		size *= dim
	}
	if size != len(data) {
		return nil, fmt.Errorf("fromSlice: shape %v does not match data "+
			"\n\twant(%v) \n\thave(%v)", shape, size, len(data))
	}

	return tensor.New(tensor.WithShape(shape...), tensor.WithBacking(data)),
		nil
}

// FromVectors returns a matrix tensor whose rows are the argument
// vectors. Vector values are copied.
func FromVectors(vecs []mat.Vector) (*tensor.Dense, error) {
	if len(vecs) == 0 {
		return nil, fmt.Errorf("fromVectors: no vectors to convert")
	}

	cols := vecs[0].Len()
	data := make([]float64, 0, len(vecs)*cols)
	for i, vec := range vecs {
		if vec.Len() != cols {
			return nil, fmt.Errorf("fromVectors: vector %v has invalid "+
				"length \n\twant(%v) \n\thave(%v)", i, cols, vec.Len())
		}
		data = append(data, mat.Col(nil, 0, vec)...)
	}

	return FromSlice(data, len(vecs), cols)
}
