package op

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

func vector(g *G.ExprGraph, name string, data []float64) *G.Node {
	value := tensor.New(tensor.WithShape(len(data)), tensor.WithBacking(data))
	return G.NewVector(g, G.Float64, G.WithShape(len(data)),
		G.WithName(name), G.WithValue(value))
}

func TestWeightedMSE(t *testing.T) {
	g := G.NewGraph()
	pred := vector(g, "pred", []float64{1, 2, 3})
	target := vector(g, "target", []float64{2, 2, 5})
	weights := vector(g, "weights", []float64{1, 0.5, 0.25})

	loss, err := WeightedMSE(pred, target, weights)
	require.NoError(t, err)

	vm := G.NewTapeMachine(g)
	defer vm.Close()
	require.NoError(t, vm.RunAll())

	// (1*1 + 0.5*0 + 0.25*4) / 3
	var got float64
	switch data := loss.Value().Data().(type) {
	case float64:
		got = data
	case []float64:
		got = data[0]
	}
	assert.InDelta(t, 2.0/3.0, got, 1e-12)
}

func TestWeightedMSEInvalid(t *testing.T) {
	g := G.NewGraph()
	pred := vector(g, "pred", []float64{1, 2})
	target := vector(g, "target", []float64{1, 2, 3})
	weights := vector(g, "weights", []float64{1, 1})

	_, err := WeightedMSE(pred, target, weights)
	assert.Error(t, err)

	other := vector(G.NewGraph(), "other", []float64{1, 2})
	_, err = WeightedMSE(pred, other, weights)
	assert.Error(t, err)
}
