// Package op provides extended Gorgonia graph operations.
package op

import (
	"fmt"

	G "gorgonia.org/gorgonia"
)

// WeightedMSE returns a node computing the importance weighted mean
// squared error between predictions and targets:
//
//	mean(weights ⊙ (target - pred)²)
//
// All nodes must be vectors of the same shape on the same graph.
func WeightedMSE(pred, target, weights *G.Node) (*G.Node, error) {
	graph := pred.Graph()
	if graph != target.Graph() || graph != weights.Graph() {
		return nil, fmt.Errorf("weightedMSE: all nodes must share the " +
			"same graph")
	}
	if !pred.Shape().Eq(target.Shape()) || !pred.Shape().Eq(weights.Shape()) {
		return nil, fmt.Errorf("weightedMSE: shapes must match "+
			"\n\twant(%v) \n\thave(%v, %v)", pred.Shape(), target.Shape(),
			weights.Shape())
	}

	diff, err := G.Sub(target, pred)
	if err != nil {
		return nil, fmt.Errorf("weightedMSE: %v", err)
	}
	squared, err := G.Square(diff)
	if err != nil {
		return nil, fmt.Errorf("weightedMSE: %v", err)
	}
	weighted, err := G.HadamardProd(weights, squared)
	if err != nil {
		return nil, fmt.Errorf("weightedMSE: %v", err)
	}

	return G.Mean(weighted)
}
