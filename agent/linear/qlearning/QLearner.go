package qlearning

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	G "gorgonia.org/gorgonia"

	"github.com/samuelfneumann/doomrl/timestep"
	"github.com/samuelfneumann/doomrl/utils/op"
	"github.com/samuelfneumann/doomrl/utils/tensorutils"
)

// QLearner implements the update functionality for the Q-Learning
// algorithm on batches of importance weighted transitions
type QLearner struct {
	weights      *mat.Dense
	learningRate float64

	loss     *weightedLoss
	lastLoss float64
}

// NewQLearner creates a new QLearner struct
//
// weights are the weights of the policy to learn
func NewQLearner(weights *mat.Dense, learningRate float64) (*QLearner,
	error) {
	if learningRate <= 0 {
		return nil, fmt.Errorf("newQLearner: learning rate must be "+
			"positive \n\twant(>0) \n\thave(%v)", learningRate)
	}
	return &QLearner{weights: weights, learningRate: learningRate}, nil
}

// TdError returns the TD error on a transition
func (q *QLearner) TdError(t timestep.Transition) float64 {
	target, estimate := q.targetAndEstimate(t)
	return target - estimate
}

// targetAndEstimate returns the update target and current action value
// estimate of a transition
func (q *QLearner) targetAndEstimate(t timestep.Transition) (float64,
	float64) {
	numActions, _ := q.weights.Dims()

	// Calculate the action values in the next state
	actionValues := mat.NewVecDense(numActions, nil)
	actionValues.MulVec(q.weights, t.NextState)

	// The discount is 0 for terminal transitions
	target := t.Reward + t.Discount*mat.Max(actionValues)

	// Find the current estimate of the taken action
	weights := q.weights.RowView(int(t.Action.AtVec(0)))
	estimate := mat.Dot(weights, t.State)

	return target, estimate
}

// Learn performs a semi-gradient Q-learning update using the argument
// batch, where each transition's update is scaled by its importance
// sampling weight. TD errors are computed for the whole batch before
// the weights are changed, and are returned so that the replay buffer
// can update the transitions' priorities.
func (q *QLearner) Learn(batch []timestep.Transition,
	weights []float64) ([]float64, error) {
	if len(batch) == 0 {
		return nil, fmt.Errorf("learn: empty batch")
	}
	if len(batch) != len(weights) {
		return nil, fmt.Errorf("learn: batch and weights lengths differ "+
			"\n\twant(%v) \n\thave(%v)", len(batch), len(weights))
	}

	numActions, features := q.weights.Dims()
	for i, t := range batch {
		if t.Action.Len() != 1 {
			return nil, fmt.Errorf("learn: transition %v: actions should "+
				"be 1-dimensional", i)
		}
		action := t.Action.AtVec(0)
		if action < 0 || int(action) >= numActions ||
			action != float64(int(action)) {
			return nil, fmt.Errorf("learn: transition %v: illegal "+
				"action %v", i, action)
		}
		if t.State.Len() != features || t.NextState.Len() != features {
			return nil, fmt.Errorf("learn: transition %v: invalid "+
				"number of features \n\twant(%v) \n\thave(%v, %v)", i,
				features, t.State.Len(), t.NextState.Len())
		}
	}

	targets := make([]float64, len(batch))
	estimates := make([]float64, len(batch))
	tdErrors := make([]float64, len(batch))
	for i, t := range batch {
		targets[i], estimates[i] = q.targetAndEstimate(t)
		tdErrors[i] = targets[i] - estimates[i]
	}

	loss, err := q.weightedLoss(estimates, targets, weights)
	if err != nil {
		return nil, fmt.Errorf("learn: %v", err)
	}
	q.lastLoss = loss

	for i, t := range batch {
		action := int(t.Action.AtVec(0))

		// Construct the scaling factor of the gradient
		scale := q.learningRate * weights[i] * tdErrors[i]

		// Perform gradient descent: ∇weights = scale * state
		row := q.weights.RowView(action)
		newWeights := mat.NewVecDense(row.Len(), nil)
		newWeights.AddScaledVec(row, scale, t.State)
		q.weights.SetRow(action, mat.Col(nil, 0, newWeights))
	}

	return tdErrors, nil
}

// Loss returns the importance weighted mean squared TD error of the
// most recent batch, computed before the update
func (q *QLearner) Loss() float64 {
	return q.lastLoss
}

// weightedLoss calculates the weighted mean squared error of estimates
// using a computational graph, rebuilding the graph if the batch size
// changes
func (q *QLearner) weightedLoss(estimates, targets,
	weights []float64) (float64, error) {
	if q.loss == nil || q.loss.batchSize != len(estimates) {
		if q.loss != nil {
			q.loss.Close()
		}
		loss, err := newWeightedLoss(len(estimates))
		if err != nil {
			return 0, err
		}
		q.loss = loss
	}

	return q.loss.Run(estimates, targets, weights)
}

// weightedLoss is a graph computing the importance weighted mean
// squared error of a batch
type weightedLoss struct {
	batchSize int
	graph     *G.ExprGraph
	pred      *G.Node
	target    *G.Node
	weights   *G.Node
	loss      *G.Node
	vm        G.VM
}

func newWeightedLoss(batchSize int) (*weightedLoss, error) {
	graph := G.NewGraph()
	pred := G.NewVector(graph, G.Float64, G.WithShape(batchSize),
		G.WithName("pred"))
	target := G.NewVector(graph, G.Float64, G.WithShape(batchSize),
		G.WithName("target"))
	weights := G.NewVector(graph, G.Float64, G.WithShape(batchSize),
		G.WithName("weights"))

	loss, err := op.WeightedMSE(pred, target, weights)
	if err != nil {
		return nil, fmt.Errorf("newWeightedLoss: %v", err)
	}

	vm := G.NewTapeMachine(graph)
	return &weightedLoss{batchSize, graph, pred, target, weights, loss,
		vm}, nil
}

// Run computes the loss
func (w *weightedLoss) Run(pred, target, weights []float64) (float64,
	error) {
	defer w.vm.Reset()

	inputs := []struct {
		node *G.Node
		data []float64
	}{{w.pred, pred}, {w.target, target}, {w.weights, weights}}
	for _, input := range inputs {
		value, err := tensorutils.FromSlice(input.data, w.batchSize)
		if err != nil {
			return 0, err
		}
		if err := G.Let(input.node, value); err != nil {
			return 0, err
		}
	}

	if err := w.vm.RunAll(); err != nil {
		return 0, err
	}

	switch data := w.loss.Value().Data().(type) {
	case float64:
		return data, nil
	case []float64:
		return data[0], nil
	default:
		return 0, fmt.Errorf("run: unexpected loss type %T", data)
	}
}

// Close releases the resources of the graph's VM
func (w *weightedLoss) Close() error {
	return w.vm.Close()
}
