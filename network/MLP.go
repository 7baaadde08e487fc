// Package network implements feed forward neural networks on Gorgonia
// computational graphs, used to encode observations into feature
// vectors.
package network

import (
	"fmt"

	"golang.org/x/exp/rand"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// MLP implements a multi-layered perceptron. The MLP has
// len(hiddenSizes) + 1 layers. Hidden layer i has hiddenSizes[i] nodes,
// a bias unit, and activation activations[i]. A final linear layer
// with a bias unit maps to the outputs.
//
// Each batch size that the MLP is run on gets its own computational
// graph, and all graphs share the same weights.
type MLP struct {
	features int
	outputs  int
	layers   []fcWeights

	runs map[int]*forward
}

// forward holds a computational graph computing the forward pass of an
// MLP on batches of a fixed size
type forward struct {
	g          *G.ExprGraph
	input      *G.Node
	prediction *G.Node
	predVal    G.Value
	vm         G.VM
}

// NewMLP returns a new MLP with the given number of input features
// and outputs. Weights are initialized with a Glorot uniform
// distribution seeded by seed.
func NewMLP(features, outputs int, hiddenSizes []int,
	activations []*Activation, seed uint64) (*MLP, error) {
	if len(hiddenSizes) != len(activations) {
		msg := "newMLP: invalid number of activations" +
			"\n\twant(%d)\n\thave(%d)"
		return nil, fmt.Errorf(msg, len(hiddenSizes), len(activations))
	}
	if features <= 0 || outputs <= 0 {
		return nil, fmt.Errorf("newMLP: features (%v) and outputs (%v) must "+
			"be positive", features, outputs)
	}

	src := rand.NewSource(seed)
	layers := make([]fcWeights, 0, len(hiddenSizes)+1)
	in := features
	for i, size := range hiddenSizes {
		if size <= 0 {
			return nil, fmt.Errorf("newMLP: hidden layer %v has illegal "+
				"size %v", i, size)
		}
		layers = append(layers, newFCWeights(in, size, true, activations[i],
			1.0, src))
		in = size
	}
	layers = append(layers, newFCWeights(in, outputs, true, Identity(), 1.0,
		src))

	return &MLP{
		features: features,
		outputs:  outputs,
		layers:   layers,
		runs:     make(map[int]*forward),
	}, nil
}

// Features returns the number of input features of the MLP
func (m *MLP) Features() int {
	return m.features
}

// Outputs returns the number of outputs of the MLP
func (m *MLP) Outputs() int {
	return m.outputs
}

// Forward computes the forward pass of the MLP on a batch of inputs of
// shape (batch, features) and returns the outputs of shape
// (batch, outputs)
func (m *MLP) Forward(x *tensor.Dense) (*tensor.Dense, error) {
	shape := x.Shape()
	if len(shape) != 2 || shape[1] != m.features {
		return nil, fmt.Errorf("forward: input must have shape (batch, %v), "+
			"got %v", m.features, shape)
	}
	if x.Dtype() != tensor.Float64 {
		return nil, fmt.Errorf("forward: input must be of type %v, got %v",
			tensor.Float64, x.Dtype())
	}

	run, err := m.forwardFor(shape[0])
	if err != nil {
		return nil, fmt.Errorf("forward: %v", err)
	}

	if err := G.Let(run.input, x); err != nil {
		return nil, fmt.Errorf("forward: could not set input: %v", err)
	}
	defer run.vm.Reset()
	if err := run.vm.RunAll(); err != nil {
		return nil, fmt.Errorf("forward: could not run forward pass: %v", err)
	}

	out, ok := run.predVal.(*tensor.Dense)
	if !ok {
		return nil, fmt.Errorf("forward: unexpected output type %T",
			run.predVal)
	}
	return out.Clone().(*tensor.Dense), nil
}

// forwardFor returns the computational graph for batches of size batch,
// building it if needed
func (m *MLP) forwardFor(batch int) (*forward, error) {
	if run, ok := m.runs[batch]; ok {
		return run, nil
	}

	g := G.NewGraph()
	input := G.NewMatrix(g, tensor.Float64, G.WithShape(batch, m.features),
		G.WithName("input"), G.WithInit(G.Zeroes()))

	x := input
	for i, weights := range m.layers {
		var err error
		x, err = weights.addTo(g, i).fwd(x)
		if err != nil {
			return nil, fmt.Errorf("could not compute layer %v: %v", i, err)
		}
	}

	run := &forward{g: g, input: input, prediction: x}
	G.Read(run.prediction, &run.predVal)
	run.vm = G.NewTapeMachine(g)

	m.runs[batch] = run
	return run, nil
}

// Close releases the resources of every computational graph of the MLP
func (m *MLP) Close() error {
	for batch, run := range m.runs {
		if err := run.vm.Close(); err != nil {
			return fmt.Errorf("close: %v", err)
		}
		delete(m.runs, batch)
	}
	return nil
}
