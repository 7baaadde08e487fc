package network

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// fcWeights holds the values of the weights of a fully connected layer
// of a feed forward neural network. The values are shared between the
// computational graphs built for different batch sizes.
type fcWeights struct {
	weights *tensor.Dense
	bias    *tensor.Dense
	act     *Activation
}

// newFCWeights returns new weights for a layer with in inputs and out
// outputs. Weights are drawn from a Glorot uniform distribution with
// the given gain, and biases are initialized to 0.
func newFCWeights(in, out int, bias bool, act *Activation, gain float64,
	src rand.Source) fcWeights {
	limit := gain * math.Sqrt(6/float64(in+out))
	dist := distuv.Uniform{Min: -limit, Max: limit, Src: src}

	w := make([]float64, in*out)
	for i := range w {
		w[i] = dist.Rand()
	}

	layer := fcWeights{
		weights: tensor.New(tensor.WithShape(in, out), tensor.WithBacking(w)),
		act:     act,
	}
	if bias {
		layer.bias = tensor.New(tensor.WithShape(1, out),
			tensor.WithBacking(make([]float64, out)))
	}
	return layer
}

// addTo adds the layer to the computational graph g, with nodes named
// by the layer index i
func (f fcWeights) addTo(g *G.ExprGraph, i int) *fcLayer {
	weights := G.NewMatrix(g, tensor.Float64,
		G.WithShape(f.weights.Shape()...),
		G.WithName(fmt.Sprintf("L%dW", i)),
		G.WithValue(f.weights))

	var bias *G.Node
	if f.bias != nil {
		bias = G.NewMatrix(g, tensor.Float64,
			G.WithShape(f.bias.Shape()...),
			G.WithName(fmt.Sprintf("L%dB", i)),
			G.WithValue(f.bias))
	}

	return &fcLayer{weights: weights, bias: bias, act: f.act}
}

// fcLayer implements a fully connected layer of a feed forward neural
// network
type fcLayer struct {
	weights *G.Node
	bias    *G.Node
	act     *Activation
}

// fwd adds the forward pass of the fcLayer to the computational graph
func (f *fcLayer) fwd(x *G.Node) (*G.Node, error) {
	x = G.Must(G.Mul(x, f.weights))
	if f.bias != nil {
		// Broadcast the bias weights to all samples along the batch
		// dimension
		x = G.Must(G.BroadcastAdd(x, f.bias, nil, []byte{0}))
	}
	if f.act == nil {
		return x, nil
	}
	return f.act.fwd(x)
}
