package environment

import (
	"fmt"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// NormalStarter samples each feature of a starting state independently
// from a normal distribution
type NormalStarter struct {
	rand []distuv.Normal
}

// NewNormalStarter returns a new NormalStarter which samples feature i
// from a normal distribution with mean means[i] and standard deviation
// stds[i]. All features share a single random source.
func NewNormalStarter(means, stds []float64, seed uint64) *NormalStarter {
	if len(means) != len(stds) {
		panic(fmt.Sprintf("newNormalStarter: have %v means but %v standard "+
			"deviations", len(means), len(stds)))
	}

	source := rand.NewSource(seed)
	dists := make([]distuv.Normal, len(means))
	for i := range dists {
		dists[i] = distuv.Normal{Mu: means[i], Sigma: stds[i], Src: source}
	}

	return &NormalStarter{dists}
}

// Start returns a starting state vector
func (n *NormalStarter) Start() *mat.VecDense {
	start := make([]float64, len(n.rand))
	for i := range start {
		start[i] = n.rand[i].Rand()
	}

	return mat.NewVecDense(len(start), start)
}
