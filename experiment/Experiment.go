// Package experiment implements functionality for running agents on
// adapted environments
package experiment

import (
	"github.com/samuelfneumann/dmcgym/environment/dmcgym"
	"github.com/samuelfneumann/dmcgym/environment/spaces"
	"gonum.org/v1/gonum/mat"
	"gorgonia.org/tensor"
)

// Environment is an environment with a gym-style interface, such as a
// *dmcgym.Env
type Environment interface {
	Reset() (*tensor.Dense, error)
	Step(*mat.VecDense) (*tensor.Dense, float64, bool, dmcgym.Info, error)
	ActionSpace() *spaces.Box
}

// Agent selects actions in the normalized action space of an
// Environment
type Agent interface {
	SelectAction(obs *tensor.Dense) *mat.VecDense
}

// Random is an Agent which selects actions uniformly at random
type Random struct {
	space *spaces.Box
}

// NewRandom returns a new Random agent acting in a copy of space,
// seeded with seed
func NewRandom(space *spaces.Box, seed uint64) *Random {
	s := spaces.NewBox(space.Low.RawVector().Data, space.High.RawVector().Data,
		space.Shape, space.DType)
	s.Seed(seed)
	return &Random{space: s}
}

// SelectAction samples an action, ignoring the observation
func (r *Random) SelectAction(*tensor.Dense) *mat.VecDense {
	return r.space.Sample()
}
