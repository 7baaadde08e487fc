package cartpole

import (
	"math"

	"github.com/samuelfneumann/dmcgym/environment"
	"github.com/samuelfneumann/dmcgym/environment/rewards"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
)

// Task names
const (
	Balance       string = "balance"
	BalanceSparse string = "balance_sparse"
	SwingUp       string = "swingup"
	SwingUpSparse string = "swingup_sparse"
)

// Tasks returns the names of the cartpole tasks
func Tasks() []string {
	return []string{Balance, BalanceSparse, SwingUp, SwingUpSparse}
}

// task determines how episodes start and how rewards are computed. In
// swing up tasks the pole starts pointing down, in balance tasks it
// starts near upright.
type task struct {
	swingUp bool
	sparse  bool
}

func newTask(name string) (task, bool) {
	switch name {
	case Balance:
		return task{swingUp: false, sparse: false}, true
	case BalanceSparse:
		return task{swingUp: false, sparse: true}, true
	case SwingUp:
		return task{swingUp: true, sparse: false}, true
	case SwingUpSparse:
		return task{swingUp: true, sparse: true}, true
	}
	return task{}, false
}

// starter returns the distribution of starting states of the task
func (t task) starter(seed uint64) environment.Starter {
	if t.swingUp {
		means := []float64{0, math.Pi, 0, 0}
		stds := []float64{0.01, 0.01, 0.01, 0.01}
		return environment.NewNormalStarter(means, stds, seed)
	}

	position := environment.NewUniformStarter([]r1.Interval{
		{Min: -0.1, Max: 0.1},
		{Min: -0.034, Max: 0.034},
	}, seed)
	velocity := environment.NewNormalStarter([]float64{0, 0},
		[]float64{0.01, 0.01}, seed+1)
	return balanceStarter{position, velocity}
}

// reward returns the reward for the current physical state, given the
// control applied to reach it
func (t task) reward(p *Physics, control float64) float64 {
	if t.sparse {
		cartInBounds := rewards.Tolerance(p.CartPosition(),
			r1.Interval{Min: -0.25, Max: 0.25}, 0, rewards.Gaussian,
			rewards.DefaultValueAtMargin)
		angleInBounds := rewards.Tolerance(p.PoleVertical(),
			r1.Interval{Min: 0.995, Max: 1}, 0, rewards.Gaussian,
			rewards.DefaultValueAtMargin)
		return cartInBounds * angleInBounds
	}

	upright := (p.PoleVertical() + 1) / 2

	centered := rewards.Tolerance(p.CartPosition(), r1.Interval{}, 2,
		rewards.Gaussian, rewards.DefaultValueAtMargin)
	centered = (1 + centered) / 2

	smallControl := rewards.Tolerance(control, r1.Interval{}, 1,
		rewards.Quadratic, 0)
	smallControl = (4 + smallControl) / 5

	smallVelocity := rewards.Tolerance(p.AngularVelocity(), r1.Interval{}, 5,
		rewards.Gaussian, rewards.DefaultValueAtMargin)
	smallVelocity = (1 + smallVelocity) / 2

	return upright * smallControl * smallVelocity * centered
}

// balanceStarter samples cart positions and pole angles uniformly and
// velocities from a normal distribution
type balanceStarter struct {
	position environment.Starter
	velocity environment.Starter
}

// Start returns a starting state vector
func (b balanceStarter) Start() *mat.VecDense {
	position := b.position.Start().RawVector().Data
	velocity := b.velocity.Start().RawVector().Data

	state := append(append([]float64{}, position...), velocity...)
	return mat.NewVecDense(len(state), state)
}
