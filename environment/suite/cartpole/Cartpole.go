// Package cartpole implements the cart-pole control domain: a pole
// attached by an unactuated hinge to a cart, which is pushed along a
// rail to swing up or balance the pole.
package cartpole

import (
	"fmt"

	"github.com/samuelfneumann/dmcgym/environment"
	"github.com/samuelfneumann/dmcgym/environment/internal/control"
	ts "github.com/samuelfneumann/dmcgym/timestep"
	"github.com/samuelfneumann/dmcgym/utils/floatutils"
	"gonum.org/v1/gonum/mat"
)

const (
	// DefaultTimeLimit is the default length of an episode in seconds
	DefaultTimeLimit float64 = 10.0

	MinAction float64 = -1.0
	MaxAction float64 = 1.0
)

// Config configures a Cartpole environment
type Config struct {
	Seed uint64

	// TimeLimit is the length of an episode in seconds. A non-positive
	// time limit uses DefaultTimeLimit.
	TimeLimit float64

	// NSubSteps is the number of physics steps in each control step
	NSubSteps int

	// VisualizeReward tints the pole in rendered frames by the reward
	VisualizeReward bool
}

// Cartpole implements the cart-pole domain.
//
// The action is the force applied to the cart, scaled to [-1, 1]. The
// observation has two fields: position, holding the cart position and
// the cosine and sine of the pole angle, and velocity, holding the cart
// velocity and the pole angular velocity.
//
// Cartpole implements the environment.Environment interface
type Cartpole struct {
	physics   *Physics
	task      task
	starter   environment.Starter
	episode   *control.Episode
	nSubSteps int
}

// New returns a new Cartpole environment for the named task
func New(taskName string, c Config) (*Cartpole, error) {
	t, ok := newTask(taskName)
	if !ok {
		return nil, fmt.Errorf("new: no cartpole task %q, must be one of %v",
			taskName, Tasks())
	}

	nSubSteps := c.NSubSteps
	if nSubSteps <= 0 {
		nSubSteps = 1
	}
	timeLimit := c.TimeLimit
	if timeLimit <= 0 {
		timeLimit = DefaultTimeLimit
	}

	starter := t.starter(c.Seed)
	return &Cartpole{
		physics:   newPhysics(starter.Start().RawVector().Data, c.VisualizeReward),
		task:      t,
		starter:   starter,
		episode:   control.NewEpisode(timeLimit, Dt*float64(nSubSteps)),
		nSubSteps: nSubSteps,
	}, nil
}

// Reset starts a new episode from a state drawn from the task's
// starting state distribution
func (c *Cartpole) Reset() (ts.TimeStep, error) {
	c.physics.setState(c.starter.Start().RawVector().Data)
	c.physics.lastReward = 0
	return c.episode.Begin(c.observation()), nil
}

// Step takes one control step with the force a applied to the cart.
// Forces outside of [-1, 1] are clipped. If the previous step ended the
// episode, Step starts a new episode instead.
func (c *Cartpole) Step(a *mat.VecDense) (ts.TimeStep, bool, error) {
	if c.episode.ResetNext() {
		step, err := c.Reset()
		return step, false, err
	}
	if a == nil || a.Len() != 1 {
		return ts.TimeStep{}, false, fmt.Errorf("step: cartpole actions " +
			"must have a single element")
	}

	u := floatutils.Clip(a.AtVec(0), MinAction, MaxAction)
	for i := 0; i < c.nSubSteps; i++ {
		c.physics.step(u * ForceMag)
	}

	reward := c.task.reward(c.physics, u)
	c.physics.lastReward = reward

	step, last := c.episode.Advance(reward, c.observation())
	return step, last, nil
}

func (c *Cartpole) observation() ts.Observation {
	return ts.Observation{
		ts.NewField("position", []int{3}, c.physics.BoundedPosition()),
		ts.NewField("velocity", []int{2}, c.physics.Velocity()),
	}
}

// ActionSpec returns the action specification of the environment
func (c *Cartpole) ActionSpec() environment.Spec {
	return environment.NewBoundedSpec("action", []int{1}, environment.Action,
		environment.Float64, []float64{MinAction}, []float64{MaxAction})
}

// ObservationSpec returns the specifications of the position and
// velocity observation fields
func (c *Cartpole) ObservationSpec() []environment.Spec {
	return []environment.Spec{
		environment.NewSpec("position", []int{3}, environment.Observation,
			environment.Float64),
		environment.NewSpec("velocity", []int{2}, environment.Observation,
			environment.Float64),
	}
}

// Physics returns the simulation underlying the environment
func (c *Cartpole) Physics() environment.Physics {
	return c.physics
}

// StepLimit returns the number of control steps in a full episode
func (c *Cartpole) StepLimit() int {
	return c.episode.StepLimit()
}

func (c *Cartpole) String() string {
	msg := "Cartpole  |  Position: %v  | Speed: %v  |  Angle: %v" +
		"  |  Angular Velocity: %v"

	state := c.physics.State()
	return fmt.Sprintf(msg, state[0], state[2], state[1], state[3])
}
