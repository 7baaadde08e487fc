// Package pendulum implements the pendulum control domain, in which an
// underpowered pendulum must be swung up and balanced upright
package pendulum

import (
	"fmt"
	"math"

	"github.com/samuelfneumann/dmcgym/environment"
	"github.com/samuelfneumann/dmcgym/environment/internal/control"
	"github.com/samuelfneumann/dmcgym/environment/rewards"
	ts "github.com/samuelfneumann/dmcgym/timestep"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
)

const (
	// SwingUp is the name of the only pendulum task
	SwingUp string = "swingup"

	// DefaultTimeLimit is the default length of an episode in seconds
	DefaultTimeLimit float64 = 20.0
)

// AngleBound is the largest angle from upright, in degrees, which is
// rewarded
const AngleBound float64 = 8

var cosineBound = math.Cos(AngleBound * math.Pi / 180)

// Tasks returns the names of the pendulum tasks
func Tasks() []string {
	return []string{SwingUp}
}

// Config configures a Pendulum environment
type Config struct {
	Seed uint64

	// TimeLimit is the length of an episode in seconds. A non-positive
	// time limit uses DefaultTimeLimit.
	TimeLimit float64

	// NSubSteps is the number of physics steps in each control step
	NSubSteps int

	// VisualizeReward tints the pendulum in rendered frames by the
	// reward
	VisualizeReward bool
}

// Pendulum implements the pendulum swing up task. Episodes start with
// the pendulum at rest at an angle drawn uniformly from [-π, π]. The
// reward is 1 whenever the pendulum is within AngleBound degrees of
// upright and 0 otherwise.
//
// Actions are the torque applied at the base, bounded by
// [-TorqueBound, TorqueBound]. Observations have two fields:
// orientation, the cosine and sine of the pendulum angle, and the
// scalar velocity, the angular velocity of the pendulum.
//
// Pendulum implements the environment.Environment interface
type Pendulum struct {
	physics   *Physics
	starter   environment.Starter
	episode   *control.Episode
	nSubSteps int
}

// New returns a new Pendulum environment for the named task
func New(task string, c Config) (*Pendulum, error) {
	if task != SwingUp {
		return nil, fmt.Errorf("new: no pendulum task %q, must be one of %v",
			task, Tasks())
	}

	nSubSteps := c.NSubSteps
	if nSubSteps <= 0 {
		nSubSteps = 1
	}
	timeLimit := c.TimeLimit
	if timeLimit <= 0 {
		timeLimit = DefaultTimeLimit
	}

	starter := environment.NewUniformStarter([]r1.Interval{
		{Min: -math.Pi, Max: math.Pi},
		{Min: 0, Max: 0},
	}, c.Seed)

	physics := newPhysics(c.VisualizeReward)
	physics.setState(starter.Start().RawVector().Data)

	return &Pendulum{
		physics:   physics,
		starter:   starter,
		episode:   control.NewEpisode(timeLimit, Dt*float64(nSubSteps)),
		nSubSteps: nSubSteps,
	}, nil
}

// Reset starts a new episode
func (p *Pendulum) Reset() (ts.TimeStep, error) {
	p.physics.setState(p.starter.Start().RawVector().Data)
	p.physics.lastReward = 0
	return p.episode.Begin(p.observation()), nil
}

// Step takes one control step with torque a applied at the base of the
// pendulum. If the previous step ended the episode, Step starts a new
// episode instead.
func (p *Pendulum) Step(a *mat.VecDense) (ts.TimeStep, bool, error) {
	if p.episode.ResetNext() {
		step, err := p.Reset()
		return step, false, err
	}
	if a == nil || a.Len() != 1 {
		return ts.TimeStep{}, false, fmt.Errorf("step: pendulum actions " +
			"must have a single element")
	}

	for i := 0; i < p.nSubSteps; i++ {
		p.physics.step(a.AtVec(0))
	}

	reward := rewards.Tolerance(p.physics.PoleVertical(),
		r1.Interval{Min: cosineBound, Max: 1}, 0, rewards.Gaussian,
		rewards.DefaultValueAtMargin)
	p.physics.lastReward = reward

	step, last := p.episode.Advance(reward, p.observation())
	return step, last, nil
}

func (p *Pendulum) observation() ts.Observation {
	return ts.Observation{
		ts.NewField("orientation", []int{2}, p.physics.PoleOrientation()),
		ts.Scalar("velocity", p.physics.AngularVelocity()),
	}
}

// ActionSpec returns the action specification of the environment
func (p *Pendulum) ActionSpec() environment.Spec {
	return environment.NewBoundedSpec("action", []int{1}, environment.Action,
		environment.Float64, []float64{-TorqueBound}, []float64{TorqueBound})
}

// ObservationSpec returns the specifications of the orientation and
// velocity observation fields
func (p *Pendulum) ObservationSpec() []environment.Spec {
	return []environment.Spec{
		environment.NewSpec("orientation", []int{2}, environment.Observation,
			environment.Float64),
		environment.NewSpec("velocity", nil, environment.Observation,
			environment.Float64),
	}
}

// Physics returns the simulation underlying the environment
func (p *Pendulum) Physics() environment.Physics {
	return p.physics
}

func (p *Pendulum) String() string {
	str := "Pendulum  |  theta: %v  |  theta dot: %v"
	return fmt.Sprintf(str, p.physics.theta, p.physics.thetaDot)
}
