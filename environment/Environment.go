// Package environment outlines the interfaces and structs needed to
// implement concrete simulated environments that can be wrapped by an
// RL environment adapter.
//
// An Environment exposes exactly the simulator capabilities that are
// needed to drive it: resetting, stepping with an action in physical
// units, introspection of the action and observation specifications,
// and access to its Physics for state snapshots and rendering.
package environment

import (
	"image"

	ts "github.com/samuelfneumann/dmcgym/timestep"
	"gonum.org/v1/gonum/mat"
)

// Physics implements the physical simulation underlying an Environment
type Physics interface {
	// State returns a copy of the full internal physical state
	State() []float64

	// Render renders the current scene from the camera with the given
	// id. Camera ids are environment-specific.
	Render(height, width, cameraID int) (*image.RGBA, error)
}

// PoleVertical is implemented by Physics which simulate a pole that
// can be balanced. PoleVertical returns the cosine of the angle
// between the pole and the vertical axis.
type PoleVertical interface {
	PoleVertical() float64
}

// Environment implements a simulated environment which includes the
// task to complete
type Environment interface {
	// Reset starts a new episode and returns its first TimeStep
	Reset() (ts.TimeStep, error)

	// Step takes one environmental step with an action in the true
	// physical action bounds of the environment. The returned bool
	// indicates whether the step is the last in the episode.
	Step(action *mat.VecDense) (ts.TimeStep, bool, error)

	ActionSpec() Spec

	// ObservationSpec returns the specification of each observation
	// field, in the order fields appear in observations
	ObservationSpec() []Spec

	Physics() Physics
}

// Starter implements a distribution of starting states and samples
// starting states for environments
type Starter interface {
	Start() *mat.VecDense
}

// Ender determines when episodes end
type Ender interface {
	End(*ts.TimeStep) bool
}
