// Package timestep implements timesteps of the agent-environment interaction
package timestep

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// StepType denotes the type of step that a TimeStep can be, either  first
// environmental step, a middle step, or a last step
type StepType int

const (
	First StepType = iota
	Mid
	Last
)

func (s StepType) String() string {
	switch s {
	case First:
		return "First"
	case Last:
		return "Last"
	default:
		return "Mid"
	}
}

// TimeStep packages together a single timestep in an environment. The
// Reward is nil whenever the environment reports no reward, which is
// the case for the first step of every episode.
type TimeStep struct {
	StepType
	Reward      *float64
	Discount    float64
	Observation Observation
	Number      int
}

// New returns a new TimeStep
func New(t StepType, r *float64, d float64, o Observation, n int) TimeStep {
	return TimeStep{t, r, d, o, n}
}

// Float returns a pointer to a copy of r, which can be used as the
// reward of a TimeStep
func Float(r float64) *float64 {
	return &r
}

// RewardOr returns the reward of the TimeStep, or def if the TimeStep
// carries no reward
func (t TimeStep) RewardOr(def float64) float64 {
	if t.Reward == nil {
		return def
	}
	return *t.Reward
}

// First returns whether a TimeStep is the first in an environment
func (t TimeStep) First() bool {
	return t.StepType == First
}

// Mid returns whether a TimeStep is a middle step in an environment
func (t TimeStep) Mid() bool {
	return t.StepType == Mid
}

// Last returns whether a TimeStep is the last step in an environment
func (t TimeStep) Last() bool {
	return t.StepType == Last
}

func (t TimeStep) String() string {
	str := "TimeStep | Type: %v  |  Reward:  %v  |  Discount: %.2f  |  " +
		"Step Number:  %v"

	reward := "None"
	if t.Reward != nil {
		reward = fmt.Sprintf("%.2f", *t.Reward)
	}

	return fmt.Sprintf(str, t.StepType, reward, t.Discount, t.Number)
}

// FlatObservation returns the observation of the TimeStep flattened into
// a single vector
func (t TimeStep) FlatObservation() *mat.VecDense {
	return t.Observation.Flatten()
}
