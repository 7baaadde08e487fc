// Package control implements the episode bookkeeping shared by the
// simulated control domains
package control

import (
	"math"

	"github.com/samuelfneumann/dmcgym/environment"
	ts "github.com/samuelfneumann/dmcgym/timestep"
)

// Episode tracks the time steps of the episodes of a control task.
// Episodes are truncated by a time limit, which leaves the discount of
// the last TimeStep at 1.
type Episode struct {
	limit     environment.StepLimit
	last      ts.TimeStep
	resetNext bool
}

// NewEpisode returns a new Episode which truncates episodes after
// timeLimit seconds, given the number of seconds that elapse in each
// control step. An infinite time limit never truncates episodes.
func NewEpisode(timeLimit, controlTimestep float64) *Episode {
	steps := 0
	if !math.IsInf(timeLimit, 1) {
		// Guard against floating point error in the division
		steps = int(math.Ceil(timeLimit/controlTimestep - 1e-8))
	}

	return &Episode{
		limit:     environment.NewStepLimit(steps),
		resetNext: true,
	}
}

// Begin starts a new episode and returns its first TimeStep, which
// carries no reward
func (e *Episode) Begin(obs ts.Observation) ts.TimeStep {
	e.last = ts.New(ts.First, nil, 1.0, obs, 0)
	e.resetNext = false
	return e.last
}

// Advance records one control step of the current episode
func (e *Episode) Advance(reward float64, obs ts.Observation) (ts.TimeStep,
	bool) {
	step := ts.New(ts.Mid, ts.Float(reward), 1.0, obs, e.last.Number+1)
	if e.limit.End(&step) {
		e.resetNext = true
	}

	e.last = step
	return step, step.Last()
}

// ResetNext returns whether the episode has ended, so that the next
// step should start a new episode
func (e *Episode) ResetNext() bool {
	return e.resetNext
}

// Last returns the most recent TimeStep of the episode
func (e *Episode) Last() ts.TimeStep {
	return e.last
}

// StepLimit returns the number of control steps in a full episode, or
// 0 if episodes are never truncated
func (e *Episode) StepLimit() int {
	return e.limit.Limit()
}
