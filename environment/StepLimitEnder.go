package environment

import ts "github.com/samuelfneumann/dmcgym/timestep"

// StepLimit implements the Ender interface to end episodes at specific
// timestep limits. Episodes ended by a StepLimit are truncated, so the
// discount of the last TimeStep is left unchanged.
type StepLimit struct {
	episodeSteps int
}

// NewStepLimit creates and returns a new step limit. A non-positive
// limit never ends episodes.
func NewStepLimit(episodeSteps int) StepLimit {
	return StepLimit{episodeSteps}
}

// End determines whether or not the current episode should be ended,
// returning a boolean to indicate episode temrination. If the episode
// should be ended End() will modify the timestep so that its StepType
// field is timestep.Last
func (s StepLimit) End(t *ts.TimeStep) bool {
	if s.episodeSteps > 0 && t.Number >= s.episodeSteps {
		t.StepType = ts.Last
		return true
	}
	return false
}

// Limit returns the number of steps after which episodes are ended
func (s StepLimit) Limit() int {
	return s.episodeSteps
}
