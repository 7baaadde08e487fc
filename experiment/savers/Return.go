package savers

import (
	"fmt"

	ts "github.com/samuelfneumann/dmcgym/timestep"
)

// Return tracks and saves the episodic return in an experiment. Steps
// without a reward contribute nothing to the return.
//
// Note: An episode must finish for this Saver to save its data. If the
// last episode in an experiment does not finish, that episode's return
// will not be saved.
type Return struct {
	lastTimeStep   int
	currentReturn  float64
	episodeReturns []float64
	filename       string
}

// NewReturn creates and returns a new *Return Saver, which saves its
// data to filename when closed
func NewReturn(filename string) *Return {
	return &Return{filename: filename}
}

// Track tracks the rewards seen on a timestep. Episodes are numbered
// from 1, with the optional first TimeStep of an episode numbered 0.
// When a new episode starts, Track automatically detects this and starts accumulating
// the rewards for this new episode separately from the rewards seen on
// previous episodes.
//
// Track returns an error if it is called for non-sequential timesteps
func (r *Return) Track(step ts.TimeStep) error {
	if step.First() {
		r.currentReturn = 0
		r.lastTimeStep = step.Number
		return nil
	}
	if r.lastTimeStep+1 != step.Number {
		return fmt.Errorf("track: last two timesteps tracked are not "+
			"sequential: timestep %v --> timestep %v were tracked",
			r.lastTimeStep, step.Number)
	}

	r.currentReturn += step.RewardOr(0)
	r.lastTimeStep = step.Number

	if step.Last() {
		r.episodeReturns = append(r.episodeReturns, r.currentReturn)
		r.currentReturn = 0.0
		r.lastTimeStep = 0
	}
	return nil
}

// Returns returns the returns of each finished episode
func (r *Return) Returns() []float64 {
	return append([]float64{}, r.episodeReturns...)
}

// Close saves the episodic returns to disk
func (r *Return) Close() error {
	return save(r.filename, r.episodeReturns)
}
