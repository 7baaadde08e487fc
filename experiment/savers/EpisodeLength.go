package savers

import (
	"github.com/samuelfneumann/dmcgym/timestep"
)

// EpisodeLength tracks and saves the lengths of episodes in an
// experiment
type EpisodeLength struct {
	episodeLengths []int
	filename       string
}

// NewEpisodeLength returns a new EpisodeLength saver which will save
// its data at the specified location filename
func NewEpisodeLength(filename string) *EpisodeLength {
	return &EpisodeLength{filename: filename}
}

// Track caches the episode length if the timestep passed to it is the
// last timestep in the episode
func (e *EpisodeLength) Track(t timestep.TimeStep) error {
	if t.Last() {
		e.episodeLengths = append(e.episodeLengths, t.Number)
	}
	return nil
}

// Lengths returns the lengths of each finished episode
func (e *EpisodeLength) Lengths() []int {
	return append([]int{}, e.episodeLengths...)
}

// Close saves the episode lengths to disk
func (e *EpisodeLength) Close() error {
	return save(e.filename, e.episodeLengths)
}
