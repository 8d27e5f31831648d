package tracker

import (
	ts "github.com/encrush/btgym/timestep"
)

// EpisodeLength records the number of timesteps in each finished
// episode of an experiment. Episodes still in progress when Save is
// called are discarded.
type EpisodeLength struct {
	lengths  []float64
	filename string
}

// NewEpisodeLength returns a Tracker recording episode lengths, saved
// to the file filename
func NewEpisodeLength(filename string) Tracker {
	return &EpisodeLength{filename: filename}
}

// Track records the length of an episode once its final timestep
// arrives. Timesteps in the middle of an episode are ignored.
func (e *EpisodeLength) Track(step ts.TimeStep) {
	if !step.Last() {
		return
	}
	e.lengths = append(e.lengths, float64(step.Number))
}

// Save writes the recorded episode lengths to disk.
func (e *EpisodeLength) Save() {
	saveData(e.filename, e.lengths)
}
