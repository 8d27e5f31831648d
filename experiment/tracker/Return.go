package tracker

import (
	"fmt"

	ts "github.com/encrush/btgym/timestep"
)

// Return records the episodic return of an experiment. Every TimeStep
// flowing through the experiment contributes its reward to a running
// total, and when an episode ends the total is stored as that
// episode's return.
//
// Rewards are taken from the TimeSteps as given, so if the experiment
// drives a wrapper that modifies rewards, the modified rewards are
// what get recorded.
//
// Only finished episodes are saved. The return of an episode still in
// progress when Save is called is discarded.
type Return struct {
	lastStep int
	total    float64
	returns  []float64
	filename string
}

// NewReturn returns a Tracker recording episodic returns, saved to the
// file filename
func NewReturn(filename string) Tracker {
	return &Return{lastStep: -1, filename: filename}
}

// Track adds the reward of step to the current episode's return.
// Steps must arrive in order; Track panics if a timestep is skipped
// or repeated. The end of an episode is read off the step itself, at
// which point the accumulated return is stored and the accumulator
// reset for the next episode.
func (r *Return) Track(step ts.TimeStep) {
	if r.lastStep+1 != step.Number {
		panic(fmt.Sprintf("track: out-of-order timestep\n\twant(%v)"+
			"\n\thave(%v)", r.lastStep+1, step.Number))
	}
	r.lastStep = step.Number
	r.total += step.Reward

	if step.Last() {
		r.returns = append(r.returns, r.total)
		r.total = 0
		r.lastStep = -1
	}
}

// Save writes the recorded returns to disk.
func (r *Return) Save() {
	saveData(r.filename, r.returns)
}
