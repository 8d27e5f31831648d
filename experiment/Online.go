package experiment

import (
	"fmt"

	"github.com/encrush/btgym/agent"
	env "github.com/encrush/btgym/environment"
	"github.com/encrush/btgym/experiment/checkpointer"
	"github.com/encrush/btgym/experiment/tracker"
	ts "github.com/encrush/btgym/timestep"
	"github.com/encrush/btgym/utils/progressbar"
)

// Online is an Experiment that trains an agent on live environment
// interaction. The agent is never evaluated offline.
type Online struct {
	env.Environment
	agent.Agent
	maxSteps      uint
	currentSteps  uint
	trackers      []tracker.Tracker
	checkpointers []checkpointer.Checkpointer
	progress      *progressbar.ManualProgressBar
}

// NewOnline returns an experiment that trains agent a on environment
// e for at most steps environmental timesteps. Trackers in t record
// data generated over the run, and Checkpointers in c decide when the
// agent's state is written to disk.
func NewOnline(e env.Environment, a agent.Agent, steps uint,
	t []tracker.Tracker, c []checkpointer.Checkpointer) *Online {
	return &Online{e, a, steps, 0, t, c,
		progressbar.NewManualProgressBar(65, int(steps))}
}

// Register adds a Tracker to the experiment. The Tracker sees only
// timesteps generated after it was added.
func (o *Online) Register(t tracker.Tracker) {
	o.trackers = append(o.trackers, t)
}

// RunEpisode runs a single episode of the experiment, returning
// whether the experiment's timestep limit was reached during the
// episode.
func (o *Online) RunEpisode() (bool, error) {
	step, err := o.Environment.Reset()
	if err != nil {
		return false, fmt.Errorf("runEpisode: could not reset "+
			"environment: %v", err)
	}
	if err := o.Agent.ObserveFirst(step); err != nil {
		return false, fmt.Errorf("runEpisode: could not observe first "+
			"timestep: %v", err)
	}
	o.track(step)

	for !step.Last() && o.currentSteps < o.maxSteps {
		o.currentSteps++

		// Act in the environment
		action := o.Agent.SelectAction(step)
		step, _, err = o.Environment.Step(action)
		if err != nil {
			return false, fmt.Errorf("runEpisode: could not step "+
				"environment: %v", err)
		}

		// Record the transition before the agent learns from it
		o.track(step)
		if err := o.checkpoint(step); err != nil {
			return false, fmt.Errorf("runEpisode: %v", err)
		}

		// Let the agent learn from the transition
		if err := o.Agent.Observe(action, step); err != nil {
			return false, fmt.Errorf("runEpisode: could not observe "+
				"timestep: %v", err)
		}
		if err := o.Agent.Step(); err != nil {
			return false, fmt.Errorf("runEpisode: could not step "+
				"agent: %v", err)
		}

		o.progress.Increment()
		o.progress.Display()
	}

	// Notify the agent that the episode has ended so that any
	// episodic cleanup can be performed
	if step.Last() {
		o.Agent.EndEpisode()
	}

	return o.currentSteps >= o.maxSteps, nil
}

// Run runs episode after episode until the experiment's timestep
// limit is reached.
func (o *Online) Run() error {
	ended := false

	var err error
	for !ended {
		ended, err = o.RunEpisode()
		if err != nil {
			return fmt.Errorf("run: %v", err)
		}
	}
	fmt.Println()

	return nil
}

// Save flushes every Tracker's cached data to disk
func (o *Online) Save() {
	for _, tracker := range o.trackers {
		tracker.Save()
	}
}

// track hands t to each registered Tracker
func (o *Online) track(t ts.TimeStep) {
	for _, tracker := range o.trackers {
		tracker.Track(t)
	}
}

// checkpoint saves the current state of the experiment's agent with
// each Checkpointer
func (o *Online) checkpoint(t ts.TimeStep) error {
	for _, c := range o.checkpointers {
		if err := c.Checkpoint(t); err != nil {
			return fmt.Errorf("checkpoint: %v", err)
		}
	}
	return nil
}
