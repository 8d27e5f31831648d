// Package experiment implements runnable training experiments
package experiment

import (
	"fmt"

	"github.com/encrush/btgym/agent"
	"github.com/encrush/btgym/environment/envconfig"
	"github.com/encrush/btgym/experiment/checkpointer"
	"github.com/encrush/btgym/experiment/tracker"
	ts "github.com/encrush/btgym/timestep"
)

// Experiment is implemented by types that run a complete training
// experiment. An Experiment repeatedly steps an agent through an
// environment and hands every TimeStep to its Trackers, which cache
// whatever data they are interested in. Save() then writes the cached
// data to disk, usually once the run has finished. Run() executes
// episodes until the timestep limit or some other ending condition is
// reached. RunEpisode() executes a single episode.
//
// Trackers decide what gets recorded. On each timestep the Experiment
// calls the Track() method of every registered Tracker, and the
// Tracker picks out the data it cares about from the TimeStep.
// Trackers may be supplied at construction or added later with
// Register().
type Experiment interface {
	Run() error
	RunEpisode() (bool, error) // Returns whether the step limit was reached

	// Hands the current timestep to every registered Tracker
	track(ts.TimeStep)

	// Writes all cached data to disk
	Save()

	// Registers an additional Tracker on a possibly already running
	// experiment, for data that should only be recorded once some
	// event has occurred.
	Register(t tracker.Tracker)

	// Checkpoints agent state when a Checkpointer demands it
	checkpoint(ts.TimeStep) error
}

type Type string

const (
	OnlineExp Type = "OnlineExperiment"
)

// Config describes a reproducible experiment.
type Config struct {
	Type
	MaxSteps  uint
	EnvConf   envconfig.Config
	AgentConf agent.TypedConfigList
}

// CreateExp creates the experiment described by the Config, using the
// agent configuration at index i of the Config's agent configuration
// list.
func (c Config) CreateExp(i int, seed uint64, t []tracker.Tracker,
	check []checkpointer.Checkpointer) Experiment {
	env, _, err := c.EnvConf.CreateEnv(seed)
	if err != nil {
		panic(fmt.Sprintf("createExp: could not create environment: %v", err))
	}
	agent, err := c.AgentConf.At(i).CreateAgent(env, seed)
	if err != nil {
		panic(fmt.Sprintf("createExp: could not create agent: %v", err))
	}

	switch c.Type {
	case OnlineExp:
		return NewOnline(env, agent, c.MaxSteps, t, check)
	}

	panic(fmt.Sprintf("createExp: no such experiment type %v", c.Type))
}
