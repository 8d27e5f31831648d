// Package envconfig builds environments from small, JSON serializable
// descriptions. A Config names an environment and task pairing and
// carries only the parameters worth sweeping, with everything else
// taking default market parameters.
package envconfig

import (
	"fmt"

	env "github.com/encrush/btgym/environment"
	"github.com/encrush/btgym/environment/spotmarket"
	ts "github.com/encrush/btgym/timestep"
)

// EnvName names an environment that this package knows how to build
type EnvName string

// Environments this package can build
const (
	SpotMarket EnvName = "SpotMarket"
)

// TaskName names a task that this package knows how to build. Each
// task pairs with specific environments:
//
//	Environment			Task
//	SpotMarket			Profit
type TaskName string

// Tasks this package can build
const (
	Profit TaskName = "Profit"
)

// Config describes one environment and task pairing together with the
// episode cutoff and discount to run them with. Only the pairings
// listed on TaskName can be built.
type Config struct {
	Environment   EnvName
	Task          TaskName
	EpisodeCutoff uint
	Discount      float64
}

// NewConfig returns the Config describing the given environment and
// task pairing
func NewConfig(envName EnvName, taskName TaskName, episodeCutoff uint,
	discount float64) Config {
	return Config{
		Environment:   envName,
		Task:          taskName,
		EpisodeCutoff: episodeCutoff,
		Discount:      discount,
	}
}

// CreateEnv builds the environment the Config describes, returning it
// along with the first timestep of its first episode.
func (c Config) CreateEnv(seed uint64) (env.Environment, ts.TimeStep,
	error) {
	switch c.Environment {
	case SpotMarket:
		return CreateSpotMarket(c.Task, int(c.EpisodeCutoff), seed,
			c.Discount)
	}

	return nil, ts.TimeStep{}, fmt.Errorf("createenv: cannot create "+
		"environment %v, no such environment", c.Environment)
}

// CreateSpotMarket builds a SpotMarket with default market parameters
// and the named task, also with default parameterization.
func CreateSpotMarket(taskName TaskName, cutoff int, seed uint64,
	discount float64) (env.Environment, ts.TimeStep, error) {
	feed := spotmarket.FeedConfig{
		Start:          100.0,
		Drift:          0.0002,
		Volatility:     0.008,
		CycleAmplitude: 0.03,
		CyclePeriod:    64.0,
	}
	config := spotmarket.Config{
		Window:       16,
		EpisodeSteps: cutoff,
		Lookahead:    16,
		Fee:          0.0005,
		Feed:         feed,
	}

	var task env.Task
	switch taskName {
	case Profit:
		starter := spotmarket.NewFlatStart(seed)
		equityIndex := config.ObservationDims() - 1

		var err error
		task, err = spotmarket.NewProfit(starter, cutoff, 0.05, 0.05,
			equityIndex)
		if err != nil {
			return nil, ts.TimeStep{}, fmt.Errorf("createspotmarket: %v", err)
		}

	default:
		return nil, ts.TimeStep{}, fmt.Errorf("createspotmarket: spot "+
			"market environment has no task %v", taskName)
	}

	return spotmarket.New(task, config, discount, seed)
}
