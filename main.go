package main

import (
	"fmt"
	"os"

	"github.com/aunum/log"

	"github.com/encrush/btgym/agent/nonlinear/discrete/guidedaac"
	"github.com/encrush/btgym/environment/envconfig"
	"github.com/encrush/btgym/experiment"
	"github.com/encrush/btgym/experiment/checkpointer"
	"github.com/encrush/btgym/experiment/report"
	"github.com/encrush/btgym/experiment/tracker"
	"github.com/encrush/btgym/initwfn"
	"github.com/encrush/btgym/loss"
	"github.com/encrush/btgym/network"
	"github.com/encrush/btgym/oracle"
	"github.com/encrush/btgym/render"
	"github.com/encrush/btgym/solver"
)

func main() {
	var seed uint64 = 192382
	var maxSteps uint = 100_000

	// Create the environment
	envConf := envconfig.NewConfig(envconfig.SpotMarket, envconfig.Profit,
		256, 0.99)
	env, _, err := envConf.CreateEnv(seed)
	if err != nil {
		log.Fatalf("could not create environment: %v", err)
	}

	// Weight initializer and solver for the agent's network
	initWFn, err := initwfn.NewGlorotU(1.0)
	if err != nil {
		log.Fatalf("could not create weight initializer: %v", err)
	}
	sol, err := solver.NewDefaultAdam(5e-4, 1)
	if err != nil {
		log.Fatalf("could not create solver: %v", err)
	}

	// Create the learning algorithm
	conf := guidedaac.Config{
		Layers:      []int{64, 64},
		Biases:      []bool{true, true},
		Activations: []*network.Activation{network.ReLU(), network.ReLU()},
		InitWFn:     initWFn,
		Solver:      sol,

		ValueCoef:               0.5,
		EntropyCoef:             0.01,
		EpochLength:             512,
		FinishEpisodeOnEpochEnd: true,
		Lambda:                  0.95,
		Gamma:                   0.99,

		AACLambda:    1.0,
		GuidedLambda: 0.5,
		ExpertLoss:   loss.CrossEntropy,
		Oracle: oracle.Config{
			Horizon:     8,
			Margin:      0.01,
			Window:      3,
			Temperature: 0.25,
		},

		Name: "GuidedA3C",
		AuxRenderModes: []render.Mode{render.Price, render.ActionProb,
			render.ValueFn, render.ExpertAdvice},
		RenderEvery: 25,
		RenderDir:   "data/renders",
	}
	agent, err := guidedaac.New(env, conf, seed)
	if err != nil {
		log.Fatalf("could not create agent: %v", err)
	}

	// Track episodic returns, episode lengths, and the per-epoch
	// training summaries; checkpoint the train network periodically
	if err := os.MkdirAll("data/checkpoints", 0755); err != nil {
		log.Fatalf("could not create data directory: %v", err)
	}
	trackers := []tracker.Tracker{
		tracker.NewReturn("data/returns.bin"),
		tracker.NewEpisodeLength("data/episodeLengths.bin"),
		tracker.NewSummaries("data/summaries.bin", agent),
	}
	checkpointers := []checkpointer.Checkpointer{
		checkpointer.NewNStep(10_000, agent.TrainNet(),
			checkpointer.FilenameEnumerator(0, "data/checkpoints/net",
				".bin")),
	}

	// Run the experiment
	e := experiment.NewOnline(env, agent, maxSteps, trackers, checkpointers)
	if err := e.Run(); err != nil {
		log.Fatalf("experiment failed: %v", err)
	}
	e.Save()

	// Render the tracked data as an HTML report
	rep := report.New()
	rep.AddSeries("Episodic return", "return",
		tracker.LoadData("data/returns.bin"))
	rep.AddSeries("Episode length", "steps",
		tracker.LoadData("data/episodeLengths.bin"))
	rep.AddSeriesGroup("Training summaries",
		tracker.LoadSummaries("data/summaries.bin"))
	if err := rep.Save("data/report.html"); err != nil {
		log.Fatalf("could not save report: %v", err)
	}

	returns := tracker.LoadData("data/returns.bin")
	if len(returns) > 10 {
		returns = returns[len(returns)-10:]
	}
	fmt.Println(returns)
	log.Successf("%v ran %v episodes over %v epochs", agent.Name(),
		agent.Episodes(), agent.CompletedEpochs())
}
