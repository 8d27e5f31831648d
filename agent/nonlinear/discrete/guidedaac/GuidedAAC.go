// Package guidedaac implements an advantage actor critic agent guided
// by a heuristic oracle. The oracle looks at the external price series
// of an episode and advises a distribution over actions for every
// step. The agent composes the base actor critic objective with a
// guided loss pulling the policy toward the advised distributions:
//
//	total = AACLambda * base + GuidedLambda * guided
//
// The guided loss acts as a soft imitation signal. With a large
// AACLambda the agent mostly learns from its own returns, while a
// large GuidedLambda pulls it toward the oracle's advice, which can
// shortcut early exploration on environments where a cheap heuristic
// already knows roughly what to do.
package guidedaac

import (
	"fmt"
	"path/filepath"

	"github.com/aunum/log"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	G "gorgonia.org/gorgonia"

	"github.com/encrush/btgym/agent"
	"github.com/encrush/btgym/agent/nonlinear/discrete/aac"
	env "github.com/encrush/btgym/environment"
	"github.com/encrush/btgym/loss"
	"github.com/encrush/btgym/oracle"
	"github.com/encrush/btgym/render"
	"github.com/encrush/btgym/runner"
	"github.com/encrush/btgym/summary"
	ts "github.com/encrush/btgym/timestep"
)

// A PriceSource exposes the external price series driving the current
// episode of an environment. The series starts at the episode's first
// observation and extends far enough past its last step for the
// oracle's lookahead. Environments must implement PriceSource for a
// GuidedAAC agent to learn on them.
type PriceSource interface {
	ExternalPrices() []float64
}

// GuidedAAC implements the guided advantage actor critic algorithm.
// The agent embeds the base actor critic agent and extends it in two
// ways. First, at the start of every episode it asks an oracle to
// advise an action distribution for each step from the environment's
// external prices, and registers the advice with the base agent so
// that advised distributions ride alongside the stored transitions.
// Second, it replaces the base objective with the composed loss built
// by ComposedLoss, which weighs the actor critic objective against a
// guided loss over the advised distributions.
//
// The agent also collects per-step diagnostics through a
// runner.Collector and can periodically render episode traces as
// diagnostic strips.
type GuidedAAC struct {
	*aac.AAC

	adviser     *oracle.Oracle
	priceSource PriceSource

	collector   runner.Collector
	renderer    *render.Renderer
	renderEvery int

	name       string
	numActions int

	episodes   int
	stepNumber int
	prices     []float64
	advice     *mat.Dense
}

// ComposedLoss returns a loss builder combining the argument base
// objective with the argument guided loss:
//
//	total = aacLambda * base + guidedLambda * guided
//
// The guided loss is invoked on the policy logits and the advised
// action distributions under the name "on_policy" with verbose
// diagnostics. The returned summaries are the base summaries followed
// by the guided summaries, in order. Errors from either upstream loss
// propagate unchanged.
func ComposedLoss(base loss.Builder, guided loss.Guided, aacLambda,
	guidedLambda float64) loss.Builder {
	return func(in loss.Inputs) (*G.Node, []*summary.Summary, error) {
		baseLoss, summaries, err := base(in)
		if err != nil {
			return nil, nil, err
		}

		guidedLoss, guidedSummaries, err := guided(in.Logits,
			in.ExpertActions, "on_policy", true)
		if err != nil {
			return nil, nil, err
		}

		log.Infof("aac_lambda: %1.6f, guided_lambda: %1.6f", aacLambda,
			guidedLambda)

		weightedBase, err := G.Mul(G.NewConstant(aacLambda), baseLoss)
		if err != nil {
			return nil, nil, errors.Wrap(err, "composedloss: could not "+
				"weigh base loss")
		}
		weightedGuided, err := G.Mul(G.NewConstant(guidedLambda), guidedLoss)
		if err != nil {
			return nil, nil, errors.Wrap(err, "composedloss: could not "+
				"weigh guided loss")
		}
		total, err := G.Add(weightedBase, weightedGuided)
		if err != nil {
			return nil, nil, errors.Wrap(err, "composedloss: could not "+
				"combine losses")
		}

		return total, append(summaries, guidedSummaries...), nil
	}
}

// New creates and returns a new GuidedAAC agent. Failures to
// construct the agent are logged with their cause and reported as a
// *ConstructionError naming the construction stage that failed. The
// original cause stays recoverable from the returned error through
// errors.Unwrap, errors.Is, and errors.As.
func New(e env.Environment, c agent.Config, seed uint64) (*GuidedAAC,
	error) {
	guided, err := create(e, c, seed)
	if err != nil {
		log.Errorf("could not construct guided agent: %v", err)
		return nil, err
	}
	return guided, nil
}

// create constructs the agent stage by stage, reporting the failing
// stage through a *ConstructionError.
func create(e env.Environment, c agent.Config, seed uint64) (*GuidedAAC,
	error) {
	if !c.ValidAgent(&GuidedAAC{}) {
		return nil, &ConstructionError{
			Op:  "validate configuration",
			Err: fmt.Errorf("invalid configuration type: %T", c),
		}
	}
	config, ok := c.(Config)
	if !ok {
		return nil, &ConstructionError{
			Op:  "validate configuration",
			Err: fmt.Errorf("invalid configuration type: %T", c),
		}
	}
	if err := config.Validate(); err != nil {
		return nil, &ConstructionError{Op: "validate configuration", Err: err}
	}
	if e.ActionSpec().Cardinality != env.Discrete {
		return nil, &ConstructionError{
			Op:  "validate configuration",
			Err: fmt.Errorf("actions must be discrete"),
		}
	}

	source, ok := e.(PriceSource)
	if !ok {
		return nil, &ConstructionError{
			Op:  "resolve price source",
			Err: fmt.Errorf("environment %T does not expose external prices", e),
		}
	}

	numActions := int(e.ActionSpec().UpperBound.AtVec(0)) + 1
	if numActions != oracle.NumActions {
		return nil, &ConstructionError{
			Op: "create oracle",
			Err: fmt.Errorf("illegal number of environment actions "+
				"\n\twant(%v)\n\thave(%v)", oracle.NumActions, numActions),
		}
	}
	adviser, err := oracle.New(config.oracleConfig())
	if err != nil {
		return nil, &ConstructionError{Op: "create oracle", Err: err}
	}

	guidedLoss, err := config.guidedLoss()
	if err != nil {
		return nil, &ConstructionError{Op: "resolve expert loss", Err: err}
	}

	baseConfig := config.baseConfig()
	baseConfig.Loss = ComposedLoss(
		loss.AAC(config.ValueCoef, config.EntropyCoef),
		guidedLoss,
		config.AACLambda,
		config.GuidedLambda,
	)
	base, err := aac.New(e, baseConfig, seed)
	if err != nil {
		return nil, &ConstructionError{Op: "create base agent", Err: err}
	}

	var renderer *render.Renderer
	if len(config.AuxRenderModes) > 0 && config.RenderEvery > 0 {
		dir := config.RenderDir
		if dir == "" {
			dir = filepath.Join("renders", config.name())
		}
		renderer, err = render.New(dir, numActions, config.AuxRenderModes...)
		if err != nil {
			return nil, &ConstructionError{Op: "create renderer", Err: err}
		}
	}

	return &GuidedAAC{
		AAC: base,

		adviser:     adviser,
		priceSource: source,

		collector:   config.runnerFn()(),
		renderer:    renderer,
		renderEvery: config.RenderEvery,

		name:       config.name(),
		numActions: numActions,
	}, nil
}

// Name returns the name of the agent
func (g *GuidedAAC) Name() string {
	return g.name
}

// ObserveFirst observes and records the first timestep in an episode,
// then advises the episode: the oracle computes an advised action
// distribution for every step of the episode from the environment's
// external prices, and the advice is registered with the base agent.
func (g *GuidedAAC) ObserveFirst(t ts.TimeStep) error {
	if err := g.AAC.ObserveFirst(t); err != nil {
		return fmt.Errorf("observefirst: %v", err)
	}
	g.stepNumber = t.Number

	g.prices = g.priceSource.ExternalPrices()
	advice, err := g.adviser.Advise(g.prices)
	if err != nil {
		return fmt.Errorf("observefirst: could not advise episode: %v", err)
	}
	if err := g.SetEpisodeAdvice(advice); err != nil {
		return fmt.Errorf("observefirst: %v", err)
	}
	g.advice = advice

	return nil
}

// Observe collects the diagnostics of the step that the argument
// action was taken on, then delegates to the base agent.
func (g *GuidedAAC) Observe(action mat.Vector, nextStep ts.TimeStep) error {
	step := runner.Step{
		Number: g.stepNumber,
		Action: int(action.AtVec(0)),
		Reward: nextStep.Reward,
		Value:  g.Behaviour().LastValue(),
		Probs:  g.Behaviour().LastProbs(),
	}
	if g.stepNumber < len(g.prices) {
		step.Price = g.prices[g.stepNumber]
	}
	if g.advice != nil {
		if rows, _ := g.advice.Dims(); g.stepNumber < rows {
			step.Advice = g.advice.RawRowView(g.stepNumber)
		}
	}
	g.collector.Collect(step)

	if err := g.AAC.Observe(action, nextStep); err != nil {
		return fmt.Errorf("observe: %v", err)
	}
	g.stepNumber = nextStep.Number
	return nil
}

// EndEpisode performs cleanup at the end of an episode and renders the
// episode's diagnostics when a render interval is configured and due.
func (g *GuidedAAC) EndEpisode() {
	g.AAC.EndEpisode()
	g.episodes++

	trace := g.collector.Episode()
	if g.renderer == nil || g.episodes%g.renderEvery != 0 {
		return
	}
	if err := g.renderer.Render(g.episodes, trace); err != nil {
		log.Warningf("could not render episode %v: %v", g.episodes, err)
	}
}

// Episodes returns the number of episodes the agent has completed
func (g *GuidedAAC) Episodes() int {
	return g.episodes
}
