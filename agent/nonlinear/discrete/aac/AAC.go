// Package aac implements the advantage actor critic algorithm with
// generalized advantage estimation for discrete action spaces.
package aac

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"github.com/encrush/btgym/agent"
	"github.com/encrush/btgym/agent/nonlinear/discrete/policy"
	"github.com/encrush/btgym/buffer/rollout"
	"github.com/encrush/btgym/environment"
	"github.com/encrush/btgym/loss"
	"github.com/encrush/btgym/network"
	"github.com/encrush/btgym/summary"
	ts "github.com/encrush/btgym/timestep"
)

// Note: Step() runs on every timestep but only takes a gradient step
// once a full epoch of transitions has been stored. An epoch can fill
// up in the middle of an episode. When that happens, the remainder of
// the episode is played with the freshly updated policy and thrown
// away rather than stored. Those discarded transitions come from the
// updated policy, so storing them into the next epoch's buffer would
// also be sound; throwing them away matches what most published
// implementations do.

// AAC implements the advantage actor critic algorithm, an on-policy
// policy gradient algorithm where a learned state value function
// provides the baseline for the policy gradient. This implementation
// uses generalized advantage estimation
// (https://arxiv.org/abs/1506.02438) and updates on fixed-length
// epochs of experience.
//
// The policy and the state value function share a network trunk and
// are updated by a single gradient step on a composed loss. The
// objective can be replaced through the Config, which agents composing
// additional loss terms onto the actor critic objective make use of.
//
// Alongside each transition the agent records an advised action
// distribution for the corresponding state. Advice for an episode is
// registered with SetEpisodeAdvice(). The advised distributions are
// set as an input to the loss at each update, so that objectives with
// imitation terms can be composed. The base actor critic objective
// ignores them.
type AAC struct {
	behaviour *policy.Softmax // owns its VM
	trainNet  *network.AACNet
	solver    G.Solver
	vm        G.VM

	// Placeholders for update targets on the train network's graph
	actions    *G.Node
	advantages *G.Node
	returns    *G.Node

	loss      *G.Node
	summaries []*summary.Summary

	buffer           *rollout.Buffer
	numActions       int
	epochLength      int
	currentEpochStep int
	completedEpochs  int
	eval             bool

	// finishingEpisode is set when an epoch fills up mid-episode. The
	// agent keeps acting until the episode ends, but the buffer stores
	// nothing more until the next episode begins.
	finishingEpisode        bool
	finishEpisodeOnEpochEnd bool

	advice   *mat.Dense // Per-episode advised action distributions
	prevStep ts.TimeStep
}

// New creates and returns a new AAC agent.
func New(e environment.Environment, c agent.Config,
	seed uint64) (*AAC, error) {
	if !c.ValidAgent(&AAC{}) {
		return nil, fmt.Errorf("new: invalid configuration type: %T", c)
	}
	config, ok := c.(Config)
	if !ok {
		return nil, fmt.Errorf("new: invalid configuration type: %T", c)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}
	if e.ActionSpec().Cardinality != environment.Discrete {
		return nil, fmt.Errorf("new: actions must be discrete")
	}

	features := e.ObservationSpec().Shape.Len()
	numActions := int(e.ActionSpec().UpperBound.AtVec(0)) + 1

	// Create the behaviour policy, which selects actions at each
	// timestep and predicts state values for bootstrapping
	behaviour, err := policy.NewSoftmax(e, 1, G.NewGraph(), config.Layers,
		config.Biases, config.Activations, config.InitWFn.InitWFn(), seed)
	if err != nil {
		return nil, fmt.Errorf("new: could not create behaviour "+
			"policy: %v", err)
	}

	// Create the network whose weights are learned
	trainNet, err := network.NewAACNet(features, config.EpochLength,
		numActions, G.NewGraph(), config.Layers, config.Biases,
		config.Activations, config.InitWFn.InitWFn())
	if err != nil {
		return nil, fmt.Errorf("new: could not create train network: %v", err)
	}

	g := trainNet.Graph()
	actions := G.NewMatrix(
		g,
		tensor.Float64,
		G.WithName("selected_actions"),
		G.WithShape(config.EpochLength, numActions),
	)
	advantages := G.NewVector(
		g,
		tensor.Float64,
		G.WithName("advantages"),
		G.WithShape(config.EpochLength),
	)
	returns := G.NewMatrix(
		g,
		tensor.Float64,
		G.WithName("returns"),
		G.WithShape(config.EpochLength, 1),
	)

	lossNode, summaries, err := config.lossBuilder()(loss.Inputs{
		Logits:        trainNet.OnLogits(),
		Actions:       actions,
		Advantages:    advantages,
		Returns:       returns,
		Value:         trainNet.ValueFn(),
		ExpertActions: trainNet.ExpertActions(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "new: could not construct loss")
	}
	summaries = append(summaries, summary.Scalar("total_loss", lossNode))

	if _, err := G.Grad(lossNode, trainNet.Learnables()...); err != nil {
		return nil, errors.Wrap(err, "new: could not construct gradient")
	}
	vm := G.NewTapeMachine(g, G.BindDualValues(trainNet.Learnables()...))

	// The behaviour policy and train network start with different
	// random weights and must be synchronized
	if err := behaviour.AACNetwork().Set(trainNet); err != nil {
		return nil, fmt.Errorf("new: could not synchronize behaviour "+
			"policy: %v", err)
	}

	buffer := rollout.New(features, numActions, config.EpochLength,
		config.Lambda, config.Gamma)

	a := &AAC{
		behaviour: behaviour,
		trainNet:  trainNet,
		solver:    config.Solver,
		vm:        vm,

		actions:    actions,
		advantages: advantages,
		returns:    returns,

		loss:      lossNode,
		summaries: summaries,

		buffer:           buffer,
		numActions:       numActions,
		epochLength:      config.EpochLength,
		currentEpochStep: 0,
		completedEpochs:  0,
		eval:             false,

		finishingEpisode:        false,
		finishEpisodeOnEpochEnd: config.FinishEpisodeOnEpochEnd,
	}

	return a, nil
}

// SelectAction returns the agent's action for the timestep t, which
// must be the timestep the agent observed last.
func (a *AAC) SelectAction(t ts.TimeStep) *mat.VecDense {
	if t.Number != a.prevStep.Number {
		panic("selectaction: timestep is different from that previously " +
			"recorded")
	}
	return a.behaviour.SelectAction(t)
}

// EndEpisode marks the end of the current episode.
func (a *AAC) EndEpisode() {
	// Any episode tail discarded after the last update ends here, so
	// the buffer may fill again from the next episode on
	a.finishingEpisode = false
}

// Eval puts the agent in evaluation mode, in which no data is stored
// and no updates happen
func (a *AAC) Eval() {
	a.eval = true
	a.behaviour.Eval()
}

// Train puts the agent in training mode
func (a *AAC) Train() {
	a.eval = false
	a.behaviour.Train()
}

// IsEval returns whether the agent is in evaluation mode
func (a *AAC) IsEval() bool {
	return a.eval
}

// SetEpisodeAdvice registers the advised action distributions for the
// current episode. Row t of the argument matrix holds the advised
// distribution over actions for the observation at timestep t of the
// episode. The advice stays in effect until replaced, so it should be
// registered at the start of each episode. A nil argument clears any
// previously registered advice, in which case transitions are stored
// with a zero advice distribution.
func (a *AAC) SetEpisodeAdvice(advice *mat.Dense) error {
	if advice == nil {
		a.advice = nil
		return nil
	}
	if _, cols := advice.Dims(); cols != a.numActions {
		return fmt.Errorf("setepisodeadvice: illegal number of advice "+
			"columns \n\twant(%v)\n\thave(%v)", a.numActions, cols)
	}
	a.advice = advice
	return nil
}

// ObserveFirst records the first timestep of a new episode.
func (a *AAC) ObserveFirst(t ts.TimeStep) error {
	if !t.First() {
		return fmt.Errorf("observefirst: timestep is not the first of "+
			"its episode (timestep = %d)", t.Number)
	}
	a.prevStep = t
	return nil
}

// Observe records every timestep after the first of an episode. The
// action argument is the action taken at the previously observed
// timestep, which led to the timestep nextStep.
func (a *AAC) Observe(action mat.Vector, nextStep ts.TimeStep) error {
	if a.eval || a.finishingEpisode {
		a.prevStep = nextStep
		return nil
	}

	// Value of the previous step for GAE
	o := a.prevStep.Observation.RawVector().Data
	_, stateValue, err := a.behaviour.Evaluate(o)
	if err != nil {
		return fmt.Errorf("observe: could not predict state value: %v", err)
	}

	oneHot := make([]float64, a.numActions)
	index := int(action.AtVec(0))
	if index < 0 || index >= a.numActions {
		return fmt.Errorf("observe: illegal action \n\twant(∈ [0, %v))"+
			"\n\thave(%v)", a.numActions, index)
	}
	oneHot[index] = 1.0

	var adviceRow []float64
	if rows, _ := a.adviceDims(); a.prevStep.Number < rows {
		adviceRow = a.advice.RawRowView(a.prevStep.Number)
	}

	err = a.buffer.Store(o, oneHot, adviceRow, nextStep.Reward, stateValue)
	if err != nil {
		return fmt.Errorf("observe: could not store transition: %v", err)
	}

	a.prevStep = nextStep
	a.currentEpochStep++

	terminal := nextStep.Last() || a.currentEpochStep == a.epochLength
	if terminal {
		if nextStep.TerminalEnd() {
			a.buffer.FinishPath(0.0)
		} else {
			// Episode was cut off, either by the environment or by
			// the epoch ending, so bootstrap the remaining return
			// from the current state value estimate
			nextObs := nextStep.Observation.RawVector().Data
			_, lastVal, err := a.behaviour.Evaluate(nextObs)
			if err != nil {
				return fmt.Errorf("observe: could not predict final "+
					"state value: %v", err)
			}
			a.buffer.FinishPath(lastVal)
			a.finishingEpisode = a.currentEpochStep == a.epochLength &&
				a.finishEpisodeOnEpochEnd
		}
	}
	return nil
}

// Step updates the agent. The agent is only updated when a full epoch
// of experience has been observed, and never in evaluation mode.
func (a *AAC) Step() error {
	if a.currentEpochStep < a.epochLength || a.eval {
		return nil
	}

	obs, act, adv, ret, advice, err := a.buffer.Get()
	if err != nil {
		return fmt.Errorf("step: could not sample buffer: %v", err)
	}

	if err := a.trainNet.SetInput(obs); err != nil {
		return fmt.Errorf("step: could not set network input: %v", err)
	}
	if err := a.trainNet.SetExpertActions(advice); err != nil {
		return fmt.Errorf("step: could not set advised actions: %v", err)
	}

	actionsTensor := tensor.NewDense(
		tensor.Float64,
		a.actions.Shape(),
		tensor.WithBacking(act),
	)
	if err := G.Let(a.actions, actionsTensor); err != nil {
		return fmt.Errorf("step: could not set selected actions: %v", err)
	}

	advantagesTensor := tensor.NewDense(
		tensor.Float64,
		a.advantages.Shape(),
		tensor.WithBacking(adv),
	)
	if err := G.Let(a.advantages, advantagesTensor); err != nil {
		return fmt.Errorf("step: could not set advantages: %v", err)
	}

	returnsTensor := tensor.NewDense(
		tensor.Float64,
		a.returns.Shape(),
		tensor.WithBacking(ret),
	)
	if err := G.Let(a.returns, returnsTensor); err != nil {
		return fmt.Errorf("step: could not set returns: %v", err)
	}

	if err := a.vm.RunAll(); err != nil {
		return fmt.Errorf("step: could not compute loss: %v", err)
	}
	if err := a.solver.Step(a.trainNet.Model()); err != nil {
		return fmt.Errorf("step: could not step solver: %v", err)
	}
	a.vm.Reset()

	// Propagate the updated weights to the behaviour policy
	if err := a.behaviour.AACNetwork().Set(a.trainNet); err != nil {
		return fmt.Errorf("step: could not synchronize behaviour "+
			"policy: %v", err)
	}

	a.completedEpochs++
	a.currentEpochStep = 0
	return nil
}

// Behaviour returns the behaviour policy of the agent
func (a *AAC) Behaviour() *policy.Softmax {
	return a.behaviour
}

// TrainNet returns the network whose weights the agent learns
func (a *AAC) TrainNet() *network.AACNet {
	return a.trainNet
}

// Loss returns the value of the total loss computed by the last
// update. Before the first update, the returned value is NaN.
func (a *AAC) Loss() float64 {
	for _, s := range a.summaries {
		if s.Name() == "total_loss" {
			return s.Value()
		}
	}
	return math.NaN()
}

// Summaries returns scalar summaries of the terms of the agent's loss
// function. The summary values are refreshed on each update.
func (a *AAC) Summaries() []*summary.Summary {
	return a.summaries
}

// CompletedEpochs returns the number of updates the agent has
// performed.
func (a *AAC) CompletedEpochs() int {
	return a.completedEpochs
}

// adviceDims returns the dimensions of the registered episode advice,
// or (0, 0) if no advice is registered.
func (a *AAC) adviceDims() (int, int) {
	if a.advice == nil {
		return 0, 0
	}
	return a.advice.Dims()
}

// Close releases the agent's update VM and its policy's VM
func (a *AAC) Close() error {
	if err := a.vm.Close(); err != nil {
		return fmt.Errorf("close: could not close update VM: %v", err)
	}
	return a.behaviour.Close()
}
