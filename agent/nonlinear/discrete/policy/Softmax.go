// Package policy implements action selection strategies backed by
// Gorgonia neural networks.
package policy

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
	G "gorgonia.org/gorgonia"

	"github.com/encrush/btgym/agent"
	env "github.com/encrush/btgym/environment"
	"github.com/encrush/btgym/network"
	"github.com/encrush/btgym/timestep"
	"github.com/encrush/btgym/utils/floatutils"
)

// Softmax implements a softmax policy over discrete actions,
// parameterized by an actor critic network. Given an environment with
// N actions, the policy head of the network produces N logits, and
// actions are sampled from the Boltzmann distribution over those
// logits. The value head predicts the state value, which is recorded
// on each evaluation so that learners can bootstrap from it.
//
// The policy owns a VM of its network and can therefore select actions
// at each timestep, but only when the network has a batch size of 1.
// Larger batch sizes are used for learning weights, in which case an
// external VM computes the loss over the batch.
//
// In evaluation mode the policy is greedy with respect to the action
// probabilities, breaking ties uniformly at random.
type Softmax struct {
	net *network.AACNet
	vm  G.VM

	eval   bool
	source rand.Source
	rng    *rand.Rand
	seed   uint64

	prevProbs []float64
	prevValue float64
}

// NewSoftmax returns a new Softmax policy for selecting actions in the
// argument environment. The hiddenSizes, biases, and activations
// parameters define the network trunk, and init determines the weight
// initialization scheme. The seed parameter seeds the action sampler.
func NewSoftmax(e env.Environment, batch int, g *G.ExprGraph,
	hiddenSizes []int, biases []bool, activations []*network.Activation,
	init G.InitWFn, seed uint64) (*Softmax, error) {
	if e.ActionSpec().Cardinality != env.Discrete {
		return nil, fmt.Errorf("newsoftmax: softmax policy requires " +
			"discrete actions")
	}

	numActions := int(e.ActionSpec().UpperBound.AtVec(0)) + 1
	features := e.ObservationSpec().Shape.Len()

	net, err := network.NewAACNet(features, batch, numActions, g,
		hiddenSizes, biases, activations, init)
	if err != nil {
		return nil, fmt.Errorf("newsoftmax: could not create network: %v", err)
	}

	source := rand.NewSource(seed)
	pol := &Softmax{
		net:    net,
		source: source,
		rng:    rand.New(source),
		seed:   seed,
	}

	// Action selection requires running the policy's graph, which
	// only makes sense one observation at a time.
	if net.BatchSize() == 1 {
		pol.vm = G.NewTapeMachine(net.Graph())
	}

	return pol, nil
}

// Evaluate runs the policy's network on the argument observation,
// returning the action probabilities and the predicted state value.
// The returned values are cached and can be read back with LastProbs()
// and LastValue() until the next call to Evaluate().
func (s *Softmax) Evaluate(obs []float64) ([]float64, float64, error) {
	if size := s.net.BatchSize(); size != 1 {
		return nil, 0, fmt.Errorf("evaluate: policy must have a batch "+
			"size of 1 \n\twant(1) \n\thave(%v)", size)
	}
	if err := s.net.SetInput(obs); err != nil {
		return nil, 0, fmt.Errorf("evaluate: could not set input: %v", err)
	}
	if err := s.vm.RunAll(); err != nil {
		return nil, 0, fmt.Errorf("evaluate: could not run policy VM: %v", err)
	}
	defer s.vm.Reset()

	logits := s.net.LogitsVal().Data().([]float64)
	probs := floatutils.Softmax(logits, 1.0)

	var value float64
	switch v := s.net.ValueFnVal().Data().(type) {
	case float64:
		value = v
	case []float64:
		value = v[0]
	default:
		return nil, 0, fmt.Errorf("evaluate: unknown value head type %T", v)
	}

	s.prevProbs = probs
	s.prevValue = value
	return probs, value, nil
}

// SelectAction returns the policy's action for the timestep t. In
// training mode the action is sampled from the softmax distribution;
// in evaluation mode the most probable action is returned.
func (s *Softmax) SelectAction(t timestep.TimeStep) *mat.VecDense {
	probs, _, err := s.Evaluate(t.Observation.RawVector().Data)
	if err != nil {
		panic(fmt.Sprintf("selectaction: could not evaluate policy: %v", err))
	}

	if s.eval {
		greedy := floatutils.ArgMax(probs...)
		action := greedy[s.rng.Intn(len(greedy))]
		return mat.NewVecDense(1, []float64{float64(action)})
	}

	dist := distuv.NewCategorical(probs, s.source)
	return mat.NewVecDense(1, []float64{dist.Rand()})
}

// LastProbs returns the action probabilities computed by the last call
// to Evaluate() or SelectAction().
func (s *Softmax) LastProbs() []float64 {
	return s.prevProbs
}

// LastValue returns the state value predicted by the last call to
// Evaluate() or SelectAction().
func (s *Softmax) LastValue() float64 {
	return s.prevValue
}

// Eval puts the policy in evaluation mode
func (s *Softmax) Eval() {
	s.eval = true
}

// Train puts the policy in training mode
func (s *Softmax) Train() {
	s.eval = false
}

// IsEval returns whether the policy is in evaluation mode
func (s *Softmax) IsEval() bool {
	return s.eval
}

// Clone copies the policy, batch size unchanged
func (s *Softmax) Clone() (agent.NNPolicy, error) {
	return s.CloneWithBatch(s.net.BatchSize())
}

// CloneWithBatch copies the policy onto a fresh graph with a new batch
// size. Only clones with a batch size of 1 can select actions.
func (s *Softmax) CloneWithBatch(batch int) (agent.NNPolicy, error) {
	cloned, err := s.net.CloneWithBatch(batch)
	if err != nil {
		return nil, fmt.Errorf("clonewithbatch: could not clone "+
			"network: %v", err)
	}
	net, ok := cloned.(*network.AACNet)
	if !ok {
		return nil, fmt.Errorf("clonewithbatch: cloned network is not an " +
			"actor critic network")
	}

	source := rand.NewSource(s.seed)
	pol := &Softmax{
		net:    net,
		eval:   s.eval,
		source: source,
		rng:    rand.New(source),
		seed:   s.seed,
	}
	if net.BatchSize() == 1 {
		pol.vm = G.NewTapeMachine(net.Graph())
	}

	return pol, nil
}

// Network returns the policy's underlying network
func (s *Softmax) Network() network.NeuralNet {
	return s.net
}

// AACNetwork returns the actor critic network of the Softmax policy
// with its concrete type intact.
func (s *Softmax) AACNetwork() *network.AACNet {
	return s.net
}

// Close releases the policy's VM
func (s *Softmax) Close() error {
	if s.vm == nil {
		return nil
	}
	return s.vm.Close()
}
