package network

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/pkg/errors"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// AACNet implements an actor critic network. A shared MLP trunk feeds
// two linear heads: a policy head producing one logit per action and
// a state value head producing a single value estimate per input
// observation.
//
// The network also holds an expert actions placeholder of shape
// (batch, actions). The placeholder takes no part in the forward pass.
// It rides on the same graph so that imitation losses can be defined
// between the policy logits and externally advised action
// distributions, with gradients flowing through the logits only.
type AACNet struct {
	g *G.ExprGraph

	trunk      *mlp
	policyHead *mlp
	valueHead  *mlp

	input         *G.Node
	expertActions *G.Node

	numActions int
	numInputs  int
	batchSize  int

	// Construction arguments, retained for serialization
	hiddenSizes []int
	biases      []bool
	activations []*Activation

	learnables G.Nodes
	model      []G.ValueGrad
}

// NewAACNet returns a new actor critic network on the graph g. The
// trunk has len(hiddenSizes) layers, where layer i has hiddenSizes[i]
// units, a bias unit if biases[i], and activation activations[i]. The
// policy and value heads are single linear layers on the trunk output.
// Weights are initialized with init.
func NewAACNet(features, batch, actions int, g *G.ExprGraph,
	hiddenSizes []int, biases []bool, activations []*Activation,
	init G.InitWFn) (*AACNet, error) {
	if len(hiddenSizes) == 0 {
		return nil, fmt.Errorf("newaacnet: no trunk layers given")
	}
	if len(hiddenSizes) != len(activations) {
		msg := "newaacnet: invalid number of activations\n\twant(%d)" +
			"\n\thave(%d)"
		return nil, fmt.Errorf(msg, len(hiddenSizes), len(activations))
	}
	if len(hiddenSizes) != len(biases) {
		msg := "newaacnet: invalid number of biases\n\twant(%d)\n\thave(%d)"
		return nil, fmt.Errorf(msg, len(hiddenSizes), len(biases))
	}

	input := G.NewMatrix(g, tensor.Float64, G.WithShape(batch, features),
		G.WithName("input"), G.WithInit(G.Zeroes()))
	expertActions := G.NewMatrix(g, tensor.Float64,
		G.WithShape(batch, actions), G.WithName("expert_actions"),
		G.WithInit(G.Zeroes()))

	net := &AACNet{
		g:             g,
		input:         input,
		expertActions: expertActions,
		numActions:    actions,
		numInputs:     features,
		batchSize:     batch,
		hiddenSizes:   hiddenSizes,
		biases:        biases,
		activations:   activations,
	}

	trunkOut := hiddenSizes[len(hiddenSizes)-1]
	trunk, err := newMLP([]*G.Node{input}, trunkOut, g, hiddenSizes,
		biases, init, activations, "Trunk", false)
	if err != nil {
		return nil, errors.Wrap(err, "newaacnet: could not construct trunk")
	}
	net.trunk = trunk

	policyHead, err := newMLP([]*G.Node{trunk.Prediction()}, actions, g,
		[]int{}, []bool{}, init, []*Activation{}, "Policy", true)
	if err != nil {
		return nil, errors.Wrap(err, "newaacnet: could not construct policy "+
			"head")
	}
	net.policyHead = policyHead

	valueHead, err := newMLP([]*G.Node{trunk.Prediction()}, 1, g,
		[]int{}, []bool{}, init, []*Activation{}, "Value", true)
	if err != nil {
		return nil, errors.Wrap(err, "newaacnet: could not construct value "+
			"head")
	}
	net.valueHead = valueHead

	return net, nil
}

// Graph returns the graph that the network is built on
func (a *AACNet) Graph() *G.ExprGraph {
	return a.g
}

// OnLogits returns the policy head output node holding the on-policy
// action logits
func (a *AACNet) OnLogits() *G.Node {
	return a.policyHead.Prediction()
}

// ValueFn returns the value head output node holding the state value
// estimates
func (a *AACNet) ValueFn() *G.Node {
	return a.valueHead.Prediction()
}

// ExpertActions returns the placeholder node holding externally
// advised action distributions
func (a *AACNet) ExpertActions() *G.Node {
	return a.expertActions
}

// LogitsVal returns the value of the policy head output after the
// last run of the graph
func (a *AACNet) LogitsVal() G.Value {
	return a.policyHead.Output()
}

// ValueFnVal returns the value of the value head output after the
// last run of the graph
func (a *AACNet) ValueFnVal() G.Value {
	return a.valueHead.Output()
}

// Clone copies the network onto a fresh graph, batch size unchanged
func (a *AACNet) Clone() (NeuralNet, error) {
	return a.CloneWithBatch(a.batchSize)
}

// CloneWithBatch copies the network onto a fresh graph, resized to
// take batch observations per forward pass
func (a *AACNet) CloneWithBatch(batch int) (NeuralNet, error) {
	graph := G.NewGraph()

	input := G.NewMatrix(graph, tensor.Float64,
		G.WithShape(batch, a.numInputs), G.WithName("input"),
		G.WithInit(G.Zeroes()))
	expertActions := G.NewMatrix(graph, tensor.Float64,
		G.WithShape(batch, a.numActions), G.WithName("expert_actions"),
		G.WithInit(G.Zeroes()))

	net := &AACNet{
		g:             graph,
		input:         input,
		expertActions: expertActions,
		numActions:    a.numActions,
		numInputs:     a.numInputs,
		batchSize:     batch,
		hiddenSizes:   a.hiddenSizes,
		biases:        a.biases,
		activations:   a.activations,
	}

	trunk, err := a.trunk.cloneTo([]*G.Node{input}, graph)
	if err != nil {
		return nil, errors.Wrap(err, "clonewithbatch: could not clone trunk")
	}
	net.trunk = trunk

	policyHead, err := a.policyHead.cloneTo(
		[]*G.Node{trunk.Prediction()}, graph)
	if err != nil {
		return nil, errors.Wrap(err, "clonewithbatch: could not clone "+
			"policy head")
	}
	net.policyHead = policyHead

	valueHead, err := a.valueHead.cloneTo(
		[]*G.Node{trunk.Prediction()}, graph)
	if err != nil {
		return nil, errors.Wrap(err, "clonewithbatch: could not clone "+
			"value head")
	}
	net.valueHead = valueHead

	return net, nil
}

// BatchSize returns how many observations one forward pass consumes
func (a *AACNet) BatchSize() int {
	return a.batchSize
}

// Features returns the length of one input observation vector
func (a *AACNet) Features() int {
	return a.numInputs
}

// Outputs returns the number of logits predicted by the policy head
func (a *AACNet) Outputs() int {
	return a.numActions
}

// OutputLayers returns how many heads produce predictions
func (a *AACNet) OutputLayers() int {
	return len(a.Prediction())
}

// SetInput loads a batch of observations into the input node
func (a *AACNet) SetInput(input []float64) error {
	if len(input) != a.numInputs*a.batchSize {
		msg := fmt.Sprintf("invalid number of inputs\n\twant(%v)"+
			"\n\thave(%v)", a.numInputs*a.batchSize, len(input))
		panic(msg)
	}
	inputTensor := tensor.New(
		tensor.WithBacking(input),
		tensor.WithShape(a.batchSize, a.numInputs),
	)
	return G.Let(a.input, inputTensor)
}

// SetExpertActions sets the value of the expert actions placeholder.
// The argument holds one advised action distribution per input
// observation in row major order.
func (a *AACNet) SetExpertActions(advice []float64) error {
	if len(advice) != a.numActions*a.batchSize {
		msg := fmt.Sprintf("invalid number of expert actions\n\twant(%v)"+
			"\n\thave(%v)", a.numActions*a.batchSize, len(advice))
		panic(msg)
	}
	adviceTensor := tensor.New(
		tensor.WithBacking(advice),
		tensor.WithShape(a.batchSize, a.numActions),
	)
	return G.Let(a.expertActions, adviceTensor)
}

// Set overwrites dest's weights with copies of source's weights
func (dest *AACNet) Set(source NeuralNet) error {
	sourceNodes := source.Learnables()
	nodes := dest.Learnables()
	if len(sourceNodes) != len(nodes) {
		return fmt.Errorf("set: differing number of learnables\n\twant(%v)"+
			"\n\thave(%v)", len(nodes), len(sourceNodes))
	}
	for i, destLearnable := range nodes {
		sourceLearnable := sourceNodes[i].Clone()
		err := G.Let(destLearnable, sourceLearnable.(*G.Node).Value())
		if err != nil {
			return err
		}
	}
	return nil
}

// Learnables returns the learnable nodes of the network in the order
// trunk, policy head, value head
func (a *AACNet) Learnables() G.Nodes {
	// cached across calls
	if a.learnables == nil {
		learnables := make([]*G.Node, 0)
		learnables = append(learnables, a.trunk.Learnables()...)
		learnables = append(learnables, a.policyHead.Learnables()...)
		learnables = append(learnables, a.valueHead.Learnables()...)
		a.learnables = G.Nodes(learnables)
	}
	return a.learnables
}

// Model returns the learnables in the form the solver consumes
func (a *AACNet) Model() []G.ValueGrad {
	if a.model == nil {
		model := make([]G.ValueGrad, 0, len(a.Learnables()))
		for _, learnable := range a.Learnables() {
			model = append(model, learnable)
		}
		a.model = model
	}
	return a.model
}

// Output returns the values of the policy head and the value head
// after the last run of the graph
func (a *AACNet) Output() []G.Value {
	return []G.Value{a.policyHead.Output(), a.valueHead.Output()}
}

// Prediction returns the output nodes of the policy head and the
// value head
func (a *AACNet) Prediction() []*G.Node {
	return []*G.Node{a.OnLogits(), a.ValueFn()}
}

// GobEncode implements the gob.GobEncoder interface
func (a *AACNet) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)

	err := enc.Encode(a.numInputs)
	if err != nil {
		return nil, fmt.Errorf("gobencode: could not encode number of inputs")
	}

	err = enc.Encode(a.batchSize)
	if err != nil {
		return nil, fmt.Errorf("gobencode: could not encode batch size")
	}

	err = enc.Encode(a.numActions)
	if err != nil {
		return nil, fmt.Errorf("gobencode: could not encode number of actions")
	}

	err = enc.Encode(a.hiddenSizes)
	if err != nil {
		return nil, fmt.Errorf("gobencode: could not encode hidden sizes")
	}

	err = enc.Encode(a.biases)
	if err != nil {
		return nil, fmt.Errorf("gobencode: could not encode biases")
	}

	err = enc.Encode(a.activations)
	if err != nil {
		return nil, fmt.Errorf("gobencode: could not encode activations")
	}

	learnables := a.Learnables()
	err = enc.Encode(len(learnables))
	if err != nil {
		return nil, fmt.Errorf("gobencode: could not encode number of " +
			"learnables")
	}
	for i, learnable := range learnables {
		err = enc.Encode(learnable.Value().(*tensor.Dense))
		if err != nil {
			return nil, fmt.Errorf("gobencode: could not encode learnable "+
				"%v: %v", i, err)
		}
	}

	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface
func (a *AACNet) GobDecode(in []byte) error {
	buf := bytes.NewReader(in)
	dec := gob.NewDecoder(buf)

	var numInputs int
	err := dec.Decode(&numInputs)
	if err != nil {
		return fmt.Errorf("gobdecode: could not decode number of inputs")
	}

	var batchSize int
	err = dec.Decode(&batchSize)
	if err != nil {
		return fmt.Errorf("gobdecode: could not decode batch size")
	}

	var numActions int
	err = dec.Decode(&numActions)
	if err != nil {
		return fmt.Errorf("gobdecode: could not decode number of actions")
	}

	var hiddenSizes []int
	err = dec.Decode(&hiddenSizes)
	if err != nil {
		return fmt.Errorf("gobdecode: could not decode hidden sizes")
	}

	var biases []bool
	err = dec.Decode(&biases)
	if err != nil {
		return fmt.Errorf("gobdecode: could not decode biases")
	}

	var activations []*Activation
	err = dec.Decode(&activations)
	if err != nil {
		return fmt.Errorf("gobdecode: could not decode activations")
	}

	g := G.NewGraph()
	newNet, err := NewAACNet(numInputs, batchSize, numActions, g,
		hiddenSizes, biases, activations, G.Zeroes())
	if err != nil {
		return fmt.Errorf("gobdecode: could not construct new network: %v",
			err)
	}

	var numLearnables int
	err = dec.Decode(&numLearnables)
	if err != nil {
		return fmt.Errorf("gobdecode: could not decode number of learnables")
	}
	learnables := newNet.Learnables()
	if numLearnables != len(learnables) {
		return fmt.Errorf("gobdecode: invalid number of learnables"+
			"\n\twant(%v)\n\thave(%v)", len(learnables), numLearnables)
	}
	for i, learnable := range learnables {
		weights := new(tensor.Dense)
		err = dec.Decode(weights)
		if err != nil {
			return fmt.Errorf("gobdecode: could not decode learnable %v: %v",
				i, err)
		}
		err = G.Let(learnable, weights)
		if err != nil {
			return fmt.Errorf("gobdecode: could not set learnable %v: %v",
				i, err)
		}
	}

	*a = *newNet
	return nil
}
