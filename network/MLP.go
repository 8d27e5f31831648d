package network

import (
	"fmt"

	G "gorgonia.org/gorgonia"
)

// mlp is a stack of fully connected layers on a graph node. It is the
// building block that networks in this package are assembled from: a
// network owns one mlp as its trunk and one mlp per output head, all
// sharing a single graph.
//
// An mlp never owns its input. The input node is created by the owning
// network, so that a trunk can read from an input placeholder while
// heads read from the trunk's prediction node.
type mlp struct {
	layers []Layer

	input      *G.Node
	prediction *G.Node
	predVal    G.Value

	features  int
	outputs   int
	batchSize int
}

// newMLP returns a stack of fully connected layers reading from the
// argument input nodes. Multiple input nodes are concatenated along the
// feature dimension first. Layer i has hiddenSizes[i] units, a bias
// unit if biases[i], and activation activations[i]; weights are
// initialized with init.
//
// If addOutputLayer is true, a final linear layer with a bias unit and
// no activation is appended so that the stack predicts exactly outputs
// values. Otherwise the last hidden layer must already have outputs
// units. The suffix parameter is appended to the weight node names so
// that multiple stacks can share one graph.
func newMLP(inputs []*G.Node, outputs int, g *G.ExprGraph,
	hiddenSizes []int, biases []bool, init G.InitWFn,
	activations []*Activation, suffix string,
	addOutputLayer bool) (*mlp, error) {
	if len(hiddenSizes) != len(activations) {
		return nil, fmt.Errorf("newmlp: invalid number of activations"+
			"\n\twant(%d)\n\thave(%d)", len(hiddenSizes), len(activations))
	}
	if len(hiddenSizes) != len(biases) {
		return nil, fmt.Errorf("newmlp: invalid number of biases"+
			"\n\twant(%d)\n\thave(%d)", len(hiddenSizes), len(biases))
	}

	input, err := joinInputs(g, inputs)
	if err != nil {
		return nil, fmt.Errorf("newmlp: %v", err)
	}

	if addOutputLayer {
		// Copy the argument slices so that the caller's are never grown
		hiddenSizes = append(append([]int{}, hiddenSizes...), outputs)
		biases = append(append([]bool{}, biases...), true)
		activations = append(append([]*Activation{}, activations...),
			Identity())
	} else if len(hiddenSizes) == 0 {
		return nil, fmt.Errorf("newmlp: no layers given")
	} else if last := hiddenSizes[len(hiddenSizes)-1]; last != outputs {
		return nil, fmt.Errorf("newmlp: final layer predicts %v values "+
			"but %v outputs claimed", last, outputs)
	}

	features := input.Shape()[1]
	layers := addfcLayers(g, hiddenSizes, biases, activations, init,
		features, suffix)

	net := &mlp{
		layers:    layers,
		input:     input,
		features:  features,
		outputs:   outputs,
		batchSize: input.Shape()[0],
	}
	if err := net.fwd(); err != nil {
		return nil, fmt.Errorf("newmlp: %v", err)
	}

	return net, nil
}

// joinInputs concatenates input nodes along the feature dimension,
// ensuring the result is a matrix of observation rows
func joinInputs(g *G.ExprGraph, inputs []*G.Node) (*G.Node, error) {
	for _, input := range inputs {
		if input.Graph() != g {
			return nil, fmt.Errorf("joininputs: inputs live on " +
				"different graphs")
		}
	}

	input := inputs[0]
	if len(inputs) > 1 {
		input = G.Must(G.Concat(1, inputs...))
	}
	if !input.IsMatrix() {
		return nil, fmt.Errorf("joininputs: input must be a matrix")
	}
	return input, nil
}

// fwd threads the input node through each layer in turn and binds the
// prediction value so it can be read after every run of the graph
func (m *mlp) fwd() error {
	pred := m.input
	var err error
	for i, layer := range m.layers {
		if pred, err = layer.fwd(pred); err != nil {
			return fmt.Errorf("fwd: could not compute forward pass of "+
				"layer %v: %v", i, err)
		}
	}

	m.prediction = pred
	G.Read(m.prediction, &m.predVal)
	return nil
}

// cloneTo clones the layer stack onto graph, reading from the argument
// input nodes. The clone shares no nodes with the original, but its
// weights start with the same values.
func (m *mlp) cloneTo(inputs []*G.Node, graph *G.ExprGraph) (*mlp,
	error) {
	input, err := joinInputs(graph, inputs)
	if err != nil {
		return nil, fmt.Errorf("cloneto: %v", err)
	}

	layers := make([]Layer, len(m.layers))
	for i := range m.layers {
		layers[i] = m.layers[i].CloneTo(graph)
	}

	clone := &mlp{
		layers:    layers,
		input:     input,
		features:  m.features,
		outputs:   m.outputs,
		batchSize: input.Shape()[0],
	}
	if err := clone.fwd(); err != nil {
		return nil, fmt.Errorf("cloneto: %v", err)
	}

	return clone, nil
}

// Prediction returns the node holding the output of the layer stack
func (m *mlp) Prediction() *G.Node {
	return m.prediction
}

// Output returns the value of the prediction node after the last run
// of the graph
func (m *mlp) Output() G.Value {
	return m.predVal
}

// Learnables returns the weight and bias nodes of every layer
func (m *mlp) Learnables() G.Nodes {
	learnables := make([]*G.Node, 0, 2*len(m.layers))
	for _, layer := range m.layers {
		learnables = append(learnables, layer.Weights())
		if bias := layer.Bias(); bias != nil {
			learnables = append(learnables, bias)
		}
	}
	return learnables
}
