// Package network implements neural networks on Gorgonia
// computational graphs.
package network

import (
	G "gorgonia.org/gorgonia"
)

// NeuralNet implements a neural network on a Gorgonia graph. A
// NeuralNet never owns a VM. Callers set the input with SetInput,
// run the graph with their own VM, and read the predictions with
// Output.
//
// A NeuralNet may have more than one output layer, in which case
// Prediction and Output return one node and one value per output
// layer respectively.
type NeuralNet interface {
	Graph() *G.ExprGraph
	Clone() (NeuralNet, error)
	CloneWithBatch(int) (NeuralNet, error)
	BatchSize() int
	Features() int
	Outputs() int
	OutputLayers() int
	SetInput([]float64) error
	Set(NeuralNet) error
	Learnables() G.Nodes
	Model() []G.ValueGrad
	Output() []G.Value
	Prediction() []*G.Node
}
