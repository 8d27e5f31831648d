// Package summary implements named scalar diagnostics read off a
// Gorgonia computational graph.
package summary

import (
	"fmt"
	"math"

	G "gorgonia.org/gorgonia"
)

// Summary is a named scalar diagnostic bound to a node of a
// computational graph. The bound value is captured on every run of the
// graph, so the latest value can be read between runs without
// recomputing anything.
type Summary struct {
	name string
	node *G.Node
	val  G.Value
}

// Scalar binds a new scalar Summary with the given name to node. The
// node must hold a scalar value whenever the graph is run.
func Scalar(name string, node *G.Node) *Summary {
	s := &Summary{name: name, node: node}
	G.Read(node, &s.val)
	return s
}

// Name returns the name of the Summary
func (s *Summary) Name() string {
	return s.name
}

// Node returns the graph node that the Summary is bound to
func (s *Summary) Node() *G.Node {
	return s.node
}

// Value returns the value captured on the last run of the graph. If
// the graph has not been run yet, Value returns NaN.
func (s *Summary) Value() float64 {
	if s.val == nil {
		return math.NaN()
	}

	switch data := s.val.Data().(type) {
	case float64:
		return data
	case []float64:
		if len(data) == 1 {
			return data[0]
		}
	}
	return math.NaN()
}

// String implements the fmt.Stringer interface
func (s *Summary) String() string {
	return fmt.Sprintf("%v: %v", s.name, s.Value())
}

// Values maps the names of summaries to their last captured values
func Values(summaries []*Summary) map[string]float64 {
	values := make(map[string]float64, len(summaries))
	for _, s := range summaries {
		values[s.Name()] = s.Value()
	}
	return values
}
