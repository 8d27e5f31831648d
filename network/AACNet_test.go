package network

import (
	"bytes"
	"encoding/gob"
	"testing"

	G "gorgonia.org/gorgonia"
)

// valueData returns the backing data of a graph value as a slice,
// regardless of whether the value is scalar shaped
func valueData(t *testing.T, v G.Value) []float64 {
	t.Helper()

	switch data := v.Data().(type) {
	case float64:
		return []float64{data}
	case []float64:
		return data
	}
	t.Fatalf("unexpected value data type %T", v.Data())
	return nil
}

func newTestNet(t *testing.T, features, batch, actions int) *AACNet {
	t.Helper()

	net, err := NewAACNet(features, batch, actions, G.NewGraph(),
		[]int{8, 6}, []bool{true, true}, []*Activation{ReLU(), ReLU()},
		G.GlorotU(1.0))
	if err != nil {
		t.Fatalf("could not create network: %v", err)
	}
	return net
}

func TestNewAACNetValidatesTrunk(t *testing.T) {
	g := G.NewGraph()

	_, err := NewAACNet(5, 1, 3, g, []int{}, []bool{}, []*Activation{},
		G.GlorotU(1.0))
	if err == nil {
		t.Error("expected an error for an empty trunk")
	}

	_, err = NewAACNet(5, 1, 3, g, []int{8, 6}, []bool{true, true},
		[]*Activation{ReLU()}, G.GlorotU(1.0))
	if err == nil {
		t.Error("expected an error for a missing activation")
	}

	_, err = NewAACNet(5, 1, 3, g, []int{8, 6}, []bool{true},
		[]*Activation{ReLU(), ReLU()}, G.GlorotU(1.0))
	if err == nil {
		t.Error("expected an error for a missing bias flag")
	}
}

func TestAACNetShapes(t *testing.T) {
	features, batch, actions := 5, 4, 3
	net := newTestNet(t, features, batch, actions)

	if net.Features() != features {
		t.Errorf("unexpected features \n\twant(%v)\n\thave(%v)", features,
			net.Features())
	}
	if net.BatchSize() != batch {
		t.Errorf("unexpected batch size \n\twant(%v)\n\thave(%v)", batch,
			net.BatchSize())
	}
	if net.Outputs() != actions {
		t.Errorf("unexpected outputs \n\twant(%v)\n\thave(%v)", actions,
			net.Outputs())
	}
	if net.OutputLayers() != 2 {
		t.Errorf("unexpected output layers \n\twant(2)\n\thave(%v)",
			net.OutputLayers())
	}

	logitsShape := net.OnLogits().Shape()
	if logitsShape[0] != batch || logitsShape[1] != actions {
		t.Errorf("unexpected policy head shape \n\twant(%v, %v)"+
			"\n\thave(%v)", batch, actions, logitsShape)
	}
	valueShape := net.ValueFn().Shape()
	if valueShape[0] != batch || valueShape[1] != 1 {
		t.Errorf("unexpected value head shape \n\twant(%v, 1)"+
			"\n\thave(%v)", batch, valueShape)
	}
	expertShape := net.ExpertActions().Shape()
	if expertShape[0] != batch || expertShape[1] != actions {
		t.Errorf("unexpected expert actions shape \n\twant(%v, %v)"+
			"\n\thave(%v)", batch, actions, expertShape)
	}

	// Two trunk layers and both single layer heads carry weights and
	// a bias each
	if len(net.Learnables()) != 8 {
		t.Errorf("unexpected number of learnables \n\twant(8)\n\thave(%v)",
			len(net.Learnables()))
	}
	if len(net.Model()) != len(net.Learnables()) {
		t.Errorf("model does not cover all learnables \n\twant(%v)"+
			"\n\thave(%v)", len(net.Learnables()), len(net.Model()))
	}
}

func TestAACNetForwardPass(t *testing.T) {
	features, batch, actions := 3, 2, 4
	net, err := NewAACNet(features, batch, actions, G.NewGraph(),
		[]int{5}, []bool{true}, []*Activation{ReLU()}, G.GlorotU(1.0))
	if err != nil {
		t.Fatalf("could not create network: %v", err)
	}

	obs := []float64{0.1, -0.2, 0.3}
	input := append(append([]float64{}, obs...), obs...)
	if err := net.SetInput(input); err != nil {
		t.Fatalf("could not set input: %v", err)
	}

	vm := G.NewTapeMachine(net.Graph())
	defer vm.Close()
	if err := vm.RunAll(); err != nil {
		t.Fatalf("could not run forward pass: %v", err)
	}

	logits := valueData(t, net.LogitsVal())
	if len(logits) != batch*actions {
		t.Fatalf("unexpected number of logits \n\twant(%v)\n\thave(%v)",
			batch*actions, len(logits))
	}
	values := valueData(t, net.ValueFnVal())
	if len(values) != batch {
		t.Fatalf("unexpected number of state values \n\twant(%v)"+
			"\n\thave(%v)", batch, len(values))
	}

	// Identical observations in a batch predict identical outputs
	for i := 0; i < actions; i++ {
		if logits[i] != logits[actions+i] {
			t.Errorf("logit %v differs between identical observations "+
				"\n\thave(%v, %v)", i, logits[i], logits[actions+i])
		}
	}
	if values[0] != values[1] {
		t.Errorf("state value differs between identical observations "+
			"\n\thave(%v, %v)", values[0], values[1])
	}
}

func TestAACNetSetSynchronizesWeights(t *testing.T) {
	source := newTestNet(t, 5, 4, 3)
	dest := newTestNet(t, 5, 4, 3)

	if err := dest.Set(source); err != nil {
		t.Fatalf("could not set weights: %v", err)
	}

	sourceLearnables := source.Learnables()
	for i, learnable := range dest.Learnables() {
		want := valueData(t, sourceLearnables[i].Value())
		have := valueData(t, learnable.Value())
		for j := range want {
			if want[j] != have[j] {
				t.Fatalf("weight (%v, %v) differs \n\twant(%v)\n\thave(%v)",
					i, j, want[j], have[j])
			}
		}
	}
}

func TestAACNetCloneWithBatch(t *testing.T) {
	net := newTestNet(t, 5, 4, 3)

	cloned, err := net.CloneWithBatch(7)
	if err != nil {
		t.Fatalf("could not clone network: %v", err)
	}
	clone, ok := cloned.(*AACNet)
	if !ok {
		t.Fatalf("unexpected clone type %T", cloned)
	}

	if clone.BatchSize() != 7 {
		t.Errorf("unexpected clone batch size \n\twant(7)\n\thave(%v)",
			clone.BatchSize())
	}
	if clone.Features() != net.Features() {
		t.Errorf("unexpected clone features \n\twant(%v)\n\thave(%v)",
			net.Features(), clone.Features())
	}
	if clone.Outputs() != net.Outputs() {
		t.Errorf("unexpected clone outputs \n\twant(%v)\n\thave(%v)",
			net.Outputs(), clone.Outputs())
	}
	if clone.Graph() == net.Graph() {
		t.Error("clone shares the graph of its source")
	}

	netLearnables := net.Learnables()
	for i, learnable := range clone.Learnables() {
		want := valueData(t, netLearnables[i].Value())
		have := valueData(t, learnable.Value())
		for j := range want {
			if want[j] != have[j] {
				t.Fatalf("weight (%v, %v) differs \n\twant(%v)\n\thave(%v)",
					i, j, want[j], have[j])
			}
		}
	}
}

func TestAACNetGobRoundTrip(t *testing.T) {
	net := newTestNet(t, 5, 4, 3)

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(net); err != nil {
		t.Fatalf("could not encode network: %v", err)
	}

	decoded := new(AACNet)
	if err := gob.NewDecoder(bytes.NewReader(buf.Bytes())).
		Decode(decoded); err != nil {
		t.Fatalf("could not decode network: %v", err)
	}

	if decoded.Features() != net.Features() {
		t.Errorf("unexpected decoded features \n\twant(%v)\n\thave(%v)",
			net.Features(), decoded.Features())
	}
	if decoded.BatchSize() != net.BatchSize() {
		t.Errorf("unexpected decoded batch size \n\twant(%v)\n\thave(%v)",
			net.BatchSize(), decoded.BatchSize())
	}
	if decoded.Outputs() != net.Outputs() {
		t.Errorf("unexpected decoded outputs \n\twant(%v)\n\thave(%v)",
			net.Outputs(), decoded.Outputs())
	}

	netLearnables := net.Learnables()
	decodedLearnables := decoded.Learnables()
	if len(decodedLearnables) != len(netLearnables) {
		t.Fatalf("unexpected number of decoded learnables \n\twant(%v)"+
			"\n\thave(%v)", len(netLearnables), len(decodedLearnables))
	}
	for i, learnable := range decodedLearnables {
		want := valueData(t, netLearnables[i].Value())
		have := valueData(t, learnable.Value())
		if len(want) != len(have) {
			t.Fatalf("unexpected size of decoded learnable %v \n\twant(%v)"+
				"\n\thave(%v)", i, len(want), len(have))
		}
		for j := range want {
			if want[j] != have[j] {
				t.Fatalf("decoded weight (%v, %v) differs \n\twant(%v)"+
					"\n\thave(%v)", i, j, want[j], have[j])
			}
		}
	}
}
