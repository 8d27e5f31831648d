package tracker

import (
	"math"
	"path/filepath"
	"testing"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"github.com/encrush/btgym/summary"
	ts "github.com/encrush/btgym/timestep"
)

// stubSummarized is a Summarized agent whose epoch counter is advanced
// by hand.
type stubSummarized struct {
	epochs    int
	summaries []*summary.Summary
}

func (s *stubSummarized) CompletedEpochs() int {
	return s.epochs
}

func (s *stubSummarized) Summaries() []*summary.Summary {
	return s.summaries
}

func TestSummariesRecordsOncePerUpdate(t *testing.T) {
	g := G.NewGraph()
	loss := G.NewScalar(g, tensor.Float64, G.WithName("loss"),
		G.WithValue(2.5))
	agent := &stubSummarized{
		summaries: []*summary.Summary{summary.Scalar("loss", loss)},
	}

	vm := G.NewTapeMachine(g)
	defer vm.Close()
	if err := vm.RunAll(); err != nil {
		t.Fatal(err)
	}
	vm.Reset()

	filename := filepath.Join(t.TempDir(), "summaries.bin")
	tracker := NewSummaries(filename, agent)

	// No update yet, so nothing should be recorded
	tracker.Track(step(ts.First, 0.0, 0))

	// One row per completed update, no matter how often the tracker
	// polls
	agent.epochs = 1
	tracker.Track(step(ts.Mid, 0.0, 1))
	tracker.Track(step(ts.Mid, 0.0, 2))

	if err := G.Let(loss, 42.0); err != nil {
		t.Fatal(err)
	}
	if err := vm.RunAll(); err != nil {
		t.Fatal(err)
	}
	vm.Reset()

	agent.epochs = 2
	tracker.Track(step(ts.Mid, 0.0, 3))

	tracker.Save()
	series := LoadSummaries(filename)

	recorded, ok := series["loss"]
	if !ok {
		t.Fatalf("no series recorded for summary loss, have %v", series)
	}
	expected := []float64{2.5, 42.0}
	if len(recorded) != len(expected) {
		t.Fatalf("incorrect number of recorded values \n\twant(%v)"+
			"\n\thave(%v)", len(expected), len(recorded))
	}
	for i := range expected {
		if math.Abs(recorded[i]-expected[i]) > 1e-12 {
			t.Errorf("incorrect recorded value %d \n\twant(%v)"+
				"\n\thave(%v)", i, expected[i], recorded[i])
		}
	}
}
