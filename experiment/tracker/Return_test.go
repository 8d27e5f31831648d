package tracker

import (
	"math"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/mat"

	ts "github.com/encrush/btgym/timestep"
)

// step constructs a synthetic TimeStep for feeding Trackers directly.
func step(stepType ts.StepType, reward float64, number int) ts.TimeStep {
	return ts.New(stepType, reward, 0.99, mat.NewVecDense(1, nil), number)
}

func TestReturnTracksEpisodicReturns(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "returns.bin")
	tracker := NewReturn(filename)

	// First episode: rewards 0.0, 1.5, -0.5, 2.0
	tracker.Track(step(ts.First, 0.0, 0))
	tracker.Track(step(ts.Mid, 1.5, 1))
	tracker.Track(step(ts.Mid, -0.5, 2))
	tracker.Track(step(ts.Last, 2.0, 3))

	// Second episode: rewards 0.0, 1.0
	tracker.Track(step(ts.First, 0.0, 0))
	tracker.Track(step(ts.Last, 1.0, 1))

	// Third episode never finishes, so its return is dropped
	tracker.Track(step(ts.First, 0.0, 0))
	tracker.Track(step(ts.Mid, 100.0, 1))

	tracker.Save()
	returns := LoadData(filename)

	expected := []float64{3.0, 1.0}
	if len(returns) != len(expected) {
		t.Fatalf("incorrect number of returns \n\twant(%v)\n\thave(%v)",
			len(expected), len(returns))
	}
	for i := range expected {
		if math.Abs(returns[i]-expected[i]) > 1e-12 {
			t.Errorf("incorrect return for episode %d \n\twant(%v)"+
				"\n\thave(%v)", i, expected[i], returns[i])
		}
	}
}

func TestReturnPanicsOnNonSequentialTimeSteps(t *testing.T) {
	tracker := NewReturn(filepath.Join(t.TempDir(), "returns.bin"))
	tracker.Track(step(ts.First, 0.0, 0))

	defer func() {
		if recover() == nil {
			t.Error("expected a panic when tracking non-sequential " +
				"timesteps")
		}
	}()
	tracker.Track(step(ts.Mid, 1.0, 2))
}
