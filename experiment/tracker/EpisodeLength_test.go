package tracker

import (
	"path/filepath"
	"testing"

	ts "github.com/encrush/btgym/timestep"
)

func TestEpisodeLengthRecordsOnlyFinishedEpisodes(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "lengths.bin")
	tracker := NewEpisodeLength(filename)

	tracker.Track(step(ts.First, 0.0, 0))
	for i := 1; i < 5; i++ {
		tracker.Track(step(ts.Mid, 0.0, i))
	}
	tracker.Track(step(ts.Last, 0.0, 5))

	tracker.Track(step(ts.First, 0.0, 0))
	tracker.Track(step(ts.Mid, 0.0, 1))
	tracker.Track(step(ts.Mid, 0.0, 2))
	tracker.Track(step(ts.Last, 0.0, 3))

	// Unfinished episode does not contribute a length
	tracker.Track(step(ts.First, 0.0, 0))
	tracker.Track(step(ts.Mid, 0.0, 1))

	tracker.Save()
	lengths := LoadData(filename)

	expected := []float64{5, 3}
	if len(lengths) != len(expected) {
		t.Fatalf("incorrect number of episode lengths \n\twant(%v)"+
			"\n\thave(%v)", len(expected), len(lengths))
	}
	for i := range expected {
		if lengths[i] != expected[i] {
			t.Errorf("incorrect length for episode %d \n\twant(%v)"+
				"\n\thave(%v)", i, expected[i], lengths[i])
		}
	}
}
