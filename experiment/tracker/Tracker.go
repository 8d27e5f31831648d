// Package tracker implements Trackers, which track and save data
// generated during an experiment
package tracker

import (
	"encoding/gob"
	"os"

	"github.com/aunum/log"

	ts "github.com/encrush/btgym/timestep"
)

// Tracker caches data of interest from the timesteps of a running
// experiment, writing the cache to disk once the run is over
type Tracker interface {
	Track(t ts.TimeStep)
	Save()
}

// LoadData reads back the data a Tracker saved to filename
func LoadData(filename string) []float64 {
	file, err := os.Open(filename)
	if err != nil {
		log.Fatalf("could not open data file: %v", err)
	}
	defer file.Close()

	var data []float64
	if err := gob.NewDecoder(file).Decode(&data); err != nil {
		log.Fatalf("could not decode data: %v", err)
	}
	return data
}

// saveData gob-encodes data to the file at filename, overwriting any
// existing file.
func saveData(filename string, data interface{}) {
	file, err := os.Create(filename)
	if err != nil {
		log.Fatalf("could not open save file: %v", err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(data); err != nil {
		log.Fatalf("could not encode data: %v", err)
	}
}
