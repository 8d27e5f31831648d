package tracker

import (
	"encoding/gob"
	"os"

	"github.com/aunum/log"

	"github.com/encrush/btgym/summary"
	ts "github.com/encrush/btgym/timestep"
)

// Summarized is an agent that updates on epochs of experience and
// exposes scalar summaries of its loss terms.
type Summarized interface {
	CompletedEpochs() int
	Summaries() []*summary.Summary
}

// Summaries tracks and saves the loss summaries of an agent, one
// value per summary per update. The tracker polls the agent on each
// timestep and records a new row of values whenever the agent has
// completed another update.
type Summaries struct {
	agent      Summarized
	lastEpochs int
	series     map[string][]float64
	filename   string
}

// NewSummaries creates and returns a new *Summaries Tracker recording
// the summaries of the argument agent
func NewSummaries(filename string, agent Summarized) Tracker {
	return &Summaries{
		agent:    agent,
		series:   make(map[string][]float64),
		filename: filename,
	}
}

// Track polls the tracked agent and records its summary values if the
// agent has updated since the last call.
func (s *Summaries) Track(t ts.TimeStep) {
	epochs := s.agent.CompletedEpochs()
	if epochs == s.lastEpochs {
		return
	}
	s.lastEpochs = epochs

	for _, sum := range s.agent.Summaries() {
		s.series[sum.Name()] = append(s.series[sum.Name()], sum.Value())
	}
}

// Save saves the data tracked by the Summaries Tracker to disk.
func (s *Summaries) Save() {
	saveData(s.filename, s.series)
}

// LoadSummaries loads and returns the summary series saved by a
// Summaries Tracker
func LoadSummaries(filename string) map[string][]float64 {
	file, err := os.Open(filename)
	if err != nil {
		log.Fatalf("could not open data file: %v", err)
	}
	defer file.Close()

	dec := gob.NewDecoder(file)
	var series map[string][]float64

	if err = dec.Decode(&series); err != nil {
		log.Fatalf("could not decode data: %v", err)
	}

	return series
}
