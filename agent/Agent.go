// Package agent defines what a learning agent is and the
// configuration machinery that constructs agents by name.
package agent

import (
	"github.com/encrush/btgym/network"
	"github.com/encrush/btgym/timestep"
	"gonum.org/v1/gonum/mat"
)

// Agent is a complete learning algorithm. Its Policy half selects an
// action at every timestep, and its Learner half consumes the
// resulting transitions to improve that policy.
type Agent interface {
	Learner
	Policy
}

// A Closer is an Agent holding resources that must be released once
// learning is over
type Closer interface {
	Agent
	Close() error
}

// Learner is the learning half of an agent. A Learner is fed every
// timestep of every episode through ObserveFirst and Observe, and
// decides on each call to Step whether enough experience has
// accumulated to update its weights.
type Learner interface {
	// Step updates the learner's weights when an update is due
	Step() error

	// Observe records that action led to the timestep nextObs
	Observe(action mat.Vector, nextObs timestep.TimeStep) error

	// ObserveFirst records the first timestep of an episode
	ObserveFirst(timestep.TimeStep) error

	// EndEpisode marks the end of the current episode
	EndEpisode()
}

// Policy is the acting half of an agent. In training mode a Policy may
// explore; in evaluation mode it should exploit what it has learned.
// The Policy and its Learner share weights, so updates made by the
// Learner show up in the actions the Policy selects.
type Policy interface {
	SelectAction(t timestep.TimeStep) *mat.VecDense
	Eval()        // exploit
	Train()       // explore
	IsEval() bool
}

// NNPolicy is a Policy backed by neural network function
// approximation. The policy owns the VM that runs its network, so it
// must be cloneable onto fresh graphs: learners keep a batch-sized
// clone for computing update targets alongside the batch-1 policy
// that selects actions.
type NNPolicy interface {
	Policy
	Clone() (NNPolicy, error)
	CloneWithBatch(int) (NNPolicy, error)
	Network() network.NeuralNet
	Close() error
}
