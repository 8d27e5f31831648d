// Package environment defines what a simulated environment is and the
// pieces environments are assembled from
package environment

import (
	"gonum.org/v1/gonum/mat"

	"github.com/encrush/btgym/timestep"
)

// Starter samples states from a distribution of starting states each
// time an episode begins
type Starter interface {
	Start() mat.Vector
}

// Ender determines when an episode ends. The End method inspects a
// timestep and, if the episode should end there, modifies the timestep
// so that its StepType is timestep.Last and its EndType describes the
// kind of ending, returning true.
type Ender interface {
	End(*timestep.TimeStep) bool
}

// Task gives an environment its objective. A Task chooses starting
// states and episode endings, and it assigns the reward for each
// transition.
type Task interface {
	Starter
	Ender

	// GetReward returns the reward for taking an action in a state,
	// resulting in a next state
	GetReward(state, action, nextState mat.Vector) float64

	// AtGoal returns whether state satisfies the Task's goal
	AtGoal(state mat.Matrix) bool

	// Min and Max return the minimum and maximum attainable rewards
	// over all timesteps
	Min() float64
	Max() float64

	RewardSpec() Spec
}

// Environment implements a simulated environment, which includes a Task
// to complete
type Environment interface {
	Task

	// Reset starts a new episode, returning its first timestep
	Reset() (timestep.TimeStep, error)

	// Step takes one environmental step given an action, returning the
	// next timestep and whether that timestep is the last in the
	// episode
	Step(action *mat.VecDense) (timestep.TimeStep, bool, error)

	// CurrentTimeStep returns the last timestep generated by the
	// environment
	CurrentTimeStep() timestep.TimeStep

	DiscountSpec() Spec
	ObservationSpec() Spec
	ActionSpec() Spec
}
