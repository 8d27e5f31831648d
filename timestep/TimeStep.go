// Package timestep describes the step records that environments hand
// to agents.
package timestep

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// StepType marks where in its episode a TimeStep falls. The step
// starting an episode is First and the step ending it is Last; every
// step between is Mid.
type StepType int

const (
	First StepType = iota
	Mid
	Last
)

func (s StepType) String() string {
	switch s {
	case First:
		return "First"
	case Last:
		return "Last"
	default:
		return "Mid"
	}
}

// EndType describes how an episode ended. Episodes may end because the
// environment reached a terminal state or because some external limit
// cut the episode off. Value function bootstrapping depends on the
// distinction: cutoff ends bootstrap from the value of the last state,
// terminal ends do not.
type EndType int

const (
	// NilEnd is the EndType of any step that does not end an episode
	NilEnd EndType = iota

	// TerminalStateReached denotes an episode that ended in a terminal
	// environment state
	TerminalStateReached

	// Cutoff denotes an episode that was ended by a step limit or some
	// other artificial boundary
	Cutoff
)

func (e EndType) String() string {
	switch e {
	case TerminalStateReached:
		return "TerminalStateReached"
	case Cutoff:
		return "Cutoff"
	default:
		return "NilEnd"
	}
}

// TimeStep holds everything an environment reports about one step.
type TimeStep struct {
	StepType    StepType
	Reward      float64
	Discount    float64
	Observation mat.Vector
	Number      int
	endType     EndType
}

// New constructs a new TimeStep with a NilEnd ending
func New(t StepType, r, d float64, o mat.Vector, n int) TimeStep {
	return TimeStep{t, r, d, o, n, NilEnd}
}

// First reports whether the TimeStep starts its episode
func (t *TimeStep) First() bool {
	return t.StepType == First
}

// Mid reports whether the TimeStep neither starts nor ends its episode
func (t *TimeStep) Mid() bool {
	return t.StepType == Mid
}

// Last reports whether the TimeStep ends its episode
func (t *TimeStep) Last() bool {
	return t.StepType == Last
}

// SetEnd sets the ending type of the TimeStep. Enders call SetEnd when
// they mark a step as the last of its episode.
func (t *TimeStep) SetEnd(e EndType) {
	t.endType = e
}

// End returns the ending type of the TimeStep
func (t *TimeStep) End() EndType {
	return t.endType
}

// TerminalEnd returns whether the TimeStep ends its episode in a
// terminal environment state
func (t *TimeStep) TerminalEnd() bool {
	return t.endType == TerminalStateReached
}

// CutoffEnd returns whether the TimeStep ends its episode due to an
// artificial boundary such as a step limit
func (t *TimeStep) CutoffEnd() bool {
	return t.endType == Cutoff
}

func (t TimeStep) String() string {
	return fmt.Sprintf("TimeStep %v (%v): reward %.2f, discount %.2f",
		t.Number, t.StepType, t.Reward, t.Discount)
}
