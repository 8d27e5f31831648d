package environment

import "github.com/encrush/btgym/timestep"

// StepLimit is an Ender that cuts episodes off after a fixed number
// of timesteps
type StepLimit struct {
	episodeSteps int
}

// NewStepLimit returns an Ender that cuts episodes off once their
// timestep number reaches episodeSteps
func NewStepLimit(episodeSteps int) StepLimit {
	return StepLimit{episodeSteps}
}

// End reports whether the episode holding t has hit the step limit.
// When it has, End marks t as the last step of the episode with its
// EndType set to timestep.Cutoff.
func (s StepLimit) End(t *timestep.TimeStep) bool {
	if t.Number < s.episodeSteps {
		return false
	}
	t.StepType = timestep.Last
	t.SetEnd(timestep.Cutoff)
	return true
}
