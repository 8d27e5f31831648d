package environment

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r1"

	"github.com/encrush/btgym/timestep"
)

// IntervalLimit implements the Ender interface, ending episodes once
// tracked observation features leave their legal intervals
type IntervalLimit struct {
	intervals []r1.Interval
	indices   []int
	endType   timestep.EndType
}

// NewIntervalLimit returns a new IntervalLimit which ends episodes
// with ending type endType once the observation feature at index
// indices[i] leaves intervals[i] for any i
func NewIntervalLimit(intervals []r1.Interval, indices []int,
	endType timestep.EndType) IntervalLimit {
	if len(intervals) != len(indices) {
		panic(fmt.Sprintf("newintervallimit: one tracked index needed per "+
			"interval \n\twant(%v) \n\thave(%v)", len(intervals),
			len(indices)))
	}
	return IntervalLimit{intervals, indices, endType}
}

// End reports whether any tracked observation feature of t has left
// its legal interval. When one has, End marks t as the last step of
// the episode with the IntervalLimit's ending type.
func (i IntervalLimit) End(t *timestep.TimeStep) bool {
	for j, interval := range i.intervals {
		feature := t.Observation.AtVec(i.indices[j])
		if feature < interval.Min || feature > interval.Max {
			t.StepType = timestep.Last
			t.SetEnd(i.endType)
			return true
		}
	}
	return false
}
