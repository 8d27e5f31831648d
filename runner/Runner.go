// Package runner provides collection of per-episode diagnostics for
// monitoring and rendering. Agents push a Step of diagnostics to a
// Collector on each timestep, and read back the full episode as a
// Trace when the episode ends.
package runner

// Step records the diagnostics of a single environment step.
type Step struct {
	Number int // Timestep number within the episode
	Action int
	Reward float64

	Price float64 // External price at the step, if any
	Value float64 // State value predicted by the policy

	Probs  []float64 // Action probabilities of the policy
	Advice []float64 // Advised action distribution, if any
}

// Trace holds the diagnostics of a completed episode.
type Trace struct {
	steps []Step
}

// Len returns the number of steps recorded in the trace
func (t *Trace) Len() int {
	return len(t.steps)
}

// Steps returns the recorded steps in order
func (t *Trace) Steps() []Step {
	return t.steps
}

// Prices returns the price series of the trace
func (t *Trace) Prices() []float64 {
	prices := make([]float64, len(t.steps))
	for i, s := range t.steps {
		prices[i] = s.Price
	}
	return prices
}

// Values returns the predicted state value series of the trace
func (t *Trace) Values() []float64 {
	values := make([]float64, len(t.steps))
	for i, s := range t.steps {
		values[i] = s.Value
	}
	return values
}

// Rewards returns the reward series of the trace
func (t *Trace) Rewards() []float64 {
	rewards := make([]float64, len(t.steps))
	for i, s := range t.steps {
		rewards[i] = s.Reward
	}
	return rewards
}

// Probs returns the probability series of the argument action. Steps
// with no recorded probabilities contribute 0.
func (t *Trace) Probs(action int) []float64 {
	probs := make([]float64, len(t.steps))
	for i, s := range t.steps {
		if action < len(s.Probs) {
			probs[i] = s.Probs[action]
		}
	}
	return probs
}

// Advice returns the advised probability series of the argument
// action. Steps with no recorded advice contribute 0.
func (t *Trace) Advice(action int) []float64 {
	advice := make([]float64, len(t.steps))
	for i, s := range t.steps {
		if action < len(s.Advice) {
			advice[i] = s.Advice[action]
		}
	}
	return advice
}

// Actions returns the series of selected actions of the trace
func (t *Trace) Actions() []int {
	actions := make([]int, len(t.steps))
	for i, s := range t.steps {
		actions[i] = s.Action
	}
	return actions
}

// A Collector accumulates Step diagnostics over an episode.
type Collector interface {
	// Collect records the diagnostics of a single step
	Collect(Step)

	// Episode returns the trace collected since the last call to
	// Episode and resets the Collector for the next episode
	Episode() *Trace
}

// Fn constructs the Collector that an agent should collect episode
// diagnostics with.
type Fn func() Collector

// Verbose returns a Collector recording the full diagnostics of every
// step. Traces returned by it can back all render modes.
func Verbose() Collector {
	return &verbose{}
}

type verbose struct {
	steps []Step
}

func (v *verbose) Collect(s Step) {
	v.steps = append(v.steps, s)
}

func (v *verbose) Episode() *Trace {
	trace := &Trace{steps: v.steps}
	v.steps = nil
	return trace
}

// Minimal returns a Collector recording episode boundaries only. Its
// traces are empty, which skips rendering entirely.
func Minimal() Collector {
	return &minimal{}
}

type minimal struct{}

func (m *minimal) Collect(Step) {}

func (m *minimal) Episode() *Trace {
	return &Trace{}
}
