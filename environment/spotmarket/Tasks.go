package spotmarket

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"

	env "github.com/encrush/btgym/environment"
	ts "github.com/encrush/btgym/timestep"
)

// Profit implements the task of maximizing trading profit in a
// SpotMarket. The reward on each transition is the change in account
// equity. Episodes end at a step limit, or earlier in a terminal
// state once the equity leaves its legal interval: a drawdown beyond
// maxDrawdown ends the episode in failure, equity beyond
// profitTarget ends it in success.
//
// The Starter samples the account starting state, which holds the
// starting position and the starting realized profit.
type Profit struct {
	env.Starter
	stepLimiter   env.Ender
	equityLimiter env.Ender
	maxDrawdown   float64
	profitTarget  float64
	equityIndex   int
}

// NewProfit returns a new Profit task. The equityIndex parameter is
// the index of the equity feature in the market's observation
// vectors, which is tracked to end episodes.
func NewProfit(starter env.Starter, episodeSteps int, maxDrawdown,
	profitTarget float64, equityIndex int) (*Profit, error) {
	if maxDrawdown <= 0 {
		return nil, fmt.Errorf("newprofit: max drawdown must be positive "+
			"\n\thave(%v)", maxDrawdown)
	}
	if profitTarget <= 0 {
		return nil, fmt.Errorf("newprofit: profit target must be positive "+
			"\n\thave(%v)", profitTarget)
	}
	if equityIndex < 0 {
		return nil, fmt.Errorf("newprofit: equity index cannot be negative "+
			"\n\thave(%v)", equityIndex)
	}

	stepLimiter := env.NewStepLimit(episodeSteps)
	equityLimiter := env.NewIntervalLimit(
		[]r1.Interval{{Min: -maxDrawdown, Max: profitTarget}},
		[]int{equityIndex},
		ts.TerminalStateReached,
	)

	return &Profit{
		Starter:       starter,
		stepLimiter:   stepLimiter,
		equityLimiter: equityLimiter,
		maxDrawdown:   maxDrawdown,
		profitTarget:  profitTarget,
		equityIndex:   equityIndex,
	}, nil
}

// GetReward returns the change in account equity between state and
// nextState
func (p *Profit) GetReward(state, action, nextState mat.Vector) float64 {
	return nextState.AtVec(p.equityIndex) - state.AtVec(p.equityIndex)
}

// End reports whether the episode holding t is over, marking t as the
// episode's last step when it is
func (p *Profit) End(t *ts.TimeStep) bool {
	if p.equityLimiter.End(t) {
		return true
	}
	return p.stepLimiter.End(t)
}

// AtGoal returns whether the argument state has account equity at or
// above the profit target
func (p *Profit) AtGoal(state mat.Matrix) bool {
	return state.At(p.equityIndex, 0) >= p.profitTarget
}

// Min returns the lowest reward any transition can yield. The equity
// is confined to its legal interval, so no single transition can
// change it by more than the interval width.
func (p *Profit) Min() float64 {
	return -(p.maxDrawdown + p.profitTarget)
}

// Max returns the highest reward any transition can yield
func (p *Profit) Max() float64 {
	return p.maxDrawdown + p.profitTarget
}

// RewardSpec returns the specification of the task's rewards
func (p *Profit) RewardSpec() env.Spec {
	shape := mat.NewVecDense(1, nil)
	lowerBound := mat.NewVecDense(1, []float64{p.Min()})
	upperBound := mat.NewVecDense(1, []float64{p.Max()})

	return env.NewSpec(shape, env.Reward, lowerBound, upperBound,
		env.Continuous)
}

// NewFlatStart returns a Starter that always starts episodes with a
// flat position and no realized profit
func NewFlatStart(seed uint64) env.Starter {
	return env.NewUniformStarter([]r1.Interval{
		{Min: 0, Max: 0},
		{Min: 0, Max: 0},
	}, seed)
}

// NewRandomPositionStart returns a Starter that starts episodes with
// a randomly drawn position and no realized profit. The sampled
// positions round to short, flat, and long with equal probability.
func NewRandomPositionStart(seed uint64) env.Starter {
	return env.NewUniformStarter([]r1.Interval{
		{Min: -1.5, Max: 1.5},
		{Min: 0, Max: 0},
	}, seed)
}
