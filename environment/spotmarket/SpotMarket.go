// Package spotmarket implements a single-asset spot market
// environment. An agent observes a window of recent log returns
// together with the state of its trading account and chooses between
// holding, opening a long or short position of one unit, and closing
// the open position. Rewards are the change in account equity.
package spotmarket

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	env "github.com/encrush/btgym/environment"
	ts "github.com/encrush/btgym/timestep"
	"github.com/encrush/btgym/utils/floatutils"
)

// Actions available in a SpotMarket
const (
	Hold int = iota
	Buy
	Sell
	Close

	// NumActions is the number of actions available in a SpotMarket
	NumActions
)

// Number of account features appended to each observation: position,
// unrealized profit, and equity
const accountFeatures int = 3

// Config describes a SpotMarket
type Config struct {
	// Window is the number of past log returns in each observation
	Window int

	// EpisodeSteps is the number of decision steps per episode
	EpisodeSteps int

	// Lookahead is the number of extra prices generated past the last
	// decision step, so that future-inspecting advisors have data at
	// the end of the episode
	Lookahead int

	// Fee is the proportional transaction fee charged when opening or
	// closing a position
	Fee float64

	// Feed describes the synthetic price process
	Feed FeedConfig
}

// Validate returns an error if the Config describes an invalid
// SpotMarket
func (c Config) Validate() error {
	if c.Window < 1 {
		return fmt.Errorf("spotmarket config: window must be positive "+
			"\n\thave(%v)", c.Window)
	}
	if c.EpisodeSteps < 1 {
		return fmt.Errorf("spotmarket config: episode steps must be "+
			"positive \n\thave(%v)", c.EpisodeSteps)
	}
	if c.Lookahead < 0 {
		return fmt.Errorf("spotmarket config: lookahead cannot be negative "+
			"\n\thave(%v)", c.Lookahead)
	}
	if c.Fee < 0 {
		return fmt.Errorf("spotmarket config: fee cannot be negative "+
			"\n\thave(%v)", c.Fee)
	}
	return c.Feed.Validate()
}

// ObservationDims returns the number of features in each observation
// of a SpotMarket with this Config. The account equity is always the
// last feature.
func (c Config) ObservationDims() int {
	return c.Window + accountFeatures
}

// SpotMarket implements a single-asset spot market environment.
//
// On each episode a fresh price path is drawn from the Feed. The
// observation at decision step t holds the Window most recent log
// returns followed by the account state: the current position (-1
// short, 0 flat, 1 long), the unrealized profit of the open position,
// and the account equity. Profits are expressed in units of the
// starting price, so that reward scales are independent of the price
// level. The equity is always the last observation feature.
type SpotMarket struct {
	env.Task
	config   Config
	discount float64
	feed     *Feed

	prices []float64
	cursor int

	position float64
	entry    float64
	realized float64

	currentStep ts.TimeStep
}

// New returns a new SpotMarket with the argument task, along with the
// first timestep of the first episode
func New(t env.Task, config Config, discount float64,
	seed uint64) (*SpotMarket, ts.TimeStep, error) {
	if err := config.Validate(); err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("new: %v", err)
	}

	feed, err := NewFeed(config.Feed, seed)
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("new: %v", err)
	}

	market := &SpotMarket{
		Task:     t,
		config:   config,
		discount: discount,
		feed:     feed,
	}

	firstStep, err := market.Reset()
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("new: could not reset: %v", err)
	}

	return market, firstStep, nil
}

// Reset draws a fresh price path and account starting state, returning
// the new episode's first timestep
func (s *SpotMarket) Reset() (ts.TimeStep, error) {
	pathLen := s.config.Window + s.config.EpisodeSteps + s.config.Lookahead + 1
	s.prices = s.feed.Generate(pathLen)
	s.cursor = s.config.Window

	start := s.Start()
	if start.Len() != 2 {
		return ts.TimeStep{}, fmt.Errorf("reset: account start state must "+
			"hold position and realized profit \n\twant(2) \n\thave(%v)",
			start.Len())
	}
	s.position = clipPosition(start.AtVec(0))
	s.realized = start.AtVec(1)
	s.entry = 0
	if s.position != 0 {
		s.entry = s.prices[s.cursor]
	}

	firstStep := ts.New(ts.First, 0, s.discount, s.observation(), 0)
	s.currentStep = firstStep

	return firstStep, nil
}

// Step executes an action in the market, returning the next timestep
// and whether that timestep is the last in the episode
func (s *SpotMarket) Step(action *mat.VecDense) (ts.TimeStep, bool, error) {
	a := int(action.AtVec(0))
	if a < Hold || a > Close {
		return ts.TimeStep{}, true, fmt.Errorf("step: invalid action %v", a)
	}

	// Trades execute at the current price, then the market moves
	s.trade(a)
	s.cursor++

	obs := s.observation()
	nextStep := ts.New(ts.Mid, 0, s.discount, obs, s.currentStep.Number+1)
	nextStep.Reward = s.GetReward(s.currentStep.Observation, action, obs)

	last := s.End(&nextStep)
	s.currentStep = nextStep

	return nextStep, last, nil
}

// CurrentTimeStep returns the last timestep generated by the
// environment
func (s *SpotMarket) CurrentTimeStep() ts.TimeStep {
	return s.currentStep
}

// ExternalPrices returns the price at each decision step of the
// current episode, including the lookahead prices past the episode
// cutoff. Index t holds the price at which the action of decision
// step t executes.
func (s *SpotMarket) ExternalPrices() []float64 {
	return s.prices[s.config.Window:]
}

// ObservationSpec returns the specification of the observation space.
// Log return features are unbounded, the position feature lies in
// [-1, 1], and the profit features are unbounded.
func (s *SpotMarket) ObservationSpec() env.Spec {
	dims := s.config.ObservationDims()
	shape := mat.NewVecDense(dims, nil)

	low := make([]float64, dims)
	high := make([]float64, dims)
	for i := 0; i < s.config.Window; i++ {
		low[i] = math.Inf(-1)
		high[i] = math.Inf(1)
	}
	low[s.config.Window], high[s.config.Window] = -1, 1
	low[s.config.Window+1], high[s.config.Window+1] = math.Inf(-1), math.Inf(1)
	low[s.config.Window+2], high[s.config.Window+2] = math.Inf(-1), math.Inf(1)

	lowerBound := mat.NewVecDense(dims, low)
	upperBound := mat.NewVecDense(dims, high)

	return env.NewSpec(shape, env.Observation, lowerBound, upperBound,
		env.Continuous)
}

// ActionSpec returns the specification of the discrete action space
func (s *SpotMarket) ActionSpec() env.Spec {
	shape := mat.NewVecDense(1, nil)
	lowerBound := mat.NewVecDense(1, []float64{float64(Hold)})
	upperBound := mat.NewVecDense(1, []float64{float64(Close)})

	return env.NewSpec(shape, env.Action, lowerBound, upperBound,
		env.Discrete)
}

// DiscountSpec returns the specification of the reward discounting
func (s *SpotMarket) DiscountSpec() env.Spec {
	shape := mat.NewVecDense(1, nil)
	bound := mat.NewVecDense(1, []float64{s.discount})

	return env.NewSpec(shape, env.Discount, bound, bound, env.Continuous)
}

// String implements the fmt.Stringer interface
func (s *SpotMarket) String() string {
	str := "Spot Market  |  Price: %.4f  |  Position: %.0f  |  Equity: %.4f"
	return fmt.Sprintf(str, s.prices[s.cursor], s.position, s.equity())
}

// trade executes an action at the current price. Buy and Sell open a
// position of one unit when flat and otherwise do nothing. Close
// realizes the profit of the open position.
func (s *SpotMarket) trade(action int) {
	price := s.prices[s.cursor]

	switch action {
	case Buy:
		if s.position == 0 {
			s.position = 1
			s.entry = price
			s.realized -= s.fee(price)
		}

	case Sell:
		if s.position == 0 {
			s.position = -1
			s.entry = price
			s.realized -= s.fee(price)
		}

	case Close:
		if s.position != 0 {
			s.realized += s.position * (price - s.entry) / s.config.Feed.Start
			s.realized -= s.fee(price)
			s.position = 0
			s.entry = 0
		}
	}
}

// fee returns the transaction fee for trading one unit at price, in
// units of the starting price
func (s *SpotMarket) fee(price float64) float64 {
	return s.config.Fee * price / s.config.Feed.Start
}

// unrealized returns the unrealized profit of the open position, in
// units of the starting price
func (s *SpotMarket) unrealized() float64 {
	if s.position == 0 {
		return 0
	}
	return s.position * (s.prices[s.cursor] - s.entry) / s.config.Feed.Start
}

// equity returns the account equity, in units of the starting price
func (s *SpotMarket) equity() float64 {
	return s.realized + s.unrealized()
}

// observation constructs the observation at the current decision step
func (s *SpotMarket) observation() *mat.VecDense {
	obs := make([]float64, s.config.ObservationDims())

	for i := 0; i < s.config.Window; i++ {
		prev := s.prices[s.cursor-s.config.Window+i]
		next := s.prices[s.cursor-s.config.Window+i+1]
		obs[i] = math.Log(next / prev)
	}
	obs[s.config.Window] = s.position
	obs[s.config.Window+1] = s.unrealized()
	obs[s.config.Window+2] = s.equity()

	return mat.NewVecDense(len(obs), obs)
}

// clipPosition rounds a sampled starting position to the nearest
// legal position
func clipPosition(position float64) float64 {
	return floatutils.Clip(math.Round(position), -1, 1)
}
