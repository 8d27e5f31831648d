// Package oracle derives advised action distributions from price
// series by inspecting future price movement. The advice is only
// attainable with hindsight, which makes it suitable as an imitation
// target during training.
package oracle

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/encrush/btgym/utils/floatutils"
)

// Action indices advised by an Oracle
const (
	Hold int = iota
	Buy
	Sell
	Close

	// NumActions is the number of actions an Oracle advises over
	NumActions
)

// Config describes an Oracle
type Config struct {
	// Horizon is the number of future steps inspected when scoring
	// the attainable gain at each decision point
	Horizon int

	// Margin is the minimum relative gain that must be attainable
	// within the horizon before the oracle advises opening a position
	Margin float64

	// Window is the width of the centered moving average applied to
	// the per-step scores before they are mapped to distributions. A
	// width below two disables smoothing.
	Window int

	// Temperature scales the softmax that maps action scores to
	// distributions. Lower temperatures concentrate the advice on a
	// single action.
	Temperature float64
}

// Validate returns an error if the Config describes an invalid Oracle
func (c Config) Validate() error {
	if c.Horizon < 1 {
		return fmt.Errorf("oracle config: horizon must be positive "+
			"\n\thave(%v)", c.Horizon)
	}
	if c.Margin < 0 {
		return fmt.Errorf("oracle config: margin cannot be negative "+
			"\n\thave(%v)", c.Margin)
	}
	if c.Temperature <= 0 {
		return fmt.Errorf("oracle config: temperature must be positive "+
			"\n\thave(%v)", c.Temperature)
	}
	return nil
}

// Oracle advises action distributions over a price series. At each
// decision point the oracle scores the gain attainable within its
// horizon and smooths the scores over neighbouring decision points.
// Each smoothed score then maps to a distribution over hold, buy,
// sell, and close.
//
// An Oracle is deterministic: advising twice on the same prices
// produces the same distributions.
type Oracle struct {
	horizon     int
	margin      float64
	window      int
	temperature float64
}

// New returns a new Oracle described by config
func New(config Config) (*Oracle, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}

	return &Oracle{
		horizon:     config.Horizon,
		margin:      config.Margin,
		window:      config.Window,
		temperature: config.Temperature,
	}, nil
}

// Advise returns one advised action distribution per price. Row t of
// the returned matrix is the advised distribution for the decision
// taken at prices[t].
func (o *Oracle) Advise(prices []float64) (*mat.Dense, error) {
	if len(prices) < 2 {
		return nil, fmt.Errorf("advise: need at least two prices "+
			"\n\thave(%v)", len(prices))
	}
	for i, price := range prices {
		if price <= 0 {
			return nil, fmt.Errorf("advise: prices must be positive "+
				"\n\thave(%v at %v)", price, i)
		}
	}

	scores := smooth(o.scores(prices), o.window)

	advice := mat.NewDense(len(prices), NumActions, nil)
	for t, score := range scores {
		advice.SetRow(t, o.distribution(score))
	}
	return advice, nil
}

// AdviseAt returns the advised action distribution for the decision
// taken at prices[t]
func (o *Oracle) AdviseAt(prices []float64, t int) ([]float64, error) {
	if t < 0 || t >= len(prices) {
		return nil, fmt.Errorf("adviseat: index out of range [%v] with "+
			"length %v", t, len(prices))
	}

	advice, err := o.Advise(prices)
	if err != nil {
		return nil, fmt.Errorf("adviseat: %v", err)
	}
	return advice.RawRowView(t), nil
}

// scores computes the per-step gain scores of a price series. The
// score at step t is the relative gain attainable by buying at
// prices[t], minus the relative gain attainable by selling. Steps with
// no lookahead data score zero.
func (o *Oracle) scores(prices []float64) []float64 {
	scores := make([]float64, len(prices))
	for t := range prices {
		end := t + 1 + o.horizon
		if end > len(prices) {
			end = len(prices)
		}
		if t+1 >= end {
			continue
		}

		future := prices[t+1 : end]
		up := (floats.Max(future) - prices[t]) / prices[t]
		down := (prices[t] - floats.Min(future)) / prices[t]
		scores[t] = up - down
	}
	return scores
}

// distribution maps a gain score to an advised action distribution.
// Gains beyond the margin score the corresponding position opening
// action. When no gain beyond the margin is attainable the oracle
// prefers standing aside, weighting hold ahead of close.
func (o *Oracle) distribution(score float64) []float64 {
	flat := math.Max(o.margin-math.Abs(score), 0)

	actionScores := make([]float64, NumActions)
	actionScores[Hold] = flat
	actionScores[Buy] = math.Max(score-o.margin, 0)
	actionScores[Sell] = math.Max(-score-o.margin, 0)
	actionScores[Close] = 0.5 * flat

	return floatutils.Softmax(actionScores, o.temperature)
}

// smooth applies a centered moving average of the given width
func smooth(scores []float64, window int) []float64 {
	if window < 2 {
		return scores
	}

	half := window / 2
	smoothed := make([]float64, len(scores))
	for i := range scores {
		lo := i - half
		if lo < 0 {
			lo = 0
		}
		hi := i + half + 1
		if hi > len(scores) {
			hi = len(scores)
		}
		smoothed[i] = stat.Mean(scores[lo:hi], nil)
	}
	return smoothed
}
