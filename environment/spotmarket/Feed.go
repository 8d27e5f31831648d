package spotmarket

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/stat/distuv"
)

// FeedConfig describes the synthetic price process of a SpotMarket.
// Prices follow geometric Brownian motion with an optional sinusoidal
// component in log price, which gives the process exploitable trends.
type FeedConfig struct {
	// Start is the price level at the beginning of each episode
	Start float64

	// Drift is the per-step drift of the log price
	Drift float64

	// Volatility is the per-step standard deviation of log returns
	Volatility float64

	// CycleAmplitude is the amplitude of the sinusoidal log price
	// component. An amplitude of zero disables the component.
	CycleAmplitude float64

	// CyclePeriod is the number of steps per full cycle of the
	// sinusoidal component
	CyclePeriod float64
}

// Validate returns an error if the FeedConfig describes an invalid
// price process
func (f FeedConfig) Validate() error {
	if f.Start <= 0 {
		return fmt.Errorf("feed config: starting price must be positive "+
			"\n\thave(%v)", f.Start)
	}
	if f.Volatility < 0 {
		return fmt.Errorf("feed config: volatility cannot be negative "+
			"\n\thave(%v)", f.Volatility)
	}
	if f.CycleAmplitude != 0 && f.CyclePeriod <= 0 {
		return fmt.Errorf("feed config: cycle period must be positive "+
			"when a cycle amplitude is set \n\thave(%v)", f.CyclePeriod)
	}
	return nil
}

// Feed generates synthetic price paths
type Feed struct {
	config FeedConfig
	noise  distuv.Normal
}

// NewFeed returns a new price Feed described by config
func NewFeed(config FeedConfig, seed uint64) (*Feed, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("newfeed: %v", err)
	}

	noise := distuv.Normal{
		Mu:    0.0,
		Sigma: 1.0,
		Src:   rand.NewSource(seed),
	}

	return &Feed{config: config, noise: noise}, nil
}

// Generate returns a new price path of n prices
func (f *Feed) Generate(n int) []float64 {
	prices := make([]float64, n)

	logPrice := math.Log(f.config.Start)
	for i := range prices {
		cycle := 0.0
		if f.config.CycleAmplitude != 0 {
			cycle = f.config.CycleAmplitude *
				math.Sin(2*math.Pi*float64(i)/f.config.CyclePeriod)
		}
		prices[i] = math.Exp(logPrice + cycle)

		logPrice += f.config.Drift + f.config.Volatility*f.noise.Rand()
	}
	return prices
}
