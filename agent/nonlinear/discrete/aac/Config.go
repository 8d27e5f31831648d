package aac

import (
	"fmt"
	"reflect"

	"github.com/encrush/btgym/agent"
	env "github.com/encrush/btgym/environment"
	"github.com/encrush/btgym/initwfn"
	"github.com/encrush/btgym/loss"
	"github.com/encrush/btgym/network"
	"github.com/encrush/btgym/solver"
)

func init() {
	// Register the ConfigList type so that agent.TypedConfigList can
	// deserialize lists of this type.
	agent.Register(agent.CategoricalAACMLP, func() agent.ConfigList {
		return &ConfigList{}
	})
}

// ConfigList describes a hyperparameter sweep over Configs. Each
// field holds the values that the corresponding Config field may take,
// and the list enumerates the cross product of all fields.
type ConfigList struct {
	// Actor critic neural net
	Layers      [][]int
	Biases      [][]bool
	Activations [][]*network.Activation

	// Weight initialization for the network
	InitWFn []*initwfn.InitWFn

	Solver []*solver.Solver

	// Coefficients weighing the value loss and entropy bonus against
	// the policy gradient loss
	ValueCoef   []float64
	EntropyCoef []float64

	EpochLength             []int
	FinishEpisodeOnEpochEnd []bool

	// GAE(λ) advantage estimation
	Lambda []float64
	Gamma  []float64
}

// NewConfigList wraps the sweep described by the argument fields in an
// agent.TypedConfigList, which serializes together with its Type and
// so can be deserialized without knowing the concrete list type
// beforehand.
func NewConfigList(
	Layers [][]int,
	Biases [][]bool,
	Activations [][]*network.Activation,
	InitWFn []*initwfn.InitWFn,
	Solver []*solver.Solver,
	ValueCoef []float64,
	EntropyCoef []float64,
	EpochLength []int,
	FinishEpisodeOnEpochEnd []bool,
	Lambda []float64,
	Gamma []float64,
) agent.TypedConfigList {
	config := ConfigList{
		Layers:      Layers,
		Biases:      Biases,
		Activations: Activations,

		InitWFn: InitWFn,
		Solver:  Solver,

		ValueCoef:   ValueCoef,
		EntropyCoef: EntropyCoef,

		EpochLength:             EpochLength,
		FinishEpisodeOnEpochEnd: FinishEpisodeOnEpochEnd,

		Lambda: Lambda,
		Gamma:  Gamma,
	}

	return agent.NewTypedConfigList(config)
}

// Type returns the agent.Type of the Configs the list enumerates
func (c ConfigList) Type() agent.Type {
	return c.Config().Type()
}

// NumFields returns how many hyperparameter fields the list sweeps
// over
func (c ConfigList) NumFields() int {
	rValue := reflect.ValueOf(c)
	return rValue.NumField()
}

// Config returns an empty Config of the concrete type the list
// enumerates
func (c ConfigList) Config() agent.Config {
	return Config{}
}

// Len returns how many distinct Configs the list enumerates
func (c ConfigList) Len() int {
	return len(c.Layers) * len(c.Biases) * len(c.Activations) *
		len(c.InitWFn) * len(c.Solver) * len(c.ValueCoef) *
		len(c.EntropyCoef) * len(c.EpochLength) *
		len(c.FinishEpisodeOnEpochEnd) * len(c.Lambda) * len(c.Gamma)
}

// Config fully specifies an advantage actor critic agent with a
// discrete, softmax policy. The policy and the state value function
// are predicted by separate heads of a single neural network, and both
// heads are updated together by a single gradient step on the composed
// loss.
type Config struct {
	// Actor critic neural net
	Layers      []int
	Biases      []bool
	Activations []*network.Activation

	// Weight initialization for the network
	InitWFn *initwfn.InitWFn

	Solver *solver.Solver

	// Coefficients weighing the value loss and entropy bonus against
	// the policy gradient loss
	ValueCoef   float64
	EntropyCoef float64

	EpochLength int

	// FinishEpisodeOnEpochEnd controls what happens when an epoch ends
	// in the middle of an episode. When true, the interrupted episode
	// is played out to completion after the update, and only then does
	// the next epoch begin collecting. When false, the next epoch
	// begins at the very next timestep.
	FinishEpisodeOnEpochEnd bool

	// GAE(λ) advantage estimation
	Lambda float64
	Gamma  float64

	// Loss overrides the objective that the agent minimizes. If nil,
	// the advantage actor critic objective constructed by loss.AAC
	// with the ValueCoef and EntropyCoef fields is used.
	Loss loss.Builder `json:"-"`
}

// BatchSize returns the number of transitions in one update batch,
// which always equals the epoch length
func (c Config) BatchSize() int {
	return c.EpochLength
}

// Validate checks the Config's settings for consistency
func (c Config) Validate() error {
	if c.EpochLength <= 0 {
		return fmt.Errorf("epoch length must be positive \n\twant(> 0)"+
			"\n\thave(%v)", c.EpochLength)
	}
	if len(c.Layers) != len(c.Biases) ||
		len(c.Layers) != len(c.Activations) {
		return fmt.Errorf("invalid number of layers, biases, or "+
			"activations \n\tlayers(%v) \n\tbiases(%v) \n\tactivations(%v)",
			len(c.Layers), len(c.Biases), len(c.Activations))
	}
	if c.Gamma < 0 || c.Gamma > 1 {
		return fmt.Errorf("discount must be between 0 and 1 \n\thave(%v)",
			c.Gamma)
	}
	if c.Lambda < 0 || c.Lambda > 1 {
		return fmt.Errorf("gae lambda must be between 0 and 1 \n\thave(%v)",
			c.Lambda)
	}
	if c.InitWFn == nil {
		return fmt.Errorf("no weight initializer given")
	}
	if c.Solver == nil {
		return fmt.Errorf("no solver given")
	}
	return nil
}

// Type returns the agent.Type that the Config configures
func (c Config) Type() agent.Type {
	return agent.CategoricalAACMLP
}

// ValidAgent returns whether the Config can configure a's concrete
// type
func (c Config) ValidAgent(a agent.Agent) bool {
	switch a.(type) {
	case *AAC:
		return true
	}
	return false
}

// CreateAgent constructs the configured agent on the environment e
func (c Config) CreateAgent(e env.Environment, seed uint64) (agent.Agent,
	error) {
	return New(e, c, seed)
}

// lossBuilder returns the builder for the objective that the
// configured agent minimizes
func (c Config) lossBuilder() loss.Builder {
	if c.Loss != nil {
		return c.Loss
	}
	return loss.AAC(c.ValueCoef, c.EntropyCoef)
}
