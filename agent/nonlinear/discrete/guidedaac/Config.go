package guidedaac

import (
	"fmt"
	"reflect"

	"github.com/encrush/btgym/agent"
	"github.com/encrush/btgym/agent/nonlinear/discrete/aac"
	env "github.com/encrush/btgym/environment"
	"github.com/encrush/btgym/initwfn"
	"github.com/encrush/btgym/loss"
	"github.com/encrush/btgym/network"
	"github.com/encrush/btgym/oracle"
	"github.com/encrush/btgym/render"
	"github.com/encrush/btgym/runner"
	"github.com/encrush/btgym/solver"
)

func init() {
	// Register the ConfigList type so that agent.TypedConfigList can
	// deserialize lists of this type.
	agent.Register(agent.GuidedAACMLP, func() agent.ConfigList {
		return &ConfigList{}
	})
}

// DefaultName is the name given to agents whose Config does not name
// them.
const DefaultName string = "GuidedA3C"

// defaultOracle parameterizes the advising oracle when a Config does
// not.
var defaultOracle = oracle.Config{
	Horizon:     8,
	Margin:      0.01,
	Window:      3,
	Temperature: 0.25,
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

	// Coefficients weighing the actor critic objective and the guided
	// imitation objective in the composed loss
	AACLambda    []float64
	GuidedLambda []float64

	// Guided loss variant to apply to the advised action
	// distributions
	ExpertLoss []loss.Type

	Oracle []oracle.Config

	Name []string
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
	AACLambda []float64,
	GuidedLambda []float64,
	ExpertLoss []loss.Type,
	Oracle []oracle.Config,
	Name []string,
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

		AACLambda:    AACLambda,
		GuidedLambda: GuidedLambda,
		ExpertLoss:   ExpertLoss,

		Oracle: Oracle,
		Name:   Name,
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
		len(c.FinishEpisodeOnEpochEnd) * len(c.Lambda) * len(c.Gamma) *
		len(c.AACLambda) * len(c.GuidedLambda) * len(c.ExpertLoss) *
		len(c.Oracle) * len(c.Name)
}

// Config fully specifies a guided advantage actor critic agent. The
// agent extends the base actor critic agent with an imitation
// objective: an oracle advises an action distribution for each step of
// an episode from the external price series alone, and the composed
// loss weighs the actor critic objective against a guided loss pulling
// the policy toward the advised distributions.
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

	// FinishEpisodeOnEpochEnd controls whether an episode interrupted
	// by an epoch ending is played out before the next epoch collects.
	// See the aac package for details.
	FinishEpisodeOnEpochEnd bool

	// GAE(λ) advantage estimation
	Lambda float64
	Gamma  float64

	// Coefficients weighing the actor critic objective and the guided
	// imitation objective in the composed loss. Neither coefficient
	// is defaulted, so a zero value genuinely removes the
	// corresponding term from the total loss.
	AACLambda    float64
	GuidedLambda float64

	// ExpertLoss selects the guided loss variant applied to the
	// advised action distributions. An empty value selects
	// loss.CrossEntropy.
	ExpertLoss loss.Type

	// Oracle parameterizes the advising oracle. A zero value selects
	// a default parameterization.
	Oracle oracle.Config

	// Name names the agent. Renders are saved under the name when no
	// render directory is set. An empty value selects DefaultName.
	Name string

	// AuxRenderModes selects the diagnostic strips drawn every
	// RenderEvery episodes. Rendering is disabled when no modes are
	// selected or when RenderEvery is not positive.
	AuxRenderModes []render.Mode
	RenderEvery    int
	RenderDir      string

	// GuidedLoss overrides the guided loss selected by ExpertLoss.
	// For serializable configurations, prefer ExpertLoss.
	GuidedLoss loss.Guided `json:"-"`

	// Runner constructs the collector for per-episode diagnostics. If
	// nil, runner.Verbose is used.
	Runner runner.Fn `json:"-"`
}

// BatchSize returns the number of transitions in one update batch,
// which always equals the epoch length
func (c Config) BatchSize() int {
	return c.EpochLength
}

// Validate checks the Config's settings for consistency
func (c Config) Validate() error {
	if err := c.baseConfig().Validate(); err != nil {
		return err
	}
	if c.GuidedLoss == nil {
		if _, err := loss.NewGuided(c.expertLoss()); err != nil {
			return err
		}
	}
	if err := c.oracleConfig().Validate(); err != nil {
		return err
	}
	if c.RenderEvery < 0 {
		return fmt.Errorf("render interval cannot be negative "+
			"\n\thave(%v)", c.RenderEvery)
	}
	return nil
}

// Type returns the agent.Type that the Config configures
func (c Config) Type() agent.Type {
	return agent.GuidedAACMLP
}

// ValidAgent returns whether the Config can configure a's concrete
// type
func (c Config) ValidAgent(a agent.Agent) bool {
	switch a.(type) {
	case *GuidedAAC:
		return true
	}
	return false
}

// CreateAgent constructs the configured agent on the environment e
func (c Config) CreateAgent(e env.Environment, seed uint64) (agent.Agent,
	error) {
	return New(e, c, seed)
}

// baseConfig returns the configuration of the base actor critic agent
// that the guided agent extends
func (c Config) baseConfig() aac.Config {
	return aac.Config{
		Layers:      c.Layers,
		Biases:      c.Biases,
		Activations: c.Activations,

		InitWFn: c.InitWFn,
		Solver:  c.Solver,

		ValueCoef:   c.ValueCoef,
		EntropyCoef: c.EntropyCoef,

		EpochLength:             c.EpochLength,
		FinishEpisodeOnEpochEnd: c.FinishEpisodeOnEpochEnd,

		Lambda: c.Lambda,
		Gamma:  c.Gamma,
	}
}

// expertLoss returns the guided loss variant that the configuration
// selects
func (c Config) expertLoss() loss.Type {
	if c.ExpertLoss == "" {
		return loss.CrossEntropy
	}
	return c.ExpertLoss
}

// guidedLoss returns the guided loss that the configured agent trains
// with
func (c Config) guidedLoss() (loss.Guided, error) {
	if c.GuidedLoss != nil {
		return c.GuidedLoss, nil
	}
	return loss.NewGuided(c.expertLoss())
}

// oracleConfig returns the parameterization of the advising oracle
func (c Config) oracleConfig() oracle.Config {
	if c.Oracle == (oracle.Config{}) {
		return defaultOracle
	}
	return c.Oracle
}

// name returns the name of the configured agent
func (c Config) name() string {
	if c.Name == "" {
		return DefaultName
	}
	return c.Name
}

// runnerFn returns the constructor for the configured agent's episode
// diagnostics collector
func (c Config) runnerFn() runner.Fn {
	if c.Runner == nil {
		return runner.Verbose
	}
	return c.Runner
}
