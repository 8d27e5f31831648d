package guidedaac

import (
	"errors"
	"math"
	"testing"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"github.com/encrush/btgym/environment"
	"github.com/encrush/btgym/environment/envconfig"
	"github.com/encrush/btgym/initwfn"
	"github.com/encrush/btgym/loss"
	"github.com/encrush/btgym/network"
	"github.com/encrush/btgym/solver"
	"github.com/encrush/btgym/summary"
)

// scalarLoss returns a Builder that ignores its inputs and produces a
// fixed scalar loss with the given summaries
func scalarLoss(g *G.ExprGraph, value float64,
	names ...string) loss.Builder {
	return func(loss.Inputs) (*G.Node, []*summary.Summary, error) {
		node := G.NewScalar(g, tensor.Float64, G.WithName("stub_base"),
			G.WithValue(value))

		var summaries []*summary.Summary
		for _, name := range names {
			summaries = append(summaries, summary.Scalar(name, node))
		}
		return node, summaries, nil
	}
}

// scalarGuided returns a Guided loss that ignores its inputs and
// produces a fixed scalar loss with the given summaries
func scalarGuided(g *G.ExprGraph, value float64,
	names ...string) loss.Guided {
	return func(piLogits, expertActions *G.Node, name string,
		verbose bool) (*G.Node, []*summary.Summary, error) {
		node := G.NewScalar(g, tensor.Float64, G.WithName("stub_guided"),
			G.WithValue(value))

		var summaries []*summary.Summary
		for _, sumName := range names {
			summaries = append(summaries, summary.Scalar(sumName, node))
		}
		return node, summaries, nil
	}
}

func TestComposedLossWeighsObjectives(t *testing.T) {
	cases := []struct {
		base         float64
		guided       float64
		aacLambda    float64
		guidedLambda float64
	}{
		{base: 2.0, guided: 3.0, aacLambda: 0.25, guidedLambda: 1.5},
		{base: 2.0, guided: 3.0, aacLambda: 1.0, guidedLambda: 1.0},
		{base: -1.5, guided: 0.5, aacLambda: 0.9, guidedLambda: 0.1},
		{base: 2.0, guided: 3.0, aacLambda: 0.0, guidedLambda: 2.0},
		{base: 2.0, guided: 3.0, aacLambda: 2.0, guidedLambda: 0.0},
	}

	for _, c := range cases {
		g := G.NewGraph()
		builder := ComposedLoss(scalarLoss(g, c.base),
			scalarGuided(g, c.guided), c.aacLambda, c.guidedLambda)

		total, _, err := builder(loss.Inputs{})
		if err != nil {
			t.Fatalf("could not build composed loss: %v", err)
		}

		vm := G.NewTapeMachine(g)
		if err := vm.RunAll(); err != nil {
			t.Fatalf("could not run composed loss: %v", err)
		}

		want := c.aacLambda*c.base + c.guidedLambda*c.guided
		have := total.Value().Data().(float64)
		if math.Abs(want-have) > 1e-12 {
			t.Errorf("unexpected composed loss \n\twant(%v)\n\thave(%v)",
				want, have)
		}
		vm.Close()
	}
}

func TestComposedLossMergesSummariesInOrder(t *testing.T) {
	g := G.NewGraph()
	builder := ComposedLoss(
		scalarLoss(g, 1.0, "policy_loss", "value_loss", "policy_entropy"),
		scalarGuided(g, 2.0, "cross_entropy", "expert_agreement"),
		1.0, 1.0,
	)

	_, summaries, err := builder(loss.Inputs{})
	if err != nil {
		t.Fatalf("could not build composed loss: %v", err)
	}

	want := []string{"policy_loss", "value_loss", "policy_entropy",
		"cross_entropy", "expert_agreement"}
	if len(summaries) != len(want) {
		t.Fatalf("unexpected number of summaries \n\twant(%v)\n\thave(%v)",
			len(want), len(summaries))
	}
	for i, name := range want {
		if summaries[i].Name() != name {
			t.Errorf("unexpected summary at %v \n\twant(%v)\n\thave(%v)",
				i, name, summaries[i].Name())
		}
	}
}

func TestComposedLossInvokesGuidedLossOnPolicy(t *testing.T) {
	g := G.NewGraph()

	var gotName string
	var gotVerbose bool
	guided := func(piLogits, expertActions *G.Node, name string,
		verbose bool) (*G.Node, []*summary.Summary, error) {
		gotName = name
		gotVerbose = verbose
		node := G.NewScalar(g, tensor.Float64, G.WithName("stub_guided"),
			G.WithValue(1.0))
		return node, nil, nil
	}

	builder := ComposedLoss(scalarLoss(g, 1.0), guided, 1.0, 1.0)
	if _, _, err := builder(loss.Inputs{}); err != nil {
		t.Fatalf("could not build composed loss: %v", err)
	}

	if gotName != "on_policy" {
		t.Errorf("unexpected guided loss name \n\twant(on_policy)"+
			"\n\thave(%v)", gotName)
	}
	if !gotVerbose {
		t.Error("guided loss was not invoked verbosely")
	}
}

func TestComposedLossPropagatesBaseError(t *testing.T) {
	g := G.NewGraph()
	cause := errors.New("base objective unavailable")

	base := func(loss.Inputs) (*G.Node, []*summary.Summary, error) {
		return nil, nil, cause
	}
	guidedCalled := false
	guided := func(piLogits, expertActions *G.Node, name string,
		verbose bool) (*G.Node, []*summary.Summary, error) {
		guidedCalled = true
		node := G.NewScalar(g, tensor.Float64, G.WithName("stub_guided"),
			G.WithValue(1.0))
		return node, nil, nil
	}

	_, _, err := ComposedLoss(base, guided, 1.0, 1.0)(loss.Inputs{})
	if err != cause {
		t.Errorf("base error did not propagate unchanged "+
			"\n\twant(%v)\n\thave(%v)", cause, err)
	}
	if guidedCalled {
		t.Error("guided loss was invoked after the base objective failed")
	}
}

func TestComposedLossPropagatesGuidedError(t *testing.T) {
	g := G.NewGraph()
	cause := errors.New("guided objective unavailable")

	guided := func(piLogits, expertActions *G.Node, name string,
		verbose bool) (*G.Node, []*summary.Summary, error) {
		return nil, nil, cause
	}

	_, _, err := ComposedLoss(scalarLoss(g, 1.0), guided, 1.0, 1.0)(
		loss.Inputs{})
	if err != cause {
		t.Errorf("guided error did not propagate unchanged "+
			"\n\twant(%v)\n\thave(%v)", cause, err)
	}
}

// newTestConfig returns a valid configuration for a small agent
func newTestConfig(t *testing.T) Config {
	t.Helper()

	init, err := initwfn.NewGlorotU(1.0)
	if err != nil {
		t.Fatalf("could not create weight initializer: %v", err)
	}
	sol, err := solver.NewDefaultAdam(1e-3, 1)
	if err != nil {
		t.Fatalf("could not create solver: %v", err)
	}

	return Config{
		Layers:      []int{8},
		Biases:      []bool{true},
		Activations: []*network.Activation{network.ReLU()},
		InitWFn:     init,
		Solver:      sol,

		ValueCoef:   0.5,
		EntropyCoef: 0.01,
		EpochLength: 8,
		Lambda:      0.95,
		Gamma:       0.99,

		AACLambda:    1.0,
		GuidedLambda: 0.5,
		ExpertLoss:   loss.CrossEntropy,
	}
}

// newTestEnv returns a small market environment
func newTestEnv(t *testing.T, seed uint64) environment.Environment {
	t.Helper()

	conf := envconfig.NewConfig(envconfig.SpotMarket, envconfig.Profit, 32,
		0.99)
	env, _, err := conf.CreateEnv(seed)
	if err != nil {
		t.Fatalf("could not create environment: %v", err)
	}
	return env
}

func TestNewConstructsAgent(t *testing.T) {
	var seed uint64 = 42
	env := newTestEnv(t, seed)

	agent, err := New(env, newTestConfig(t), seed)
	if err != nil {
		t.Fatalf("could not create agent: %v", err)
	}
	defer agent.Close()

	if agent.Name() != DefaultName {
		t.Errorf("unexpected default agent name \n\twant(%v)\n\thave(%v)",
			DefaultName, agent.Name())
	}
	if agent.Episodes() != 0 {
		t.Errorf("fresh agent has completed episodes \n\thave(%v)",
			agent.Episodes())
	}
	if agent.CompletedEpochs() != 0 {
		t.Errorf("fresh agent has completed epochs \n\thave(%v)",
			agent.CompletedEpochs())
	}
	if !math.IsNaN(agent.Loss()) {
		t.Errorf("loss is defined before the first update \n\thave(%v)",
			agent.Loss())
	}

	summaries := agent.Summaries()
	if len(summaries) == 0 {
		t.Fatal("agent has no loss summaries")
	}
	if last := summaries[len(summaries)-1].Name(); last != "total_loss" {
		t.Errorf("unexpected final summary \n\twant(total_loss)\n\thave(%v)",
			last)
	}
	names := summary.Values(summaries)
	for _, name := range []string{"policy_loss", "value_loss",
		"on_policy/cross_entropy", "on_policy/expert_agreement"} {
		if _, ok := names[name]; !ok {
			t.Errorf("missing summary %v", name)
		}
	}
}

func TestNewWithFailingExpertLossReturnsConstructionError(t *testing.T) {
	var seed uint64 = 42
	env := newTestEnv(t, seed)

	cause := errors.New("expert loss unavailable")
	config := newTestConfig(t)
	config.GuidedLoss = func(piLogits, expertActions *G.Node, name string,
		verbose bool) (*G.Node, []*summary.Summary, error) {
		return nil, nil, cause
	}

	_, err := New(env, config, seed)
	if err == nil {
		t.Fatal("expected an error from a failing expert loss")
	}

	var cErr *ConstructionError
	if !errors.As(err, &cErr) {
		t.Fatalf("unexpected error type \n\twant(*ConstructionError)"+
			"\n\thave(%T)", err)
	}
	if cErr.Op != "create base agent" {
		t.Errorf("unexpected failing stage \n\twant(create base agent)"+
			"\n\thave(%v)", cErr.Op)
	}
	if !errors.Is(err, cause) {
		t.Error("original cause is not recoverable from the returned error")
	}
	if !IsConstructionError(err) {
		t.Error("IsConstructionError does not recognize the returned error")
	}
}

func TestNewWithInvalidConfigReturnsConstructionError(t *testing.T) {
	var seed uint64 = 42
	env := newTestEnv(t, seed)

	config := newTestConfig(t)
	config.EpochLength = 0

	_, err := New(env, config, seed)
	if err == nil {
		t.Fatal("expected an error from an invalid configuration")
	}

	var cErr *ConstructionError
	if !errors.As(err, &cErr) {
		t.Fatalf("unexpected error type \n\twant(*ConstructionError)"+
			"\n\thave(%T)", err)
	}
	if cErr.Op != "validate configuration" {
		t.Errorf("unexpected failing stage \n\twant(validate configuration)"+
			"\n\thave(%v)", cErr.Op)
	}
}

func TestNewWithUnknownExpertLossReturnsConstructionError(t *testing.T) {
	var seed uint64 = 42
	env := newTestEnv(t, seed)

	config := newTestConfig(t)
	config.ExpertLoss = loss.Type("NoSuchLoss")

	_, err := New(env, config, seed)
	if err == nil {
		t.Fatal("expected an error from an unknown expert loss type")
	}
	if !IsConstructionError(err) {
		t.Errorf("unexpected error type \n\twant(*ConstructionError)"+
			"\n\thave(%T)", err)
	}
}

func TestAgentLearnsOverEpochs(t *testing.T) {
	var seed uint64 = 91
	env := newTestEnv(t, seed)

	config := newTestConfig(t)
	agent, err := New(env, config, seed)
	if err != nil {
		t.Fatalf("could not create agent: %v", err)
	}
	defer agent.Close()

	// Run episodes until the first epoch completes. Each observed
	// timestep stores one transition, so the first update happens
	// after exactly EpochLength observations.
	steps := 0
	for episode := 0; episode < 8 && agent.CompletedEpochs() < 1; episode++ {
		step, err := env.Reset()
		if err != nil {
			t.Fatalf("could not reset environment: %v", err)
		}
		if err := agent.ObserveFirst(step); err != nil {
			t.Fatalf("could not observe first timestep: %v", err)
		}

		for !step.Last() && agent.CompletedEpochs() < 1 {
			action := agent.SelectAction(step)
			step, _, err = env.Step(action)
			if err != nil {
				t.Fatalf("could not step environment: %v", err)
			}
			if err := agent.Observe(action, step); err != nil {
				t.Fatalf("could not observe timestep: %v", err)
			}
			if err := agent.Step(); err != nil {
				t.Fatalf("could not step agent: %v", err)
			}
			steps++
		}
		if step.Last() {
			agent.EndEpisode()
		}
	}

	if agent.CompletedEpochs() != 1 {
		t.Fatalf("unexpected number of completed epochs after %v steps "+
			"\n\twant(1)\n\thave(%v)", steps, agent.CompletedEpochs())
	}
	if steps != config.EpochLength {
		t.Errorf("unexpected number of steps to complete an epoch "+
			"\n\twant(%v)\n\thave(%v)", config.EpochLength, steps)
	}
	if math.IsNaN(agent.Loss()) {
		t.Error("loss is undefined after an update")
	}

	values := summary.Values(agent.Summaries())
	for name, value := range values {
		if math.IsNaN(value) {
			t.Errorf("summary %v is undefined after an update", name)
		}
	}
}
