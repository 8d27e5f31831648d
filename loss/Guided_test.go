package loss

import (
	"math"
	"testing"

	G "gorgonia.org/gorgonia"

	"github.com/encrush/btgym/summary"
)

func TestNewGuidedSelectsLossFamily(t *testing.T) {
	for _, lossType := range []Type{CrossEntropy, KL, MSE} {
		guided, err := NewGuided(lossType)
		if err != nil {
			t.Errorf("could not create guided loss %v: %v", lossType, err)
		}
		if guided == nil {
			t.Errorf("no guided loss returned for type %v", lossType)
		}
	}

	if _, err := NewGuided(Type("NoSuchLoss")); err == nil {
		t.Error("expected an error for an unknown guided loss type")
	}
}

func TestGuidedCrossEntropy(t *testing.T) {
	g := G.NewGraph()
	logits := matrixNode(g, "logits", 2, 2, []float64{0, 0, 0, 0})
	expert := matrixNode(g, "expert", 2, 2, []float64{1, 0, 0.5, 0.5})

	ce, summaries, err := GuidedCrossEntropy(logits, expert, "test", true)
	if err != nil {
		t.Fatal(err)
	}
	run(t, g)

	// Every log probability under uniform logits is ln(0.5), so the
	// cross entropy of any advised distribution is ln(2)
	if have := scalarValue(t, ce); math.Abs(have-math.Ln2) > tolerance {
		t.Errorf("incorrect cross entropy \n\twant(%v)\n\thave(%v)",
			math.Ln2, have)
	}

	values := summary.Values(summaries)
	if have := values["test/cross_entropy"]; math.Abs(have-math.Ln2) >
		tolerance {
		t.Errorf("incorrect cross entropy summary \n\twant(%v)"+
			"\n\thave(%v)", math.Ln2, have)
	}
	if have := values["test/expert_agreement"]; math.Abs(have-0.5) >
		tolerance {
		t.Errorf("incorrect agreement summary \n\twant(%v)\n\thave(%v)",
			0.5, have)
	}
}

func TestGuidedCrossEntropyRewardsAgreement(t *testing.T) {
	crossEntropy := func(expertRow []float64) float64 {
		g := G.NewGraph()
		logits := matrixNode(g, "logits", 1, 2,
			[]float64{math.Log(3), 0})
		expert := matrixNode(g, "expert", 1, 2, expertRow)

		ce, _, err := GuidedCrossEntropy(logits, expert, "test", false)
		if err != nil {
			t.Fatal(err)
		}
		run(t, g)
		return scalarValue(t, ce)
	}

	aligned := crossEntropy([]float64{1, 0})
	opposed := crossEntropy([]float64{0, 1})
	if aligned >= opposed {
		t.Errorf("cross entropy should be lower when the policy agrees "+
			"with the advice \n\taligned(%v)\n\topposed(%v)", aligned,
			opposed)
	}
}

func TestGuidedCrossEntropyVerbosity(t *testing.T) {
	g := G.NewGraph()
	logits := matrixNode(g, "logits", 1, 2, []float64{0, 0})
	expert := matrixNode(g, "expert", 1, 2, []float64{1, 0})

	_, summaries, err := GuidedCrossEntropy(logits, expert, "test", false)
	if err != nil {
		t.Fatal(err)
	}
	if len(summaries) != 0 {
		t.Errorf("expected no summaries when not verbose, have %v",
			len(summaries))
	}
}

func TestGuidedKL(t *testing.T) {
	// The divergence of identical distributions is zero
	g := G.NewGraph()
	logits := matrixNode(g, "logits", 1, 2, []float64{0, 0})
	expert := matrixNode(g, "expert", 1, 2, []float64{0.5, 0.5})

	kl, _, err := GuidedKL(logits, expert, "test", false)
	if err != nil {
		t.Fatal(err)
	}
	run(t, g)
	if have := scalarValue(t, kl); math.Abs(have) > 1e-6 {
		t.Errorf("incorrect divergence of identical distributions "+
			"\n\twant(%v)\n\thave(%v)", 0.0, have)
	}

	// A degenerate advised distribution against a uniform policy
	// diverges by ln(2)
	g = G.NewGraph()
	logits = matrixNode(g, "logits", 1, 2, []float64{0, 0})
	expert = matrixNode(g, "expert", 1, 2, []float64{1, 0})

	kl, summaries, err := GuidedKL(logits, expert, "test", true)
	if err != nil {
		t.Fatal(err)
	}
	run(t, g)
	if have := scalarValue(t, kl); math.Abs(have-math.Ln2) > 1e-6 {
		t.Errorf("incorrect divergence \n\twant(%v)\n\thave(%v)",
			math.Ln2, have)
	}

	values := summary.Values(summaries)
	if have := values["test/kl_divergence"]; math.Abs(have-math.Ln2) >
		1e-6 {
		t.Errorf("incorrect divergence summary \n\twant(%v)\n\thave(%v)",
			math.Ln2, have)
	}
	if have := values["test/expert_agreement"]; math.Abs(have-0.5) >
		tolerance {
		t.Errorf("incorrect agreement summary \n\twant(%v)\n\thave(%v)",
			0.5, have)
	}
}

func TestGuidedMSE(t *testing.T) {
	g := G.NewGraph()
	logits := matrixNode(g, "logits", 2, 2, []float64{0, 0, 0, 0})
	expert := matrixNode(g, "expert", 2, 2, []float64{1, 0, 0.5, 0.5})

	mse, summaries, err := GuidedMSE(logits, expert, "test", true)
	if err != nil {
		t.Fatal(err)
	}
	run(t, g)

	// Probabilities are 0.5 everywhere. The first advised row is off by
	// 0.5 per action and the second matches exactly.
	expected := 0.125
	if have := scalarValue(t, mse); math.Abs(have-expected) > tolerance {
		t.Errorf("incorrect mse \n\twant(%v)\n\thave(%v)", expected, have)
	}

	values := summary.Values(summaries)
	if have := values["test/mse"]; math.Abs(have-expected) > tolerance {
		t.Errorf("incorrect mse summary \n\twant(%v)\n\thave(%v)",
			expected, have)
	}
	if have := values["test/expert_agreement"]; math.Abs(have-0.5) >
		tolerance {
		t.Errorf("incorrect agreement summary \n\twant(%v)\n\thave(%v)",
			0.5, have)
	}
}

func TestGuidedLossesRequireInputs(t *testing.T) {
	guided := map[string]Guided{
		"cross entropy": GuidedCrossEntropy,
		"kl":            GuidedKL,
		"mse":           GuidedMSE,
	}
	for name, lossOf := range guided {
		if _, _, err := lossOf(nil, nil, "test", false); err == nil {
			t.Errorf("expected an error from the %v loss when inputs "+
				"are missing", name)
		}
	}
}
