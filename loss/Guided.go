package loss

import (
	"fmt"

	"github.com/pkg/errors"
	G "gorgonia.org/gorgonia"

	"github.com/encrush/btgym/summary"
	"github.com/encrush/btgym/utils/op"
)

// Guided computes an imitation loss between on-policy action logits
// and advised action distributions. Gradients flow through the logits
// only: the advised distributions are treated as constants.
//
// The name parameter scopes the summary names of the loss. When
// verbose is false no summaries are returned.
type Guided func(piLogits, expertActions *G.Node, name string,
	verbose bool) (*G.Node, []*summary.Summary, error)

// Type selects one of the guided loss families
type Type string

const (
	CrossEntropy Type = "CrossEntropy"
	KL           Type = "KL"
	MSE          Type = "MSE"
)

// NewGuided returns the Guided loss of the given type
func NewGuided(t Type) (Guided, error) {
	switch t {
	case CrossEntropy:
		return GuidedCrossEntropy, nil
	case KL:
		return GuidedKL, nil
	case MSE:
		return GuidedMSE, nil
	}
	return nil, fmt.Errorf("newguided: no such guided loss type %v", t)
}

// GuidedCrossEntropy computes the mean cross entropy between advised
// action distributions and the policy distribution induced by
// piLogits.
func GuidedCrossEntropy(piLogits, expertActions *G.Node, name string,
	verbose bool) (*G.Node, []*summary.Summary, error) {
	if piLogits == nil || expertActions == nil {
		return nil, nil, errors.New("guidedcrossentropy: missing loss inputs")
	}

	logPi := op.LogSoftmax(piLogits, 1)

	weighted, err := G.HadamardProd(expertActions, logPi)
	if err != nil {
		return nil, nil, errors.Wrap(err, "guidedcrossentropy: could not "+
			"weight log probabilities by advised distributions")
	}
	perSample := G.Must(G.Sum(weighted, 1))
	crossEntropy := G.Must(G.Neg(G.Must(G.Mean(perSample))))

	var summaries []*summary.Summary
	if verbose {
		summaries = []*summary.Summary{
			summary.Scalar(fmt.Sprintf("%v/cross_entropy", name),
				crossEntropy),
			summary.Scalar(fmt.Sprintf("%v/expert_agreement", name),
				agreement(logPi, expertActions)),
		}
	}

	return crossEntropy, summaries, nil
}

// GuidedKL computes the mean Kullback-Leibler divergence from the
// policy distribution induced by piLogits to the advised action
// distributions.
func GuidedKL(piLogits, expertActions *G.Node, name string,
	verbose bool) (*G.Node, []*summary.Summary, error) {
	if piLogits == nil || expertActions == nil {
		return nil, nil, errors.New("guidedkl: missing loss inputs")
	}

	logPi := op.LogSoftmax(piLogits, 1)

	// Advised distributions may contain zeros
	safeExpert := G.Must(G.Add(expertActions, G.NewConstant(1e-8)))
	logExpert := G.Must(G.Log(safeExpert))

	logRatio, err := G.Sub(logExpert, logPi)
	if err != nil {
		return nil, nil, errors.Wrap(err, "guidedkl: could not compute log "+
			"ratio of advised to policy distributions")
	}
	weighted := G.Must(G.HadamardProd(expertActions, logRatio))
	perSample := G.Must(G.Sum(weighted, 1))
	kl := G.Must(G.Mean(perSample))

	var summaries []*summary.Summary
	if verbose {
		summaries = []*summary.Summary{
			summary.Scalar(fmt.Sprintf("%v/kl_divergence", name), kl),
			summary.Scalar(fmt.Sprintf("%v/expert_agreement", name),
				agreement(logPi, expertActions)),
		}
	}

	return kl, summaries, nil
}

// GuidedMSE computes the mean squared error between the policy
// distribution induced by piLogits and the advised action
// distributions.
func GuidedMSE(piLogits, expertActions *G.Node, name string,
	verbose bool) (*G.Node, []*summary.Summary, error) {
	if piLogits == nil || expertActions == nil {
		return nil, nil, errors.New("guidedmse: missing loss inputs")
	}

	logPi := op.LogSoftmax(piLogits, 1)
	probs := G.Must(G.Exp(logPi))

	diff, err := G.Sub(probs, expertActions)
	if err != nil {
		return nil, nil, errors.Wrap(err, "guidedmse: could not compare "+
			"policy and advised distributions")
	}
	mse := G.Must(G.Mean(G.Must(G.Square(diff))))

	var summaries []*summary.Summary
	if verbose {
		summaries = []*summary.Summary{
			summary.Scalar(fmt.Sprintf("%v/mse", name), mse),
			summary.Scalar(fmt.Sprintf("%v/expert_agreement", name),
				agreement(logPi, expertActions)),
		}
	}

	return mse, summaries, nil
}

// agreement returns the mean probability mass that the policy places
// on the advised action distributions
func agreement(logPi, expertActions *G.Node) *G.Node {
	probs := G.Must(G.Exp(logPi))
	overlap := G.Must(G.HadamardProd(probs, expertActions))
	perSample := G.Must(G.Sum(overlap, 1))
	return G.Must(G.Mean(perSample))
}
