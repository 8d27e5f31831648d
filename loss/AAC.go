// Package loss assembles training objectives on Gorgonia
// computational graphs.
//
// Objectives are built from named input nodes rather than from
// concrete networks so that agents can compose them freely: a base
// actor critic objective can be combined with an imitation objective
// on the same graph, and the combined scalar differentiated once.
package loss

import (
	"github.com/pkg/errors"
	G "gorgonia.org/gorgonia"

	"github.com/encrush/btgym/summary"
	"github.com/encrush/btgym/utils/op"
)

// Inputs collects the graph nodes that training objectives are
// defined over. All nodes must live on the same graph.
type Inputs struct {
	// Logits holds the on-policy action logits with one row per
	// sample and one column per action
	Logits *G.Node

	// Actions holds the one-hot encoded actions that were taken,
	// with the same shape as Logits
	Actions *G.Node

	// Advantages holds one advantage estimate per sample
	Advantages *G.Node

	// Returns holds one empirical return per sample, shaped like
	// Value
	Returns *G.Node

	// Value holds the state value estimates with one row per sample
	// and a single column
	Value *G.Node

	// ExpertActions holds advised action distributions with the same
	// shape as Logits. It may be nil for objectives that do not use
	// advice.
	ExpertActions *G.Node
}

// Builder assembles a scalar training loss over the given inputs. The
// returned summaries describe the terms of the loss and are captured
// on every run of the graph.
type Builder func(in Inputs) (*G.Node, []*summary.Summary, error)

// AAC returns a Builder for the advantage actor critic objective: the
// policy gradient surrogate, plus valueCoef times the value function
// mean squared error, minus entropyCoef times the mean policy entropy.
func AAC(valueCoef, entropyCoef float64) Builder {
	return func(in Inputs) (*G.Node, []*summary.Summary, error) {
		if in.Logits == nil || in.Actions == nil || in.Advantages == nil ||
			in.Returns == nil || in.Value == nil {
			return nil, nil, errors.New("aac: missing loss inputs")
		}

		logPi := op.LogSoftmax(in.Logits, 1)

		// Log probabilities of the actions that were actually taken
		logPiTaken, err := G.HadamardProd(logPi, in.Actions)
		if err != nil {
			return nil, nil, errors.Wrap(err, "aac: could not select log "+
				"probabilities of taken actions")
		}
		logPiTaken = G.Must(G.Sum(logPiTaken, 1))

		weighted, err := G.HadamardProd(logPiTaken, in.Advantages)
		if err != nil {
			return nil, nil, errors.Wrap(err, "aac: could not weight log "+
				"probabilities by advantages")
		}
		policyLoss := G.Must(G.Neg(G.Must(G.Mean(weighted))))

		// Value function MSE
		valueError, err := G.Sub(in.Value, in.Returns)
		if err != nil {
			return nil, nil, errors.Wrap(err, "aac: could not compute value "+
				"estimation error")
		}
		valueLoss := G.Must(G.Mean(G.Must(G.Square(valueError))))

		// Mean policy entropy, used as an exploration bonus
		probs := G.Must(G.Exp(logPi))
		entropy := G.Must(G.HadamardProd(probs, logPi))
		entropy = G.Must(G.Neg(G.Must(G.Sum(entropy, 1))))
		entropy = G.Must(G.Mean(entropy))

		loss := G.Must(G.Add(
			policyLoss,
			G.Must(G.Mul(G.NewConstant(valueCoef), valueLoss)),
		))
		if entropyCoef != 0 {
			loss = G.Must(G.Sub(
				loss,
				G.Must(G.Mul(G.NewConstant(entropyCoef), entropy)),
			))
		}

		summaries := []*summary.Summary{
			summary.Scalar("policy_loss", policyLoss),
			summary.Scalar("value_loss", valueLoss),
			summary.Scalar("policy_entropy", entropy),
		}

		return loss, summaries, nil
	}
}
