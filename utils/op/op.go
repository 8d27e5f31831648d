// Package op provides graph operations missing from Gorgonia.
//
// Adapted from aunum/gold on GitHub
package op

import (
	G "gorgonia.org/gorgonia"
)

// LogSumExp computes log(sum(exp(logits))) along the given axis,
// subtracting the row maximum first for numerical stability.
//
// Gorgonia's own LogSumExp applies the log before the final sum, so
// it cannot be used here.
func LogSumExp(logits *G.Node, along int) *G.Node {
	max := G.Must(G.Max(logits, along))

	exponent := G.Must(G.BroadcastSub(logits, max, nil, []byte{1}))
	exponent = G.Must(G.Exp(exponent))

	sum := G.Must(G.Sum(exponent, along))
	log := G.Must(G.Log(sum))

	return G.Must(G.Add(max, log))
}

// LogSoftmax calculates the log softmax of a matrix of logits along
// the given axis in a numerically stable way. The rows of the logits
// matrix index samples in the batch and the columns index categories.
func LogSoftmax(logits *G.Node, along int) *G.Node {
	logSumExp := LogSumExp(logits, along)

	return G.Must(G.BroadcastSub(logits, logSumExp, nil, []byte{1}))
}
