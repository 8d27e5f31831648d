// Package rollout implements an on-policy trajectory buffer with
// generalized advantage estimation.
package rollout

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/encrush/btgym/utils/matutils"
)

// Buffer accumulates the transitions of one training epoch and
// computes forward view generalized advantage estimates, GAE(λ) of
// https://arxiv.org/abs/1506.02438, over the finished trajectories.
// The advantage calculation is adapted from OpenAI's SpinningUp:
//
// https://github.com/openai/spinningup/tree/master/spinup/algos/tf1/vpg
//
// Alongside each transition the Buffer stores an advised action
// distribution, so that imitation objectives can be computed over the
// same batches as the policy gradient objective.
type Buffer struct {
	obsDim   int // length of one observation vector
	actDim   int // length of one action distribution
	capacity int

	next      int // index the next transition is written at
	pathStart int // index where the in-progress trajectory began

	lambda float64 // GAE(λ) decay
	gamma  float64 // discount, overriding the environment's

	obsBuffer    []float64
	actBuffer    []float64
	adviceBuffer []float64
	advBuffer    []float64
	rewBuffer    []float64
	retBuffer    []float64
	valBuffer    []float64
}

// New returns an empty Buffer holding up to size transitions. Advised
// action distributions share the action dimensionality actDim.
func New(obsDim, actDim, size int, lambda, gamma float64) *Buffer {
	return &Buffer{
		obsDim:       obsDim,
		actDim:       actDim,
		capacity:     size,
		lambda:       lambda,
		gamma:        gamma,
		obsBuffer:    make([]float64, size*obsDim),
		actBuffer:    make([]float64, size*actDim),
		adviceBuffer: make([]float64, size*actDim),
		advBuffer:    make([]float64, size),
		rewBuffer:    make([]float64, size),
		retBuffer:    make([]float64, size),
		valBuffer:    make([]float64, size),
	}
}

// Store records one transition. The advice argument holds the advised
// action distribution for the stored state and may be nil, in which
// case zeros are recorded in its place.
func (b *Buffer) Store(obs, act, advice []float64, rew, val float64) error {
	if b.next >= b.capacity {
		return fmt.Errorf("store: buffer at capacity")
	}
	if len(obs) != b.obsDim {
		return fmt.Errorf("store: illegal observation length "+
			"\n\twant(%v)\n\thave(%v)", b.obsDim, len(obs))
	}
	if len(act) != b.actDim {
		return fmt.Errorf("store: illegal action length "+
			"\n\twant(%v)\n\thave(%v)", b.actDim, len(act))
	}
	if advice != nil && len(advice) != b.actDim {
		return fmt.Errorf("store: illegal advice length "+
			"\n\twant(%v)\n\thave(%v)", b.actDim, len(advice))
	}

	start := b.next * b.obsDim
	copy(b.obsBuffer[start:start+b.obsDim], obs)

	start = b.next * b.actDim
	stop := start + b.actDim
	copy(b.actBuffer[start:stop], act)
	if advice != nil {
		copy(b.adviceBuffer[start:stop], advice)
	} else {
		for i := start; i < stop; i++ {
			b.adviceBuffer[i] = 0
		}
	}

	b.rewBuffer[b.next] = rew
	b.valBuffer[b.next] = val
	b.next++
	return nil
}

// FinishPath closes the in-progress trajectory, filling in its
// advantage estimates and rewards-to-go.
//
// Pass lastVal = 0 when the trajectory ended in a terminal state. When
// the trajectory was cut off, by an epoch ending or an episode step
// limit, lastVal should instead be the value estimate of the final
// state, which bootstraps both calculations past the cutoff.
func (b *Buffer) FinishPath(lastVal float64) {
	start := b.pathStart
	stop := b.next

	rew := make([]float64, stop-start+1)
	copy(rew, b.rewBuffer[start:stop])
	rew[len(rew)-1] = lastVal

	val := make([]float64, stop-start+1)
	copy(val, b.valBuffer[start:stop])
	val[len(val)-1] = lastVal

	// TD residuals r + ℽv(s') - v(s), summed with discount ℽλ into
	// the GAE(λ) advantages.
	n := len(val) - 1
	vals := mat.NewVecDense(n, val[:n])
	nextVals := mat.NewVecDense(n, val[1:])
	rewVec := mat.NewVecDense(n, rew[:n])

	deltas := mat.NewVecDense(n, nil)
	deltas.AddScaledVec(rewVec, b.gamma, nextVals)
	deltas.SubVec(deltas, vals)

	copy(b.advBuffer[start:stop], discountCumSum(deltas, b.gamma*b.lambda))

	// Rewards-to-go are the critic's regression targets.
	rewVec = mat.NewVecDense(len(rew), rew)
	toGo := discountCumSum(rewVec, b.gamma)
	copy(b.retBuffer[start:stop], toGo[:len(toGo)-1])

	b.pathStart = b.next
}

// Get empties the Buffer, returning the stored observations, actions,
// advantages, returns, and advised action distributions. Advantages
// are standardized to mean 0 and unit variance before being returned.
func (b *Buffer) Get() ([]float64, []float64, []float64, []float64,
	[]float64, error) {
	if b.next != b.capacity {
		err := fmt.Errorf("get: buffer not yet full")
		return nil, nil, nil, nil, nil, err
	}

	b.next = 0
	b.pathStart = 0

	// Standardize advantages.
	adv := mat.NewVecDense(len(b.advBuffer), b.advBuffer)
	ones := matutils.VecOnes(adv.Len())
	mean := stat.Mean(b.advBuffer, nil)
	std := stat.StdDev(b.advBuffer, nil) + 1e-8
	stdVec := mat.NewVecDense(adv.Len(), nil)
	stdVec.AddScaledVec(stdVec, std, ones)

	adv.AddScaledVec(adv, -mean, ones)
	adv.DivElemVec(adv, stdVec)

	return b.obsBuffer, b.actBuffer, adv.RawVector().Data, b.retBuffer,
		b.adviceBuffer, nil
}

// discountCumSum returns the discounted cumulative sum of the vector
// x. Element i of the result equals x_i + ℽ x_(i+1) + ℽ² x_(i+2) and
// so on through the final element, where ℽ is the discount.
func discountCumSum(x *mat.VecDense, discount float64) []float64 {
	n := x.Len()
	weights := mat.NewVecDense(n, nil)
	scaled := mat.NewVecDense(n, nil)
	data := scaled.RawVector().Data
	sums := make([]float64, n)

	for i := 0; i < n; i++ {
		weights.ScaleVec(discount, weights)
		weights.SetVec(n-i-1, 1)

		scaled.MulElemVec(weights, x)
		sums[n-i-1] = floats.Sum(data[n-i-1:])
	}

	return sums
}
