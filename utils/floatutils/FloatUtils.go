// Package floatutils provides small helpers for float64 values and
// slices
package floatutils

import (
	"math"
)

// Clip clips value to the closed interval [min, max]
func Clip(value, min, max float64) float64 {
	if value > max {
		return max
	}
	if value < min {
		return min
	}
	return value
}

// MaxSlice returns the maximum value in values along with every index
// at which it occurs.
func MaxSlice(values []float64) (max float64, indices []int) {
	max, indices = values[0], []int{0}

	for i, value := range values {
		if value > max {
			max = value
			indices = []int{i}
		} else if value == max && i != 0 {
			indices = append(indices, i)
		}
	}
	return
}

// ArgMax returns the indices of the maximum value in a list. All
// indices at which the maximum value occurs are returned.
func ArgMax(floats ...float64) []int {
	_, indices := MaxSlice(floats)
	return indices
}

// Max returns the largest of floats
func Max(floats ...float64) float64 {
	max := floats[0]
	for _, val := range floats[1:] {
		if val > max {
			max = val
		}
	}
	return max
}

// Softmax computes the softmax distribution of values, scaled by the
// positive temperature tau. Lower temperatures concentrate the
// distribution on the maximal values, higher temperatures flatten it.
func Softmax(values []float64, tau float64) []float64 {
	probs := make([]float64, len(values))
	max := Max(values...)

	var total float64
	for i, value := range values {
		probs[i] = math.Exp((value - max) / tau)
		total += probs[i]
	}
	for i := range probs {
		probs[i] /= total
	}
	return probs
}
