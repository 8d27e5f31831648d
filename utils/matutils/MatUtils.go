// Package matutils implements utility functions for working with
// gonum vectors
package matutils

import "gonum.org/v1/gonum/mat"

// VecOnes returns a vector of length elements, all set to 1
func VecOnes(length int) *mat.VecDense {
	ones := make([]float64, length)
	for i := range ones {
		ones[i] = 1
	}
	return mat.NewVecDense(length, ones)
}
