package environment

import (
	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/stat/distmv"
)

// UniformStarter samples starting states uniformly from a hyper-cube
// of legal starting states
type UniformStarter struct {
	dist *distmv.Uniform
	dims int
}

// NewUniformStarter returns a new UniformStarter which samples starting
// state features uniformly from the intervals given by bounds
func NewUniformStarter(bounds []r1.Interval, seed uint64) UniformStarter {
	return UniformStarter{
		dist: distmv.NewUniform(bounds, rand.NewSource(seed)),
		dims: len(bounds),
	}
}

// Start samples and returns a starting state
func (u UniformStarter) Start() mat.Vector {
	return mat.NewVecDense(u.dims, u.dist.Rand(nil))
}
