package environment

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// SpecType enumerates the kinds of data a Spec can describe: actions,
// observations, discounts, and rewards
type SpecType int

const (
	Action SpecType = iota
	Observation
	Discount
	Reward
)

// Cardinality denotes whether described values are discrete or
// continuous
type Cardinality string

const (
	Continuous Cardinality = "Continuous"
	Discrete   Cardinality = "Discrete"
)

// Spec records the shape, bounds, and cardinality of one kind of data
// in an environment, such as its actions or observations
type Spec struct {
	Shape      mat.Vector
	Type       SpecType
	LowerBound mat.Vector
	UpperBound mat.Vector
	Cardinality
}

// NewSpec constructs the specification of data with the given shape,
// bounded element-wise between lowerBound and upperBound. The t
// argument selects which kind of data is being described, and the
// cardinality argument whether that data is discrete or continuous.
func NewSpec(shape mat.Vector, t SpecType, lowerBound,
	upperBound mat.Vector, cardinality Cardinality) Spec {
	if shape.Len() != lowerBound.Len() || shape.Len() != upperBound.Len() {
		panic(fmt.Sprintf("newspec: bounds must match shape length %v"+
			"\n\thave(%v, %v)", shape.Len(), lowerBound.Len(),
			upperBound.Len()))
	}
	return Spec{shape, t, lowerBound, upperBound, cardinality}
}
