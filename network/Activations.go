package network

import (
	"encoding/json"
	"fmt"

	G "gorgonia.org/gorgonia"
)

const (
	reluActivation     = "relu"
	tanhActivation     = "tanh"
	identityActivation = "identity"
	nilActivation      = "nil"
)

// Activation is an activation function for a network layer. The zero
// value is not a valid Activation; use one of the package level
// constructors.
type Activation struct {
	name string
}

// ReLU returns a rectified linear unit Activation
func ReLU() *Activation {
	return &Activation{reluActivation}
}

// TanH returns a hyperbolic tangent Activation
func TanH() *Activation {
	return &Activation{tanhActivation}
}

// Identity returns an identity Activation
func Identity() *Activation {
	return &Activation{identityActivation}
}

// Nil returns a nil Activation, which layers skip entirely
func Nil() *Activation {
	return &Activation{nilActivation}
}

// fwd applies the activation to a graph node
func (a *Activation) fwd(x *G.Node) (*G.Node, error) {
	switch a.name {
	case reluActivation:
		return G.Rectify(x)
	case tanhActivation:
		return G.Tanh(x)
	case identityActivation, nilActivation:
		return x, nil
	}
	return nil, fmt.Errorf("fwd: cannot apply %v activation", a)
}

// String implements the fmt.Stringer interface
func (a *Activation) String() string {
	return a.name
}

// IsIdentity returns whether the Activation is the identity function
func (a *Activation) IsIdentity() bool {
	return a.name == identityActivation
}

// IsNil returns whether the Activation is nil
func (a *Activation) IsNil() bool {
	return a.name == nilActivation
}

// GobEncode implements the gob.GobEncoder interface
func (a *Activation) GobEncode() ([]byte, error) {
	return []byte(a.name), nil
}

// GobDecode implements the gob.GobDecoder interface
func (a *Activation) GobDecode(encoded []byte) error {
	if err := a.setName(string(encoded)); err != nil {
		return fmt.Errorf("gobdecode: %v", err)
	}
	return nil
}

// MarshalJSON implements the json.Marshaler interface
func (a *Activation) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.name)
}

// UnmarshalJSON implements the json.Unmarshaler interface
func (a *Activation) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	if err := a.setName(name); err != nil {
		return fmt.Errorf("unmarshaljson: %v", err)
	}
	return nil
}

// setName sets the Activation's function, rejecting unknown names
func (a *Activation) setName(name string) error {
	switch name {
	case reluActivation, tanhActivation, identityActivation,
		nilActivation:
		a.name = name
		return nil
	}
	return fmt.Errorf("unknown activation %q", name)
}
