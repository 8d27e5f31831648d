// Package solver wraps Gorgonia Solvers so that they can be JSON
// serialized into configuration files.
package solver

import (
	"encoding/json"
	"fmt"

	G "gorgonia.org/gorgonia"
)

// Type names a gradient descent algorithm. Serialized configurations
// carry their Type so that the concrete Config can be reconstructed
// on deserialization.
type Type string

// Available solver types
const (
	Adam    Type = "Adam"
	RMSProp Type = "RMSProp"
	Vanilla Type = "Vanilla"
)

// Config holds the hyperparameters of a single gradient descent
// algorithm and builds the solver they describe.
type Config interface {
	// Create builds the Gorgonia Solver from the Config's
	// hyperparameters
	Create() G.Solver

	// Type names the gradient descent algorithm the Config describes
	Type() Type
}

// configTypes maps each Type to a constructor of its concrete Config,
// for deserializing a Config without knowing its type beforehand
var configTypes = map[Type]func() Config{
	Adam:    func() Config { return &AdamConfig{} },
	RMSProp: func() Config { return &RMSPropConfig{} },
	Vanilla: func() Config { return &VanillaConfig{} },
}

// Solver packages a Gorgonia Solver together with the serializable
// Config that produced it, so configuration files can carry solvers
// by name.
type Solver struct {
	G.Solver `json:"-"`
	Type
	Config
}

// newSolver returns a new Solver wrapping the Gorgonia Solver that c
// describes
func newSolver(c Config) (*Solver, error) {
	return &Solver{Solver: c.Create(), Type: c.Type(), Config: c}, nil
}

// String implements the fmt.Stringer interface
func (s *Solver) String() string {
	return fmt.Sprintf("{%v Solver: %v}", s.Type, s.Config)
}

// UnmarshalJSON implements the json.Unmarshaler interface
func (s *Solver) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type   Type
		Config json.RawMessage
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	newConfig, ok := configTypes[raw.Type]
	if !ok {
		return fmt.Errorf("unmarshaljson: unknown Solver type %q",
			raw.Type)
	}

	config := newConfig()
	if len(raw.Config) > 0 {
		if err := json.Unmarshal(raw.Config, config); err != nil {
			return err
		}
	}

	s.Type = raw.Type
	s.Config = config
	s.Solver = config.Create()
	return nil
}
