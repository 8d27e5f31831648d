// Package initwfn wraps Gorgonia weight initialization functions so
// that they can be JSON serialized into configuration files.
package initwfn

import (
	"encoding/json"
	"fmt"

	G "gorgonia.org/gorgonia"
)

// Type names a weight initialization scheme. Serialized
// configurations carry their Type so that the concrete Config can be
// reconstructed on deserialization.
type Type string

// Available InitWFn types
const (
	GlorotU  Type = "GlorotU"
	GlorotN  Type = "GlorotN"
	HeU      Type = "HeU"
	HeN      Type = "HeN"
	Zeroes   Type = "Zeroes"
	Ones     Type = "Ones"
	Constant Type = "Constant"
	Uniform  Type = "Uniform"
	Gaussian Type = "Gaussian"
)

// Config holds the hyperparameters of a single weight initialization
// scheme and builds the initializer they describe.
type Config interface {
	// Create builds the Gorgonia InitWFn from the Config's
	// hyperparameters
	Create() G.InitWFn

	// Type names the initialization scheme the Config describes
	Type() Type
}

// configTypes maps each Type to a constructor of its concrete Config,
// for deserializing a Config without knowing its type beforehand
var configTypes = map[Type]func() Config{
	GlorotU:  func() Config { return &GlorotUConfig{} },
	GlorotN:  func() Config { return &GlorotNConfig{} },
	HeU:      func() Config { return &HeUConfig{} },
	HeN:      func() Config { return &HeNConfig{} },
	Zeroes:   func() Config { return &ZeroesConfig{} },
	Ones:     func() Config { return &OnesConfig{} },
	Constant: func() Config { return &ConstantConfig{} },
	Uniform:  func() Config { return &UniformConfig{} },
	Gaussian: func() Config { return &GaussianConfig{} },
}

// InitWFn packages a Gorgonia weight initializer together with the
// serializable Config that produced it, so configuration files can
// carry initializers by name.
type InitWFn struct {
	initWFn G.InitWFn
	Type
	Config
}

// newInitWFn returns a new InitWFn wrapping the Gorgonia InitWFn that
// c describes
func newInitWFn(c Config) (*InitWFn, error) {
	return &InitWFn{initWFn: c.Create(), Type: c.Type(), Config: c}, nil
}

// InitWFn unwraps and returns the Gorgonia weight initializer
func (w *InitWFn) InitWFn() G.InitWFn {
	return w.initWFn
}

// String implements the fmt.Stringer interface
func (w *InitWFn) String() string {
	return fmt.Sprintf("{%v InitWFn: %v}", w.Type, w.Config)
}

// UnmarshalJSON implements the json.Unmarshaler interface
func (w *InitWFn) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type   Type
		Config json.RawMessage
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	newConfig, ok := configTypes[raw.Type]
	if !ok {
		return fmt.Errorf("unmarshaljson: unknown InitWFn type %q",
			raw.Type)
	}

	config := newConfig()
	if len(raw.Config) > 0 {
		if err := json.Unmarshal(raw.Config, config); err != nil {
			return err
		}
	}

	w.Type = raw.Type
	w.Config = config
	w.initWFn = config.Create()
	return nil
}
