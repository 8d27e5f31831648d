package agent

import (
	"fmt"
	"reflect"

	"github.com/encrush/btgym/environment"
)

// Config holds everything needed to construct one agent
type Config interface {
	// CreateAgent constructs the agent described by the Config on the
	// argument environment
	CreateAgent(env environment.Environment, seed uint64) (Agent, error)

	// ValidAgent returns whether the Config can configure agents of
	// the argument agent's concrete type
	ValidAgent(Agent) bool

	// Validate checks the Config's settings for consistency
	Validate() error

	// Type returns the type of agent that this Config describes
	Type() Type
}

// ConfigList represents a list of Config's. Instead of storing a
// slice of Config's, a ConfigList stores, for each hyperparameter
// field, the list of hyperparameter settings to use. The cross
// product of all such lists enumerates every Config in the
// ConfigList. Config's are accessed from a ConfigList with the
// package-level ConfigAt function.
type ConfigList interface {
	// Type returns the type of agent that configs in this list
	// describe
	Type() Type

	// NumFields returns the number of settable fields in the list
	NumFields() int

	// Len returns how many Config's the list enumerates
	Len() int

	// Config returns an empty Config of the same agent type as the
	// ConfigList
	Config() Config
}

// ConfigAt returns the Config at index i in the ConfigList. Configs
// are ordered by sweeping each hyperparameter list in sequence: the
// first list is swept fastest, the last slowest, so that index i is
// decoded as a mixed-radix number over the list lengths.
func ConfigAt(i int, list ConfigList) Config {
	if i < 0 || i >= list.Len() {
		panic(fmt.Sprintf("configAt: index out of range [%v] with length %v",
			i, list.Len()))
	}

	listValue := reflect.ValueOf(list)
	if listValue.Kind() == reflect.Ptr {
		listValue = listValue.Elem()
	}
	listType := listValue.Type()

	config := list.Config()
	configValue := reflect.New(reflect.TypeOf(config)).Elem()

	for field := 0; field < list.NumFields(); field++ {
		settings := listValue.Field(field)
		if settings.Kind() != reflect.Slice || settings.Len() == 0 {
			continue
		}

		index := i % settings.Len()
		i /= settings.Len()

		target := configValue.FieldByName(listType.Field(field).Name)
		if target.IsValid() && target.CanSet() {
			target.Set(settings.Index(index))
		}
	}

	return configValue.Interface().(Config)
}
