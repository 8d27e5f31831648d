package agent

import (
	"encoding/json"
	"fmt"
)

// TypedConfigList tags a ConfigList with its agent Type so that the
// list can be deserialized into its concrete type without knowing or
// declaring that type beforehand.
type TypedConfigList struct {
	Type
	ConfigList
}

// NewTypedConfigList wraps c in a TypedConfigList carrying c's Type
func NewTypedConfigList(c ConfigList) TypedConfigList {
	return TypedConfigList{Type: c.Type(), ConfigList: c}
}

// UnmarshalJSON implements the json.Unmarshaler interface
func (t *TypedConfigList) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type       Type
		ConfigList json.RawMessage
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	newList, ok := registeredTypes[raw.Type]
	if !ok {
		return fmt.Errorf("unmarshaljson: no registered agent type %q",
			raw.Type)
	}

	list := newList()
	if len(raw.ConfigList) > 0 {
		if err := json.Unmarshal(raw.ConfigList, list); err != nil {
			return err
		}
	}

	t.Type = raw.Type
	t.ConfigList = list
	return nil
}

// At returns the i'th Config that the wrapped list enumerates
func (t *TypedConfigList) At(i int) Config {
	return ConfigAt(i, t.ConfigList)
}
