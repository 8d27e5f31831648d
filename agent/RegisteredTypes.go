package agent

// Type names a kind of agent. Every Config carries the Type of the
// agents it constructs, and serialized configurations name their Type
// so they can be decoded without knowing the concrete Config in
// advance. GuidedAACMLP, for instance, types configurations of guided
// advantage actor critic agents over MLP networks.
type Type string

const (
	CategoricalAACMLP Type = "CategoricalAAC-MLP"
	GuidedAACMLP      Type = "GuidedAAC-MLP"
)

// Registered agent types. Once a Type has been registered, a
// TypedConfigList holding that type can be deserialized into the
// registrant's concrete ConfigList.
//
// No Type's are registered with this package upon initialization.
// Each agent package is in charge of registering its own Type to
// avoid circular imports.
var registeredTypes = map[Type]func() ConfigList{}

// Register registers an agent's Type with a constructor of its
// concrete ConfigList type, so that upon deserialization of a
// TypedConfigList with that type, the list is deserialized into a
// value returned by newList. The constructor must return a pointer
// for deserialization to be able to fill the list in.
func Register(agentType Type, newList func() ConfigList) {
	registeredTypes[agentType] = newList
}
