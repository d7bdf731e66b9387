package engine

import (
	"fmt"
	"maps"
	"slices"
)

// ScriptFactory creates a Component from scene-file props.
type ScriptFactory func(props map[string]any) Component

// ScriptSerializer converts a Component back to props. It returns nil for
// components it does not own.
type ScriptSerializer func(c Component) map[string]any

// ScriptApplier applies a single property value to a script component.
// Returns true if the property was applied.
type ScriptApplier func(c Component, propName string, value any) bool

type scriptEntry struct {
	factory    ScriptFactory
	serializer ScriptSerializer
	applier    ScriptApplier
}

// ScriptRegistry maps script names to their factories.
type ScriptRegistry struct {
	entries map[string]scriptEntry
}

func NewScriptRegistry() *ScriptRegistry {
	return &ScriptRegistry{entries: map[string]scriptEntry{}}
}

// Scripts is the registry component packages register into from init.
var Scripts = NewScriptRegistry()

// Register adds a named script. Registering the same name twice panics.
func (r *ScriptRegistry) Register(name string, factory ScriptFactory, serializer ScriptSerializer) {
	r.RegisterWithApplier(name, factory, serializer, nil)
}

// RegisterWithApplier also installs an applier for live property edits.
func (r *ScriptRegistry) RegisterWithApplier(name string, factory ScriptFactory, serializer ScriptSerializer, applier ScriptApplier) {
	if _, exists := r.entries[name]; exists {
		panic(fmt.Sprintf("script %q already registered", name))
	}
	r.entries[name] = scriptEntry{factory: factory, serializer: serializer, applier: applier}
}

// Create builds the named script, or returns nil for unknown names.
func (r *ScriptRegistry) Create(name string, props map[string]any) Component {
	entry, ok := r.entries[name]
	if !ok {
		return nil
	}
	return entry.factory(props)
}

// Serialize finds the script that owns c.
// Returns (name, props, true) if found, ("", nil, false) otherwise.
func (r *ScriptRegistry) Serialize(c Component) (string, map[string]any, bool) {
	for _, name := range r.Names() {
		entry := r.entries[name]
		if entry.serializer == nil {
			continue
		}
		if props := entry.serializer(c); props != nil {
			return name, props, true
		}
	}
	return "", nil, false
}

// Names returns registered script names in sorted order.
func (r *ScriptRegistry) Names() []string {
	return slices.Sorted(maps.Keys(r.entries))
}

// Apply applies a property value to a script component.
func (r *ScriptRegistry) Apply(c Component, propName string, value any) bool {
	for _, entry := range r.entries {
		if entry.applier == nil {
			continue
		}
		if entry.applier(c, propName, value) {
			return true
		}
	}
	return false
}
