package marshkit

import (
	"fmt"
	"sync"
)

// The registry resolves nested references declared by name, enabling forward
// references between schemas defined in different packages.

var (
	registryMu sync.RWMutex
	registry   = map[string]func() *Schema{}
)

// Register binds name to a schema producer. The producer runs on first
// resolution of a Named reference; registering an existing name replaces
// the previous binding.
func Register(name string, fn func() *Schema) {
	if name == "" || fn == nil {
		return
	}
	registryMu.Lock()
	registry[name] = fn
	registryMu.Unlock()
}

// RegisterSchema binds name to an already-compiled schema.
func RegisterSchema(name string, s *Schema) {
	Register(name, func() *Schema { return s })
}

// ResolveRegistered looks up and invokes the producer registered under name.
func ResolveRegistered(name string) (*Schema, error) {
	registryMu.RLock()
	fn, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("marshkit: no schema registered under %q", name)
	}
	s := fn()
	if s == nil {
		return nil, fmt.Errorf("marshkit: registered producer for %q returned nil", name)
	}
	return s, nil
}
