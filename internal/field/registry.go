package field

import (
	"errors"
	"sort"
	"sync"
)

var (
	// ErrEmptyType is returned when a factory is registered without a type name.
	ErrEmptyType = errors.New("field(registry): empty type provided")
	// ErrNilFactory is returned when a nil factory is registered.
	ErrNilFactory = errors.New("field(registry): nil factory provided")
	// ErrConflictingRegistration indicates an attempt to register a type twice.
	ErrConflictingRegistration = errors.New("field(registry): conflicting type registration")
	// ErrUnknownType is returned by Build for unregistered types.
	ErrUnknownType = errors.New("field(registry): unknown field type")
)

// Factory builds a descriptor from a stored definition.
type Factory func(def Definition) (Descriptor, error)

// Registry maps field type names to factories. It is safe for concurrent use.
type Registry struct {
	mu        sync.Mutex
	factories sync.Map // map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// DefaultRegistry returns a registry with every built-in field type.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	_ = r.Register(TypePostcodeLookup, NewPostcodeLookup)
	return r
}

// Register associates a type name with a factory. Each type can be
// registered once.
func (r *Registry) Register(typeName string, factory Factory) error {
	if typeName == "" {
		return ErrEmptyType
	}
	if factory == nil {
		return ErrNilFactory
	}

	if _, ok := r.factories.Load(typeName); ok {
		return ErrConflictingRegistration
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Re-check under lock in case another goroutine stored meanwhile.
	if _, ok := r.factories.Load(typeName); ok {
		return ErrConflictingRegistration
	}
	r.factories.Store(typeName, factory)
	return nil
}

// Build creates the descriptor for a definition.
func (r *Registry) Build(def Definition) (Descriptor, error) {
	v, ok := r.factories.Load(def.Type)
	if !ok {
		return nil, ErrUnknownType
	}
	return v.(Factory)(def)
}

// Types returns the registered type names in sorted order.
func (r *Registry) Types() []string {
	var types []string
	r.factories.Range(func(key, _ any) bool {
		types = append(types, key.(string))
		return true
	})
	sort.Strings(types)
	return types
}
