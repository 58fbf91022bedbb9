package builders

import (
	"fmt"
	"sync"
)

// Registry maps step types to builder factories.
type Registry struct {
	mutex     sync.RWMutex
	factories map[string]Factory
	order     []string
}

// NewRegistry creates an empty builder registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register stores a factory for a step type. Registering the same step type
// twice is a programmer error and panics.
func (r *Registry) Register(stepType string, factory Factory) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.factories[stepType]; exists {
		panic(fmt.Sprintf("builder for step type '%s' already registered", stepType))
	}
	r.factories[stepType] = factory
	r.order = append(r.order, stepType)
}

// Get returns the factory for a step type.
func (r *Registry) Get(stepType string) (Factory, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	f, ok := r.factories[stepType]
	return f, ok
}

// StepTypes returns all registered step types in registration order.
func (r *Registry) StepTypes() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
