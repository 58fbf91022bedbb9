package registry

import (
	"fmt"
	"sync"

	"github.com/vk/pipewright/internal/spec"
)

// SpecRegistry holds the declared specifications for one context, keyed by
// step type.
type SpecRegistry struct {
	context string

	mutex      sync.RWMutex
	specs      map[string]*spec.StepSpecification
	order      []string
	generation uint64
}

// NewSpecRegistry creates an empty registry for the given context name.
func NewSpecRegistry(context string) *SpecRegistry {
	return &SpecRegistry{
		context: context,
		specs:   make(map[string]*spec.StepSpecification),
	}
}

// Context returns the context name this registry belongs to.
func (r *SpecRegistry) Context() string {
	return r.context
}

// Register validates and stores a specification. Registering a step type
// twice is an error. Every successful write bumps the generation counter so
// derived caches know to invalidate.
func (r *SpecRegistry) Register(s *spec.StepSpecification) error {
	if s == nil {
		return fmt.Errorf("context '%s': cannot register nil specification", r.context)
	}
	if err := s.Validate(); err != nil {
		return fmt.Errorf("context '%s': %w", r.context, err)
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.specs[s.StepType]; exists {
		return fmt.Errorf("context '%s': specification for step type '%s' already registered", r.context, s.StepType)
	}
	r.specs[s.StepType] = s
	r.order = append(r.order, s.StepType)
	r.generation++
	return nil
}

// Get returns the specification registered for a step type.
func (r *SpecRegistry) Get(stepType string) (*spec.StepSpecification, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	s, ok := r.specs[stepType]
	return s, ok
}

// StepTypes returns all registered step types in registration order.
func (r *SpecRegistry) StepTypes() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Generation returns a counter that changes on every registry write.
func (r *SpecRegistry) Generation() uint64 {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.generation
}
