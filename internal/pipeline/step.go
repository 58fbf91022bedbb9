package pipeline

import (
	"github.com/vk/pipewright/internal/spec"
)

// GenericStep is the in-process implementation of the Step contract used by
// the shipped builders. Runtime properties are a nested string-keyed tree;
// both attribute access and bracket-key indexing traverse the same maps.
type GenericStep struct {
	name   string
	deps   []Step
	inputs map[string]any
	props  map[string]any
}

// NewStep creates a step with the given name, the resolved input values it
// was built from, and its runtime property tree.
func NewStep(name string, inputs map[string]any, props map[string]any) *GenericStep {
	if props == nil {
		props = make(map[string]any)
	}
	return &GenericStep{name: name, inputs: inputs, props: props}
}

// Name returns the step name.
func (s *GenericStep) Name() string {
	return s.name
}

// AddDependency attaches an upstream step. Duplicates are ignored.
func (s *GenericStep) AddDependency(dep Step) {
	for _, existing := range s.deps {
		if existing.Name() == dep.Name() {
			return
		}
	}
	s.deps = append(s.deps, dep)
}

// Dependencies returns the attached upstream steps.
func (s *GenericStep) Dependencies() []Step {
	out := make([]Step, len(s.deps))
	copy(out, s.deps)
	return out
}

// Inputs returns the resolved input values the step was built from.
func (s *GenericStep) Inputs() map[string]any {
	return s.inputs
}

// Properties returns the step's runtime property bag.
func (s *GenericStep) Properties() spec.PropertyBag {
	return mapBag(s.props)
}

// mapBag adapts a nested map tree to the spec.PropertyBag interface.
type mapBag map[string]any

func (b mapBag) Property(name string) (any, bool) {
	v, ok := b[name]
	if !ok {
		return nil, false
	}
	// Nested maps stay traversable as bags.
	if m, isMap := v.(map[string]any); isMap {
		return mapBag(m), true
	}
	return v, true
}

// SetProperty inserts a value into the property tree at the given parsed
// path, creating intermediate maps as needed. Builders use this to
// materialize their declared output property paths.
func (s *GenericStep) SetProperty(path *spec.PropertyPath, value any) {
	segs := path.Segments()
	current := s.props
	for i, seg := range segs {
		if i == len(segs)-1 {
			current[seg.Name] = value
			return
		}
		next, ok := current[seg.Name].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[seg.Name] = next
		}
		current = next
	}
}
