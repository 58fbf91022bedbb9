// Package pipeline holds the orchestration-SDK facing abstractions the core
// consumes and produces: an opaque executable step with a name, dependency
// list and traversable runtime properties, and the pipeline object built
// from the ordered step list. The concrete types here stand in for the
// external service's own primitives; the core never looks past these
// interfaces.
package pipeline

import (
	"github.com/vk/pipewright/internal/spec"
)

// Session is an opaque handle on the orchestration service connection.
type Session string

// Step is the executable-step contract: a name, an "add dependency"
// operation, and declared output properties reachable through a property
// bag.
type Step interface {
	Name() string
	AddDependency(dep Step)
	Dependencies() []Step
	Properties() spec.PropertyBag
}

// Pipeline is the produced pipeline object: a mutable name plus the ordered
// step list. Serialization belongs to the external service, not this core.
type Pipeline struct {
	name  string
	steps []Step
}

// New constructs a pipeline from an ordered step list.
func New(name string, steps []Step) *Pipeline {
	return &Pipeline{name: name, steps: steps}
}

// Name returns the pipeline name.
func (p *Pipeline) Name() string {
	return p.name
}

// SetName renames the pipeline. Names must be globally unique in the target
// service; uniqueness is the caller's concern.
func (p *Pipeline) SetName(name string) {
	p.name = name
}

// Steps returns the ordered step list.
func (p *Pipeline) Steps() []Step {
	out := make([]Step, len(p.steps))
	copy(out, p.steps)
	return out
}
