package builders

import (
	"github.com/vk/pipewright/internal/config"
	"github.com/vk/pipewright/internal/deps"
	"github.com/vk/pipewright/internal/pipeline"
	"github.com/vk/pipewright/internal/registry"
	"github.com/vk/pipewright/internal/spec"
)

// Env carries the collaborator handles a builder is constructed with.
type Env struct {
	Config   *config.Config
	Session  pipeline.Session
	Role     string
	Resolver *deps.Resolver
	Specs    *registry.SpecRegistry
}

// CreateStepInput is the assembled input for one step-creation call.
type CreateStepInput struct {
	// Inputs maps dependency logical names to resolved values: concrete
	// runtime values from property references, or placeholder locations.
	// Optional dependencies that resolved to absent are simply missing.
	Inputs map[string]any
	// Outputs maps output logical names to their generated locations.
	Outputs map[string]string
	// Dependencies are the already-instantiated predecessor steps.
	Dependencies []pipeline.Step
	EnableCaching bool
}

// StepBuilder is the contract every domain plugin implements.
type StepBuilder interface {
	// Spec returns the builder's declared specification, used by the
	// resolver and assembler for matching.
	Spec() *spec.StepSpecification
	// ValidateConfiguration reports a configuration error on invalid state.
	ValidateConfiguration() error
	// CreateStep turns the assembled inputs/outputs/dependencies into an
	// executable step object.
	CreateStep(in CreateStepInput) (pipeline.Step, error)
}

// ArtifactProvider is implemented by builders that contribute a
// per-assembly artifact (e.g. an external-service request payload) to be
// returned alongside the pipeline, keyed by step name.
type ArtifactProvider interface {
	Artifact() (value any, ok bool)
}

// Factory constructs a builder from its environment.
type Factory func(env Env) (StepBuilder, error)

// Set bundles the registries a module populates at startup.
type Set struct {
	Builders *Registry
	Specs    *registry.SpecRegistry
	Table    *registry.StepTypeTable
}

// Module is the interface all builder plugins implement to be registered.
type Module interface {
	Register(set *Set) error
}
