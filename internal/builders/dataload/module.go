// Package dataload builds the pipeline's source step: it issues a data
// loading request to the upstream data service and exposes the landed data
// location to downstream steps.
package dataload

import (
	"fmt"

	"github.com/vk/pipewright/internal/builders"
	"github.com/vk/pipewright/internal/config"
	"github.com/vk/pipewright/internal/pipeline"
	"github.com/vk/pipewright/internal/spec"
)

const (
	// StepType is the canonical step-type tag.
	StepType = "DataLoad"
	// ConfigVariant is the configuration variant bound to this step type.
	ConfigVariant = "DataLoadConfig"
)

// Specification declares the data load contract: a source node with the raw
// data and metadata outputs.
func Specification() *spec.StepSpecification {
	return spec.MustNew(StepType, spec.NodeSource, nil, []*spec.OutputSpec{
		{
			LogicalName:  "raw_data",
			Aliases:      []string{"input_data", "model_input_data"},
			Type:         spec.ProcessingOutput,
			PropertyPath: "properties.ProcessingOutputConfig.Outputs['raw_data'].S3Output.S3Uri",
			DataType:     "S3Uri",
			Description:  "Raw data loaded from the upstream data service",
		},
		{
			LogicalName:  "load_metadata",
			Type:         spec.CustomProperty,
			PropertyPath: "properties.ProcessingOutputConfig.Outputs['load_metadata'].S3Output.S3Uri",
			DataType:     "S3Uri",
			Description:  "Schema and row-count metadata for the loaded data",
		},
	})
}

// Builder implements the step-builder contract for data loading.
type Builder struct {
	cfg     *config.Config
	session pipeline.Session
	role    string
	spec    *spec.StepSpecification

	request map[string]any
}

// New constructs a data load builder.
func New(env builders.Env) (builders.StepBuilder, error) {
	return &Builder{
		cfg:     env.Config,
		session: env.Session,
		role:    env.Role,
		spec:    Specification(),
	}, nil
}

// Spec returns the declared specification.
func (b *Builder) Spec() *spec.StepSpecification {
	return b.spec
}

// ValidateConfiguration requires a job type: the data service needs to know
// which slice of data to load.
func (b *Builder) ValidateConfiguration() error {
	if b.cfg.JobType() == "" {
		return fmt.Errorf("data load config '%s': job_type is required", b.cfg.Name())
	}
	return nil
}

// CreateStep assembles the data loading request and the step object.
func (b *Builder) CreateStep(in builders.CreateStepInput) (pipeline.Step, error) {
	if err := b.ValidateConfiguration(); err != nil {
		return nil, err
	}

	step, err := builders.Materialize(b.cfg.Name(), b.spec, in)
	if err != nil {
		return nil, err
	}

	// The request payload is surfaced to the caller as a per-assembly
	// artifact rather than kept in shared state.
	b.request = map[string]any{
		"job_type":        b.cfg.JobType(),
		"output_location": in.Outputs["raw_data"],
		"role":            b.role,
		"caching":         in.EnableCaching,
	}

	return step, nil
}

// Artifact exposes the data loading request recorded by the last
// CreateStep call.
func (b *Builder) Artifact() (any, bool) {
	if b.request == nil {
		return nil, false
	}
	return b.request, true
}

// Module wires the plugin into the registries.
type Module struct{}

// Register registers the specification, config variant and factory.
func (Module) Register(set *builders.Set) error {
	if err := set.Specs.Register(Specification()); err != nil {
		return err
	}
	if err := set.Table.Register(ConfigVariant, StepType); err != nil {
		return err
	}
	set.Builders.Register(StepType, New)
	return nil
}
