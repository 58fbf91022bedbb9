// Package preprocess builds the tabular preprocessing step: raw data in,
// feature-engineered data out.
package preprocess

import (
	"fmt"

	"github.com/vk/pipewright/internal/builders"
	"github.com/vk/pipewright/internal/config"
	"github.com/vk/pipewright/internal/pipeline"
	"github.com/vk/pipewright/internal/spec"
)

const (
	StepType      = "TabularPreprocessing"
	ConfigVariant = "TabularPreprocessingConfig"
)

// Specification declares the preprocessing contract.
func Specification() *spec.StepSpecification {
	return spec.MustNew(StepType, spec.NodeInternal,
		[]*spec.DependencySpec{
			{
				LogicalName:       "data_input",
				Type:              spec.ProcessingOutput,
				Required:          true,
				CompatibleSources: []string{"DataLoad"},
				SemanticKeywords:  []string{"raw", "data", "input", "load"},
				DataType:          "S3Uri",
				Description:       "Raw data from the data load step",
			},
		},
		[]*spec.OutputSpec{
			{
				LogicalName:  "processed_data",
				Aliases:      []string{"training_data", "model_input_data"},
				Type:         spec.ProcessingOutput,
				PropertyPath: "properties.ProcessingOutputConfig.Outputs['processed_data'].S3Output.S3Uri",
				DataType:     "S3Uri",
				Description:  "Feature-engineered tabular data",
			},
			{
				LogicalName:  "feature_metadata",
				Aliases:      []string{"column_schema"},
				Type:         spec.CustomProperty,
				PropertyPath: "properties.ProcessingOutputConfig.Outputs['feature_metadata'].S3Output.S3Uri",
				DataType:     "S3Uri",
				Description:  "Column types and imputation summary for the processed data",
			},
		})
}

// Builder implements the step-builder contract for preprocessing.
type Builder struct {
	cfg  *config.Config
	role string
	spec *spec.StepSpecification
}

// New constructs a preprocessing builder.
func New(env builders.Env) (builders.StepBuilder, error) {
	return &Builder{cfg: env.Config, role: env.Role, spec: Specification()}, nil
}

func (b *Builder) Spec() *spec.StepSpecification {
	return b.spec
}

// ValidateConfiguration checks the processing instance shape.
func (b *Builder) ValidateConfiguration() error {
	if b.cfg.InstanceCount() < 1 {
		return fmt.Errorf("preprocessing config '%s': instance_count must be positive", b.cfg.Name())
	}
	return nil
}

// CreateStep requires the raw data input to be wired.
func (b *Builder) CreateStep(in builders.CreateStepInput) (pipeline.Step, error) {
	if err := b.ValidateConfiguration(); err != nil {
		return nil, err
	}
	if _, ok := in.Inputs["data_input"]; !ok {
		return nil, fmt.Errorf("preprocessing step '%s': missing required input 'data_input'", b.cfg.Name())
	}
	return builders.Materialize(b.cfg.Name(), b.spec, in)
}

// Module wires the plugin into the registries.
type Module struct{}

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
