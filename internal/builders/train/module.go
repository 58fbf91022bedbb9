// Package train builds the XGBoost training step.
package train

import (
	"fmt"

	"github.com/vk/pipewright/internal/builders"
	"github.com/vk/pipewright/internal/config"
	"github.com/vk/pipewright/internal/pipeline"
	"github.com/vk/pipewright/internal/spec"
)

const (
	StepType      = "XGBoostTraining"
	ConfigVariant = "XGBoostTrainingConfig"
)

// Specification declares the training contract. Hyperparameters can be
// generated internally, so that slot is optional.
func Specification() *spec.StepSpecification {
	return spec.MustNew(StepType, spec.NodeInternal,
		[]*spec.DependencySpec{
			{
				LogicalName:       "training_data",
				Type:              spec.ProcessingOutput,
				Required:          true,
				CompatibleSources: []string{"TabularPreprocessing", "DataLoad"},
				SemanticKeywords:  []string{"training", "data", "processed", "tabular", "features"},
				DataType:          "S3Uri",
				Description:       "Processed training data",
			},
			{
				LogicalName:      "hyperparameters_location",
				Type:             spec.Hyperparameters,
				Required:         false,
				SemanticKeywords: []string{"config", "params", "hyperparameters", "settings"},
				DataType:         "S3Uri",
				Description:      "Optional external hyperparameters file",
			},
		},
		[]*spec.OutputSpec{
			{
				LogicalName:  "model_artifacts",
				Aliases:      []string{"model_data", "trained_model"},
				Type:         spec.ModelArtifacts,
				PropertyPath: "properties.ModelArtifacts.S3ModelArtifacts",
				DataType:     "S3Uri",
				Description:  "Trained model artifacts",
			},
			{
				LogicalName:  "training_metrics",
				Type:         spec.TrainingOutput,
				PropertyPath: "properties.TrainingMetrics.S3Uri",
				DataType:     "S3Uri",
				Description:  "Objective and validation metrics captured during training",
			},
		})
}

// Builder implements the step-builder contract for training.
type Builder struct {
	cfg     *config.Config
	session pipeline.Session
	role    string
	spec    *spec.StepSpecification
}

// New constructs a training builder.
func New(env builders.Env) (builders.StepBuilder, error) {
	return &Builder{cfg: env.Config, session: env.Session, role: env.Role, spec: Specification()}, nil
}

func (b *Builder) Spec() *spec.StepSpecification {
	return b.spec
}

// ValidateConfiguration sanity-checks the training job shape.
func (b *Builder) ValidateConfiguration() error {
	if b.cfg.InstanceCount() < 1 {
		return fmt.Errorf("training config '%s': instance_count must be positive", b.cfg.Name())
	}
	if depth, ok := b.cfg.Parameter("max_depth"); ok && depth == "0" {
		return fmt.Errorf("training config '%s': max_depth must not be zero", b.cfg.Name())
	}
	return nil
}

// CreateStep requires wired training data; hyperparameters may be absent.
func (b *Builder) CreateStep(in builders.CreateStepInput) (pipeline.Step, error) {
	if err := b.ValidateConfiguration(); err != nil {
		return nil, err
	}
	if _, ok := in.Inputs["training_data"]; !ok {
		return nil, fmt.Errorf("training step '%s': missing required input 'training_data'", b.cfg.Name())
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
