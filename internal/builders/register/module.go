// Package register builds the model registration step, the pipeline's sink:
// it submits the trained model to the model registry.
package register

import (
	"fmt"

	"github.com/vk/pipewright/internal/builders"
	"github.com/vk/pipewright/internal/config"
	"github.com/vk/pipewright/internal/pipeline"
	"github.com/vk/pipewright/internal/spec"
)

const (
	StepType      = "ModelRegistration"
	ConfigVariant = "ModelRegistrationConfig"
)

// Specification declares the registration contract: a sink node, no
// outputs.
func Specification() *spec.StepSpecification {
	return spec.MustNew(StepType, spec.NodeSink,
		[]*spec.DependencySpec{
			{
				LogicalName:       "model_artifacts",
				Type:              spec.ModelArtifacts,
				Required:          true,
				CompatibleSources: []string{"XGBoostTraining"},
				SemanticKeywords:  []string{"model", "artifacts", "trained"},
				DataType:          "S3Uri",
				Description:       "Trained model artifacts to register",
			},
			{
				LogicalName:       "evaluation_metrics",
				Type:              spec.ProcessingOutput,
				Required:          false,
				CompatibleSources: []string{"ModelEvaluation"},
				SemanticKeywords:  []string{"metrics", "evaluation", "report"},
				DataType:          "S3Uri",
				Description:       "Optional evaluation report attached to the registry entry",
			},
		},
		nil)
}

// Builder implements the step-builder contract for registration.
type Builder struct {
	cfg  *config.Config
	role string
	spec *spec.StepSpecification
}

// New constructs a registration builder.
func New(env builders.Env) (builders.StepBuilder, error) {
	return &Builder{cfg: env.Config, role: env.Role, spec: Specification()}, nil
}

func (b *Builder) Spec() *spec.StepSpecification {
	return b.spec
}

// ValidateConfiguration requires a role: registry writes are authenticated.
func (b *Builder) ValidateConfiguration() error {
	if b.cfg.Role() == "" && b.role == "" {
		return fmt.Errorf("registration config '%s': an execution role is required", b.cfg.Name())
	}
	return nil
}

// CreateStep requires the model artifacts input to be wired.
func (b *Builder) CreateStep(in builders.CreateStepInput) (pipeline.Step, error) {
	if err := b.ValidateConfiguration(); err != nil {
		return nil, err
	}
	if _, ok := in.Inputs["model_artifacts"]; !ok {
		return nil, fmt.Errorf("registration step '%s': missing required input 'model_artifacts'", b.cfg.Name())
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
