// Package evaluate builds the model evaluation step: a trained model plus
// held-out data in, metrics out.
package evaluate

import (
	"fmt"

	"github.com/vk/pipewright/internal/builders"
	"github.com/vk/pipewright/internal/config"
	"github.com/vk/pipewright/internal/pipeline"
	"github.com/vk/pipewright/internal/spec"
)

const (
	StepType      = "ModelEvaluation"
	ConfigVariant = "ModelEvaluationConfig"
)

// Specification declares the evaluation contract.
func Specification() *spec.StepSpecification {
	return spec.MustNew(StepType, spec.NodeInternal,
		[]*spec.DependencySpec{
			{
				LogicalName:       "model_input",
				Type:              spec.ModelArtifacts,
				Required:          true,
				CompatibleSources: []string{"XGBoostTraining"},
				SemanticKeywords:  []string{"model", "artifacts", "trained"},
				DataType:          "S3Uri",
				Description:       "Trained model artifacts to evaluate",
			},
			{
				LogicalName:       "eval_data",
				Type:              spec.ProcessingOutput,
				Required:          true,
				CompatibleSources: []string{"TabularPreprocessing", "DataLoad"},
				SemanticKeywords:  []string{"data", "processed", "eval", "holdout", "validation"},
				DataType:          "S3Uri",
				Description:       "Held-out evaluation data",
			},
		},
		[]*spec.OutputSpec{
			{
				LogicalName:  "eval_metrics",
				Aliases:      []string{"metrics", "evaluation_report"},
				Type:         spec.ProcessingOutput,
				PropertyPath: "properties.ProcessingOutputConfig.Outputs['eval_metrics'].S3Output.S3Uri",
				DataType:     "S3Uri",
				Description:  "Evaluation metrics report",
			},
		})
}

// Builder implements the step-builder contract for evaluation.
type Builder struct {
	cfg  *config.Config
	role string
	spec *spec.StepSpecification
}

// New constructs an evaluation builder.
func New(env builders.Env) (builders.StepBuilder, error) {
	return &Builder{cfg: env.Config, role: env.Role, spec: Specification()}, nil
}

func (b *Builder) Spec() *spec.StepSpecification {
	return b.spec
}

func (b *Builder) ValidateConfiguration() error {
	if b.cfg.InstanceCount() < 1 {
		return fmt.Errorf("evaluation config '%s': instance_count must be positive", b.cfg.Name())
	}
	return nil
}

// CreateStep requires both the model and the evaluation data to be wired.
func (b *Builder) CreateStep(in builders.CreateStepInput) (pipeline.Step, error) {
	if err := b.ValidateConfiguration(); err != nil {
		return nil, err
	}
	for _, required := range []string{"model_input", "eval_data"} {
		if _, ok := in.Inputs[required]; !ok {
			return nil, fmt.Errorf("evaluation step '%s': missing required input '%s'", b.cfg.Name(), required)
		}
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
