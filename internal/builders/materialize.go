package builders

import (
	"fmt"

	"github.com/vk/pipewright/internal/pipeline"
	"github.com/vk/pipewright/internal/spec"
)

// Materialize builds a step object whose property tree exposes every
// declared output at its specified property path, pointing at the generated
// output locations. Builders share this so a step's runtime properties
// always line up with what downstream property references expect.
func Materialize(name string, s *spec.StepSpecification, in CreateStepInput) (*pipeline.GenericStep, error) {
	step := pipeline.NewStep(name, in.Inputs, nil)

	for logicalName, out := range s.Outputs {
		location, ok := in.Outputs[logicalName]
		if !ok {
			return nil, fmt.Errorf("step '%s': no generated location for declared output '%s'", name, logicalName)
		}
		path, err := spec.ParsePropertyPath(out.PropertyPath)
		if err != nil {
			return nil, fmt.Errorf("step '%s': output '%s': %w", name, logicalName, err)
		}
		step.SetProperty(path, location)
	}

	for _, dep := range in.Dependencies {
		step.AddDependency(dep)
	}

	return step, nil
}
