package deps

import (
	"fmt"

	"github.com/vk/pipewright/internal/pipeline"
	"github.com/vk/pipewright/internal/spec"
)

// PropertyReference is a lazy pointer to a value that exists only once the
// producing step has been instantiated: (producing step name, output spec).
// It is created transiently per resolved edge at instantiation time and
// never outlives the assembly.
type PropertyReference struct {
	StepName string
	Output   *spec.OutputSpec
}

// Resolve turns the reference into a concrete runtime value by walking the
// output's property path on the instantiated producer step.
func (p PropertyReference) Resolve(instances map[string]pipeline.Step) (any, error) {
	step, ok := instances[p.StepName]
	if !ok {
		return nil, fmt.Errorf("property reference: step '%s' not instantiated", p.StepName)
	}

	path, err := spec.ParsePropertyPath(p.Output.PropertyPath)
	if err != nil {
		return nil, fmt.Errorf("property reference: step '%s' output '%s': %w", p.StepName, p.Output.LogicalName, err)
	}

	value, err := path.Resolve(step.Properties())
	if err != nil {
		return nil, fmt.Errorf("property reference: step '%s' output '%s': %w", p.StepName, p.Output.LogicalName, err)
	}
	return value, nil
}

// String renders the reference for logs.
func (p PropertyReference) String() string {
	return fmt.Sprintf("%s.%s", p.StepName, p.Output.PropertyPath)
}
