package spec

import "fmt"

// DependencySpec declares one logical input slot of a step.
type DependencySpec struct {
	// LogicalName is the stable identifier for the slot, unique within the
	// owning specification's dependencies.
	LogicalName string
	// Type classifies the expected value.
	Type DependencyType
	// Required marks slots that must be wired for the step to build. An
	// optional slot with no match resolves to "absent", not an error.
	Required bool
	// CompatibleSources restricts which producer step types may satisfy the
	// slot. Empty means any producer is acceptable.
	CompatibleSources []string
	// SemanticKeywords are fuzzy-match hints scored against candidate output
	// names, aliases and descriptions.
	SemanticKeywords []string
	// DataType is a storage-format tag, e.g. "S3Uri".
	DataType string
	// Description is human text; it is never matched on.
	Description string
}

// OutputSpec declares one logical output slot of a step.
type OutputSpec struct {
	LogicalName string
	// Aliases are alternate logical names resolvable to the same output.
	Aliases []string
	Type    DependencyType
	// PropertyPath addresses the runtime value on the produced step object,
	// e.g. "properties.ProcessingOutputConfig.Outputs['data'].S3Output.S3Uri".
	PropertyPath string
	DataType     string
	Description  string
}

// StepSpecification is the full declared contract of one step type.
type StepSpecification struct {
	StepType string
	NodeType NodeType
	// Dependencies and Outputs are keyed by logical name; insertion order is
	// irrelevant to matching.
	Dependencies map[string]*DependencySpec
	Outputs      map[string]*OutputSpec
}

// New assembles a StepSpecification from slices and validates it.
func New(stepType string, nodeType NodeType, deps []*DependencySpec, outs []*OutputSpec) (*StepSpecification, error) {
	s := &StepSpecification{
		StepType:     stepType,
		NodeType:     nodeType,
		Dependencies: make(map[string]*DependencySpec, len(deps)),
		Outputs:      make(map[string]*OutputSpec, len(outs)),
	}
	for _, d := range deps {
		if _, exists := s.Dependencies[d.LogicalName]; exists {
			return nil, fmt.Errorf("spec '%s': duplicate dependency logical name '%s'", stepType, d.LogicalName)
		}
		s.Dependencies[d.LogicalName] = d
	}
	for _, o := range outs {
		if _, exists := s.Outputs[o.LogicalName]; exists {
			return nil, fmt.Errorf("spec '%s': duplicate output logical name '%s'", stepType, o.LogicalName)
		}
		s.Outputs[o.LogicalName] = o
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// MustNew is New for package-level specification literals; it panics on an
// invalid specification, which is a programmer error.
func MustNew(stepType string, nodeType NodeType, deps []*DependencySpec, outs []*OutputSpec) *StepSpecification {
	s, err := New(stepType, nodeType, deps, outs)
	if err != nil {
		panic(err)
	}
	return s
}

// Validate checks the structural invariants of the specification: a non-empty
// step type, node-type arity rules, and valid output property paths.
func (s *StepSpecification) Validate() error {
	if s.StepType == "" {
		return fmt.Errorf("specification missing step type")
	}

	switch s.NodeType {
	case NodeSource:
		if len(s.Dependencies) > 0 {
			return fmt.Errorf("spec '%s': source node must not declare dependencies", s.StepType)
		}
		if len(s.Outputs) == 0 {
			return fmt.Errorf("spec '%s': source node must declare outputs", s.StepType)
		}
	case NodeInternal:
		if len(s.Dependencies) == 0 || len(s.Outputs) == 0 {
			return fmt.Errorf("spec '%s': internal node must declare both dependencies and outputs", s.StepType)
		}
	case NodeSink:
		if len(s.Dependencies) == 0 {
			return fmt.Errorf("spec '%s': sink node must declare dependencies", s.StepType)
		}
		if len(s.Outputs) > 0 {
			return fmt.Errorf("spec '%s': sink node must not declare outputs", s.StepType)
		}
	case NodeSingular:
		if len(s.Dependencies) > 0 || len(s.Outputs) > 0 {
			return fmt.Errorf("spec '%s': singular node must not declare dependencies or outputs", s.StepType)
		}
	default:
		return fmt.Errorf("spec '%s': unknown node type '%s'", s.StepType, s.NodeType)
	}

	for name, out := range s.Outputs {
		if out.PropertyPath == "" {
			return fmt.Errorf("spec '%s': output '%s' missing property path", s.StepType, name)
		}
		if _, err := ParsePropertyPath(out.PropertyPath); err != nil {
			return fmt.Errorf("spec '%s': output '%s': %w", s.StepType, name, err)
		}
	}

	return nil
}

// OutputByNameOrAlias resolves a logical name or any declared alias to its
// OutputSpec.
func (s *StepSpecification) OutputByNameOrAlias(name string) (*OutputSpec, bool) {
	if out, ok := s.Outputs[name]; ok {
		return out, true
	}
	for _, out := range s.Outputs {
		for _, alias := range out.Aliases {
			if alias == name {
				return out, true
			}
		}
	}
	return nil, false
}
