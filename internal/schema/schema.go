package schema

import (
	"github.com/hashicorp/hcl/v2"
)

// Step represents a `step` block in a pipeline definition file: a declared
// step type plus the DAG node name.
type Step struct {
	StepType string `hcl:"step_type,label"`
	Name     string `hcl:"node_name,label"`
	// Config optionally pins the node to a named configuration instead of
	// relying on fuzzy resolution.
	Config    string   `hcl:"config,optional"`
	DependsOn []string `hcl:"depends_on,optional"`
}

// Parameters represents the free-form `parameters` block of a pipeline.
type Parameters struct {
	Body hcl.Body `hcl:",remain"`
}

// Pipeline represents a `pipeline` block from a definition file.
type Pipeline struct {
	Name       string      `hcl:"name,label"`
	Steps      []*Step     `hcl:"step,block"`
	Parameters *Parameters `hcl:"parameters,block"`
}

// File represents the top-level structure of a pipeline definition file,
// containing all defined pipelines.
type File struct {
	Pipelines []*Pipeline `hcl:"pipeline,block"`
	Body      hcl.Body    `hcl:",remain"`
}
