package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/vk/pipewright/internal/ctxlog"
	"github.com/vk/pipewright/internal/dag"
	"github.com/vk/pipewright/internal/fsutil"
	"github.com/vk/pipewright/internal/schema"
)

// Definition is the translated, HCL-agnostic form of one pipeline block.
type Definition struct {
	Name  string
	Graph *dag.Graph
	// DeclaredTypes maps node names to the step types declared in the file.
	DeclaredTypes map[string]string
	// ConfigBindings maps node names to explicitly pinned config names.
	// Nodes without a binding go through fuzzy config resolution.
	ConfigBindings map[string]string
	// Parameters holds the evaluated pipeline-level parameter values.
	Parameters map[string]string
}

// Loader parses pipeline definition files.
type Loader struct{}

// NewLoader creates a pipeline definition loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load discovers and parses every .hcl file under the given paths and
// translates each pipeline block into a definition. Step names must be
// unique within a pipeline and depends_on may only reference steps declared
// in the same pipeline.
func (l *Loader) Load(ctx context.Context, paths ...string) ([]*Definition, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := fsutil.FindFilesByExtension(paths, ".hcl")
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered pipeline definition files.", "count", len(files))

	parser := hclparse.NewParser()
	var definitions []*Definition

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse pipeline file %s: %w", file, diags)
		}

		var root schema.File
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode pipeline file %s: %w", file, diags)
		}

		for _, p := range root.Pipelines {
			def, err := l.translatePipeline(p)
			if err != nil {
				return nil, fmt.Errorf("pipeline file %s: %w", file, err)
			}
			definitions = append(definitions, def)
		}
	}

	logger.Info("Pipeline definitions loaded.", "pipelines", len(definitions))
	return definitions, nil
}

// translatePipeline converts one parsed pipeline block into the agnostic
// model: nodes first, then edges, so forward references between steps work
// regardless of declaration order.
func (l *Loader) translatePipeline(p *schema.Pipeline) (*Definition, error) {
	if p.Name == "" {
		return nil, fmt.Errorf("pipeline block missing name")
	}
	if len(p.Steps) == 0 {
		return nil, fmt.Errorf("pipeline '%s' declares no steps", p.Name)
	}

	def := &Definition{
		Name:           p.Name,
		Graph:          dag.New(),
		DeclaredTypes:  make(map[string]string, len(p.Steps)),
		ConfigBindings: make(map[string]string),
	}

	for _, step := range p.Steps {
		if step.Name == "" {
			return nil, fmt.Errorf("pipeline '%s': step block missing node name", p.Name)
		}
		if _, exists := def.DeclaredTypes[step.Name]; exists {
			return nil, fmt.Errorf("pipeline '%s': duplicate step '%s'", p.Name, step.Name)
		}
		def.Graph.AddNode(step.Name)
		def.DeclaredTypes[step.Name] = step.StepType
		if step.Config != "" {
			def.ConfigBindings[step.Name] = step.Config
		}
	}

	for _, step := range p.Steps {
		for _, dep := range step.DependsOn {
			if err := def.Graph.AddEdge(dep, step.Name); err != nil {
				return nil, fmt.Errorf("pipeline '%s': step '%s': %w", p.Name, step.Name, err)
			}
		}
	}

	if p.Parameters != nil {
		params, err := l.evaluateParameters(p.Parameters)
		if err != nil {
			return nil, fmt.Errorf("pipeline '%s': %w", p.Name, err)
		}
		def.Parameters = params
	}

	return def, nil
}

// evaluateParameters evaluates every attribute of the parameters block as a
// constant expression and converts the result to a string.
func (l *Loader) evaluateParameters(block *schema.Parameters) (map[string]string, error) {
	attrs, diags := block.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid parameters block: %w", diags)
	}

	params := make(map[string]string, len(attrs))
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("parameter '%s': %w", name, diags)
		}
		str, err := convert.Convert(val, cty.String)
		if err != nil {
			return nil, fmt.Errorf("parameter '%s': not convertible to string: %w", name, err)
		}
		if str.IsNull() {
			return nil, fmt.Errorf("parameter '%s': null value", name)
		}
		params[name] = str.AsString()
	}
	return params, nil
}
