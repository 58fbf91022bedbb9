package compiler

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/vk/pipewright/internal/assembler"
	"github.com/vk/pipewright/internal/builders"
	"github.com/vk/pipewright/internal/config"
	"github.com/vk/pipewright/internal/ctxlog"
	"github.com/vk/pipewright/internal/dag"
	"github.com/vk/pipewright/internal/deps"
	"github.com/vk/pipewright/internal/pipeline"
)

// Options carry the per-compiler collaborator handles.
type Options struct {
	Session pipeline.Session
	Role    string
	// PipelineName, when set, overrides name generation.
	PipelineName string
}

// Compiler is the stateless-per-call façade tying config resolution,
// validation and assembly together.
type Compiler struct {
	set      *builders.Set
	resolver *deps.Resolver
	configs  *ConfigResolver
	engine   *ValidationEngine
	names    NameGenerator
	opts     Options
}

// New creates a compiler over a populated builder set.
func New(set *builders.Set, opts Options) *Compiler {
	resolver := deps.NewResolver(set.Specs)
	return &Compiler{
		set:      set,
		resolver: resolver,
		configs:  NewConfigResolver(set.Table),
		engine:   NewValidationEngine(set, resolver),
		names:    NameGenerator{},
		opts:     opts,
	}
}

// SupportedStepTypes returns every step type a builder is registered for.
func (c *Compiler) SupportedStepTypes() []string {
	return c.set.Builders.StepTypes()
}

// CreateTemplate resolves configs for every node and constructs an
// assembler ready to generate. Unresolved nodes and structural problems are
// fatal here.
func (c *Compiler) CreateTemplate(ctx context.Context, g *dag.Graph, file *config.File) (*assembler.Assembler, error) {
	a, _, err := c.template(ctx, g, file)
	return a, err
}

// template is the shared compile prologue: config resolution plus assembler
// construction.
func (c *Compiler) template(ctx context.Context, g *dag.Graph, file *config.File) (*assembler.Assembler, *Resolution, error) {
	if g.Len() == 0 {
		return nil, nil, compileErr("template creation", fmt.Errorf("pipeline graph has no nodes"))
	}

	resolution := c.configs.Resolve(ctx, g.Nodes(), file.Configs, file.Metadata)
	if len(resolution.Unresolved) > 0 {
		return nil, nil, compileErr("config resolution",
			fmt.Errorf("no configuration resolved for node(s): %s", strings.Join(resolution.Unresolved, ", ")))
	}

	a, err := assembler.New(assembler.Env{
		Graph:    g,
		Configs:  resolution.Assigned,
		Builders: c.set.Builders,
		Specs:    c.set.Specs,
		Table:    c.set.Table,
		Resolver: c.resolver,
		Session:  c.opts.Session,
		Role:     c.opts.Role,
	})
	if err != nil {
		return nil, nil, compileErr("template creation", err)
	}
	return a, resolution, nil
}

// Compile runs the full pipeline build and returns the assembled result.
func (c *Compiler) Compile(ctx context.Context, g *dag.Graph, file *config.File) (*assembler.Result, error) {
	result, _, err := c.compile(ctx, g, file)
	return result, err
}

// CompileWithReport compiles and additionally returns a conversion report
// describing the resolution and assembly.
func (c *Compiler) CompileWithReport(ctx context.Context, g *dag.Graph, file *config.File) (*assembler.Result, *ConversionReport, error) {
	return c.compile(ctx, g, file)
}

func (c *Compiler) compile(ctx context.Context, g *dag.Graph, file *config.File) (*assembler.Result, *ConversionReport, error) {
	logger := ctxlog.FromContext(ctx)

	a, resolution, err := c.template(ctx, g, file)
	if err != nil {
		return nil, nil, err
	}

	name := c.opts.PipelineName
	if name == "" {
		base := resolution.Assigned[g.Nodes()[0]]
		name = c.names.GeneratePipelineName(base.PipelineName(), base.PipelineVersion())
	}

	result, err := a.GeneratePipeline(ctx, name)
	if err != nil {
		return nil, nil, compileErr("assembly", err)
	}

	report := &ConversionReport{
		PipelineName: result.Pipeline.Name(),
		Resolution:   make(map[string]string, len(resolution.Assigned)),
	}
	for _, step := range result.Pipeline.Steps() {
		report.StepOrder = append(report.StepOrder, step.Name())
	}
	for node, cfg := range resolution.Assigned {
		report.Resolution[node] = cfg.Name()
	}
	for stepName := range result.Artifacts {
		report.Artifacts = append(report.Artifacts, stepName)
	}
	sort.Strings(report.Artifacts)
	for _, node := range resolution.Ambiguous {
		report.Warnings = append(report.Warnings, fmt.Sprintf("ambiguous config resolution for node '%s'", node))
	}

	logger.Info("Compilation complete.", "pipeline", report.PipelineName, "steps", len(report.StepOrder))
	return result, report, nil
}

// ValidateDAGCompatibility runs the non-throwing compatibility check.
func (c *Compiler) ValidateDAGCompatibility(ctx context.Context, g *dag.Graph, file *config.File) *ValidationResult {
	return c.engine.Validate(ctx, g, file)
}

// PreviewResolution exposes the ranked config candidates per node without
// committing to a build.
func (c *Compiler) PreviewResolution(ctx context.Context, g *dag.Graph, file *config.File) *ResolutionPreview {
	return c.engine.Preview(ctx, g, file)
}

// ValidateConfigFile loads and validates a configuration file, reporting
// problems instead of failing.
func (c *Compiler) ValidateConfigFile(ctx context.Context, path string) *ValidationResult {
	result := &ValidationResult{}
	file, err := config.Load(ctx, path)
	if err != nil {
		result.Warnings = append(result.Warnings, err.Error())
		return result
	}

	result.Valid = true
	for name, cfg := range file.Configs {
		if _, ok := c.set.Table.StepType(cfg.Type()); !ok {
			result.UnknownVariants = append(result.UnknownVariants, fmt.Sprintf("%s (%s)", name, cfg.Type()))
			result.Valid = false
		}
	}
	sort.Strings(result.UnknownVariants)
	return result
}
