package compiler

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/vk/pipewright/internal/builders"
	"github.com/vk/pipewright/internal/config"
	"github.com/vk/pipewright/internal/ctxlog"
	"github.com/vk/pipewright/internal/dag"
	"github.com/vk/pipewright/internal/deps"
)

// ValidationResult is the structured outcome of a compatibility check. It
// distinguishes the failure classes instead of collapsing them into one
// error, so a caller can see every problem in a single pass.
type ValidationResult struct {
	Valid bool
	// MissingConfigs lists DAG nodes no configuration could be resolved for.
	MissingConfigs []string
	// UnknownVariants lists resolved configs whose variant has no step type.
	UnknownVariants []string
	// MissingBuilders lists step types without a registered builder factory.
	MissingBuilders []string
	// UnresolvedDependencies lists required slots no producer can satisfy,
	// as "node.dependency" strings.
	UnresolvedDependencies []string
	// CycleError carries the cycle description when the graph is not acyclic.
	CycleError string
	// Warnings carries non-blocking findings, e.g. ambiguous resolutions.
	Warnings []string
}

// Summary renders the result as a short human-readable report.
func (r *ValidationResult) Summary() string {
	if r.Valid {
		if len(r.Warnings) == 0 {
			return "validation passed"
		}
		return fmt.Sprintf("validation passed with %d warning(s): %s", len(r.Warnings), strings.Join(r.Warnings, "; "))
	}

	var parts []string
	if len(r.MissingConfigs) > 0 {
		parts = append(parts, fmt.Sprintf("missing configs: %s", strings.Join(r.MissingConfigs, ", ")))
	}
	if len(r.UnknownVariants) > 0 {
		parts = append(parts, fmt.Sprintf("unknown config variants: %s", strings.Join(r.UnknownVariants, ", ")))
	}
	if len(r.MissingBuilders) > 0 {
		parts = append(parts, fmt.Sprintf("missing builders: %s", strings.Join(r.MissingBuilders, ", ")))
	}
	if len(r.UnresolvedDependencies) > 0 {
		parts = append(parts, fmt.Sprintf("unresolved dependencies: %s", strings.Join(r.UnresolvedDependencies, ", ")))
	}
	if r.CycleError != "" {
		parts = append(parts, r.CycleError)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NodePreview is the ranked candidate view for one DAG node.
type NodePreview struct {
	Candidates []Candidate
	Resolved   bool
	Ambiguous  bool
}

// ResolutionPreview exposes the config resolver's ranked candidates and
// confidence scores without committing to a build.
type ResolutionPreview struct {
	Nodes map[string]*NodePreview
}

// ConversionReport summarizes one successful compilation.
type ConversionReport struct {
	PipelineName string
	// StepOrder is the instantiation order of the pipeline's steps.
	StepOrder []string
	// Resolution maps each node to the config name it was built from.
	Resolution map[string]string
	// Artifacts lists the step names that contributed assembly artifacts.
	Artifacts []string
	Warnings  []string
}

// Summary renders the report as a short human-readable description.
func (r *ConversionReport) Summary() string {
	return fmt.Sprintf("pipeline '%s': %d step(s) [%s], %d artifact(s), %d warning(s)",
		r.PipelineName, len(r.StepOrder), strings.Join(r.StepOrder, " -> "), len(r.Artifacts), len(r.Warnings))
}

// ValidationEngine runs the non-throwing compatibility checks. Every
// internal failure is converted into the result structure; no error ever
// escapes a validation call.
type ValidationEngine struct {
	set      *builders.Set
	resolver *deps.Resolver
	configs  *ConfigResolver
}

// NewValidationEngine creates an engine over the registered builder set.
func NewValidationEngine(set *builders.Set, resolver *deps.Resolver) *ValidationEngine {
	return &ValidationEngine{
		set:      set,
		resolver: resolver,
		configs:  NewConfigResolver(set.Table),
	}
}

// Validate checks a DAG against a loaded configuration file: config
// resolution, variant and builder coverage, acyclicity, and dependency
// resolvability along the graph's edges.
func (e *ValidationEngine) Validate(ctx context.Context, g *dag.Graph, file *config.File) *ValidationResult {
	logger := ctxlog.FromContext(ctx)
	result := &ValidationResult{}

	resolution := e.configs.Resolve(ctx, g.Nodes(), file.Configs, file.Metadata)
	result.MissingConfigs = append(result.MissingConfigs, resolution.Unresolved...)
	for _, node := range resolution.Ambiguous {
		result.Warnings = append(result.Warnings, fmt.Sprintf("ambiguous config resolution for node '%s'", node))
	}

	stepTypes := make(map[string]string, len(resolution.Assigned))
	for _, node := range g.Nodes() {
		cfg, ok := resolution.Assigned[node]
		if !ok {
			continue
		}
		stepType, ok := e.set.Table.StepType(cfg.Type())
		if !ok {
			result.UnknownVariants = append(result.UnknownVariants, fmt.Sprintf("%s (%s)", node, cfg.Type()))
			continue
		}
		stepTypes[node] = stepType
		if _, ok := e.set.Builders.Get(stepType); !ok {
			result.MissingBuilders = append(result.MissingBuilders, stepType)
		}
	}

	if err := g.DetectCycles(); err != nil {
		result.CycleError = err.Error()
	}

	result.UnresolvedDependencies = e.checkDependencies(ctx, g, stepTypes)

	result.Valid = len(result.MissingConfigs) == 0 &&
		len(result.UnknownVariants) == 0 &&
		len(result.MissingBuilders) == 0 &&
		len(result.UnresolvedDependencies) == 0 &&
		result.CycleError == ""

	logger.Debug("Validation finished.", "valid", result.Valid)
	return result
}

// Preview exposes the ranked candidate mappings without building anything.
func (e *ValidationEngine) Preview(ctx context.Context, g *dag.Graph, file *config.File) *ResolutionPreview {
	resolution := e.configs.Resolve(ctx, g.Nodes(), file.Configs, file.Metadata)

	preview := &ResolutionPreview{Nodes: make(map[string]*NodePreview, g.Len())}
	ambiguous := make(map[string]bool, len(resolution.Ambiguous))
	for _, node := range resolution.Ambiguous {
		ambiguous[node] = true
	}
	for _, node := range g.Nodes() {
		_, resolved := resolution.Assigned[node]
		preview.Nodes[node] = &NodePreview{
			Candidates: resolution.Candidates[node],
			Resolved:   resolved,
			Ambiguous:  ambiguous[node],
		}
	}
	return preview
}

// checkDependencies replays dependency resolution along the graph's edges
// and reports required slots that stay empty. Nodes whose step type is
// unknown are skipped; they are already reported separately.
func (e *ValidationEngine) checkDependencies(ctx context.Context, g *dag.Graph, stepTypes map[string]string) []string {
	matched := make(map[string]map[string]bool)

	for _, edge := range g.Edges() {
		producerType, ok := stepTypes[edge.From]
		if !ok {
			continue
		}
		consumerType, ok := stepTypes[edge.To]
		if !ok {
			continue
		}
		producerSpec, ok := e.set.Specs.Get(producerType)
		if !ok {
			continue
		}
		consumerSpec, ok := e.set.Specs.Get(consumerType)
		if !ok {
			continue
		}

		producers := []deps.Producer{{StepName: edge.From, Spec: producerSpec}}
		for depName, dep := range consumerSpec.Dependencies {
			if _, found := e.resolver.Resolve(ctx, consumerSpec.StepType, dep, producers); !found {
				continue
			}
			if matched[edge.To] == nil {
				matched[edge.To] = make(map[string]bool)
			}
			matched[edge.To][depName] = true
		}
	}

	var unresolved []string
	for _, node := range g.Nodes() {
		stepType, ok := stepTypes[node]
		if !ok {
			continue
		}
		s, ok := e.set.Specs.Get(stepType)
		if !ok {
			continue
		}
		for depName, dep := range s.Dependencies {
			if dep.Required && !matched[node][depName] {
				unresolved = append(unresolved, fmt.Sprintf("%s.%s", node, depName))
			}
		}
	}
	sort.Strings(unresolved)
	return unresolved
}
