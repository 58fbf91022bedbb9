package assembler

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/pipewright/internal/builders"
	"github.com/vk/pipewright/internal/config"
	"github.com/vk/pipewright/internal/ctxlog"
	"github.com/vk/pipewright/internal/dag"
	"github.com/vk/pipewright/internal/deps"
	"github.com/vk/pipewright/internal/pipeline"
	"github.com/vk/pipewright/internal/registry"
)

// Phase tracks how far an assembly has progressed.
type Phase int

const (
	PhaseInitialized Phase = iota
	PhaseBuildersReady
	PhaseMessagesPropagated
	PhaseStepsInstantiated
	PhasePipelineBuilt
)

// String renders the phase for logs.
func (p Phase) String() string {
	switch p {
	case PhaseInitialized:
		return "initialized"
	case PhaseBuildersReady:
		return "builders_ready"
	case PhaseMessagesPropagated:
		return "messages_propagated"
	case PhaseStepsInstantiated:
		return "steps_instantiated"
	case PhasePipelineBuilt:
		return "pipeline_built"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Env bundles the collaborators an assembler is constructed with.
type Env struct {
	Graph    *dag.Graph
	Configs  map[string]*config.Config
	Builders *builders.Registry
	Specs    *registry.SpecRegistry
	Table    *registry.StepTypeTable
	Resolver *deps.Resolver
	Session  pipeline.Session
	// Role is the fallback execution role for configs that declare none.
	Role string
}

// Result is one completed assembly: the pipeline object plus the
// per-assembly artifacts contributed by builders, keyed by step name.
type Result struct {
	Pipeline  *pipeline.Pipeline
	Artifacts map[string]any
}

// Assembler drives the phased assembly of one DAG. Builders are constructed
// once at first generation and reused; everything per-assembly (match table,
// step instances, artifacts) is reset on each GeneratePipeline call, so
// repeated generation from the same assembler is deterministic and
// side-effect free.
type Assembler struct {
	env Env

	phase     Phase
	stepTypes map[string]string

	builderFor map[string]builders.StepBuilder
	matches    map[string]map[string]*deps.Match
	instances  map[string]pipeline.Step
	artifacts  map[string]any
}

// New validates the structural preconditions and returns an assembler in the
// initialized phase. Every node must have a configuration, every
// configuration variant must map to a registered step type, and every step
// type must have a builder factory and a registered specification. Any
// violation is fatal here, before assembly begins.
func New(env Env) (*Assembler, error) {
	if env.Graph == nil {
		return nil, fmt.Errorf("assembler: nil graph")
	}

	stepTypes := make(map[string]string, env.Graph.Len())
	for _, node := range env.Graph.Nodes() {
		cfg, ok := env.Configs[node]
		if !ok {
			return nil, fmt.Errorf("assembler: no configuration for node '%s'", node)
		}
		stepType, ok := env.Table.StepType(cfg.Type())
		if !ok {
			return nil, fmt.Errorf("assembler: node '%s': no step type registered for config variant '%s'", node, cfg.Type())
		}
		if _, ok := env.Builders.Get(stepType); !ok {
			return nil, fmt.Errorf("assembler: node '%s': no builder registered for step type '%s'", node, stepType)
		}
		if _, ok := env.Specs.Get(stepType); !ok {
			return nil, fmt.Errorf("assembler: node '%s': no specification registered for step type '%s'", node, stepType)
		}
		stepTypes[node] = stepType
	}

	return &Assembler{
		env:       env,
		phase:     PhaseInitialized,
		stepTypes: stepTypes,
	}, nil
}

// Phase returns the current assembly phase.
func (a *Assembler) Phase() Phase {
	return a.phase
}

// StepType returns the resolved step type for a node.
func (a *Assembler) StepType(node string) (string, bool) {
	t, ok := a.stepTypes[node]
	return t, ok
}

// Matches returns the propagated match table for a node, keyed by dependency
// logical name. Valid after message propagation.
func (a *Assembler) Matches(node string) map[string]*deps.Match {
	out := make(map[string]*deps.Match, len(a.matches[node]))
	for name, m := range a.matches[node] {
		out[name] = m
	}
	return out
}

// GeneratePipeline runs the remaining phases and returns the assembled
// pipeline under the given name. Calling it again resets the per-assembly
// state and produces an equivalent result; builders persist across calls.
func (a *Assembler) GeneratePipeline(ctx context.Context, name string) (*Result, error) {
	logger := ctxlog.FromContext(ctx)

	a.matches = make(map[string]map[string]*deps.Match)
	a.instances = make(map[string]pipeline.Step)
	a.artifacts = make(map[string]any)

	if err := a.initializeBuilders(ctx); err != nil {
		return nil, err
	}
	if err := a.propagateMessages(ctx); err != nil {
		return nil, err
	}
	if err := a.instantiateSteps(ctx); err != nil {
		return nil, err
	}

	order, err := a.env.Graph.TopologicalSort()
	if err != nil {
		return nil, fmt.Errorf("assembler: %w", err)
	}
	steps := make([]pipeline.Step, 0, len(order))
	for _, node := range order {
		steps = append(steps, a.instances[node])
	}

	a.phase = PhasePipelineBuilt
	logger.Info("Pipeline assembled.", "name", name, "steps", len(steps))

	return &Result{
		Pipeline:  pipeline.New(name, steps),
		Artifacts: a.artifacts,
	}, nil
}

// initializeBuilders constructs one builder per node and validates its
// configuration. Builders survive across generations; a second call is a
// no-op.
func (a *Assembler) initializeBuilders(ctx context.Context) error {
	if a.builderFor != nil {
		a.phase = PhaseBuildersReady
		return nil
	}

	logger := ctxlog.FromContext(ctx)
	builderFor := make(map[string]builders.StepBuilder, a.env.Graph.Len())

	for _, node := range a.env.Graph.Nodes() {
		stepType := a.stepTypes[node]
		factory, _ := a.env.Builders.Get(stepType)

		cfg := a.env.Configs[node]
		// A role declared on the config outranks the environment default.
		role := cfg.Role()
		if role == "" {
			role = a.env.Role
		}

		builder, err := factory(builders.Env{
			Config:   cfg,
			Session:  a.env.Session,
			Role:     role,
			Resolver: a.env.Resolver,
			Specs:    a.env.Specs,
		})
		if err != nil {
			return fmt.Errorf("assembler: node '%s' (%s): builder construction failed: %w", node, stepType, err)
		}
		if err := builder.ValidateConfiguration(); err != nil {
			return fmt.Errorf("assembler: node '%s' (%s): %w", node, stepType, err)
		}
		builderFor[node] = builder
	}

	a.builderFor = builderFor
	a.phase = PhaseBuildersReady
	logger.Debug("Builders initialized.", "count", len(builderFor))
	return nil
}

// propagateMessages walks the graph's edges in insertion order, offering each
// edge's producer to the consumer's dependency slots. The match table only
// ever improves: an existing entry is replaced only by a strictly higher
// score, so edge ordering cannot degrade a resolved connection. Required
// slots still empty after all edges fail the assembly.
func (a *Assembler) propagateMessages(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	for _, edge := range a.env.Graph.Edges() {
		producerSpec, _ := a.env.Specs.Get(a.stepTypes[edge.From])
		consumerSpec, _ := a.env.Specs.Get(a.stepTypes[edge.To])

		producers := []deps.Producer{{StepName: edge.From, Spec: producerSpec}}
		for depName, dep := range consumerSpec.Dependencies {
			match, found := a.env.Resolver.Resolve(ctx, consumerSpec.StepType, dep, producers)
			if !found {
				continue
			}
			table := a.matches[edge.To]
			if table == nil {
				table = make(map[string]*deps.Match)
				a.matches[edge.To] = table
			}
			if existing, ok := table[depName]; ok && match.Score <= existing.Score {
				continue
			}
			table[depName] = match
		}
	}

	var missing []string
	for _, node := range a.env.Graph.Nodes() {
		consumerSpec, _ := a.env.Specs.Get(a.stepTypes[node])
		for depName, dep := range consumerSpec.Dependencies {
			if !dep.Required {
				continue
			}
			if _, ok := a.matches[node][depName]; !ok {
				missing = append(missing, fmt.Sprintf("%s.%s", node, depName))
			}
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("assembler: unresolved required dependencies: %s", strings.Join(missing, ", "))
	}

	a.phase = PhaseMessagesPropagated
	logger.Debug("Messages propagated.", "edges", len(a.env.Graph.Edges()))
	return nil
}

// instantiateSteps creates the step objects in topological order so every
// producer exists before its consumers read from it.
func (a *Assembler) instantiateSteps(ctx context.Context) error {
	order, err := a.env.Graph.TopologicalSort()
	if err != nil {
		return fmt.Errorf("assembler: %w", err)
	}

	for _, node := range order {
		step, err := a.instantiateStep(ctx, node)
		if err != nil {
			return err
		}
		a.instances[node] = step

		if provider, ok := a.builderFor[node].(builders.ArtifactProvider); ok {
			if value, ok := provider.Artifact(); ok {
				a.artifacts[node] = value
			}
		}
	}

	a.phase = PhaseStepsInstantiated
	return nil
}

// instantiateStep resolves the node's matched inputs against already-built
// producer steps and invokes its builder. Property resolution is the only
// tolerated failure: a reference that cannot be walked yields a placeholder
// location and a warning, all other builder errors are fatal.
func (a *Assembler) instantiateStep(ctx context.Context, node string) (pipeline.Step, error) {
	logger := ctxlog.FromContext(ctx)
	cfg := a.env.Configs[node]
	stepType := a.stepTypes[node]

	inputs := make(map[string]any, len(a.matches[node]))
	for depName, match := range a.matches[node] {
		ref := deps.PropertyReference{StepName: match.ProducerStep, Output: match.Output}
		value, err := ref.Resolve(a.instances)
		if err != nil {
			value = fmt.Sprintf("s3://pipeline-reference/%s/%s", match.ProducerStep, match.Output.LogicalName)
			logger.Warn("Property reference unresolved, using placeholder.",
				"step", node,
				"dependency", depName,
				"reference", ref.String(),
				"error", err)
		}
		inputs[depName] = value
	}

	preds, err := a.env.Graph.Predecessors(node)
	if err != nil {
		return nil, fmt.Errorf("assembler: node '%s': %w", node, err)
	}
	dependencies := make([]pipeline.Step, 0, len(preds))
	for _, pred := range preds {
		dependencies = append(dependencies, a.instances[pred])
	}

	step, err := a.builderFor[node].CreateStep(builders.CreateStepInput{
		Inputs:        inputs,
		Outputs:       a.generateOutputs(node),
		Dependencies:  dependencies,
		EnableCaching: cfg.CacheEnabled(),
	})
	if err != nil {
		return nil, fmt.Errorf("assembler: node '%s' (%s): step creation failed: %w", node, stepType, err)
	}
	return step, nil
}

// generateOutputs assigns every declared output of the node a stable
// location: {output_prefix}/{step_type}/{logical_name}.
func (a *Assembler) generateOutputs(node string) map[string]string {
	cfg := a.env.Configs[node]
	stepType := a.stepTypes[node]
	s, _ := a.env.Specs.Get(stepType)

	out := make(map[string]string, len(s.Outputs))
	for logicalName := range s.Outputs {
		out[logicalName] = fmt.Sprintf("%s/%s/%s", cfg.OutputPrefix(), strings.ToLower(stepType), logicalName)
	}
	return out
}
