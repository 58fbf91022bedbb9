package assembler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/pipewright/internal/builders"
	"github.com/vk/pipewright/internal/builders/dataload"
	"github.com/vk/pipewright/internal/builders/evaluate"
	"github.com/vk/pipewright/internal/builders/preprocess"
	"github.com/vk/pipewright/internal/builders/register"
	"github.com/vk/pipewright/internal/builders/train"
	"github.com/vk/pipewright/internal/config"
	"github.com/vk/pipewright/internal/dag"
	"github.com/vk/pipewright/internal/deps"
	"github.com/vk/pipewright/internal/pipeline"
	"github.com/vk/pipewright/internal/registry"
)

func newSet(t *testing.T) *builders.Set {
	t.Helper()
	set := &builders.Set{
		Builders: builders.NewRegistry(),
		Specs:    registry.NewSpecRegistry("test"),
		Table:    registry.NewStepTypeTable(),
	}
	modules := []builders.Module{
		dataload.Module{},
		preprocess.Module{},
		train.Module{},
		evaluate.Module{},
		register.Module{},
	}
	for _, m := range modules {
		require.NoError(t, m.Register(set))
	}
	return set
}

func newConfig(t *testing.T, name, variant string) *config.Config {
	t.Helper()
	cfg, err := config.New(name, config.Raw{
		Type:    variant,
		JobType: "training",
		Role:    "arn:aws:iam::123456789012:role/pipelines",
	})
	require.NoError(t, err)
	return cfg
}

func newEnv(t *testing.T, g *dag.Graph, configs map[string]*config.Config) Env {
	t.Helper()
	set := newSet(t)
	return Env{
		Graph:    g,
		Configs:  configs,
		Builders: set.Builders,
		Specs:    set.Specs,
		Table:    set.Table,
		Resolver: deps.NewResolver(set.Specs),
		Session:  pipeline.Session("test-session"),
		Role:     "arn:aws:iam::123456789012:role/pipelines",
	}
}

// trainingGraph is the canonical load -> preprocess -> train -> register
// shape used across tests.
func trainingGraph(t *testing.T) (*dag.Graph, map[string]*config.Config) {
	t.Helper()
	g := dag.New()
	for _, n := range []string{"load", "prep", "fit", "reg"} {
		g.AddNode(n)
	}
	require.NoError(t, g.AddEdge("load", "prep"))
	require.NoError(t, g.AddEdge("prep", "fit"))
	require.NoError(t, g.AddEdge("fit", "reg"))

	configs := map[string]*config.Config{
		"load": newConfig(t, "load", dataload.ConfigVariant),
		"prep": newConfig(t, "prep", preprocess.ConfigVariant),
		"fit":  newConfig(t, "fit", train.ConfigVariant),
		"reg":  newConfig(t, "reg", register.ConfigVariant),
	}
	return g, configs
}

func TestNewValidation(t *testing.T) {
	t.Run("missing config fails at construction", func(t *testing.T) {
		g, configs := trainingGraph(t)
		delete(configs, "fit")

		_, err := New(newEnv(t, g, configs))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no configuration for node 'fit'")
	})

	t.Run("unknown config variant fails at construction", func(t *testing.T) {
		g, configs := trainingGraph(t)
		configs["fit"] = newConfig(t, "fit", "NoSuchConfig")

		_, err := New(newEnv(t, g, configs))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no step type registered for config variant 'NoSuchConfig'")
	})

	t.Run("valid graph starts initialized", func(t *testing.T) {
		g, configs := trainingGraph(t)
		a, err := New(newEnv(t, g, configs))
		require.NoError(t, err)
		assert.Equal(t, PhaseInitialized, a.Phase())

		stepType, ok := a.StepType("fit")
		require.True(t, ok)
		assert.Equal(t, train.StepType, stepType)
	})
}

func TestGeneratePipeline(t *testing.T) {
	ctx := context.Background()

	g, configs := trainingGraph(t)
	a, err := New(newEnv(t, g, configs))
	require.NoError(t, err)

	result, err := a.GeneratePipeline(ctx, "fraud-model")
	require.NoError(t, err)
	assert.Equal(t, PhasePipelineBuilt, a.Phase())

	require.NotNil(t, result.Pipeline)
	assert.Equal(t, "fraud-model", result.Pipeline.Name())

	steps := result.Pipeline.Steps()
	require.Len(t, steps, 4)
	names := make([]string, len(steps))
	for i, s := range steps {
		names[i] = s.Name()
	}
	assert.Equal(t, []string{"load", "prep", "fit", "reg"}, names)

	t.Run("training data wired from preprocessing output location", func(t *testing.T) {
		fit, ok := steps[2].(*pipeline.GenericStep)
		require.True(t, ok)

		prefix := configs["prep"].OutputPrefix()
		assert.Equal(t, prefix+"/tabularpreprocessing/processed_data", fit.Inputs()["training_data"])
	})

	t.Run("predecessor step objects attached", func(t *testing.T) {
		predecessors := steps[3].Dependencies()
		require.Len(t, predecessors, 1)
		assert.Equal(t, "fit", predecessors[0].Name())
	})

	t.Run("optional absent dependency is not an error", func(t *testing.T) {
		// No evaluation node exists, so the registration step's optional
		// evaluation_metrics slot stays empty.
		reg, ok := steps[3].(*pipeline.GenericStep)
		require.True(t, ok)
		_, present := reg.Inputs()["evaluation_metrics"]
		assert.False(t, present)
	})

	t.Run("data load request surfaced as per-assembly artifact", func(t *testing.T) {
		require.Contains(t, result.Artifacts, "load")
		request, ok := result.Artifacts["load"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "training", request["job_type"])
	})
}

func TestGeneratePipelineIdempotent(t *testing.T) {
	ctx := context.Background()

	g, configs := trainingGraph(t)
	a, err := New(newEnv(t, g, configs))
	require.NoError(t, err)

	first, err := a.GeneratePipeline(ctx, "run-a")
	require.NoError(t, err)
	second, err := a.GeneratePipeline(ctx, "run-b")
	require.NoError(t, err)

	assert.Equal(t, "run-a", first.Pipeline.Name())
	assert.Equal(t, "run-b", second.Pipeline.Name())

	firstSteps := first.Pipeline.Steps()
	secondSteps := second.Pipeline.Steps()
	require.Len(t, secondSteps, len(firstSteps))
	for i := range firstSteps {
		assert.Equal(t, firstSteps[i].Name(), secondSteps[i].Name())
		// Step instances are rebuilt per assembly, never shared.
		assert.NotSame(t, firstSteps[i], secondSteps[i])
	}

	require.Contains(t, second.Artifacts, "load")
}

func TestGeneratePipelineRolePrecedence(t *testing.T) {
	ctx := context.Background()
	loadGraph := func() *dag.Graph {
		g := dag.New()
		g.AddNode("load")
		return g
	}
	generate := func(t *testing.T, cfg *config.Config) (Env, map[string]any) {
		t.Helper()
		env := newEnv(t, loadGraph(), map[string]*config.Config{"load": cfg})
		a, err := New(env)
		require.NoError(t, err)
		result, err := a.GeneratePipeline(ctx, "p")
		require.NoError(t, err)
		request, ok := result.Artifacts["load"].(map[string]any)
		require.True(t, ok)
		return env, request
	}

	t.Run("config role outranks environment default", func(t *testing.T) {
		cfg, err := config.New("load", config.Raw{
			Type:    dataload.ConfigVariant,
			JobType: "training",
			Role:    "arn:aws:iam::123456789012:role/dedicated",
		})
		require.NoError(t, err)

		_, request := generate(t, cfg)
		assert.Equal(t, "arn:aws:iam::123456789012:role/dedicated", request["role"])
	})

	t.Run("config without role falls back to environment", func(t *testing.T) {
		cfg, err := config.New("load", config.Raw{
			Type:    dataload.ConfigVariant,
			JobType: "training",
		})
		require.NoError(t, err)

		env, request := generate(t, cfg)
		assert.Equal(t, env.Role, request["role"])
	})
}

func TestPropagateMessages(t *testing.T) {
	ctx := context.Background()

	t.Run("best producer wins across edges", func(t *testing.T) {
		// Both the raw load output and the processed output are offered to
		// the training step; the processed output carries the exact
		// training_data alias and must win.
		g := dag.New()
		for _, n := range []string{"load", "prep", "fit"} {
			g.AddNode(n)
		}
		require.NoError(t, g.AddEdge("load", "prep"))
		require.NoError(t, g.AddEdge("load", "fit"))
		require.NoError(t, g.AddEdge("prep", "fit"))

		configs := map[string]*config.Config{
			"load": newConfig(t, "load", dataload.ConfigVariant),
			"prep": newConfig(t, "prep", preprocess.ConfigVariant),
			"fit":  newConfig(t, "fit", train.ConfigVariant),
		}

		a, err := New(newEnv(t, g, configs))
		require.NoError(t, err)
		_, err = a.GeneratePipeline(ctx, "p")
		require.NoError(t, err)

		match := a.Matches("fit")["training_data"]
		require.NotNil(t, match)
		assert.Equal(t, "prep", match.ProducerStep)
		assert.Equal(t, "processed_data", match.OutputName)
	})

	t.Run("unresolved required dependency aborts assembly", func(t *testing.T) {
		// Registration demands model artifacts from a training producer; a
		// data load step cannot satisfy that slot.
		g := dag.New()
		g.AddNode("load")
		g.AddNode("reg")
		require.NoError(t, g.AddEdge("load", "reg"))

		configs := map[string]*config.Config{
			"load": newConfig(t, "load", dataload.ConfigVariant),
			"reg":  newConfig(t, "reg", register.ConfigVariant),
		}

		a, err := New(newEnv(t, g, configs))
		require.NoError(t, err)

		_, err = a.GeneratePipeline(ctx, "p")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unresolved required dependencies")
		assert.Contains(t, err.Error(), "reg.model_artifacts")
	})
}

func TestFullEvaluationPipeline(t *testing.T) {
	ctx := context.Background()

	g := dag.New()
	for _, n := range []string{"load", "prep", "fit", "eval", "reg"} {
		g.AddNode(n)
	}
	require.NoError(t, g.AddEdge("load", "prep"))
	require.NoError(t, g.AddEdge("prep", "fit"))
	require.NoError(t, g.AddEdge("fit", "eval"))
	require.NoError(t, g.AddEdge("prep", "eval"))
	require.NoError(t, g.AddEdge("fit", "reg"))
	require.NoError(t, g.AddEdge("eval", "reg"))

	configs := map[string]*config.Config{
		"load": newConfig(t, "load", dataload.ConfigVariant),
		"prep": newConfig(t, "prep", preprocess.ConfigVariant),
		"fit":  newConfig(t, "fit", train.ConfigVariant),
		"eval": newConfig(t, "eval", evaluate.ConfigVariant),
		"reg":  newConfig(t, "reg", register.ConfigVariant),
	}

	a, err := New(newEnv(t, g, configs))
	require.NoError(t, err)

	result, err := a.GeneratePipeline(ctx, "scored-model")
	require.NoError(t, err)
	require.Len(t, result.Pipeline.Steps(), 5)

	// The optional evaluation_metrics slot now has a producer and gets wired.
	reg, ok := result.Pipeline.Steps()[4].(*pipeline.GenericStep)
	require.True(t, ok)
	assert.Contains(t, reg.Inputs(), "evaluation_metrics")
	assert.Contains(t, reg.Inputs(), "model_artifacts")
}
