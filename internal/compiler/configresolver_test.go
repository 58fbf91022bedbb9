package compiler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/pipewright/internal/config"
	"github.com/vk/pipewright/internal/registry"
)

func testTable(t *testing.T) *registry.StepTypeTable {
	t.Helper()
	table := registry.NewStepTypeTable()
	require.NoError(t, table.Register("DataLoadConfig", "DataLoad"))
	require.NoError(t, table.Register("TabularPreprocessingConfig", "TabularPreprocessing"))
	require.NoError(t, table.Register("XGBoostTrainingConfig", "XGBoostTraining"))
	return table
}

func testConfig(t *testing.T, name, variant, jobType string) *config.Config {
	t.Helper()
	cfg, err := config.New(name, config.Raw{Type: variant, JobType: jobType})
	require.NoError(t, err)
	return cfg
}

func TestConfigResolverExactMatch(t *testing.T) {
	r := NewConfigResolver(testTable(t))
	configs := map[string]*config.Config{
		"load": testConfig(t, "load", "DataLoadConfig", "training"),
		"prep": testConfig(t, "prep", "TabularPreprocessingConfig", ""),
	}

	res := r.Resolve(context.Background(), []string{"load", "prep"}, configs, nil)

	require.Empty(t, res.Unresolved)
	require.Empty(t, res.Ambiguous)
	assert.Same(t, configs["load"], res.Assigned["load"])
	assert.Same(t, configs["prep"], res.Assigned["prep"])
	assert.Equal(t, 1.0, res.Candidates["load"][0].Confidence)
}

func TestConfigResolverJobTypeAlignment(t *testing.T) {
	r := NewConfigResolver(testTable(t))
	configs := map[string]*config.Config{
		"data_load_1": testConfig(t, "data_load_1", "DataLoadConfig", "training"),
		"data_load_2": testConfig(t, "data_load_2", "DataLoadConfig", "calibration"),
	}

	t.Run("node name token hints the job type", func(t *testing.T) {
		res := r.Resolve(context.Background(), []string{"train_data_load"}, configs, nil)
		require.Contains(t, res.Assigned, "train_data_load")
		assert.Equal(t, "training", res.Assigned["train_data_load"].JobType())
	})

	t.Run("explicit metadata hint wins over name tokens", func(t *testing.T) {
		metadata := &config.Metadata{JobTypes: map[string]string{"train_data_load": "calibration"}}
		res := r.Resolve(context.Background(), []string{"train_data_load"}, configs, metadata)
		require.Contains(t, res.Assigned, "train_data_load")
		assert.Equal(t, "calibration", res.Assigned["train_data_load"].JobType())
	})
}

func TestConfigResolverAmbiguity(t *testing.T) {
	r := NewConfigResolver(testTable(t))
	configs := map[string]*config.Config{
		"prep_a": testConfig(t, "prep_a", "TabularPreprocessingConfig", ""),
		"prep_b": testConfig(t, "prep_b", "TabularPreprocessingConfig", ""),
	}

	res := r.Resolve(context.Background(), []string{"prep"}, configs, nil)

	assert.Equal(t, []string{"prep"}, res.Ambiguous)
	// The top candidate is still assigned; tie-break is by config name.
	require.Contains(t, res.Assigned, "prep")
	assert.Equal(t, "prep_a", res.Candidates["prep"][0].ConfigName)
	assert.Same(t, configs["prep_a"], res.Assigned["prep"])
}

func TestConfigResolverUnresolved(t *testing.T) {
	r := NewConfigResolver(testTable(t))
	configs := map[string]*config.Config{
		"data_load": testConfig(t, "data_load", "DataLoadConfig", ""),
	}

	res := r.Resolve(context.Background(), []string{"registration"}, configs, nil)

	assert.Equal(t, []string{"registration"}, res.Unresolved)
	assert.NotContains(t, res.Assigned, "registration")
	// Candidates are still reported for inspection.
	require.Len(t, res.Candidates["registration"], 1)
	assert.Less(t, res.Candidates["registration"][0].Confidence, MinimumConfidence)
}

func TestConfigResolverCandidateOrdering(t *testing.T) {
	r := NewConfigResolver(testTable(t))
	configs := map[string]*config.Config{
		"train_config": testConfig(t, "train_config", "XGBoostTrainingConfig", "training"),
		"data_load":    testConfig(t, "data_load", "DataLoadConfig", ""),
	}

	res := r.Resolve(context.Background(), []string{"train_step"}, configs, nil)

	candidates := res.Candidates["train_step"]
	require.Len(t, candidates, 2)
	assert.Equal(t, "train_config", candidates[0].ConfigName)
	assert.Greater(t, candidates[0].Confidence, candidates[1].Confidence)
}
