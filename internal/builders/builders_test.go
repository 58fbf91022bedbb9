package builders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/pipewright/internal/pipeline"
	"github.com/vk/pipewright/internal/spec"
)

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	factory := func(env Env) (StepBuilder, error) { return nil, nil }

	reg.Register("DataLoad", factory)
	reg.Register("XGBoostTraining", factory)

	_, ok := reg.Get("DataLoad")
	assert.True(t, ok)
	_, ok = reg.Get("Unknown")
	assert.False(t, ok)

	assert.Equal(t, []string{"DataLoad", "XGBoostTraining"}, reg.StepTypes())

	assert.Panics(t, func() { reg.Register("DataLoad", factory) })
}

func TestMaterialize(t *testing.T) {
	s, err := spec.New("Trainer", spec.NodeSource, nil, []*spec.OutputSpec{
		{
			LogicalName:  "model_artifacts",
			Type:         spec.ModelArtifacts,
			PropertyPath: "properties.ModelArtifacts.S3ModelArtifacts",
			DataType:     "S3Uri",
		},
	})
	require.NoError(t, err)

	dep := pipeline.NewStep("upstream", nil, nil)

	t.Run("exposes outputs at their property paths", func(t *testing.T) {
		step, err := Materialize("train", s, CreateStepInput{
			Outputs:      map[string]string{"model_artifacts": "s3://base/xgboosttraining/model_artifacts"},
			Dependencies: []pipeline.Step{dep},
		})
		require.NoError(t, err)
		assert.Equal(t, "train", step.Name())
		require.Len(t, step.Dependencies(), 1)

		path, err := spec.ParsePropertyPath("properties.ModelArtifacts.S3ModelArtifacts")
		require.NoError(t, err)
		v, err := path.Resolve(step.Properties())
		require.NoError(t, err)
		assert.Equal(t, "s3://base/xgboosttraining/model_artifacts", v)
	})

	t.Run("missing generated location is an error", func(t *testing.T) {
		_, err := Materialize("train", s, CreateStepInput{Outputs: map[string]string{}})
		assert.ErrorContains(t, err, "no generated location")
	})
}
