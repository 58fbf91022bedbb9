package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAppliesDefaultsAndDerivedFields(t *testing.T) {
	cfg, err := New("data_load", Raw{Type: "DataLoadConfig"})
	require.NoError(t, err)

	assert.Equal(t, "data_load", cfg.Name())
	assert.Equal(t, "DataLoadConfig", cfg.Type())
	assert.Equal(t, DefaultInstanceType, cfg.InstanceType())
	assert.Equal(t, DefaultInstanceCount, cfg.InstanceCount())
	assert.True(t, cfg.CacheEnabled())
	assert.Equal(t, DefaultBaseLocation+"/"+DefaultPipelineName, cfg.OutputPrefix())
}

func TestNewValidation(t *testing.T) {
	t.Run("missing type", func(t *testing.T) {
		_, err := New("x", Raw{})
		require.Error(t, err)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Detail, "Type")
	})

	t.Run("empty name", func(t *testing.T) {
		_, err := New("", Raw{Type: "DataLoadConfig"})
		assert.ErrorContains(t, err, "empty config name")
	})

	t.Run("bad job type", func(t *testing.T) {
		_, err := New("x", Raw{Type: "DataLoadConfig", JobType: "nonsense"})
		assert.Error(t, err)
	})

	t.Run("bad base location", func(t *testing.T) {
		_, err := New("x", Raw{Type: "DataLoadConfig", BaseLocation: "/local/path"})
		assert.Error(t, err)
	})

	t.Run("bad instance count", func(t *testing.T) {
		_, err := New("x", Raw{Type: "DataLoadConfig", InstanceCount: -2})
		assert.Error(t, err)
	})
}

func TestNewExplicitValuesWin(t *testing.T) {
	off := false
	cfg, err := New("train", Raw{
		Type:            "XGBoostTrainingConfig",
		JobType:         "training",
		PipelineName:    "fraud-model",
		PipelineVersion: "2.1",
		BaseLocation:    "s3://my-bucket/pipelines/",
		InstanceType:    "ml.c5.2xlarge",
		InstanceCount:   4,
		EnableCaching:   &off,
		Parameters:      map[string]string{"max_depth": "6"},
	})
	require.NoError(t, err)

	assert.Equal(t, "training", cfg.JobType())
	assert.Equal(t, "ml.c5.2xlarge", cfg.InstanceType())
	assert.Equal(t, 4, cfg.InstanceCount())
	assert.False(t, cfg.CacheEnabled())
	assert.Equal(t, "s3://my-bucket/pipelines/fraud-model", cfg.OutputPrefix())

	v, ok := cfg.Parameter("max_depth")
	require.True(t, ok)
	assert.Equal(t, "6", v)

	_, ok = cfg.Parameter("absent")
	assert.False(t, ok)
}

const sampleConfigFile = `
metadata:
  job_types:
    train_data_load: training
    calib_data_load: calibration
configs:
  data_load:
    type: DataLoadConfig
    job_type: training
  preprocess:
    type: TabularPreprocessingConfig
    job_type: training
  train:
    type: XGBoostTrainingConfig
    instance_type: ml.c5.4xlarge
`

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "configs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	file, err := Load(context.Background(), writeTempFile(t, sampleConfigFile))
	require.NoError(t, err)

	require.Len(t, file.Configs, 3)
	assert.Equal(t, "XGBoostTrainingConfig", file.Configs["train"].Type())
	assert.Equal(t, "ml.c5.4xlarge", file.Configs["train"].InstanceType())

	require.NotNil(t, file.Metadata)
	assert.Equal(t, "training", file.Metadata.JobTypes["train_data_load"])
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorContains(t, err, "failed to read")
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := Load(context.Background(), writeTempFile(t, "configs: ["))
		assert.ErrorContains(t, err, "failed to parse")
	})

	t.Run("empty configs", func(t *testing.T) {
		_, err := Load(context.Background(), writeTempFile(t, "metadata: {}\n"))
		assert.ErrorContains(t, err, "declares no configs")
	})

	t.Run("invalid config fails whole load", func(t *testing.T) {
		bad := `
configs:
  ok:
    type: DataLoadConfig
  broken:
    job_type: training
`
		_, err := Load(context.Background(), writeTempFile(t, bad))
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
	})
}
