package deps

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vk/pipewright/internal/spec"
)

func TestScoreSameNameSameType(t *testing.T) {
	// Identical logical name, type and data type must always clear the
	// acceptance threshold.
	m := NewSemanticMatcher()

	dep := &spec.DependencySpec{
		LogicalName: "processed_data",
		Type:        spec.ProcessingOutput,
		DataType:    "S3Uri",
	}
	out := &spec.OutputSpec{
		LogicalName:  "processed_data",
		Type:         spec.ProcessingOutput,
		PropertyPath: "properties.Outputs['processed_data'].S3Uri",
		DataType:     "S3Uri",
	}

	score := m.Score(dep, out, "AnyProducer")
	assert.GreaterOrEqual(t, score, AcceptanceThreshold)
	assert.LessOrEqual(t, score, 1.0)
}

func TestScoreHardSourceGate(t *testing.T) {
	// A non-empty compatible-sources set that excludes the producer zeroes
	// the score regardless of perfect name and keyword overlap.
	m := NewSemanticMatcher()

	dep := &spec.DependencySpec{
		LogicalName:       "training_data",
		Type:              spec.ProcessingOutput,
		CompatibleSources: []string{"OtherType"},
		SemanticKeywords:  []string{"training", "data"},
		DataType:          "S3Uri",
	}
	out := &spec.OutputSpec{
		LogicalName:  "training_data",
		Type:         spec.ProcessingOutput,
		PropertyPath: "properties.Outputs['training_data'].S3Uri",
		DataType:     "S3Uri",
		Description:  "training data",
	}

	assert.Equal(t, 0.0, m.Score(dep, out, "DataLoad"))
	assert.Positive(t, m.Score(dep, out, "OtherType"))
}

func TestScoreHardTypeGate(t *testing.T) {
	m := NewSemanticMatcher()

	dep := &spec.DependencySpec{
		LogicalName: "model_artifacts",
		Type:        spec.ModelArtifacts,
		DataType:    "S3Uri",
	}
	out := &spec.OutputSpec{
		LogicalName:  "model_artifacts",
		Type:         spec.Hyperparameters,
		PropertyPath: "properties.Outputs['model_artifacts'].S3Uri",
		DataType:     "S3Uri",
	}

	// No compatibility relation between the types: hard zero despite the
	// exact name and data type match.
	assert.Equal(t, 0.0, m.Score(dep, out, "Trainer"))
}

func TestScoreAliasesCountAsNames(t *testing.T) {
	m := NewSemanticMatcher()

	dep := &spec.DependencySpec{
		LogicalName: "training_data",
		Type:        spec.ProcessingOutput,
		DataType:    "S3Uri",
	}
	withAlias := &spec.OutputSpec{
		LogicalName:  "processed_data",
		Aliases:      []string{"training_data"},
		Type:         spec.ProcessingOutput,
		PropertyPath: "properties.Outputs['processed_data'].S3Uri",
		DataType:     "S3Uri",
	}
	withoutAlias := &spec.OutputSpec{
		LogicalName:  "processed_data",
		Type:         spec.ProcessingOutput,
		PropertyPath: "properties.Outputs['processed_data'].S3Uri",
		DataType:     "S3Uri",
	}

	assert.Greater(t, m.Score(dep, withAlias, "P"), m.Score(dep, withoutAlias, "P"))
}

func TestScoreSemanticKeywordScenario(t *testing.T) {
	// The load -> train wiring scenario: fuzzy name plus keyword overlap
	// plus matching types clears the threshold.
	m := NewSemanticMatcher()

	dep := &spec.DependencySpec{
		LogicalName:       "training_data",
		Type:              spec.ProcessingOutput,
		Required:          true,
		CompatibleSources: []string{"DataLoad"},
		SemanticKeywords:  []string{"training", "data"},
		DataType:          "S3Uri",
	}
	out := &spec.OutputSpec{
		LogicalName:  "model_input_data",
		Type:         spec.ProcessingOutput,
		PropertyPath: "properties.Outputs['model_input_data'].S3Uri",
		DataType:     "S3Uri",
		Description:  "raw training data",
	}

	score := m.Score(dep, out, "DataLoad")
	assert.Greater(t, score, AcceptanceThreshold)
}

func TestScorePartialTypeCompatibility(t *testing.T) {
	m := NewSemanticMatcher()

	dep := &spec.DependencySpec{
		LogicalName: "input_data",
		Type:        spec.ProcessingOutput,
		DataType:    "S3Uri",
	}
	exact := &spec.OutputSpec{
		LogicalName:  "input_data",
		Type:         spec.ProcessingOutput,
		PropertyPath: "properties.Outputs['input_data'].S3Uri",
		DataType:     "S3Uri",
	}
	partial := &spec.OutputSpec{
		LogicalName:  "input_data",
		Type:         spec.TrainingOutput,
		PropertyPath: "properties.Outputs['input_data'].S3Uri",
		DataType:     "S3Uri",
	}

	assert.Greater(t, m.Score(dep, exact, "P"), m.Score(dep, partial, "P"))
	assert.Positive(t, m.Score(dep, partial, "P"))
}

func TestNormalizeAndTokens(t *testing.T) {
	assert.Equal(t, "modelartifacts", normalize("Model_Artifacts"))
	assert.Equal(t, normalize("model-artifacts"), normalize("ModelArtifacts"))

	got := tokens("model_input_data")
	assert.Len(t, got, 3)
	assert.Contains(t, got, "model")
	assert.Contains(t, got, "input")
	assert.Contains(t, got, "data")

	camel := tokens("ModelInputData")
	assert.Equal(t, got, camel)
}

func TestTokenJaccard(t *testing.T) {
	a := tokens("training_data")
	b := tokens("model_input_data")
	// Shared token "data" out of four distinct tokens.
	assert.InDelta(t, 0.25, tokenJaccard(a, b), 1e-9)

	assert.Equal(t, 1.0, tokenJaccard(a, tokens("data_training")))
	assert.Equal(t, 0.0, tokenJaccard(a, tokens("something_else")))
}
