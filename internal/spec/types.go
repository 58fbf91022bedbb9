package spec

// DependencyType classifies what kind of value a dependency slot expects or
// an output slot produces.
type DependencyType string

const (
	ModelArtifacts   DependencyType = "model_artifacts"
	ProcessingOutput DependencyType = "processing_output"
	TrainingOutput   DependencyType = "training_output"
	Hyperparameters  DependencyType = "hyperparameters"
	Payload          DependencyType = "payload"
	CustomProperty   DependencyType = "custom_property"
)

// NodeType describes which sides of a step are wired by the resolver.
type NodeType string

const (
	// NodeSource has outputs only.
	NodeSource NodeType = "source"
	// NodeInternal has both dependencies and outputs.
	NodeInternal NodeType = "internal"
	// NodeSink has dependencies only.
	NodeSink NodeType = "sink"
	// NodeSingular has neither side wired.
	NodeSingular NodeType = "singular"
)

// typeCompatibility scores how well an output type satisfies a dependency
// type. Equal types score 1.0. A small set of known-compatible pairs score
// partially; everything else shares no compatibility relation and hard-gates
// the overall match to zero.
var typeCompatibility = map[DependencyType]map[DependencyType]float64{
	ModelArtifacts: {
		ModelArtifacts: 1.0,
		TrainingOutput: 0.6,
	},
	ProcessingOutput: {
		ProcessingOutput: 1.0,
		TrainingOutput:   0.5,
	},
	TrainingOutput: {
		TrainingOutput:   1.0,
		ProcessingOutput: 0.5,
		ModelArtifacts:   0.5,
	},
	Hyperparameters: {
		Hyperparameters:  1.0,
		ProcessingOutput: 0.4,
	},
	Payload: {
		Payload:        1.0,
		CustomProperty: 0.5,
	},
	CustomProperty: {
		CustomProperty:   1.0,
		ProcessingOutput: 0.4,
	},
}

// TypeCompatibility returns the compatibility factor for an output type
// filling a slot that declares the given dependency type, and whether any
// compatibility relation exists at all.
func TypeCompatibility(dep, out DependencyType) (float64, bool) {
	row, ok := typeCompatibility[dep]
	if !ok {
		return 0, false
	}
	score, ok := row[out]
	return score, ok
}
