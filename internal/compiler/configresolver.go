package compiler

import (
	"context"
	"sort"
	"strings"

	"github.com/agext/levenshtein"

	"github.com/vk/pipewright/internal/config"
	"github.com/vk/pipewright/internal/ctxlog"
	"github.com/vk/pipewright/internal/registry"
)

const (
	// MinimumConfidence is the floor below which a candidate does not count
	// as a resolution at all.
	MinimumConfidence = 0.5
	// AmbiguityMargin flags a node as ambiguous when its top two candidates
	// score within this distance of each other. Ambiguity is a warning; the
	// top candidate still wins.
	AmbiguityMargin = 0.1
)

// Config-resolution sub-score weights.
const (
	cfgNameWeight    = 0.55
	cfgJobTypeWeight = 0.30
	cfgVariantWeight = 0.15
)

// Candidate is one scored (node, config) pairing.
type Candidate struct {
	ConfigName string
	Config     *config.Config
	Confidence float64
}

// Resolution is the full outcome of matching DAG nodes to configurations.
type Resolution struct {
	// Candidates holds the descending-confidence candidate list per node,
	// including candidates below the minimum confidence.
	Candidates map[string][]Candidate
	// Assigned maps every resolved node to its winning configuration.
	Assigned map[string]*config.Config
	// Ambiguous lists nodes whose top two candidates were too close to call
	// confidently. The top candidate is assigned regardless.
	Ambiguous []string
	// Unresolved lists nodes with no candidate above the minimum confidence.
	Unresolved []string
}

// ConfigResolver matches DAG node names against available configuration
// instances. An exact name match is authoritative; otherwise candidates are
// ranked by fuzzy name similarity, job-type alignment and step-type-table
// consistency.
type ConfigResolver struct {
	table *registry.StepTypeTable
}

// NewConfigResolver creates a resolver backed by the given variant table.
func NewConfigResolver(table *registry.StepTypeTable) *ConfigResolver {
	return &ConfigResolver{table: table}
}

// Resolve ranks every available configuration against every DAG node and
// assigns winners. It never fails; unresolved and ambiguous nodes are
// reported in the result.
func (r *ConfigResolver) Resolve(ctx context.Context, nodes []string, configs map[string]*config.Config, metadata *config.Metadata) *Resolution {
	logger := ctxlog.FromContext(ctx)

	res := &Resolution{
		Candidates: make(map[string][]Candidate, len(nodes)),
		Assigned:   make(map[string]*config.Config, len(nodes)),
	}

	for _, node := range nodes {
		candidates := r.rank(node, configs, metadata)
		res.Candidates[node] = candidates

		if len(candidates) == 0 || candidates[0].Confidence < MinimumConfidence {
			res.Unresolved = append(res.Unresolved, node)
			logger.Debug("Node unresolved.", "node", node)
			continue
		}

		if len(candidates) > 1 && candidates[0].Confidence-candidates[1].Confidence < AmbiguityMargin {
			res.Ambiguous = append(res.Ambiguous, node)
			logger.Warn("Ambiguous config resolution, picking top candidate.",
				"node", node,
				"top", candidates[0].ConfigName,
				"runner_up", candidates[1].ConfigName,
				"margin", candidates[0].Confidence-candidates[1].Confidence)
		}

		res.Assigned[node] = candidates[0].Config
	}

	return res
}

// rank scores every config against one node, descending by confidence with
// config name as the deterministic tie-break.
func (r *ConfigResolver) rank(node string, configs map[string]*config.Config, metadata *config.Metadata) []Candidate {
	candidates := make([]Candidate, 0, len(configs))
	for name, cfg := range configs {
		candidates = append(candidates, Candidate{
			ConfigName: name,
			Config:     cfg,
			Confidence: r.score(node, name, cfg, metadata),
		})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Confidence != candidates[j].Confidence {
			return candidates[i].Confidence > candidates[j].Confidence
		}
		return candidates[i].ConfigName < candidates[j].ConfigName
	})
	return candidates
}

// score combines the matching signals for one (node, config) pair. Exact
// name equality short-circuits at full confidence.
func (r *ConfigResolver) score(node, configName string, cfg *config.Config, metadata *config.Metadata) float64 {
	if node == configName {
		return 1.0
	}

	score := cfgNameWeight * nameSimilarity(node, configName)

	if hint := jobTypeHint(node, metadata); hint != "" && cfg.JobType() == hint {
		score += cfgJobTypeWeight
	}

	// A config whose variant resolves through the table is structurally
	// usable; unknown variants can never build.
	if _, ok := r.table.StepType(cfg.Type()); ok {
		score += cfgVariantWeight
	}

	if score > 1 {
		score = 1
	}
	return score
}

// nameSimilarity is normalized-equality, then substring containment, then
// the larger of token overlap and edit-distance similarity.
func nameSimilarity(node, configName string) float64 {
	normNode := normalizeName(node)
	normCfg := normalizeName(configName)
	if normNode == normCfg {
		return 1.0
	}
	if strings.Contains(normCfg, normNode) || strings.Contains(normNode, normCfg) {
		return 0.8
	}

	sim := tokenOverlap(node, configName)
	if edit := levenshtein.Similarity(normNode, normCfg, nil); edit > sim {
		sim = edit
	}
	return sim
}

// jobTypeHint returns the expected job-type tag for a node: the explicit
// metadata hint when present, else a tag derived from the node name's word
// tokens ("train_data_load" hints at "training").
func jobTypeHint(node string, metadata *config.Metadata) string {
	if metadata != nil {
		if hint, ok := metadata.JobTypes[node]; ok {
			return hint
		}
	}

	for token := range nameTokens(node) {
		switch token {
		case "train", "training":
			return "training"
		case "calib", "calibration":
			return "calibration"
		case "valid", "validation":
			return "validation"
		case "test", "testing":
			return "testing"
		}
	}
	return ""
}

func normalizeName(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// nameTokens splits on punctuation and camelCase boundaries.
func nameTokens(s string) map[string]struct{} {
	out := make(map[string]struct{})
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			out[strings.ToLower(current.String())] = struct{}{}
			current.Reset()
		}
	}

	prevLower := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			current.WriteRune(r)
			prevLower = true
		case r >= 'A' && r <= 'Z':
			if prevLower {
				flush()
			}
			current.WriteRune(r)
			prevLower = false
		default:
			flush()
			prevLower = false
		}
	}
	flush()
	return out
}

func tokenOverlap(a, b string) float64 {
	ta, tb := nameTokens(a), nameTokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	intersection := 0
	for t := range ta {
		if _, ok := tb[t]; ok {
			intersection++
		}
	}
	union := len(ta) + len(tb) - intersection
	return float64(intersection) / float64(union)
}
