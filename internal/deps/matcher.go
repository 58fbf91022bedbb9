package deps

import (
	"strings"

	"github.com/agext/levenshtein"

	"github.com/vk/pipewright/internal/spec"
)

// Sub-score weights. Tuned so that source/type mismatches dominate: no
// single soft signal can push an incompatible pair above the acceptance
// threshold on its own.
const (
	nameWeight     = 0.25
	keywordWeight  = 0.20
	typeWeight     = 0.25
	dataTypeWeight = 0.10
	sourceWeight   = 0.20
)

// Name-similarity tiers below an exact match.
const (
	normalizedMatchScore = 0.85
)

// SemanticMatcher scores name/type/source similarity between a dependency
// request and a candidate output. Stateless; the zero value is usable.
type SemanticMatcher struct{}

// NewSemanticMatcher returns a matcher.
func NewSemanticMatcher() *SemanticMatcher {
	return &SemanticMatcher{}
}

// Score returns a compatibility score in [0,1] for the given output of a
// producer step type satisfying the dependency. Incompatible types and
// excluded sources hard-gate the result to 0.
func (m *SemanticMatcher) Score(dep *spec.DependencySpec, out *spec.OutputSpec, producerStepType string) float64 {
	typeScore, related := spec.TypeCompatibility(dep.Type, out.Type)
	if !related {
		return 0
	}

	sourceScore := m.sourceCompatibility(dep, producerStepType)
	if sourceScore == 0 {
		return 0
	}

	score := nameWeight*m.nameSimilarity(dep.LogicalName, out) +
		keywordWeight*m.keywordOverlap(dep.SemanticKeywords, out) +
		typeWeight*typeScore +
		sourceWeight*sourceScore

	if dep.DataType != "" && dep.DataType == out.DataType {
		score += dataTypeWeight
	}

	if score > 1 {
		score = 1
	}
	return score
}

// nameSimilarity compares the dependency's logical name against the output's
// logical name and every alias, keeping the best candidate: exact match
// first, then case/punctuation-normalized equality, then the larger of token
// Jaccard overlap and normalized edit-distance similarity.
func (m *SemanticMatcher) nameSimilarity(depName string, out *spec.OutputSpec) float64 {
	candidates := append([]string{out.LogicalName}, out.Aliases...)

	best := 0.0
	for _, candidate := range candidates {
		if depName == candidate {
			return 1.0
		}

		normDep := normalize(depName)
		normOut := normalize(candidate)
		if normDep == normOut {
			if normalizedMatchScore > best {
				best = normalizedMatchScore
			}
			continue
		}

		sim := tokenJaccard(tokens(depName), tokens(candidate))
		if edit := levenshtein.Similarity(normDep, normOut, nil); edit > sim {
			sim = edit
		}
		// Cap fuzzy similarity below the normalized-match tier.
		if sim > normalizedMatchScore {
			sim = normalizedMatchScore
		}
		if sim > best {
			best = sim
		}
	}
	return best
}

// keywordOverlap returns the fraction of the dependency's semantic keywords
// found, as substrings or tokens, in the output's logical name, aliases and
// description.
func (m *SemanticMatcher) keywordOverlap(keywords []string, out *spec.OutputSpec) float64 {
	if len(keywords) == 0 {
		return 0
	}

	var haystack strings.Builder
	haystack.WriteString(out.LogicalName)
	for _, alias := range out.Aliases {
		haystack.WriteByte(' ')
		haystack.WriteString(alias)
	}
	haystack.WriteByte(' ')
	haystack.WriteString(out.Description)
	target := strings.ToLower(haystack.String())

	found := 0
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(target, strings.ToLower(kw)) {
			found++
		}
	}
	return float64(found) / float64(len(keywords))
}

// sourceCompatibility is 1.0 when the dependency accepts any source or when
// the producer's step type is listed, else 0.
func (m *SemanticMatcher) sourceCompatibility(dep *spec.DependencySpec, producerStepType string) float64 {
	if len(dep.CompatibleSources) == 0 {
		return 1.0
	}
	for _, src := range dep.CompatibleSources {
		if src == producerStepType {
			return 1.0
		}
	}
	return 0
}

// normalize lowercases a name and strips punctuation so that
// "ModelArtifacts" and "model_artifacts" compare equal.
func normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// tokens splits a name into lowercase word tokens on punctuation and
// camelCase boundaries.
func tokens(s string) map[string]struct{} {
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

// tokenJaccard is |intersection| / |union| over word tokens.
func tokenJaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for t := range a {
		if _, ok := b[t]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}
