package deps

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/vk/pipewright/internal/ctxlog"
	"github.com/vk/pipewright/internal/registry"
	"github.com/vk/pipewright/internal/spec"
)

// AcceptanceThreshold is the fixed minimum compatibility score for a match
// to count as a connection. Scores at or below it are not considered.
const AcceptanceThreshold = 0.5

// Producer is one candidate upstream step offered to the resolver.
type Producer struct {
	StepName string
	Spec     *spec.StepSpecification
}

// Match is a resolved connection from a producer output to a consumer
// dependency slot.
type Match struct {
	ProducerStep string
	OutputName   string
	Output       *spec.OutputSpec
	Score        float64
}

// Resolver finds the best-compatible producer output for each consumer
// dependency, memoizing results for the lifetime of one registry
// generation.
type Resolver struct {
	registry *registry.SpecRegistry
	matcher  *SemanticMatcher

	mutex    sync.Mutex
	cache    map[string]cachedMatch
	cacheGen uint64
}

type cachedMatch struct {
	match *Match
	found bool
}

// NewResolver creates a resolver bound to a specification registry. The
// registry's generation counter drives cache invalidation: any registry
// write drops the whole cache.
func NewResolver(reg *registry.SpecRegistry) *Resolver {
	return &Resolver{
		registry: reg,
		matcher:  NewSemanticMatcher(),
		cache:    make(map[string]cachedMatch),
		cacheGen: reg.Generation(),
	}
}

// Matcher exposes the resolver's semantic matcher for callers that score
// pairs directly.
func (r *Resolver) Matcher() *SemanticMatcher {
	return r.matcher
}

// Resolve finds the single best output across all candidate producers for
// one dependency slot. Only scores strictly above AcceptanceThreshold
// survive; ties break in favor of the first-seen producer/output in
// declaration order. The boolean is false when no candidate survives.
func (r *Resolver) Resolve(ctx context.Context, consumerStepType string, dep *spec.DependencySpec, producers []Producer) (*Match, bool) {
	logger := ctxlog.FromContext(ctx)

	key := cacheKey(consumerStepType, dep.LogicalName, producers)
	if match, found, hit := r.cacheLookup(key); hit {
		return match, found
	}

	var best *Match
	for _, producer := range producers {
		if producer.Spec == nil {
			continue
		}
		for _, outName := range sortedOutputNames(producer.Spec) {
			out := producer.Spec.Outputs[outName]
			score := r.matcher.Score(dep, out, producer.Spec.StepType)
			if score <= AcceptanceThreshold {
				continue
			}
			// Strict inequality keeps the first-seen candidate on ties.
			if best == nil || score > best.Score {
				best = &Match{
					ProducerStep: producer.StepName,
					OutputName:   outName,
					Output:       out,
					Score:        score,
				}
			}
		}
	}

	if best != nil {
		logger.Debug("Resolved dependency.",
			"consumer", consumerStepType,
			"dependency", dep.LogicalName,
			"producer", best.ProducerStep,
			"output", best.OutputName,
			"score", best.Score)
	}

	r.cacheStore(key, best)
	return best, best != nil
}

// Unresolved describes a required dependency no candidate could satisfy.
type Unresolved struct {
	ConsumerStep string
	Dependency   string
}

// ResolveAll resolves every dependency of a consumer specification against
// the candidate producers. Required dependencies without a surviving
// candidate are collected and returned, not thrown mid-batch; optional ones
// simply resolve to absent.
func (r *Resolver) ResolveAll(ctx context.Context, consumerStep string, consumerSpec *spec.StepSpecification, producers []Producer) (map[string]*Match, []Unresolved) {
	matches := make(map[string]*Match)
	var unresolved []Unresolved

	for _, depName := range sortedDependencyNames(consumerSpec) {
		dep := consumerSpec.Dependencies[depName]
		match, found := r.Resolve(ctx, consumerSpec.StepType, dep, producers)
		if found {
			matches[depName] = match
			continue
		}
		if dep.Required {
			unresolved = append(unresolved, Unresolved{ConsumerStep: consumerStep, Dependency: depName})
		}
	}

	return matches, unresolved
}

func (r *Resolver) cacheLookup(key string) (*Match, bool, bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if gen := r.registry.Generation(); gen != r.cacheGen {
		r.cache = make(map[string]cachedMatch)
		r.cacheGen = gen
		return nil, false, false
	}

	entry, hit := r.cache[key]
	return entry.match, entry.found, hit
}

func (r *Resolver) cacheStore(key string, match *Match) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if gen := r.registry.Generation(); gen != r.cacheGen {
		r.cache = make(map[string]cachedMatch)
		r.cacheGen = gen
	}
	r.cache[key] = cachedMatch{match: match, found: match != nil}
}

// cacheKey is (consumer step type, dependency logical name, producer set).
// Each producer contributes its step name alongside its step type: a cached
// Match carries a producer step name, so the key must pin the names of the
// candidates it was computed from. The set is sorted so equivalent candidate
// collections hit the same entry.
func cacheKey(consumerStepType, depName string, producers []Producer) string {
	entries := make([]string, 0, len(producers))
	for _, p := range producers {
		if p.Spec != nil {
			entries = append(entries, p.StepName+":"+p.Spec.StepType)
		}
	}
	sort.Strings(entries)
	return consumerStepType + "|" + depName + "|" + strings.Join(entries, ",")
}

func sortedOutputNames(s *spec.StepSpecification) []string {
	names := make([]string, 0, len(s.Outputs))
	for name := range s.Outputs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortedDependencyNames(s *spec.StepSpecification) []string {
	names := make([]string, 0, len(s.Dependencies))
	for name := range s.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
