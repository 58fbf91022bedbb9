/*
Package deps implements the dependency resolution engine: the semantic
matcher that scores how well a candidate output satisfies a dependency
request, the resolver that picks the best-compatible producer output across
all candidates, and the lazy property references handed to step builders.

Scoring is a fixed weighted heuristic, not a pluggable optimization
framework. Two hard gates dominate everything else: a dependency whose
compatible-sources set excludes the producer scores zero, and a
dependency/output type pair with no compatibility relation scores zero,
regardless of how well names or keywords overlap.
*/
package deps
