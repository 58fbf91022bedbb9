// Package assembler turns a step DAG plus resolved configurations into an
// executable pipeline object. Assembly is phased: builders are constructed
// once, dependency messages are propagated along the graph's edges, and
// steps are instantiated in topological order, each predecessor's runtime
// properties feeding its successors. Structural problems (a node without a
// configuration, a configuration without a builder) fail at construction;
// only runtime property resolution is allowed to degrade, falling back to a
// stable placeholder location.
package assembler
