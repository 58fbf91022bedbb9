/*
Package dag implements the pipeline graph consumed by the compiler and
assembler. It is a plain directed-acyclic-graph of named step placeholders:
vertices are node names, edges are (producer, consumer) pairs.

The graph preserves insertion order for both nodes and edges. Order matters
downstream: the assembler propagates dependency messages in DAG edge order,
and the topological sort must be deterministic so that repeated compilations
of the same graph produce identical wiring.

Validation is split between construction time and sort time. AddEdge rejects
edges whose endpoints are not registered nodes and self-referential edges;
cycles are only detectable once the full topology exists, so they surface as
errors from TopologicalSort (and DetectCycles).
*/
package dag
