package dag

import "sync"

// Edge is a directed connection from a producer node to a consumer node.
type Edge struct {
	From string
	To   string
}

// Graph is a collection of named nodes and directed edges, representing the
// pipeline DAG. All operations on the graph are concurrency-safe.
type Graph struct {
	// mutex protects the maps and slices during concurrent access.
	mutex sync.RWMutex
	// nodes stores all nodes in the graph, keyed by their unique name.
	nodes map[string]*node
	// order records node names in insertion order.
	order []string
	// edges records edges in insertion order.
	edges []Edge
}

// node represents a single vertex. It is un-exported to enforce interaction
// with the graph via the public API (using node names), not by direct struct
// manipulation.
type node struct {
	// name is the unique identifier for the node.
	name string
	// preds holds the set of nodes this node depends on (incoming edges).
	preds map[string]*node
	// succs holds the set of nodes depending on this node (outgoing edges).
	succs map[string]*node
}
