package dag

import (
	"fmt"
)

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]*node),
	}
}

// AddNode adds a new node with the given name to the graph. If a node with
// the same name already exists, the function does nothing.
func (g *Graph) AddNode(name string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if _, ok := g.nodes[name]; ok {
		return
	}

	g.nodes[name] = &node{
		name:  name,
		preds: make(map[string]*node),
		succs: make(map[string]*node),
	}
	g.order = append(g.order, name)
}

// AddEdge creates a directed edge from the `from` node to the `to` node,
// meaning `to` consumes outputs of `from`. An error is returned if either
// node does not exist or if the edge would create a self-reference.
// Re-adding an existing edge does nothing.
func (g *Graph) AddEdge(from, to string) error {
	if from == to {
		return fmt.Errorf("self-referential edge not allowed: %s -> %s", from, from)
	}

	g.mutex.Lock()
	defer g.mutex.Unlock()

	fromNode, ok := g.nodes[from]
	if !ok {
		return fmt.Errorf("edge source node not in DAG: %s", from)
	}

	toNode, ok := g.nodes[to]
	if !ok {
		return fmt.Errorf("edge destination node not in DAG: %s", to)
	}

	if _, exists := toNode.preds[from]; exists {
		return nil
	}

	toNode.preds[from] = fromNode
	fromNode.succs[to] = toNode
	g.edges = append(g.edges, Edge{From: from, To: to})

	return nil
}

// HasNode reports whether a node with the given name exists.
func (g *Graph) HasNode(name string) bool {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	_, ok := g.nodes[name]
	return ok
}

// Nodes returns all node names in insertion order.
func (g *Graph) Nodes() []string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []Edge {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	return len(g.nodes)
}

// Predecessors returns the names of nodes the given node depends on,
// in deterministic (insertion) order.
func (g *Graph) Predecessors(name string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[name]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", name)
	}

	preds := make([]string, 0, len(n.preds))
	for _, candidate := range g.order {
		if _, ok := n.preds[candidate]; ok {
			preds = append(preds, candidate)
		}
	}
	return preds, nil
}

// Successors returns the names of nodes that depend on the given node,
// in deterministic (insertion) order.
func (g *Graph) Successors(name string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[name]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", name)
	}

	succs := make([]string, 0, len(n.succs))
	for _, candidate := range g.order {
		if _, ok := n.succs[candidate]; ok {
			succs = append(succs, candidate)
		}
	}
	return succs, nil
}

// DetectCycles checks the graph for any cycles. It returns a non-nil error
// if a cycle is found, identifying the first node involved in the cycle.
func (g *Graph) DetectCycles() error {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	// Classic depth-first search with three node states:
	// permanent: fully visited and known not to be part of a cycle.
	// temporary: currently in the recursion stack of this traversal.
	// unvisited: everything else.
	permanent := make(map[string]bool)
	temporary := make(map[string]bool)

	var visit func(n *node) error
	visit = func(n *node) error {
		if permanent[n.name] {
			return nil
		}
		if temporary[n.name] {
			return fmt.Errorf("cycle detected involving node '%s'", n.name)
		}

		temporary[n.name] = true

		for _, succ := range n.succs {
			if err := visit(succ); err != nil {
				return err
			}
		}

		delete(temporary, n.name)
		permanent[n.name] = true

		return nil
	}

	for _, name := range g.order {
		if !permanent[name] {
			if err := visit(g.nodes[name]); err != nil {
				return err
			}
		}
	}

	return nil
}
