package dag

import "fmt"

// TopologicalSort returns every node name ordered so that each edge's source
// precedes its destination. Among nodes that become ready at the same time,
// insertion order wins, so the result is deterministic for a given build
// sequence. A cycle fails the sort with an error; no partial order is
// returned.
func (g *Graph) TopologicalSort() ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	// Kahn's algorithm over an insertion-ordered ready queue.
	inDegree := make(map[string]int, len(g.nodes))
	for name, n := range g.nodes {
		inDegree[name] = len(n.preds)
	}

	var queue []string
	for _, name := range g.order {
		if inDegree[name] == 0 {
			queue = append(queue, name)
		}
	}

	sorted := make([]string, 0, len(g.nodes))
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		sorted = append(sorted, current)

		for _, succ := range g.order {
			if _, ok := g.nodes[current].succs[succ]; !ok {
				continue
			}
			inDegree[succ]--
			if inDegree[succ] == 0 {
				queue = append(queue, succ)
			}
		}
	}

	if len(sorted) != len(g.nodes) {
		return nil, fmt.Errorf("cannot determine build order: graph contains a cycle (%d of %d nodes ordered)", len(sorted), len(g.nodes))
	}

	return sorted, nil
}
