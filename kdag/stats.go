package kdag

// Stats summarizes the shape of a graph.
type Stats struct {
	Nodes  int
	Edges  int
	Leaves int
	// Depth is the number of edges on the longest predecessor chain.
	Depth int
	// Ops counts nodes per provenance tag; leaves are counted under "".
	Ops map[string]int
}

// Leaves returns the IDs of all nodes without predecessors, in insertion
// order.
func (g *Graph) Leaves() []NodeID {
	var leaves []NodeID
	for _, id := range g.NodeOrder {
		if len(g.Nodes[id].Parents) == 0 {
			leaves = append(leaves, id)
		}
	}
	return leaves
}

// Stats computes node, edge and tag counts plus the longest path length.
// Depth is 0 if the graph contains a cycle.
func (g *Graph) Stats() Stats {
	s := Stats{
		Nodes: len(g.Nodes),
		Ops:   make(map[string]int),
	}
	for _, node := range g.Nodes {
		s.Edges += len(node.Parents)
		s.Ops[node.Tag]++
		if len(node.Parents) == 0 {
			s.Leaves++
		}
	}

	order, err := g.TopologicalSort()
	if err != nil {
		return s
	}
	depth := make(map[NodeID]int, len(order))
	for _, id := range order {
		d := 0
		for _, p := range g.Nodes[id].Parents {
			if depth[p]+1 > d {
				d = depth[p] + 1
			}
		}
		depth[id] = d
		if d > s.Depth {
			s.Depth = d
		}
	}
	return s
}
