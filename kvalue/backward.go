package kvalue

// TopologicalOrder returns every node reachable from root, each after all of
// its predecessors. Predecessors are visited in recorded order, so the result
// is deterministic for a given graph. Root is always last.
func TopologicalOrder(root *Value) []*Value {
	var topo []*Value
	visited := make(map[*Value]bool)

	var build func(*Value)
	build = func(v *Value) {
		if visited[v] {
			return
		}
		visited[v] = true
		for _, p := range v.prev {
			build(p)
		}
		topo = append(topo, v)
	}
	build(root)

	return topo
}

// Backward computes d(root)/d(node) for every node reachable from root and
// adds it to the node's gradient. The root's gradient is set to 1.
func Backward(root *Value) {
	topo := TopologicalOrder(root)

	root.grad = 1
	for i := len(topo) - 1; i >= 0; i-- {
		if b := topo[i].backward; b != nil {
			b()
		}
	}
}

// Backward runs Backward with v as the root.
func (v *Value) Backward() {
	Backward(v)
}
