// Package kdag provides an inspectable snapshot of a kvalue computation graph.
//
// # Overview
//
// kvalue nodes only know their predecessors. kdag walks a graph from its root
// and records every node with a stable identifier, its provenance tag, its
// current data and gradient, and edges in both directions:
//
//	a := kvalue.New(-2, kvalue.WithLabel("a"))
//	b := kvalue.New(3, kvalue.WithLabel("b"))
//	f := a.Mul(b).Mul(a.Add(b))
//	f.Backward()
//
//	g, err := kdag.FromRoot(f)
//	if err != nil {
//	    return err
//	}
//	order, _ := g.TopologicalSort()
//	stats := g.Stats()
//
// Node IDs are assigned in kvalue topological order ("v0", "v1", ...), so
// the same graph always yields the same IDs.
//
// # Manual graphs
//
// Graphs can also be assembled with AddNode and AddEdge, which is mostly
// useful in tests and for tooling that reconstructs graphs from elsewhere.
// Such graphs are not guaranteed to be acyclic; call Validate.
//
// # Validation
//
// Validate checks:
//
//   - **Edges**: every edge endpoint exists (ErrNodeNotFound)
//   - **Arity**: leaves have no parents, operations at most MaxPredecessors
//   - **Cycle Detection**: Kahn's algorithm leaves nodes unresolved (ErrCycleDetected)
//   - **Orphan Detection**: every node is an ancestor of the root
//
// All validation errors wrap sentinel errors that can be checked with
// errors.Is().
//
// # Thread Safety
//
// Graph is NOT safe for concurrent mutation. A snapshot does not observe
// later changes to the underlying kvalue nodes; take a new one after
// Backward to see updated gradients.
package kdag
