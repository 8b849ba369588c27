package kdag

import (
	"fmt"

	"github.com/birdayz/kgrad/kvalue"
)

// FromRoot snapshots every node reachable from root. IDs follow
// kvalue.TopologicalOrder, so predecessors always get lower numbers than
// their consumers and the root gets the highest.
func FromRoot(root *kvalue.Value) (*Graph, error) {
	if root == nil {
		return nil, ErrNilRoot
	}

	order := kvalue.TopologicalOrder(root)
	g := &Graph{
		Nodes:     make(map[NodeID]*Node, len(order)),
		NodeOrder: make([]NodeID, 0, len(order)),
	}
	ids := make(map[*kvalue.Value]NodeID, len(order))

	for i, v := range order {
		id := NodeID(fmt.Sprintf("v%d", i))
		ids[v] = id

		typ := NodeTypeOperation
		if v.IsLeaf() {
			typ = NodeTypeLeaf
		}
		node := &Node{
			ID:       id,
			Type:     typ,
			Tag:      v.Tag(),
			Label:    v.Label(),
			Data:     v.Data(),
			Grad:     v.Grad(),
			Parents:  make([]NodeID, 0, MaxPredecessors),
			Children: []NodeID{},
		}
		if err := g.AddNode(node); err != nil {
			return nil, err
		}

		for _, p := range v.Prev() {
			if err := g.AddEdge(ids[p], id); err != nil {
				return nil, err
			}
		}
	}

	if err := g.SetRoot(ids[root]); err != nil {
		return nil, err
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// MustFromRoot is like FromRoot but panics on error.
func MustFromRoot(root *kvalue.Value) *Graph {
	g, err := FromRoot(root)
	if err != nil {
		panic(err)
	}
	return g
}
