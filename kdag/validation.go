package kdag

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
)

// maxReportedNodes bounds how many node IDs a cycle or orphan error lists.
const maxReportedNodes = 16

// Validate performs all graph validations.
// Returns early on first error.
func (g *Graph) Validate() error {
	// 1. Edge endpoints and arity
	if err := g.validateEdges(); err != nil {
		return fmt.Errorf("graph validation failed: %w", err)
	}

	// 2. Cycle detection via Kahn's algorithm
	if _, err := g.TopologicalSort(); err != nil {
		return fmt.Errorf("graph validation failed: %w", err)
	}

	// 3. Orphaned nodes (not contributing to the root)
	if err := g.validateNoOrphans(); err != nil {
		return fmt.Errorf("graph validation failed: %w", err)
	}

	return nil
}

func (g *Graph) validateEdges() error {
	for _, nodeID := range g.NodeOrder {
		node := g.Nodes[nodeID]
		if node.Type == NodeTypeLeaf && len(node.Parents) > 0 {
			return fmt.Errorf("%w: leaf %s has predecessors", ErrInvalidTopology, nodeID)
		}
		if len(node.Parents) > MaxPredecessors {
			return fmt.Errorf("%w: node %s has %d predecessors, exceeds maximum %d",
				ErrInvalidTopology, nodeID, len(node.Parents), MaxPredecessors)
		}
		for _, id := range node.Parents {
			if _, ok := g.Nodes[id]; !ok {
				return fmt.Errorf("%w: %s references predecessor %s", ErrNodeNotFound, nodeID, id)
			}
		}
		for _, id := range node.Children {
			if _, ok := g.Nodes[id]; !ok {
				return fmt.Errorf("%w: %s references consumer %s", ErrNodeNotFound, nodeID, id)
			}
		}
	}
	return nil
}

// validateNoOrphans checks that every node is an ancestor of the root.
// Graphs without a root skip this check.
func (g *Graph) validateNoOrphans() error {
	if g.Root == "" {
		return nil
	}

	reachable := g.markAncestors(g.Root)

	var orphans []NodeID
	for _, nodeID := range g.NodeOrder {
		if !reachable[nodeID] {
			orphans = append(orphans, nodeID)
		}
	}

	if len(orphans) > 0 {
		return fmt.Errorf("%w (not contributing to root %s): %s",
			ErrOrphanedNodes, g.Root, joinIDs(orphans))
	}

	return nil
}

// markAncestors returns the set of nodeID and everything it depends on.
// It walks an explicit stack so arbitrarily deep chains are fine.
func (g *Graph) markAncestors(nodeID NodeID) map[NodeID]bool {
	reachable := map[NodeID]bool{nodeID: true}
	stack := []NodeID{nodeID}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, parentID := range g.Nodes[top].Parents {
			if reachable[parentID] {
				continue
			}
			if _, ok := g.Nodes[parentID]; !ok {
				continue
			}
			reachable[parentID] = true
			stack = append(stack, parentID)
		}
	}
	return reachable
}

// Ancestors returns every node id depends on, in insertion order.
// id itself is excluded.
func (g *Graph) Ancestors(id NodeID) ([]NodeID, error) {
	if _, ok := g.Nodes[id]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}

	reachable := g.markAncestors(id)
	delete(reachable, id)

	result := make([]NodeID, 0, len(reachable))
	for _, nodeID := range g.NodeOrder {
		if reachable[nodeID] {
			result = append(result, nodeID)
		}
	}
	return result, nil
}

// TopologicalSort creates a deterministic topological ordering using Kahn's
// algorithm: every node appears after all of its predecessors. Ties are
// broken by insertion order, so snapshot IDs come out as v0, v1, ..., v10
// rather than in string order. A graph with a cycle yields ErrCycleDetected.
// Time complexity: O(V log V + E).
func (g *Graph) TopologicalSort() ([]NodeID, error) {
	index := make(map[NodeID]int, len(g.NodeOrder))
	for i, nodeID := range g.NodeOrder {
		index[nodeID] = i
	}

	// In-degree counts edges, so a node used twice by one consumer
	// contributes two. Dangling consumers are left to validateEdges.
	inDegree := make([]int, len(g.NodeOrder))
	for _, nodeID := range g.NodeOrder {
		for _, childID := range g.Nodes[nodeID].Children {
			if i, ok := index[childID]; ok {
				inDegree[i]++
			}
		}
	}

	// queue holds NodeOrder indices, kept sorted.
	queue := make([]int, 0, len(g.NodeOrder)/4+1)
	for i, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, i)
		}
	}

	result := make([]NodeID, 0, len(g.NodeOrder))
	var children []int
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		nodeID := g.NodeOrder[i]
		result = append(result, nodeID)

		children = children[:0]
		for _, childID := range g.Nodes[nodeID].Children {
			if c, ok := index[childID]; ok {
				children = append(children, c)
			}
		}
		slices.Sort(children)

		for _, c := range children {
			inDegree[c]--
			if inDegree[c] == 0 {
				pos, _ := slices.BinarySearch(queue, c)
				queue = slices.Insert(queue, pos, c)
			}
		}
	}

	if len(result) != len(g.NodeOrder) {
		var stuck []NodeID
		for i, degree := range inDegree {
			if degree > 0 {
				stuck = append(stuck, g.NodeOrder[i])
			}
		}
		return nil, fmt.Errorf("%w: unresolved nodes %s", ErrCycleDetected, joinIDs(stuck))
	}

	return result, nil
}

func joinIDs(ids []NodeID) string {
	n := len(ids)
	if n > maxReportedNodes {
		n = maxReportedNodes
	}
	strs := make([]string, n)
	for i := range strs {
		strs[i] = string(ids[i])
	}
	s := strings.Join(strs, ", ")
	if len(ids) > n {
		s += fmt.Sprintf(" (and %d more)", len(ids)-n)
	}
	return s
}
