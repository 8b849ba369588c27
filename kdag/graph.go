package kdag

import (
	"fmt"
	"strings"
)

// NodeID is a strongly-typed identifier for graph nodes.
// NodeIDs must be non-empty and cannot contain whitespace.
type NodeID string

// Validate checks if the NodeID is valid.
// Returns ErrInvalidNodeID if the ID is empty or contains whitespace.
func (id NodeID) Validate() error {
	if id == "" {
		return fmt.Errorf("%w: NodeID cannot be empty", ErrInvalidNodeID)
	}
	if strings.ContainsAny(string(id), " \t\n\r") {
		return fmt.Errorf("%w: NodeID %q cannot contain whitespace", ErrInvalidNodeID, id)
	}
	return nil
}

// NodeType represents the kind of node in the graph
type NodeType int

const (
	NodeTypeLeaf NodeType = iota
	NodeTypeOperation
)

func (t NodeType) String() string {
	switch t {
	case NodeTypeLeaf:
		return "Leaf"
	case NodeTypeOperation:
		return "Operation"
	default:
		return "Unknown"
	}
}

// MaxPredecessors is the largest arity of any kvalue primitive.
const MaxPredecessors = 2

// Node is the snapshot of a single computation node.
type Node struct {
	ID   NodeID
	Type NodeType

	// Tag is the provenance tag ("add", "pow:2", ...), empty for leaves.
	Tag   string
	Label string
	Data  float64
	Grad  float64

	// Parent edges (predecessors, in operand order)
	Parents []NodeID

	// Child edges (consumers). A consumer using this node twice appears twice.
	Children []NodeID
}

// ValidateDownstream checks if this node can feed the given consumer.
func (n *Node) ValidateDownstream(child *Node) error {
	if child.Type == NodeTypeLeaf {
		return fmt.Errorf("%w: leaf %s cannot consume %s", ErrInvalidTopology, child.ID, n.ID)
	}
	if len(child.Parents) >= MaxPredecessors {
		return fmt.Errorf("%w: %s already has %d predecessors",
			ErrInvalidTopology, child.ID, len(child.Parents))
	}
	return nil
}

// Graph is a snapshot of a computation DAG.
type Graph struct {
	Nodes map[NodeID]*Node

	// Root is the node gradients were (or will be) computed for.
	// Empty for manual graphs that never called SetRoot.
	Root NodeID

	// Deterministic node ordering (insertion order)
	NodeOrder []NodeID
}

// NewGraph creates a new empty graph.
func NewGraph() *Graph {
	return &Graph{
		Nodes:     make(map[NodeID]*Node),
		NodeOrder: make([]NodeID, 0),
	}
}

// AddNode adds a node to the graph.
func (g *Graph) AddNode(node *Node) error {
	if err := node.ID.Validate(); err != nil {
		return err
	}
	if _, exists := g.Nodes[node.ID]; exists {
		return fmt.Errorf("%w: %s", ErrNodeAlreadyExists, node.ID)
	}
	g.Nodes[node.ID] = node
	g.NodeOrder = append(g.NodeOrder, node.ID)
	return nil
}

// AddEdge records that parentID is a predecessor of childID.
func (g *Graph) AddEdge(parentID, childID NodeID) error {
	parent, ok := g.Nodes[parentID]
	if !ok {
		return fmt.Errorf("%w: parent %s", ErrNodeNotFound, parentID)
	}
	child, ok := g.Nodes[childID]
	if !ok {
		return fmt.Errorf("%w: child %s", ErrNodeNotFound, childID)
	}

	if err := parent.ValidateDownstream(child); err != nil {
		return fmt.Errorf("cannot connect %s -> %s: %w", parentID, childID, err)
	}

	parent.Children = append(parent.Children, childID)
	child.Parents = append(child.Parents, parentID)
	return nil
}

// SetRoot marks id as the root of the graph.
func (g *Graph) SetRoot(id NodeID) error {
	if _, ok := g.Nodes[id]; !ok {
		return fmt.Errorf("%w: root %s", ErrNodeNotFound, id)
	}
	g.Root = id
	return nil
}

// GetNode returns a node by ID if it exists.
func (g *Graph) GetNode(id NodeID) (*Node, bool) {
	node, ok := g.Nodes[id]
	return node, ok
}

// ReverseTopologicalSort returns nodes in reverse topological order.
// Consumers come before their predecessors, which is the order gradients
// flow in.
func (g *Graph) ReverseTopologicalSort() ([]NodeID, error) {
	order, err := g.TopologicalSort()
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	return order, nil
}
