// Package graph holds the in-memory computation graph handed to the
// translator. Nodes are stored in insertion order, which the construction
// layer guarantees to be topological: every parent appears before its
// children, and node 0 is the distinguished root.
package graph

import (
	"fmt"

	"github.com/vk/nativeflow/internal/op"
)

// Node is one step of the computation graph. The root node has ID 0 and no
// operation; every other node references the operation to apply to its
// parent's result.
type Node struct {
	ID       int
	ParentID int
	Op       *op.Operation
}

// Graph is an append-only, insertion-ordered node collection.
type Graph struct {
	nodes []*Node
}

// New creates a graph containing only the root node.
func New() *Graph {
	return &Graph{
		nodes: []*Node{{ID: 0, ParentID: -1}},
	}
}

// Add appends a node applying operation to the node identified by parentID
// and returns it. IDs are assigned sequentially, so insertion order stays a
// topological order by construction.
func (g *Graph) Add(parentID int, operation *op.Operation) (*Node, error) {
	if operation == nil {
		return nil, fmt.Errorf("graph: nil operation")
	}
	if parentID < 0 || parentID >= len(g.nodes) {
		return nil, fmt.Errorf("graph: parent node %d not found for operation %q", parentID, operation.Name)
	}

	n := &Node{
		ID:       len(g.nodes),
		ParentID: parentID,
		Op:       operation,
	}
	g.nodes = append(g.nodes, n)
	return n, nil
}

// Root returns the distinguished head node.
func (g *Graph) Root() *Node {
	return g.nodes[0]
}

// Nodes returns all nodes, root first, in insertion order. The slice must
// not be mutated by callers.
func (g *Graph) Nodes() []*Node {
	return g.nodes
}

// Len returns the number of nodes including the root.
func (g *Graph) Len() int {
	return len(g.nodes)
}
