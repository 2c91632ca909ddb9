package querygraph

import (
	"fmt"

	"github.com/roach88/lift/internal/query"
)

// NodeRef is an opaque handle to a node in one graph.
type NodeRef struct {
	index int
}

// ID is the node's binding name, "n<index>".
func (n NodeRef) ID() string {
	return fmt.Sprintf("n%d", n.index)
}

// Index is the node's insertion position.
func (n NodeRef) Index() int {
	return n.index
}

// EdgeRef is an opaque handle to an edge in one graph.
type EdgeRef struct {
	index int
}

func (e EdgeRef) Index() int {
	return e.index
}

type nodeSlot struct {
	content  Node
	consumed bool
}

type edgeSlot struct {
	source int
	target int
	dep    *Dependency
}

// QueryGraph is an arena of nodes and edges addressed by index.
//
// A node's content is plucked exactly once during translation; the slot is
// then marked consumed and every further access fails with DOUBLE_PLUCK.
// The graph is not safe for concurrent use.
type QueryGraph struct {
	nodes  []nodeSlot
	edges  []edgeSlot
	result *int
}

// New creates an empty graph.
func New() *QueryGraph {
	return &QueryGraph{}
}

// AddNode appends a node and returns its handle.
func (g *QueryGraph) AddNode(content Node) NodeRef {
	g.nodes = append(g.nodes, nodeSlot{content: content})
	return NodeRef{index: len(g.nodes) - 1}
}

// AddQuery appends a QueryNode.
func (g *QueryGraph) AddQuery(q query.Query) NodeRef {
	return g.AddNode(QueryNode{Query: q})
}

// AddEdge connects parent to child. dep may be nil for ordering-only
// edges. Refs are checked by Validate, not here.
func (g *QueryGraph) AddEdge(parent, child NodeRef, dep *Dependency) EdgeRef {
	g.edges = append(g.edges, edgeSlot{source: parent.index, target: child.index, dep: dep})
	return EdgeRef{index: len(g.edges) - 1}
}

// MarkResult marks n as the node whose value is the graph's result.
func (g *QueryGraph) MarkResult(n NodeRef) {
	idx := n.index
	g.result = &idx
}

// ResultNode returns the marked result node.
func (g *QueryGraph) ResultNode() (NodeRef, bool) {
	if g.result == nil {
		return NodeRef{}, false
	}
	return NodeRef{index: *g.result}, true
}

// IsResultNode reports whether n is the marked result node.
func (g *QueryGraph) IsResultNode(n NodeRef) bool {
	return g.result != nil && *g.result == n.index
}

// Len returns the number of nodes.
func (g *QueryGraph) Len() int {
	return len(g.nodes)
}

// Nodes returns every node in insertion order.
func (g *QueryGraph) Nodes() []NodeRef {
	out := make([]NodeRef, len(g.nodes))
	for i := range g.nodes {
		out[i] = NodeRef{index: i}
	}
	return out
}

// Edges returns every edge in insertion order.
func (g *QueryGraph) Edges() []EdgeRef {
	out := make([]EdgeRef, len(g.edges))
	for i := range g.edges {
		out[i] = EdgeRef{index: i}
	}
	return out
}

// IncomingEdges returns the edges into n, in insertion order.
func (g *QueryGraph) IncomingEdges(n NodeRef) []EdgeRef {
	var out []EdgeRef
	for i, e := range g.edges {
		if e.target == n.index {
			out = append(out, EdgeRef{index: i})
		}
	}
	return out
}

// OutgoingEdges returns the edges out of n, in insertion order.
func (g *QueryGraph) OutgoingEdges(n NodeRef) []EdgeRef {
	var out []EdgeRef
	for i, e := range g.edges {
		if e.source == n.index {
			out = append(out, EdgeRef{index: i})
		}
	}
	return out
}

// EdgeSource returns the parent end of e.
func (g *QueryGraph) EdgeSource(e EdgeRef) NodeRef {
	return NodeRef{index: g.edges[e.index].source}
}

// EdgeTarget returns the child end of e.
func (g *QueryGraph) EdgeTarget(e EdgeRef) NodeRef {
	return NodeRef{index: g.edges[e.index].target}
}

// EdgeContent returns the dependency carried by e, or nil.
func (g *QueryGraph) EdgeContent(e EdgeRef) *Dependency {
	return g.edges[e.index].dep
}

// NodeContent returns n's content without consuming it.
func (g *QueryGraph) NodeContent(n NodeRef) (Node, error) {
	if err := g.checkNode(n); err != nil {
		return nil, err
	}
	slot := g.nodes[n.index]
	if slot.consumed {
		return nil, NewInternalError(ErrCodeDoublePluck, n.ID(), "node content already consumed")
	}
	return slot.content, nil
}

// PluckNode takes n's content, leaving the consumed sentinel behind.
func (g *QueryGraph) PluckNode(n NodeRef) (Node, error) {
	content, err := g.NodeContent(n)
	if err != nil {
		return nil, err
	}
	g.nodes[n.index] = nodeSlot{consumed: true}
	return content, nil
}

func (g *QueryGraph) checkNode(n NodeRef) error {
	if n.index < 0 || n.index >= len(g.nodes) {
		return NewInternalError(ErrCodeDanglingEdge, n.ID(), "node does not exist in this graph")
	}
	return nil
}

// RootNode returns the single node without incoming edges.
func (g *QueryGraph) RootNode() (NodeRef, error) {
	hasParent := make([]bool, len(g.nodes))
	for _, e := range g.edges {
		if e.target >= 0 && e.target < len(g.nodes) {
			hasParent[e.target] = true
		}
	}

	var roots []NodeRef
	for i, has := range hasParent {
		if !has {
			roots = append(roots, NodeRef{index: i})
		}
	}

	switch len(roots) {
	case 0:
		return NodeRef{}, NewInternalError(ErrCodeNoRoot, "", "graph has no root node")
	case 1:
		return roots[0], nil
	default:
		ids := make([]string, len(roots))
		for i, r := range roots {
			ids[i] = r.ID()
		}
		return NodeRef{}, NewInternalError(ErrCodeMultipleRoots, "", "graph has %d root nodes: %v", len(roots), ids)
	}
}
