package querygraph

import (
	"github.com/roach88/lift/internal/ir"
	"github.com/roach88/lift/internal/query"
)

// Node is a sealed interface over node contents.
type Node interface {
	nodeContent()
	Kind() string
}

// QueryNode holds a read or write.
type QueryNode struct {
	Query query.Query
}

// FlowNode holds a control flow marker. Translation of flow nodes is not
// supported yet.
type FlowNode struct {
	Flow string
}

// ComputationNode holds a pure computation over parent results.
type ComputationNode struct {
	Diff DiffNode
}

// DiffNode computes the symmetric difference of two record sets.
type DiffNode struct {
	Left  ir.IRArray
	Right ir.IRArray
}

// EmptyNode groups children without producing a value.
type EmptyNode struct{}

func (QueryNode) nodeContent()       {}
func (FlowNode) nodeContent()        {}
func (ComputationNode) nodeContent() {}
func (EmptyNode) nodeContent()       {}

func (QueryNode) Kind() string       { return "query" }
func (FlowNode) Kind() string        { return "flow" }
func (ComputationNode) Kind() string { return "computation" }
func (EmptyNode) Kind() string       { return "empty" }

// DependencyKind discriminates Dependency.
type DependencyKind int

const (
	// InjectFilter narrows the child's filter to the parent's values.
	InjectFilter DependencyKind = iota + 1
	// InjectData copies the parent's values into the child's arguments.
	InjectData
)

func (k DependencyKind) String() string {
	switch k {
	case InjectFilter:
		return "inject_filter"
	case InjectData:
		return "inject_data"
	default:
		return "unknown"
	}
}

// Dependency is the payload of an edge: which parent fields the child
// needs, and where they go.
type Dependency struct {
	Kind DependencyKind

	// Projection is the set of parent fields the child reads.
	Projection query.ModelProjection

	// Into names the child field receiving the values. Empty means the
	// fields keep their names.
	Into string
}
