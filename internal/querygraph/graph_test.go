package querygraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/lift/internal/query"
)

var testUser = &query.Model{
	Name:       "User",
	Fields:     []string{"id", "email", "name"},
	PrimaryKey: []string{"id"},
}

func readUsers() query.Query {
	return query.ReadMany{Model: testUser}
}

func filterDep(fields ...string) *Dependency {
	return &Dependency{Kind: InjectFilter, Projection: query.NewProjection(fields...)}
}

// TestNodeRef_ID tests that node ids follow insertion order.
func TestNodeRef_ID(t *testing.T) {
	g := New()
	a := g.AddQuery(readUsers())
	b := g.AddNode(EmptyNode{})

	assert.Equal(t, "n0", a.ID())
	assert.Equal(t, "n1", b.ID())
	assert.Equal(t, 1, b.Index())
	assert.Equal(t, 2, g.Len())
}

// TestEdges_InsertionOrder tests that incoming and outgoing edges keep the
// order they were added in.
func TestEdges_InsertionOrder(t *testing.T) {
	g := New()
	root := g.AddQuery(readUsers())
	b := g.AddQuery(readUsers())
	c := g.AddQuery(readUsers())

	e1 := g.AddEdge(root, c, filterDep("id"))
	e2 := g.AddEdge(root, b, nil)
	e3 := g.AddEdge(b, c, filterDep("email"))

	assert.Equal(t, []EdgeRef{e1, e2}, g.OutgoingEdges(root))
	assert.Equal(t, []EdgeRef{e1, e3}, g.IncomingEdges(c))
	assert.Empty(t, g.IncomingEdges(root))

	assert.Equal(t, root, g.EdgeSource(e1))
	assert.Equal(t, c, g.EdgeTarget(e1))
	assert.Nil(t, g.EdgeContent(e2))
	require.NotNil(t, g.EdgeContent(e3))
	assert.Equal(t, InjectFilter, g.EdgeContent(e3).Kind)
}

// TestPluckNode_Once tests that content can be taken exactly once.
func TestPluckNode_Once(t *testing.T) {
	g := New()
	n := g.AddQuery(readUsers())

	content, err := g.PluckNode(n)
	require.NoError(t, err)
	assert.Equal(t, QueryNode{Query: readUsers()}, content)

	_, err = g.PluckNode(n)
	require.Error(t, err)
	assert.True(t, HasCode(err, ErrCodeDoublePluck))
	assert.Contains(t, err.Error(), "node=n0")

	_, err = g.NodeContent(n)
	assert.True(t, HasCode(err, ErrCodeDoublePluck))
}

// TestPluckNode_Foreign tests that a ref from another graph is rejected.
func TestPluckNode_Foreign(t *testing.T) {
	other := New()
	other.AddNode(EmptyNode{})
	foreign := other.AddNode(EmptyNode{})

	g := New()
	g.AddNode(EmptyNode{})

	_, err := g.PluckNode(foreign)
	assert.True(t, HasCode(err, ErrCodeDanglingEdge))
}

// TestResultNode tests the result marker.
func TestResultNode(t *testing.T) {
	g := New()
	a := g.AddQuery(readUsers())
	b := g.AddQuery(readUsers())

	_, ok := g.ResultNode()
	assert.False(t, ok)

	g.MarkResult(b)
	r, ok := g.ResultNode()
	assert.True(t, ok)
	assert.Equal(t, b, r)
	assert.True(t, g.IsResultNode(b))
	assert.False(t, g.IsResultNode(a))
}

// TestValidate_Errors tests each structural failure.
func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name  string
		build func() *QueryGraph
		code  ErrorCode
	}{
		{
			name:  "empty",
			build: New,
			code:  ErrCodeNoRoot,
		},
		{
			name: "two roots",
			build: func() *QueryGraph {
				g := New()
				g.AddNode(EmptyNode{})
				g.AddNode(EmptyNode{})
				return g
			},
			code: ErrCodeMultipleRoots,
		},
		{
			name: "dangling edge",
			build: func() *QueryGraph {
				g := New()
				a := g.AddNode(EmptyNode{})
				g.AddEdge(a, NodeRef{index: 7}, nil)
				return g
			},
			code: ErrCodeDanglingEdge,
		},
		{
			name: "dangling result",
			build: func() *QueryGraph {
				g := New()
				g.AddNode(EmptyNode{})
				g.MarkResult(NodeRef{index: 3})
				return g
			},
			code: ErrCodeDanglingEdge,
		},
		{
			name: "empty result",
			build: func() *QueryGraph {
				g := New()
				a := g.AddNode(EmptyNode{})
				b := g.AddNode(EmptyNode{})
				g.AddEdge(a, b, nil)
				g.MarkResult(a)
				return g
			},
			code: ErrCodeEmptyResult,
		},
		{
			name: "self loop",
			build: func() *QueryGraph {
				g := New()
				a := g.AddNode(EmptyNode{})
				b := g.AddNode(EmptyNode{})
				g.AddEdge(a, b, nil)
				g.AddEdge(b, b, nil)
				return g
			},
			code: ErrCodeCycle,
		},
		{
			name: "cycle below root",
			build: func() *QueryGraph {
				g := New()
				a := g.AddNode(EmptyNode{})
				b := g.AddNode(EmptyNode{})
				c := g.AddNode(EmptyNode{})
				g.AddEdge(a, b, nil)
				g.AddEdge(b, c, nil)
				g.AddEdge(c, b, nil)
				return g
			},
			code: ErrCodeCycle,
		},
		{
			name: "all nodes in a cycle",
			build: func() *QueryGraph {
				g := New()
				a := g.AddNode(EmptyNode{})
				b := g.AddNode(EmptyNode{})
				g.AddEdge(a, b, nil)
				g.AddEdge(b, a, nil)
				return g
			},
			code: ErrCodeCycle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.build().Validate()
			require.Error(t, err)
			assert.True(t, HasCode(err, tt.code), "got %v", err)
		})
	}
}

// TestValidate_CyclePath tests that the cycle error names the loop.
func TestValidate_CyclePath(t *testing.T) {
	g := New()
	a := g.AddNode(EmptyNode{})
	b := g.AddNode(EmptyNode{})
	c := g.AddNode(EmptyNode{})
	g.AddEdge(a, b, nil)
	g.AddEdge(b, c, nil)
	g.AddEdge(c, b, nil)

	err := g.Validate()
	require.True(t, IsCycleError(err))
	assert.Contains(t, err.Error(), "n1 → n2 → n1")
}

// TestRootNode tests root lookup on a valid graph.
func TestRootNode(t *testing.T) {
	g := New()
	a := g.AddNode(EmptyNode{})
	b := g.AddNode(EmptyNode{})
	g.AddEdge(b, a, nil)

	root, err := g.RootNode()
	require.NoError(t, err)
	assert.Equal(t, b, root)
	require.NoError(t, g.Validate())
}

// TestTopologicalOrder_Stable tests that ready nodes come out by index.
func TestTopologicalOrder_Stable(t *testing.T) {
	g := New()
	root := g.AddNode(EmptyNode{})
	c := g.AddNode(EmptyNode{})
	b := g.AddNode(EmptyNode{})
	d := g.AddNode(EmptyNode{})

	// d depends on both b and c; b and c hang off the root.
	g.AddEdge(root, b, nil)
	g.AddEdge(root, c, nil)
	g.AddEdge(b, d, nil)
	g.AddEdge(c, d, nil)

	order, err := g.TopologicalOrder()
	require.NoError(t, err)
	assert.Equal(t, []NodeRef{root, c, b, d}, order)
}

// TestTopologicalOrder_ParentsFirst tests that a low-index child waits for
// its high-index parent.
func TestTopologicalOrder_ParentsFirst(t *testing.T) {
	g := New()
	child := g.AddNode(EmptyNode{})
	root := g.AddNode(EmptyNode{})
	mid := g.AddNode(EmptyNode{})
	g.AddEdge(root, mid, nil)
	g.AddEdge(mid, child, nil)

	order, err := g.TopologicalOrder()
	require.NoError(t, err)
	assert.Equal(t, []NodeRef{root, mid, child}, order)
}

// TestTopologicalOrder_Invalid tests that validation errors surface.
func TestTopologicalOrder_Invalid(t *testing.T) {
	_, err := New().TopologicalOrder()
	assert.True(t, HasCode(err, ErrCodeNoRoot))
}

// TestDependencyKind_String tests kind names.
func TestDependencyKind_String(t *testing.T) {
	assert.Equal(t, "inject_filter", InjectFilter.String())
	assert.Equal(t, "inject_data", InjectData.String())
	assert.Equal(t, "unknown", DependencyKind(0).String())
}

// TestString tests the debug rendering.
func TestString(t *testing.T) {
	g := New()
	a := g.AddQuery(readUsers())
	b := g.AddNode(EmptyNode{})
	g.AddEdge(a, b, filterDep("id"))
	_, err := g.PluckNode(a)
	require.NoError(t, err)

	assert.Equal(t, "n0 [consumed]\nn1 [empty]\nn0 -> n1 inject_filter{id}\n", g.String())
}

// TestInternalError_Format tests messages with and without a node.
func TestInternalError_Format(t *testing.T) {
	assert.Equal(t, "NO_ROOT: graph is empty", NewInternalError(ErrCodeNoRoot, "", "graph is empty").Error())
	assert.Equal(t, "CYCLE: loop (node=n2)", NewInternalError(ErrCodeCycle, "n2", "loop").Error())
	assert.False(t, HasCode(assert.AnError, ErrCodeCycle))
}
