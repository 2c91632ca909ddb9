package querygraph

import (
	"fmt"
	"strings"
)

// Validate checks the structural invariants translation relies on: every
// edge joins two existing nodes, the result marker names an existing node
// that produces a value, the graph is acyclic and has exactly one root.
func (g *QueryGraph) Validate() error {
	for i, e := range g.edges {
		for _, end := range []int{e.source, e.target} {
			if end < 0 || end >= len(g.nodes) {
				return NewInternalError(ErrCodeDanglingEdge, NodeRef{index: end}.ID(),
					"edge %d references a node outside the graph", i)
			}
		}
	}
	if g.result != nil {
		result := NodeRef{index: *g.result}
		if err := g.checkNode(result); err != nil {
			return err
		}
		if _, ok := g.nodes[result.index].content.(EmptyNode); ok {
			return NewInternalError(ErrCodeEmptyResult, result.ID(), "result marker is on an empty node")
		}
	}
	if len(g.nodes) == 0 {
		return NewInternalError(ErrCodeNoRoot, "", "graph is empty")
	}

	if cycle := g.findCycle(); cycle != nil {
		ids := make([]string, len(cycle))
		for i, idx := range cycle {
			ids[i] = NodeRef{index: idx}.ID()
		}
		return NewInternalError(ErrCodeCycle, ids[0], "cycle detected: %s", strings.Join(ids, " → "))
	}

	_, err := g.RootNode()
	return err
}

// TopologicalOrder returns every node such that parents precede children.
// Among nodes that are ready at the same time, the lower insertion index
// comes first, so the order is stable for a given graph.
func (g *QueryGraph) TopologicalOrder() ([]NodeRef, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	indegree := make([]int, len(g.nodes))
	children := make([][]int, len(g.nodes))
	for _, e := range g.edges {
		indegree[e.target]++
		children[e.source] = append(children[e.source], e.target)
	}

	var ready []int
	for i, d := range indegree {
		if d == 0 {
			ready = append(ready, i)
		}
	}

	order := make([]NodeRef, 0, len(g.nodes))
	for len(ready) > 0 {
		// ready stays sorted; take the smallest index.
		next := ready[0]
		ready = ready[1:]
		order = append(order, NodeRef{index: next})

		for _, c := range children[next] {
			indegree[c]--
			if indegree[c] == 0 {
				ready = insertSorted(ready, c)
			}
		}
	}

	if len(order) != len(g.nodes) {
		return nil, NewInternalError(ErrCodeCycle, "", "topological order covers %d of %d nodes", len(order), len(g.nodes))
	}
	return order, nil
}

func insertSorted(s []int, v int) []int {
	i := 0
	for i < len(s) && s[i] < v {
		i++
	}
	s = append(s, 0)
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}

// findCycle returns one cycle as a node path ending where it started, or nil.
//
// Strongly connected components are found with Tarjan's algorithm; any
// component with more than one node, or a single node with a self loop, is
// a cycle.
func (g *QueryGraph) findCycle() []int {
	adj := make([][]int, len(g.nodes))
	for _, e := range g.edges {
		adj[e.source] = append(adj[e.source], e.target)
	}

	for _, scc := range tarjanSCC(adj) {
		if len(scc) > 1 || hasSelfLoop(scc[0], adj) {
			return reconstructCyclePath(scc, adj)
		}
	}
	return nil
}

func hasSelfLoop(node int, adj [][]int) bool {
	for _, n := range adj[node] {
		if n == node {
			return true
		}
	}
	return false
}

// tarjanSCC visits nodes in index order so the reported components are
// deterministic.
func tarjanSCC(adj [][]int) [][]int {
	var (
		index   = 0
		stack   []int
		indices = make(map[int]int)
		lowlink = make(map[int]int)
		onStack = make(map[int]bool)
		sccs    [][]int
	)

	var strongConnect func(int)
	strongConnect = func(v int) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range adj[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []int
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for v := range adj {
		if _, visited := indices[v]; !visited {
			strongConnect(v)
		}
	}
	return sccs
}

// reconstructCyclePath walks edges inside the component from its smallest
// member until it returns to the start.
func reconstructCyclePath(scc []int, adj [][]int) []int {
	members := make(map[int]bool, len(scc))
	start := scc[0]
	for _, n := range scc {
		members[n] = true
		start = min(start, n)
	}

	path := []int{start}
	visited := map[int]bool{start: true}
	current := start
	for {
		next := -1
		for _, n := range adj[current] {
			if n == start {
				next = n
				break
			}
			if members[n] && !visited[n] && next == -1 {
				next = n
			}
		}
		if next == -1 {
			return path
		}
		path = append(path, next)
		if next == start {
			return path
		}
		visited[next] = true
		current = next
	}
}

// String renders the graph for debugging: one line per edge.
func (g *QueryGraph) String() string {
	var b strings.Builder
	for i, slot := range g.nodes {
		kind := "consumed"
		if !slot.consumed && slot.content != nil {
			kind = slot.content.Kind()
		}
		fmt.Fprintf(&b, "n%d [%s]\n", i, kind)
	}
	for _, e := range g.edges {
		dep := "-"
		if e.dep != nil {
			dep = fmt.Sprintf("%s%s", e.dep.Kind, e.dep.Projection)
		}
		fmt.Fprintf(&b, "n%d -> n%d %s\n", e.source, e.target, dep)
	}
	return b.String()
}
