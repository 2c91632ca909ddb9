package loader

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/roach88/lift/internal/ir"
	"github.com/roach88/lift/internal/query"
	"github.com/roach88/lift/internal/querygraph"
)

// Graph is a loaded query graph with the fixture's node names.
type Graph struct {
	*querygraph.QueryGraph

	// Names maps fixture node names to their refs.
	Names map[string]querygraph.NodeRef
}

// LoadGraph reads a query graph fixture from a .yaml, .yml or .cue file.
func LoadGraph(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: err.Error(), File: path}
	}

	var g *Graph
	switch ext := filepath.Ext(path); ext {
	case ".cue":
		g, err = ParseGraphCUE(path, data)
	case ".yaml", ".yml":
		g, err = ParseGraphYAML(data)
	default:
		return nil, &LoadError{Code: ErrCodeFormat, Message: fmt.Sprintf("unsupported graph format %q", ext), File: path}
	}
	if err != nil {
		return nil, withFile(err, path)
	}
	return g, nil
}

// ParseGraphCUE evaluates a CUE graph fixture and decodes its JSON export,
// so CUE and YAML fixtures share one shape.
func ParseGraphCUE(filename string, src []byte) (*Graph, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, fromCUEError(ErrCodeBuildFailed, err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, fromCUEError(ErrCodeBuildFailed, err)
	}

	data, err := v.MarshalJSON()
	if err != nil {
		return nil, fromCUEError(ErrCodeBuildFailed, err)
	}
	// JSON is valid YAML.
	return ParseGraphYAML(data)
}

// ParseGraphYAML decodes a graph fixture:
//
//	models:
//	  User: {fields: [id, email], primary_key: [id]}
//	nodes:
//	  - name: create_user
//	    query: {kind: create_record, model: User, args: {email: ada@example.com}}
//	  - name: create_post
//	    query: {kind: create_record, model: Post}
//	edges:
//	  - {from: create_user, to: create_post, inject_data: {fields: [email], into: author_email}}
//	result: create_user
//
// Nodes are added in list order, so the first node is n0.
func ParseGraphYAML(data []byte) (*Graph, error) {
	var doc GraphDoc
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, newError(ErrCodeDecode, "%v", err)
	}
	return doc.Build()
}

// GraphDoc is the decoded form of a graph fixture.
type GraphDoc struct {
	Models map[string]ModelDoc `yaml:"models"`
	Nodes  []NodeDoc           `yaml:"nodes"`
	Edges  []EdgeDoc           `yaml:"edges"`
	Root   string              `yaml:"root"`
	Result string              `yaml:"result"`
}

type ModelDoc struct {
	Fields     []string `yaml:"fields"`
	PrimaryKey []string `yaml:"primary_key"`
}

// NodeDoc holds exactly one of Query, Empty, Diff or Flow.
type NodeDoc struct {
	Name  string    `yaml:"name"`
	Query *QueryDoc `yaml:"query"`
	Empty bool      `yaml:"empty"`
	Diff  *DiffDoc  `yaml:"diff"`
	Flow  string    `yaml:"flow"`
}

type QueryDoc struct {
	Kind      string           `yaml:"kind"`
	Model     string           `yaml:"model"`
	Filter    map[string]any   `yaml:"filter"`
	Selection []string         `yaml:"selection"`
	Args      map[string]any   `yaml:"args"`
	Records   []map[string]any `yaml:"records"`
	Take      *int64           `yaml:"take"`
}

type DiffDoc struct {
	Left  []any `yaml:"left"`
	Right []any `yaml:"right"`
}

// EdgeDoc holds at most one dependency.
type EdgeDoc struct {
	From         string         `yaml:"from"`
	To           string         `yaml:"to"`
	InjectFilter *DependencyDoc `yaml:"inject_filter"`
	InjectData   *DependencyDoc `yaml:"inject_data"`
}

type DependencyDoc struct {
	Fields []string `yaml:"fields"`
	Into   string   `yaml:"into"`
}

// Build constructs and validates the query graph.
func (doc *GraphDoc) Build() (*Graph, error) {
	models := make(map[string]*query.Model, len(doc.Models))
	for name, md := range doc.Models {
		m := &query.Model{Name: name, Fields: md.Fields, PrimaryKey: md.PrimaryKey}
		if err := m.Validate(query.ModelProjection{}); err != nil {
			return nil, newError(ErrCodeModel, "%v", err)
		}
		models[name] = m
	}

	g := &Graph{QueryGraph: querygraph.New(), Names: make(map[string]querygraph.NodeRef, len(doc.Nodes))}
	for i, nd := range doc.Nodes {
		if nd.Name == "" {
			return nil, newError(ErrCodeNode, "node %d has no name", i)
		}
		if _, dup := g.Names[nd.Name]; dup {
			return nil, newError(ErrCodeNode, "duplicate node name %q", nd.Name)
		}
		content, err := nd.content(models)
		if err != nil {
			return nil, err
		}
		g.Names[nd.Name] = g.AddNode(content)
	}

	for i, ed := range doc.Edges {
		from, ok := g.Names[ed.From]
		if !ok {
			return nil, newError(ErrCodeEdge, "edge %d: unknown node %q", i, ed.From)
		}
		to, ok := g.Names[ed.To]
		if !ok {
			return nil, newError(ErrCodeEdge, "edge %d: unknown node %q", i, ed.To)
		}
		dep, err := ed.dependency()
		if err != nil {
			return nil, newError(ErrCodeEdge, "edge %d: %v", i, err)
		}
		g.AddEdge(from, to, dep)
	}

	if doc.Result != "" {
		ref, ok := g.Names[doc.Result]
		if !ok {
			return nil, newError(ErrCodeNode, "result names unknown node %q", doc.Result)
		}
		g.MarkResult(ref)
	}

	if err := g.Validate(); err != nil {
		return nil, newError(ErrCodeGraph, "%v", err)
	}
	if doc.Root != "" {
		root, _ := g.RootNode()
		if ref, ok := g.Names[doc.Root]; !ok || ref != root {
			return nil, newError(ErrCodeGraph, "declared root %q is not the graph's root node %s", doc.Root, root.ID())
		}
	}
	return g, nil
}

// NameOf returns the fixture name of a node.
func (g *Graph) NameOf(n querygraph.NodeRef) string {
	for name, ref := range g.Names {
		if ref == n {
			return name
		}
	}
	return n.ID()
}

func (nd NodeDoc) content(models map[string]*query.Model) (querygraph.Node, error) {
	set := 0
	var content querygraph.Node
	if nd.Query != nil {
		set++
		q, err := nd.Query.build(models)
		if err != nil {
			return nil, newError(ErrCodeQuery, "node %s: %v", nd.Name, err)
		}
		content = querygraph.QueryNode{Query: q}
	}
	if nd.Empty {
		set++
		content = querygraph.EmptyNode{}
	}
	if nd.Diff != nil {
		set++
		left, err := irArray(nd.Diff.Left)
		if err != nil {
			return nil, newError(ErrCodeNode, "node %s: diff left: %v", nd.Name, err)
		}
		right, err := irArray(nd.Diff.Right)
		if err != nil {
			return nil, newError(ErrCodeNode, "node %s: diff right: %v", nd.Name, err)
		}
		content = querygraph.ComputationNode{Diff: querygraph.DiffNode{Left: left, Right: right}}
	}
	if nd.Flow != "" {
		set++
		content = querygraph.FlowNode{Flow: nd.Flow}
	}
	if set != 1 {
		return nil, newError(ErrCodeNode, "node %s needs exactly one of query, empty, diff or flow (got %d)", nd.Name, set)
	}
	return content, nil
}

func (ed EdgeDoc) dependency() (*querygraph.Dependency, error) {
	switch {
	case ed.InjectFilter != nil && ed.InjectData != nil:
		return nil, fmt.Errorf("an edge carries at most one dependency")
	case ed.InjectFilter != nil:
		return ed.InjectFilter.build(querygraph.InjectFilter)
	case ed.InjectData != nil:
		return ed.InjectData.build(querygraph.InjectData)
	default:
		return nil, nil
	}
}

func (dd *DependencyDoc) build(kind querygraph.DependencyKind) (*querygraph.Dependency, error) {
	if len(dd.Fields) == 0 {
		return nil, fmt.Errorf("%s dependency has no fields", kind)
	}
	return &querygraph.Dependency{Kind: kind, Projection: query.NewProjection(dd.Fields...), Into: dd.Into}, nil
}

func (qd *QueryDoc) build(models map[string]*query.Model) (query.Query, error) {
	m, ok := models[qd.Model]
	if !ok {
		return nil, fmt.Errorf("unknown model %q", qd.Model)
	}

	selection := query.NewProjection(qd.Selection...)
	if err := m.Validate(selection); err != nil {
		return nil, err
	}

	var filter query.Predicate
	if qd.Filter != nil {
		var err error
		if filter, err = predicate(qd.Filter); err != nil {
			return nil, fmt.Errorf("filter: %w", err)
		}
	}

	args, err := irObject(qd.Args)
	if err != nil {
		return nil, fmt.Errorf("args: %w", err)
	}

	switch qd.Kind {
	case "read_one":
		return query.ReadOne{Model: m, Filter: filter, Selection: selection}, nil
	case "read_many":
		return query.ReadMany{Model: m, Filter: filter, Selection: selection, Take: qd.Take}, nil
	case "create_record":
		return query.CreateRecord{Model: m, Args: args}, nil
	case "create_many_records":
		records := make([]ir.IRObject, len(qd.Records))
		for i, r := range qd.Records {
			if records[i], err = irObject(r); err != nil {
				return nil, fmt.Errorf("records[%d]: %w", i, err)
			}
		}
		return query.CreateManyRecords{Model: m, Records: records}, nil
	case "update_record":
		return query.UpdateRecord{Model: m, Filter: filter, Args: args, Selection: selection}, nil
	case "update_many_records":
		return query.UpdateManyRecords{Model: m, Filter: filter, Args: args}, nil
	case "delete_record":
		return query.DeleteRecord{Model: m, Filter: filter, Selection: selection}, nil
	case "delete_many_records":
		return query.DeleteManyRecords{Model: m, Filter: filter}, nil
	default:
		return nil, fmt.Errorf("unknown query kind %q", qd.Kind)
	}
}

// predicate decodes {equals: {field, value}}, {in: {field, values}} or
// {and: [...]}.
func predicate(doc map[string]any) (query.Predicate, error) {
	if len(doc) != 1 {
		return nil, fmt.Errorf("a predicate has exactly one key, got %d", len(doc))
	}
	for op, body := range doc {
		switch op {
		case "and":
			items, ok := body.([]any)
			if !ok {
				return nil, fmt.Errorf("and: expected a list")
			}
			and := query.And{}
			for i, item := range items {
				sub, ok := item.(map[string]any)
				if !ok {
					return nil, fmt.Errorf("and[%d]: expected a mapping", i)
				}
				p, err := predicate(sub)
				if err != nil {
					return nil, fmt.Errorf("and[%d]: %w", i, err)
				}
				and.Predicates = append(and.Predicates, p)
			}
			return and, nil
		case "equals", "in":
			fields, ok := body.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%s: expected a mapping", op)
			}
			field, _ := fields["field"].(string)
			if field == "" {
				return nil, fmt.Errorf("%s: missing field", op)
			}
			if op == "equals" {
				v, err := ir.FromAny(fields["value"])
				if err != nil {
					return nil, fmt.Errorf("equals: %w", err)
				}
				return query.Equals{Field: field, Value: v}, nil
			}
			raw, ok := fields["values"].([]any)
			if !ok {
				return nil, fmt.Errorf("in: values must be a list")
			}
			values, err := irArray(raw)
			if err != nil {
				return nil, fmt.Errorf("in: %w", err)
			}
			return query.In{Field: field, Values: values}, nil
		default:
			return nil, fmt.Errorf("unknown predicate %q", op)
		}
	}
	return nil, nil
}

func irObject(m map[string]any) (ir.IRObject, error) {
	if m == nil {
		return nil, nil
	}
	v, err := ir.FromAny(m)
	if err != nil {
		return nil, err
	}
	return v.(ir.IRObject), nil
}

func irArray(items []any) (ir.IRArray, error) {
	if items == nil {
		return nil, nil
	}
	v, err := ir.FromAny(items)
	if err != nil {
		return nil, err
	}
	return v.(ir.IRArray), nil
}
