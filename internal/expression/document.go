package expression

import (
	"fmt"
	"strings"

	"github.com/roach88/lift/internal/ir"
	"github.com/roach88/lift/internal/query"
)

// Document renders e as plain data suitable for ir.MarshalCanonical.
func Document(e Expression) any {
	switch v := e.(type) {
	case nil:
		return nil
	case Let:
		bindings := make([]any, len(v.Bindings))
		for i, b := range v.Bindings {
			bindings[i] = map[string]any{"name": b.Name, "expr": Document(b.Expr)}
		}
		return map[string]any{"kind": v.Kind(), "bindings": bindings, "inner": Document(v.Inner)}
	case Data:
		return map[string]any{"kind": v.Kind(), "query": query.Document(v.Query)}
	case Invoke:
		return map[string]any{"kind": v.Kind(), "fn": fnDocument(v.Fn)}
	case Sequence:
		exprs := make([]any, len(v.Exprs))
		for i, sub := range v.Exprs {
			exprs[i] = Document(sub)
		}
		return map[string]any{"kind": v.Kind(), "exprs": exprs}
	case Get:
		return map[string]any{"kind": v.Kind(), "binding": v.Binding}
	default:
		return nil
	}
}

func fnDocument(fn FnInvocation) any {
	switch f := fn.(type) {
	case TransformQuery:
		transformers := make([]any, len(f.Transformers))
		for i, t := range f.Transformers {
			transformers[i] = transformerDocument(t)
		}
		return map[string]any{
			"name":         f.Name(),
			"query":        query.Document(f.Query),
			"transformers": transformers,
		}
	case Diff:
		return map[string]any{"name": f.Name(), "left": nonNil(f.Left), "right": nonNil(f.Right)}
	default:
		return nil
	}
}

func transformerDocument(t QueryTransformer) map[string]any {
	fields := t.Projection.Fields()
	projection := make([]any, len(fields))
	for i, f := range fields {
		projection[i] = f
	}
	doc := map[string]any{
		"kind":       t.Kind.String(),
		"projection": projection,
		"parent":     t.ParentBinding,
	}
	if t.Into != "" {
		doc["into"] = t.Into
	}
	return doc
}

func nonNil(a ir.IRArray) ir.IRArray {
	if a == nil {
		return ir.IRArray{}
	}
	return a
}

// Marshal encodes e as canonical JSON.
func Marshal(e Expression) ([]byte, error) {
	return ir.MarshalCanonical(Document(e))
}

// Fingerprint is the domain-separated hash of e's canonical form. Equal
// trees always share a fingerprint.
func Fingerprint(e Expression) (string, error) {
	return ir.Fingerprint(ir.DomainExpression, Document(e))
}

// Render prints e as an indented tree for humans.
func Render(e Expression) string {
	var b strings.Builder
	render(&b, e, 0)
	return b.String()
}

func render(b *strings.Builder, e Expression, depth int) {
	indent := strings.Repeat("  ", depth)
	switch v := e.(type) {
	case Let:
		b.WriteString(indent + "let\n")
		for _, binding := range v.Bindings {
			fmt.Fprintf(b, "%s  %s =\n", indent, binding.Name)
			render(b, binding.Expr, depth+2)
		}
		b.WriteString(indent + "in\n")
		render(b, v.Inner, depth+1)
	case Data:
		fmt.Fprintf(b, "%sdata %s\n", indent, describeQuery(v.Query))
	case Invoke:
		switch fn := v.Fn.(type) {
		case TransformQuery:
			fmt.Fprintf(b, "%stransform %s\n", indent, describeQuery(fn.Query))
			for _, t := range fn.Transformers {
				fmt.Fprintf(b, "%s  %s %s from %s", indent, t.Kind, t.Projection, t.ParentBinding)
				if t.Into != "" {
					fmt.Fprintf(b, " into %s", t.Into)
				}
				b.WriteString("\n")
			}
		case Diff:
			fmt.Fprintf(b, "%sdiff %s %s\n", indent, ir.Literal(nonNil(fn.Left)), ir.Literal(nonNil(fn.Right)))
		}
	case Sequence:
		fmt.Fprintf(b, "%ssequence (%d)\n", indent, len(v.Exprs))
		for _, sub := range v.Exprs {
			render(b, sub, depth+1)
		}
	case Get:
		fmt.Fprintf(b, "%sget %s\n", indent, v.Binding)
	}
}

func describeQuery(q query.Query) string {
	if m := q.Target(); m != nil {
		return q.Kind() + " " + m.Name
	}
	return q.Kind()
}
