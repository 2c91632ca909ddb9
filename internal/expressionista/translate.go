package expressionista

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/lift/internal/expression"
	"github.com/roach88/lift/internal/query"
	"github.com/roach88/lift/internal/querygraph"
)

// ErrNotYetSupported marks node kinds the compiler refuses to translate
// rather than translate wrongly. Match with errors.Is.
var ErrNotYetSupported = errors.New("not yet supported")

// Translate compiles g into an expression tree.
//
// Nodes are visited once, in a stable topological order from the root.
// Each node's expression wraps the expression of every node after it, so
// every binding is in scope for all later nodes. Translation consumes the
// graph: translating it a second time fails with DOUBLE_PLUCK.
//
// Errors are *querygraph.InternalError for malformed graphs and
// ErrNotYetSupported for flow nodes.
func Translate(g *querygraph.QueryGraph) (expression.Expression, error) {
	order, err := g.TopologicalOrder()
	if err != nil {
		return nil, err
	}

	t := &translator{graph: g}

	var child expression.Expression
	if result, ok := g.ResultNode(); ok && result != order[len(order)-1] {
		child = expression.Get{Binding: result.ID()}
	}

	for i := len(order) - 1; i >= 0; i-- {
		child, err = t.translateNode(order[i], child)
		if err != nil {
			return nil, err
		}
	}

	if err := expression.CheckScope(child, expression.EmptyEnv()); err != nil {
		return nil, fmt.Errorf("translated tree is not well scoped: %w", err)
	}
	return child, nil
}

type translator struct {
	graph *querygraph.QueryGraph
}

// translateNode returns the expression for n with child as the body that
// runs after it. child is nil for the last node.
func (t *translator) translateNode(n querygraph.NodeRef, child expression.Expression) (expression.Expression, error) {
	content, err := t.graph.PluckNode(n)
	if err != nil {
		return nil, err
	}

	slog.Debug("translating node", "node", n.ID(), "kind", content.Kind(), "has_child", child != nil)

	switch c := content.(type) {
	case querygraph.QueryNode:
		return t.translateQuery(n, c.Query, child)

	case querygraph.ComputationNode:
		base := expression.Invoke{Fn: expression.Diff{Left: c.Diff.Left, Right: c.Diff.Right}}
		return bind(n, base, child), nil

	case querygraph.EmptyNode:
		if child != nil {
			return child, nil
		}
		return expression.Sequence{Exprs: []expression.Expression{}}, nil

	case querygraph.FlowNode:
		return nil, fmt.Errorf("flow node %s (%s): %w", n.ID(), c.Flow, ErrNotYetSupported)

	default:
		return nil, fmt.Errorf("node %s has unknown content %T: %w", n.ID(), content, ErrNotYetSupported)
	}
}

func (t *translator) translateQuery(n querygraph.NodeRef, q query.Query, child expression.Expression) (expression.Expression, error) {
	if q == nil || q.Target() == nil {
		return nil, fmt.Errorf("query node %s has no model", n.ID())
	}

	transformers := collectQueryTransformers(t.graph, t.graph.IncomingEdges(n))
	projection := collectExpectedProjection(t.graph, t.graph.OutgoingEdges(n))
	base := queryExpression(q, transformers)

	if projection == nil || q.Returns(*projection) {
		return bind(n, base, child), nil
	}

	reload, err := reloadExpression(n, q, *projection)
	if err != nil {
		return nil, err
	}
	slog.Debug("reload required", "node", n.ID(), "query", q.Kind(), "projection", projection.String())

	inner := reload
	if child != nil {
		inner = expression.Let{
			Bindings: []expression.Binding{{Name: n.ID(), Expr: reload}},
			Inner:    child,
		}
	}
	return expression.Let{
		Bindings: []expression.Binding{{Name: n.ID(), Expr: base}},
		Inner:    inner,
	}, nil
}

// bind names base after n when something runs after it, and otherwise lets
// base stand alone.
func bind(n querygraph.NodeRef, base, child expression.Expression) expression.Expression {
	if child == nil {
		return base
	}
	return expression.Let{
		Bindings: []expression.Binding{{Name: n.ID(), Expr: base}},
		Inner:    child,
	}
}

// queryExpression is Data when nothing needs injecting, and otherwise defers
// the injection to evaluation time.
func queryExpression(q query.Query, transformers []expression.QueryTransformer) expression.Expression {
	if len(transformers) == 0 {
		return expression.Data{Query: q}
	}
	return expression.Invoke{Fn: expression.TransformQuery{Query: q, Transformers: transformers}}
}

// reloadExpression reads back the records n produced, selecting projection
// and the primary identifier, filtered by the primary identifier of n's
// own result.
func reloadExpression(n querygraph.NodeRef, q query.Query, projection query.ModelProjection) (expression.Expression, error) {
	m := q.Target()
	if err := m.Validate(projection); err != nil {
		return nil, querygraph.NewInternalError(querygraph.ErrCodeUnreloadable, n.ID(), "%v", err)
	}

	read, ok := query.ReadBack(q, projection)
	if !ok {
		return nil, querygraph.NewInternalError(querygraph.ErrCodeUnreloadable, n.ID(),
			"%s does not return %s and its records cannot be read back", q.Kind(), projection)
	}

	return queryExpression(read, []expression.QueryTransformer{{
		Kind:          expression.InjectFilter,
		Projection:    m.PrimaryIdentifier(),
		ParentBinding: n.ID(),
	}}), nil
}
