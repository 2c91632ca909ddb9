package expressionista

import (
	"github.com/roach88/lift/internal/expression"
	"github.com/roach88/lift/internal/query"
	"github.com/roach88/lift/internal/querygraph"
)

// collectQueryTransformers turns a node's incoming edges into transformers,
// in edge insertion order. Edges without a dependency only order execution
// and produce nothing.
func collectQueryTransformers(g *querygraph.QueryGraph, incoming []querygraph.EdgeRef) []expression.QueryTransformer {
	var out []expression.QueryTransformer
	for _, e := range incoming {
		dep := g.EdgeContent(e)
		if dep == nil {
			continue
		}

		var kind expression.TransformerKind
		switch dep.Kind {
		case querygraph.InjectFilter:
			kind = expression.InjectFilter
		case querygraph.InjectData:
			kind = expression.InjectData
		default:
			continue
		}

		out = append(out, expression.QueryTransformer{
			Kind:          kind,
			Projection:    dep.Projection,
			ParentBinding: g.EdgeSource(e).ID(),
			Into:          dep.Into,
		})
	}
	return out
}

// collectExpectedProjection returns the fields downstream nodes read from
// this node's result, or nil when nothing is downstream. A node whose
// outgoing edges all lack dependencies yields an empty, non-nil projection.
func collectExpectedProjection(g *querygraph.QueryGraph, outgoing []querygraph.EdgeRef) *query.ModelProjection {
	if len(outgoing) == 0 {
		return nil
	}

	projections := make([]query.ModelProjection, 0, len(outgoing))
	for _, e := range outgoing {
		if dep := g.EdgeContent(e); dep != nil {
			projections = append(projections, dep.Projection)
		}
	}

	p := query.Union(projections...)
	return &p
}
