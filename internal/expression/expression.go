package expression

import (
	"github.com/roach88/lift/internal/ir"
	"github.com/roach88/lift/internal/query"
)

// Expression is a sealed interface over the compiled tree.
//
// Expression types:
//   - Let: named bindings visible to later bindings and to Inner
//   - Data: a query evaluated as-is
//   - Invoke: a deferred function applied at evaluation time
//   - Sequence: expressions evaluated in order, value of the last
//   - Get: the value of a binding in scope
type Expression interface {
	expression()
	Kind() string
}

// Binding names one produced value.
type Binding struct {
	Name string
	Expr Expression
}

type Let struct {
	Bindings []Binding
	Inner    Expression
}

type Data struct {
	Query query.Query
}

type Invoke struct {
	Fn FnInvocation
}

// Sequence evaluates to the last expression's value. An empty Sequence
// evaluates to nothing.
type Sequence struct {
	Exprs []Expression
}

type Get struct {
	Binding string
}

func (Let) expression()      {}
func (Data) expression()     {}
func (Invoke) expression()   {}
func (Sequence) expression() {}
func (Get) expression()      {}

func (Let) Kind() string      { return "let" }
func (Data) Kind() string     { return "data" }
func (Invoke) Kind() string   { return "invoke" }
func (Sequence) Kind() string { return "sequence" }
func (Get) Kind() string      { return "get" }

// FnInvocation is a sealed interface over deferred functions. They carry
// data only; the evaluator owns the behaviour.
type FnInvocation interface {
	fnInvocation()
	Name() string
}

// TransformQuery applies Transformers, in order, to Query using the
// values bound to each transformer's parent, then evaluates the result.
type TransformQuery struct {
	Query        query.Query
	Transformers []QueryTransformer
}

// Diff computes the records present in exactly one of Left and Right.
type Diff struct {
	Left  ir.IRArray
	Right ir.IRArray
}

func (TransformQuery) fnInvocation() {}
func (Diff) fnInvocation()           {}

func (TransformQuery) Name() string { return "transform_query" }
func (Diff) Name() string           { return "diff" }

// TransformerKind discriminates QueryTransformer.
type TransformerKind int

const (
	InjectFilter TransformerKind = iota + 1
	InjectData
)

func (k TransformerKind) String() string {
	switch k {
	case InjectFilter:
		return "inject_filter"
	case InjectData:
		return "inject_data"
	default:
		return "unknown"
	}
}

// QueryTransformer injects fields of a parent binding's value into a query,
// either as a filter or as write arguments.
type QueryTransformer struct {
	Kind          TransformerKind
	Projection    query.ModelProjection
	ParentBinding string
	Into          string
}
