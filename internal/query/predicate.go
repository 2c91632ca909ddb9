package query

import "github.com/roach88/lift/internal/ir"

// Predicate is a sealed interface over record filters.
//
// Predicate types:
//   - Equals: field = value
//   - In: field IN (values)
//   - And: all predicates must hold
type Predicate interface {
	predicateNode()
}

type Equals struct {
	Field string
	Value ir.IRValue
}

type In struct {
	Field  string
	Values ir.IRArray
}

type And struct {
	Predicates []Predicate
}

func (Equals) predicateNode() {}
func (In) predicateNode()     {}
func (And) predicateNode()    {}

func predicateDocument(p Predicate) any {
	switch pred := p.(type) {
	case nil:
		return nil
	case Equals:
		return map[string]any{"equals": map[string]any{"field": pred.Field, "value": pred.Value}}
	case In:
		return map[string]any{"in": map[string]any{"field": pred.Field, "values": pred.Values}}
	case And:
		parts := make([]any, len(pred.Predicates))
		for i, sub := range pred.Predicates {
			parts[i] = predicateDocument(sub)
		}
		return map[string]any{"and": parts}
	default:
		return nil
	}
}
