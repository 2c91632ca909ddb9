package sqlschema

import (
	"fmt"

	"github.com/roach88/lift/internal/ir"
)

// DefaultKind discriminates DefaultValue.
type DefaultKind int

const (
	DefaultKindValue DefaultKind = iota + 1
	DefaultKindNow
	DefaultKindSequence
	DefaultKindDBGenerated
)

func (k DefaultKind) String() string {
	switch k {
	case DefaultKindValue:
		return "value"
	case DefaultKindNow:
		return "now"
	case DefaultKindSequence:
		return "sequence"
	case DefaultKindDBGenerated:
		return "dbgenerated"
	default:
		return fmt.Sprintf("default(%d)", int(k))
	}
}

// DefaultValue is a column default.
type DefaultValue struct {
	Kind DefaultKind

	// Value is set for DefaultKindValue.
	Value ir.IRValue
	// Sequence is set for DefaultKindSequence.
	Sequence string
	// Expr is set for DefaultKindDBGenerated.
	Expr string
}

func ValueDefault(v ir.IRValue) *DefaultValue {
	return &DefaultValue{Kind: DefaultKindValue, Value: v}
}

func NowDefault() *DefaultValue {
	return &DefaultValue{Kind: DefaultKindNow}
}

func SequenceDefault(name string) *DefaultValue {
	return &DefaultValue{Kind: DefaultKindSequence, Sequence: name}
}

func DBGeneratedDefault(expr string) *DefaultValue {
	return &DefaultValue{Kind: DefaultKindDBGenerated, Expr: expr}
}

// IsNull reports whether the default is an explicit NULL.
func (d *DefaultValue) IsNull() bool {
	if d == nil || d.Kind != DefaultKindValue {
		return false
	}
	_, null := d.Value.(ir.IRNull)
	return null || d.Value == nil
}

// String renders the default as it would read in DDL.
func (d *DefaultValue) String() string {
	if d == nil {
		return "<none>"
	}
	switch d.Kind {
	case DefaultKindValue:
		return ir.Literal(d.Value)
	case DefaultKindNow:
		return "CURRENT_TIMESTAMP"
	case DefaultKindSequence:
		return "nextval(" + d.Sequence + ")"
	case DefaultKindDBGenerated:
		return d.Expr
	default:
		return d.Kind.String()
	}
}

// DefaultsEqual compares two defaults. A missing default and an explicit
// NULL default are equal. Sequence names are ignored because engines assign
// them.
func DefaultsEqual(a, b *DefaultValue) bool {
	if a.IsNull() {
		a = nil
	}
	if b.IsNull() {
		b = nil
	}
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case DefaultKindValue:
		return ir.Equal(a.Value, b.Value)
	case DefaultKindDBGenerated:
		return a.Expr == b.Expr
	default:
		return true
	}
}

func (d *DefaultValue) document() map[string]any {
	doc := map[string]any{"kind": d.Kind.String()}
	switch d.Kind {
	case DefaultKindValue:
		doc["value"] = d.Value
	case DefaultKindSequence:
		doc["sequence"] = d.Sequence
	case DefaultKindDBGenerated:
		doc["expr"] = d.Expr
	}
	return doc
}
