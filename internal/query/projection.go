package query

import (
	"slices"
	"strings"
)

// ModelProjection is a set of field names a query result must expose.
// The zero value is the empty set.
type ModelProjection struct {
	fields []string // sorted, unique
}

// NewProjection builds a projection from field names. Duplicates collapse.
func NewProjection(fields ...string) ModelProjection {
	out := slices.Clone(fields)
	slices.Sort(out)
	return ModelProjection{fields: slices.Compact(out)}
}

// Union merges projections. The result does not depend on argument order.
func Union(projections ...ModelProjection) ModelProjection {
	var all []string
	for _, p := range projections {
		all = append(all, p.fields...)
	}
	return NewProjection(all...)
}

// Union returns p ∪ other.
func (p ModelProjection) Union(other ModelProjection) ModelProjection {
	return Union(p, other)
}

// Fields returns the field names in sorted order.
func (p ModelProjection) Fields() []string {
	return slices.Clone(p.fields)
}

func (p ModelProjection) Len() int      { return len(p.fields) }
func (p ModelProjection) IsEmpty() bool { return len(p.fields) == 0 }

func (p ModelProjection) Contains(field string) bool {
	_, found := slices.BinarySearch(p.fields, field)
	return found
}

// IsSubsetOf reports whether every field of p is in other.
func (p ModelProjection) IsSubsetOf(other ModelProjection) bool {
	for _, f := range p.fields {
		if !other.Contains(f) {
			return false
		}
	}
	return true
}

func (p ModelProjection) Equal(other ModelProjection) bool {
	return slices.Equal(p.fields, other.fields)
}

func (p ModelProjection) String() string {
	return "{" + strings.Join(p.fields, ", ") + "}"
}

func (p ModelProjection) document() []any {
	out := make([]any, len(p.fields))
	for i, f := range p.fields {
		out[i] = f
	}
	return out
}
