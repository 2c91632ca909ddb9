package differ

import (
	"github.com/roach88/lift/internal/sqlschema"
)

// ColumnPair is a previous column and its match in the next table.
// Next is nil when the column was dropped.
type ColumnPair struct {
	Previous *sqlschema.Column
	Next     *sqlschema.Column
}

// Dropped reports whether the previous column has no match.
func (p ColumnPair) Dropped() bool { return p.Next == nil }

// TableDiffer pairs two versions of the same table and matches their
// columns. Matching is by RenamedFrom when the next column carries one,
// otherwise by folded name.
type TableDiffer struct {
	Dialect  sqlschema.Dialect
	Previous *sqlschema.Table
	Next     *sqlschema.Table

	pairs []ColumnPair
	added []*sqlschema.Column
}

// NewTableDiffer matches the columns of previous and next.
func NewTableDiffer(d sqlschema.Dialect, previous, next *sqlschema.Table) *TableDiffer {
	td := &TableDiffer{Dialect: d, Previous: previous, Next: next}

	byName := make(map[string]int, len(previous.Columns))
	for i, c := range previous.Columns {
		byName[sqlschema.FoldColumn(d, c.Name)] = i
	}

	matched := make(map[int]*sqlschema.Column, len(next.Columns))
	for i := range next.Columns {
		col := &next.Columns[i]
		key := col.Name
		if col.RenamedFrom != "" {
			key = col.RenamedFrom
		}
		idx, ok := byName[sqlschema.FoldColumn(d, key)]
		if ok {
			if _, taken := matched[idx]; !taken {
				matched[idx] = col
				continue
			}
		}
		td.added = append(td.added, col)
	}

	td.pairs = make([]ColumnPair, len(previous.Columns))
	for i := range previous.Columns {
		td.pairs[i] = ColumnPair{Previous: &previous.Columns[i], Next: matched[i]}
	}
	return td
}

// Columns returns every previous column in order with its match.
func (td *TableDiffer) Columns() []ColumnPair { return td.pairs }

// AddedColumns returns next columns with no previous match, in next order.
func (td *TableDiffer) AddedColumns() []*sqlschema.Column { return td.added }

// DroppedColumns returns previous columns with no match, in previous order.
func (td *TableDiffer) DroppedColumns() []*sqlschema.Column {
	var out []*sqlschema.Column
	for _, p := range td.pairs {
		if p.Dropped() {
			out = append(out, p.Previous)
		}
	}
	return out
}

// ColumnDiffer returns the differ for a matched pair.
func (td *TableDiffer) ColumnDiffer(p ColumnPair) *ColumnDiffer {
	return &ColumnDiffer{Dialect: td.Dialect, Previous: p.Previous, Next: p.Next}
}

// AlteredColumns returns differs for matched columns that need an ALTER.
func (td *TableDiffer) AlteredColumns() []*ColumnDiffer {
	var out []*ColumnDiffer
	for _, p := range td.pairs {
		if p.Dropped() {
			continue
		}
		cd := td.ColumnDiffer(p)
		if cd.Altered() {
			out = append(out, cd)
		}
	}
	return out
}
