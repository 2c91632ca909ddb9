package differ

import (
	"fmt"

	"github.com/roach88/lift/internal/sqlschema"
)

// TablePair is a previous table and its match in the next schema.
// Next is nil when the table was dropped.
type TablePair struct {
	Previous *sqlschema.Table
	Next     *sqlschema.Table
}

func (p TablePair) Dropped() bool { return p.Next == nil }

// SchemaDiff is the table-level match between two schemas.
type SchemaDiff struct {
	Dialect  sqlschema.Dialect
	Previous *sqlschema.Schema
	Next     *sqlschema.Schema

	tables []TablePair
	added  []*sqlschema.Table
}

// Diff matches the tables of previous and next. Both schemas must target
// the dialect d.
func Diff(d sqlschema.Dialect, previous, next *sqlschema.Schema) (*SchemaDiff, error) {
	for _, s := range []*sqlschema.Schema{previous, next} {
		if s.Dialect != 0 && s.Dialect != d {
			return nil, fmt.Errorf("schema targets %s, diff requested for %s", s.Dialect, d)
		}
	}

	sd := &SchemaDiff{Dialect: d, Previous: previous, Next: next}

	nextByName := make(map[string]int, len(next.Tables))
	for i, t := range next.Tables {
		nextByName[sqlschema.FoldTable(t.Name)] = i
	}

	matched := make(map[int]bool, len(next.Tables))
	for i := range previous.Tables {
		pair := TablePair{Previous: &previous.Tables[i]}
		if j, ok := nextByName[sqlschema.FoldTable(previous.Tables[i].Name)]; ok {
			pair.Next = &next.Tables[j]
			matched[j] = true
		}
		sd.tables = append(sd.tables, pair)
	}
	for j := range next.Tables {
		if !matched[j] {
			sd.added = append(sd.added, &next.Tables[j])
		}
	}
	return sd, nil
}

// Tables returns every previous table in order with its match.
func (sd *SchemaDiff) Tables() []TablePair { return sd.tables }

// AddedTables returns next tables with no previous match, in next order.
func (sd *SchemaDiff) AddedTables() []*sqlschema.Table { return sd.added }

// DroppedTables returns previous tables with no match, in previous order.
func (sd *SchemaDiff) DroppedTables() []*sqlschema.Table {
	var out []*sqlschema.Table
	for _, p := range sd.tables {
		if p.Dropped() {
			out = append(out, p.Previous)
		}
	}
	return out
}

// TableDiffer returns the column matcher for a retained table.
func (sd *SchemaDiff) TableDiffer(p TablePair) *TableDiffer {
	return NewTableDiffer(sd.Dialect, p.Previous, p.Next)
}

// Steps returns the migration steps that move Previous to Next. Order:
// created tables, then per retained table added, altered and dropped
// columns, then dropped tables.
func (sd *SchemaDiff) Steps() []Step {
	var steps []Step
	for _, t := range sd.AddedTables() {
		steps = append(steps, CreateTable{Table: t.Name})
	}
	for _, p := range sd.tables {
		if p.Dropped() {
			continue
		}
		td := sd.TableDiffer(p)
		for _, c := range td.AddedColumns() {
			steps = append(steps, AddColumn{Table: p.Next.Name, Column: c.Name})
		}
		for _, cd := range td.AlteredColumns() {
			steps = append(steps, AlterColumn{
				Table:          p.Next.Name,
				Column:         cd.Next.Name,
				PreviousColumn: cd.Previous.Name,
				Changes:        cd.AllChanges(),
				RestatedType:   cd.DataTypeRestated(),
			})
		}
		for _, c := range td.DroppedColumns() {
			steps = append(steps, DropColumn{Table: p.Previous.Name, Column: c.Name})
		}
	}
	for _, t := range sd.DroppedTables() {
		steps = append(steps, DropTable{Table: t.Name})
	}
	return steps
}
