package destructive

import (
	"fmt"
	"slices"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"

	"github.com/roach88/lift/internal/differ"
	"github.com/roach88/lift/internal/sqlschema"
)

// postgresAlterColumn is one ALTER COLUMN sub-command.
type postgresAlterColumn int

const (
	pgSetDefault postgresAlterColumn = iota + 1
	pgDropDefault
	pgDropNotNull
	pgSetNotNull
	pgSetType
)

// expandPostgresAlterColumn lists the sub-commands Postgres needs, in the
// order they would be emitted.
func expandPostgresAlterColumn(columns *differ.ColumnDiffer) []postgresAlterColumn {
	var out []postgresAlterColumn
	changes := columns.AllChanges()

	if changes.DefaultChanged() {
		if columns.Next.Default == nil || columns.Next.Default.IsNull() {
			out = append(out, pgDropDefault)
		} else {
			out = append(out, pgSetDefault)
		}
	}

	prevArity, nextArity := columns.Previous.Type.Arity, columns.Next.Type.Arity
	if changes.ArityChanged() && !prevArity.IsList() && !nextArity.IsList() {
		if columns.BecameRequired() {
			out = append(out, pgSetNotNull)
		} else {
			out = append(out, pgDropNotNull)
		}
	}

	if changes.TypeChanged() || columns.DataTypeRestated() {
		out = append(out, pgSetType)
	}
	return out
}

func postgresCheckAlterColumn(previousTable *sqlschema.Table, columns *differ.ColumnDiffer, plan *Plan) {
	if columns.BecameList() {
		plan.PushUnexecutable(MadeScalarFieldIntoArrayField{
			Table:  previousTable.Name,
			Column: columns.Previous.Name,
		})
		return
	}

	for _, step := range expandPostgresAlterColumn(columns) {
		switch step {
		case pgSetDefault, pgDropDefault, pgDropNotNull:
			continue

		case pgSetNotNull:
			plan.PushUnexecutable(MadeOptionalFieldRequired{
				Table:  previousTable.Name,
				Column: columns.Previous.Name,
			})

		case pgSetType:
			prev, next := columns.Previous.Type.DataType, columns.Next.Type.DataType
			if postgresCastIsSafe(prev, next) {
				continue
			}
			plan.PushWarning(PostgresTypeCast{
				Table:        previousTable.Name,
				Column:       columns.Previous.Name,
				PreviousType: prev,
				NextType:     next,
			})
			plan.PushWarning(AlterColumn{
				Table:  previousTable.Name,
				Column: columns.Next.Name,
			})
		}
	}
}

// pgType is a type name resolved by the Postgres parser.
type pgType struct {
	name  string
	mods  []int64
	array int
}

func (t pgType) equal(o pgType) bool {
	return t.name == o.name && t.array == o.array && slices.Equal(t.mods, o.mods)
}

var pgTypeAliases = map[string]string{
	"serial":      "int4",
	"bigserial":   "int8",
	"smallserial": "int2",
	"int":         "int4",
	"integer":     "int4",
	"bigint":      "int8",
	"smallint":    "int2",
}

// parsePostgresType resolves a type spelling through the Postgres grammar,
// so "character varying(10)" and "varchar(10)" compare equal.
func parsePostgresType(dataType string) (pgType, error) {
	result, err := pg_query.Parse("SELECT NULL::" + dataType)
	if err != nil {
		return pgType{}, fmt.Errorf("parse type %q: %w", dataType, err)
	}
	if len(result.Stmts) != 1 {
		return pgType{}, fmt.Errorf("parse type %q: not a single type", dataType)
	}
	sel := result.Stmts[0].GetStmt().GetSelectStmt()
	if sel == nil || len(sel.TargetList) != 1 {
		return pgType{}, fmt.Errorf("parse type %q: not a single type", dataType)
	}
	cast := sel.TargetList[0].GetResTarget().GetVal().GetTypeCast()
	if cast == nil || cast.TypeName == nil || len(cast.TypeName.Names) == 0 {
		return pgType{}, fmt.Errorf("parse type %q: not a single type", dataType)
	}

	tn := cast.TypeName
	var t pgType
	if str := tn.Names[len(tn.Names)-1].GetString_(); str != nil {
		t.name = strings.ToLower(str.Sval)
	}
	if alias, ok := pgTypeAliases[t.name]; ok {
		t.name = alias
	}
	for _, mod := range tn.Typmods {
		if aConst := mod.GetAConst(); aConst != nil {
			if iv := aConst.GetIval(); iv != nil {
				t.mods = append(t.mods, int64(iv.Ival))
			}
		}
	}
	t.array = len(tn.ArrayBounds)
	return t, nil
}

var pgIntWidth = map[string]int{"int2": 2, "int4": 4, "int8": 8}

// postgresCastIsSafe reports whether ALTER COLUMN TYPE from prev to next
// cannot fail or lose data. Unparseable types are never safe.
func postgresCastIsSafe(prev, next string) bool {
	p, err := parsePostgresType(prev)
	if err != nil {
		return false
	}
	n, err := parsePostgresType(next)
	if err != nil {
		return false
	}
	if p.equal(n) {
		return true
	}
	if p.array != n.array {
		return false
	}

	if pw, ok := pgIntWidth[p.name]; ok {
		nw, ok := pgIntWidth[n.name]
		return ok && nw >= pw
	}

	switch p.name {
	case "varchar", "bpchar":
		switch n.name {
		case "text":
			return true
		case "varchar":
			if len(n.mods) == 0 {
				return true
			}
			return p.name == "varchar" && len(p.mods) == 1 && n.mods[0] >= p.mods[0]
		}
	case "numeric":
		if n.name != "numeric" {
			return false
		}
		if len(n.mods) == 0 {
			return true
		}
		if len(p.mods) == 0 {
			return false
		}
		pScale, nScale := scale(p.mods), scale(n.mods)
		return pScale == nScale && n.mods[0] >= p.mods[0]
	}
	return false
}

func scale(mods []int64) int64 {
	if len(mods) > 1 {
		return mods[1]
	}
	return 0
}
