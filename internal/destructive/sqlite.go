package destructive

import (
	"github.com/roach88/lift/internal/differ"
	"github.com/roach88/lift/internal/sqlschema"
)

// sqliteAlterColumn: SQLite cannot alter a column in place beyond a rename,
// so anything else redefines the whole table.
type sqliteAlterColumn interface {
	sqliteAlterColumn()
}

type sqliteNoop struct{}

type sqliteRedefine struct{}

func (sqliteNoop) sqliteAlterColumn()     {}
func (sqliteRedefine) sqliteAlterColumn() {}

func expandSqliteAlterColumn(columns *differ.ColumnDiffer) sqliteAlterColumn {
	changes := columns.AllChanges()
	if columns.DataTypeRestated() {
		return sqliteRedefine{}
	}
	if changes.OnlyDefaultChanged() || changes.OnlyRenamed() || changes.IsEmpty() {
		return sqliteNoop{}
	}
	return sqliteRedefine{}
}

func sqliteCheckAlterColumn(previousTable *sqlschema.Table, columns *differ.ColumnDiffer, plan *Plan) {
	switch expandSqliteAlterColumn(columns).(type) {
	case sqliteNoop:
		return

	case sqliteRedefine:
		if columns.BecameRequired() {
			plan.PushUnexecutable(MadeOptionalFieldRequired{
				Table:  previousTable.Name,
				Column: columns.Previous.Name,
			})
		}
		plan.PushWarning(SqliteTableRedefinition{
			Table:  previousTable.Name,
			Column: columns.Next.Name,
		})
	}
}
