package destructive

import (
	"github.com/roach88/lift/internal/differ"
	"github.com/roach88/lift/internal/sqlschema"
)

// mysqlAlterColumn is how MySQL would express a column change:
// ALTER COLUMN ... DROP DEFAULT, or a full MODIFY re-stating the column.
type mysqlAlterColumn interface {
	mysqlAlterColumn()
}

type mysqlDropDefault struct{}

type mysqlModify struct {
	changes differ.ColumnChanges
}

func (mysqlDropDefault) mysqlAlterColumn() {}
func (mysqlModify) mysqlAlterColumn()      {}

func expandMysqlAlterColumn(columns *differ.ColumnDiffer) mysqlAlterColumn {
	changes := columns.AllChanges()
	if changes.OnlyDefaultChanged() && !columns.DataTypeRestated() &&
		(columns.Next.Default == nil || columns.Next.Default.IsNull()) {
		return mysqlDropDefault{}
	}
	return mysqlModify{changes: changes}
}

func mysqlCheckAlterColumn(previousTable *sqlschema.Table, columns *differ.ColumnDiffer, plan *Plan) {
	switch action := expandMysqlAlterColumn(columns).(type) {
	case mysqlDropDefault:
		return

	case mysqlModify:
		if action.changes.OnlyDefaultChanged() {
			return
		}

		if columns.BecameRequired() {
			plan.PushUnexecutable(MadeOptionalFieldRequired{
				Table:  previousTable.Name,
				Column: columns.Previous.Name,
			})
			return
		}

		// MODIFY re-states the type, so a respelled type is rewritten even
		// when it is not classified as a type change.
		if !action.changes.TypeChanged() && columns.DataTypeRestated() {
			plan.PushWarning(MysqlColumnTypeRestatement{
				Table:        previousTable.Name,
				Column:       columns.Previous.Name,
				PreviousType: columns.Previous.Type.DataType,
				NextType:     columns.Next.Type.DataType,
			})
		}

		plan.PushWarning(AlterColumn{
			Table:  previousTable.Name,
			Column: columns.Next.Name,
		})
	}
}
