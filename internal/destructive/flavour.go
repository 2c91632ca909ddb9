package destructive

import (
	"github.com/roach88/lift/internal/differ"
	"github.com/roach88/lift/internal/sqlschema"
)

// checkAlterColumn dispatches an altered column to the rules of dialect d.
// It never fails; findings are appended to plan.
func checkAlterColumn(d sqlschema.Dialect, previousTable *sqlschema.Table, columns *differ.ColumnDiffer, plan *Plan) {
	switch d {
	case sqlschema.DialectMySQL:
		mysqlCheckAlterColumn(previousTable, columns, plan)
	case sqlschema.DialectPostgres:
		postgresCheckAlterColumn(previousTable, columns, plan)
	case sqlschema.DialectSQLite:
		sqliteCheckAlterColumn(previousTable, columns, plan)
	default:
		plan.PushWarning(AlterColumn{Table: previousTable.Name, Column: columns.Next.Name})
	}
}
