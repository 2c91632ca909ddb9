package destructive

import "fmt"

// Warning is a sealed interface over data-loss risks that may proceed only
// when forced.
type Warning interface {
	warning()
	Kind() string
	Description() string
	document() map[string]any
}

// AlterColumn is the generic warning for an in-place column modification
// that is not provably safe.
type AlterColumn struct {
	Table  string
	Column string
}

func (AlterColumn) warning()     {}
func (AlterColumn) Kind() string { return "alter_column" }
func (w AlterColumn) Description() string {
	return fmt.Sprintf("The `%s` column on the `%s` table would be altered. The data in that column could be lost.", w.Column, w.Table)
}
func (w AlterColumn) document() map[string]any {
	return map[string]any{"table": w.Table, "column": w.Column}
}

// MysqlColumnTypeRestatement fires when MODIFY re-declares a type whose
// spelling changed without the type itself changing.
type MysqlColumnTypeRestatement struct {
	Table        string
	Column       string
	PreviousType string
	NextType     string
}

func (MysqlColumnTypeRestatement) warning()     {}
func (MysqlColumnTypeRestatement) Kind() string { return "mysql_column_type_restatement" }
func (w MysqlColumnTypeRestatement) Description() string {
	return fmt.Sprintf("The `%s` column on the `%s` table will be re-declared from `%s` to `%s`.", w.Column, w.Table, w.PreviousType, w.NextType)
}
func (w MysqlColumnTypeRestatement) document() map[string]any {
	return map[string]any{"table": w.Table, "column": w.Column, "previous_type": w.PreviousType, "next_type": w.NextType}
}

// DropTable warns about a table that is dropped. RowCount is set when the
// table was inspected.
type DropTable struct {
	Table    string
	RowCount *int64
}

func (DropTable) warning()     {}
func (DropTable) Kind() string { return "drop_table" }
func (w DropTable) Description() string {
	if w.RowCount != nil {
		return fmt.Sprintf("You are about to drop the `%s` table, which is not empty (%d rows).", w.Table, *w.RowCount)
	}
	return fmt.Sprintf("You are about to drop the `%s` table. All the data in the table will be lost.", w.Table)
}
func (w DropTable) document() map[string]any {
	doc := map[string]any{"table": w.Table}
	if w.RowCount != nil {
		doc["row_count"] = *w.RowCount
	}
	return doc
}

// DropColumn warns about a column that is dropped. NonNullCount is set when
// the column was inspected.
type DropColumn struct {
	Table        string
	Column       string
	NonNullCount *int64
}

func (DropColumn) warning()     {}
func (DropColumn) Kind() string { return "drop_column" }
func (w DropColumn) Description() string {
	if w.NonNullCount != nil {
		return fmt.Sprintf("You are about to drop the column `%s` on the `%s` table, which still contains %d non-null values.", w.Column, w.Table, *w.NonNullCount)
	}
	return fmt.Sprintf("You are about to drop the column `%s` on the `%s` table. All the data in the column will be lost.", w.Column, w.Table)
}
func (w DropColumn) document() map[string]any {
	doc := map[string]any{"table": w.Table, "column": w.Column}
	if w.NonNullCount != nil {
		doc["non_null_count"] = *w.NonNullCount
	}
	return doc
}

// PostgresTypeCast fires when ALTER COLUMN TYPE needs a cast that may fail
// or truncate.
type PostgresTypeCast struct {
	Table        string
	Column       string
	PreviousType string
	NextType     string
}

func (PostgresTypeCast) warning()     {}
func (PostgresTypeCast) Kind() string { return "postgres_type_cast" }
func (w PostgresTypeCast) Description() string {
	return fmt.Sprintf("The `%s` column on the `%s` table will be cast from `%s` to `%s`. The cast may fail or lose data.", w.Column, w.Table, w.PreviousType, w.NextType)
}
func (w PostgresTypeCast) document() map[string]any {
	return map[string]any{"table": w.Table, "column": w.Column, "previous_type": w.PreviousType, "next_type": w.NextType}
}

// SqliteTableRedefinition fires when a column change forces SQLite to copy
// the table into a new definition.
type SqliteTableRedefinition struct {
	Table  string
	Column string
}

func (SqliteTableRedefinition) warning()     {}
func (SqliteTableRedefinition) Kind() string { return "sqlite_table_redefinition" }
func (w SqliteTableRedefinition) Description() string {
	return fmt.Sprintf("Altering the `%s` column requires redefining the `%s` table. Its rows will be copied into the new definition.", w.Column, w.Table)
}
func (w SqliteTableRedefinition) document() map[string]any {
	return map[string]any{"table": w.Table, "column": w.Column}
}
