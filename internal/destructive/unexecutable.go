package destructive

import "fmt"

// Unexecutable is a sealed interface over steps that cannot be applied in
// place under any force flag.
type Unexecutable interface {
	unexecutable()
	Kind() string
	Description() string
	document() map[string]any
}

// MadeOptionalFieldRequired: existing NULLs would violate NOT NULL.
type MadeOptionalFieldRequired struct {
	Table  string
	Column string
}

func (MadeOptionalFieldRequired) unexecutable() {}
func (MadeOptionalFieldRequired) Kind() string  { return "made_optional_field_required" }
func (u MadeOptionalFieldRequired) Description() string {
	return fmt.Sprintf("Made the column `%s` on table `%s` required, but there may be existing NULL values.", u.Column, u.Table)
}
func (u MadeOptionalFieldRequired) document() map[string]any {
	return map[string]any{"table": u.Table, "column": u.Column}
}

// AddedRequiredFieldToTable: a NOT NULL column without default cannot be
// filled for existing rows. RowCount is set when the table was inspected.
type AddedRequiredFieldToTable struct {
	Table    string
	Column   string
	RowCount *int64
}

func (AddedRequiredFieldToTable) unexecutable() {}
func (AddedRequiredFieldToTable) Kind() string  { return "added_required_field_to_table" }
func (u AddedRequiredFieldToTable) Description() string {
	if u.RowCount != nil {
		return fmt.Sprintf("Added the required column `%s` to the `%s` table without a default value. There are %d rows in this table, it is not possible to execute this step.", u.Column, u.Table, *u.RowCount)
	}
	return fmt.Sprintf("Added the required column `%s` to the `%s` table without a default value. This is not possible if the table is not empty.", u.Column, u.Table)
}
func (u AddedRequiredFieldToTable) document() map[string]any {
	doc := map[string]any{"table": u.Table, "column": u.Column}
	if u.RowCount != nil {
		doc["row_count"] = *u.RowCount
	}
	return doc
}

// MadeScalarFieldIntoArrayField: scalar values cannot be cast to lists.
type MadeScalarFieldIntoArrayField struct {
	Table  string
	Column string
}

func (MadeScalarFieldIntoArrayField) unexecutable() {}
func (MadeScalarFieldIntoArrayField) Kind() string  { return "made_scalar_field_into_array_field" }
func (u MadeScalarFieldIntoArrayField) Description() string {
	return fmt.Sprintf("Changed the column `%s` on the `%s` table from a scalar field to a list field. There are existing non-null values in that column, this step cannot be executed.", u.Column, u.Table)
}
func (u MadeScalarFieldIntoArrayField) document() map[string]any {
	return map[string]any{"table": u.Table, "column": u.Column}
}
