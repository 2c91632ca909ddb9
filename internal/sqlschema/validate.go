package sqlschema

import (
	"errors"
	"fmt"
)

// ValidationError describes a single structural problem in a schema.
type ValidationError struct {
	Table   string
	Column  string
	Message string
}

func (e ValidationError) Error() string {
	switch {
	case e.Column != "":
		return fmt.Sprintf("%s.%s: %s", e.Table, e.Column, e.Message)
	case e.Table != "":
		return fmt.Sprintf("%s: %s", e.Table, e.Message)
	default:
		return e.Message
	}
}

// Validate checks that a schema can be diffed: names are present and unique
// after folding, every column has a family and arity, list columns only
// appear on dialects that have them, and primary keys name real columns.
// All problems are returned joined.
func Validate(s *Schema) error {
	var errs []error
	seenTables := make(map[string]bool, len(s.Tables))

	for _, t := range s.Tables {
		if t.Name == "" {
			errs = append(errs, ValidationError{Message: "table name is empty"})
			continue
		}
		key := FoldTable(t.Name)
		if seenTables[key] {
			errs = append(errs, ValidationError{Table: t.Name, Message: "duplicate table"})
		}
		seenTables[key] = true

		seenCols := make(map[string]bool, len(t.Columns))
		for _, c := range t.Columns {
			if c.Name == "" {
				errs = append(errs, ValidationError{Table: t.Name, Message: "column name is empty"})
				continue
			}
			ckey := FoldColumn(s.Dialect, c.Name)
			if seenCols[ckey] {
				errs = append(errs, ValidationError{Table: t.Name, Column: c.Name, Message: "duplicate column"})
			}
			seenCols[ckey] = true

			if c.Type.Family == "" {
				errs = append(errs, ValidationError{Table: t.Name, Column: c.Name, Message: "missing type family"})
			}
			if c.Type.Arity == 0 {
				errs = append(errs, ValidationError{Table: t.Name, Column: c.Name, Message: "missing arity"})
			}
			if c.Type.Arity.IsList() && !s.Dialect.SupportsLists() {
				errs = append(errs, ValidationError{
					Table: t.Name, Column: c.Name,
					Message: fmt.Sprintf("list columns are not supported on %s", s.Dialect),
				})
			}
		}

		for _, pk := range t.PrimaryKey {
			if !seenCols[FoldColumn(s.Dialect, pk)] {
				errs = append(errs, ValidationError{Table: t.Name, Column: pk, Message: "primary key column does not exist"})
			}
		}
	}

	return errors.Join(errs...)
}
