package differ

import "fmt"

// Step is a sealed interface over migration steps.
type Step interface {
	step()
	Kind() string
	String() string
}

type CreateTable struct {
	Table string
}

func (CreateTable) step()            {}
func (CreateTable) Kind() string     { return "create_table" }
func (s CreateTable) String() string { return fmt.Sprintf("create table %s", s.Table) }

type DropTable struct {
	Table string
}

func (DropTable) step()            {}
func (DropTable) Kind() string     { return "drop_table" }
func (s DropTable) String() string { return fmt.Sprintf("drop table %s", s.Table) }

type AddColumn struct {
	Table  string
	Column string
}

func (AddColumn) step()            {}
func (AddColumn) Kind() string     { return "add_column" }
func (s AddColumn) String() string { return fmt.Sprintf("add column %s.%s", s.Table, s.Column) }

type DropColumn struct {
	Table  string
	Column string
}

func (DropColumn) step()            {}
func (DropColumn) Kind() string     { return "drop_column" }
func (s DropColumn) String() string { return fmt.Sprintf("drop column %s.%s", s.Table, s.Column) }

// AlterColumn changes a column in place. PreviousColumn differs from Column
// only for renames.
type AlterColumn struct {
	Table          string
	Column         string
	PreviousColumn string
	Changes        ColumnChanges
	RestatedType   bool
}

func (AlterColumn) step()        {}
func (AlterColumn) Kind() string { return "alter_column" }
func (s AlterColumn) String() string {
	changes := s.Changes.String()
	if s.RestatedType {
		changes += ",restate"
	}
	if s.PreviousColumn != s.Column {
		return fmt.Sprintf("alter column %s.%s (was %s) [%s]", s.Table, s.Column, s.PreviousColumn, changes)
	}
	return fmt.Sprintf("alter column %s.%s [%s]", s.Table, s.Column, changes)
}

// StepDocument renders a step as a plain map for JSON output.
func StepDocument(s Step) map[string]any {
	doc := map[string]any{"kind": s.Kind()}
	switch v := s.(type) {
	case CreateTable:
		doc["table"] = v.Table
	case DropTable:
		doc["table"] = v.Table
	case AddColumn:
		doc["table"], doc["column"] = v.Table, v.Column
	case DropColumn:
		doc["table"], doc["column"] = v.Table, v.Column
	case AlterColumn:
		doc["table"], doc["column"] = v.Table, v.Column
		if v.PreviousColumn != v.Column {
			doc["previous_column"] = v.PreviousColumn
		}
		changes := make([]any, 0, 4)
		for _, n := range v.Changes.Names() {
			changes = append(changes, n)
		}
		doc["changes"] = changes
		if v.RestatedType {
			doc["restated_type"] = true
		}
	}
	return doc
}
