package sqlschema

import (
	"fmt"
	"strings"

	"github.com/roach88/lift/internal/ir"
)

// Arity is the nullability of a column.
type Arity int

const (
	ArityRequired Arity = iota + 1
	ArityNullable
	ArityList
)

func (a Arity) String() string {
	switch a {
	case ArityRequired:
		return "required"
	case ArityNullable:
		return "nullable"
	case ArityList:
		return "list"
	default:
		return fmt.Sprintf("arity(%d)", int(a))
	}
}

func (a Arity) IsRequired() bool { return a == ArityRequired }
func (a Arity) IsNullable() bool { return a == ArityNullable }
func (a Arity) IsList() bool     { return a == ArityList }

// ParseArity resolves an arity name. "optional" is accepted for nullable.
func ParseArity(s string) (Arity, error) {
	switch strings.ToLower(s) {
	case "required":
		return ArityRequired, nil
	case "nullable", "optional":
		return ArityNullable, nil
	case "list":
		return ArityList, nil
	default:
		return 0, fmt.Errorf("unknown arity %q", s)
	}
}

// Family is the coarse type of a column. Raw data types within the same
// family are interchangeable for change detection.
type Family string

const (
	FamilyString   Family = "string"
	FamilyInt      Family = "int"
	FamilyBigInt   Family = "bigint"
	FamilyFloat    Family = "float"
	FamilyDecimal  Family = "decimal"
	FamilyBoolean  Family = "boolean"
	FamilyDateTime Family = "datetime"
	FamilyJSON     Family = "json"
	FamilyBinary   Family = "binary"
	FamilyUUID     Family = "uuid"
	FamilyEnum     Family = "enum"
)

var knownFamilies = map[Family]bool{
	FamilyString: true, FamilyInt: true, FamilyBigInt: true, FamilyFloat: true,
	FamilyDecimal: true, FamilyBoolean: true, FamilyDateTime: true, FamilyJSON: true,
	FamilyBinary: true, FamilyUUID: true, FamilyEnum: true,
}

// ParseFamily validates a family name.
func ParseFamily(s string) (Family, error) {
	f := Family(strings.ToLower(s))
	if !knownFamilies[f] {
		return "", fmt.Errorf("unknown type family %q", s)
	}
	return f, nil
}

// ColumnType is the full type of a column.
type ColumnType struct {
	// DataType is the raw type as the engine spells it, e.g. "varchar(191)".
	DataType string
	Family   Family
	Arity    Arity
}

// Column is a single column description.
type Column struct {
	Name          string
	Type          ColumnType
	Default       *DefaultValue
	AutoIncrement bool

	// RenamedFrom names the previous column this one replaces, if any.
	RenamedFrom string
}

// HasDefault reports whether inserting a row without this column succeeds
// without an explicit value.
func (c *Column) HasDefault() bool {
	return c.AutoIncrement || (c.Default != nil && !c.Default.IsNull())
}

// Table is an ordered list of columns.
type Table struct {
	Name       string
	Columns    []Column
	PrimaryKey []string
}

// Column returns the column with the exact given name.
func (t *Table) Column(name string) (*Column, bool) {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i], true
		}
	}
	return nil, false
}

// Schema is an ordered list of tables.
type Schema struct {
	Dialect Dialect
	Tables  []Table
}

// Table returns the table with the exact given name.
func (s *Schema) Table(name string) (*Table, bool) {
	for i := range s.Tables {
		if s.Tables[i].Name == name {
			return &s.Tables[i], true
		}
	}
	return nil, false
}

// Fingerprint is a stable content hash of the schema. Table and column
// order participate in the hash.
func (s *Schema) Fingerprint() (string, error) {
	return ir.Fingerprint(ir.DomainSchema, s.document())
}

func (s *Schema) document() map[string]any {
	tables := make([]any, len(s.Tables))
	for i, t := range s.Tables {
		cols := make([]any, len(t.Columns))
		for j, c := range t.Columns {
			col := map[string]any{
				"name":      c.Name,
				"data_type": c.Type.DataType,
				"family":    string(c.Type.Family),
				"arity":     c.Type.Arity.String(),
			}
			if c.Default != nil {
				col["default"] = c.Default.document()
			}
			if c.AutoIncrement {
				col["auto_increment"] = true
			}
			cols[j] = col
		}
		pk := make([]any, len(t.PrimaryKey))
		for j, name := range t.PrimaryKey {
			pk[j] = name
		}
		tables[i] = map[string]any{"name": t.Name, "columns": cols, "primary_key": pk}
	}
	return map[string]any{"dialect": s.Dialect.String(), "tables": tables}
}
