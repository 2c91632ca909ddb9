package sqlschema

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// FoldTable returns the comparison key for a table name.
func FoldTable(name string) string {
	return norm.NFC.String(name)
}

// FoldColumn returns the comparison key for a column name under d.
func FoldColumn(d Dialect, name string) string {
	name = norm.NFC.String(name)
	if d.FoldsColumnCase() {
		return cases.Fold().String(name)
	}
	return name
}
