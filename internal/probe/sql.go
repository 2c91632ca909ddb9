package probe

import (
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/roach88/lift/internal/sqlschema"
)

// SQLBuilder renders the count queries a probe issues.
//
// Identifiers cannot be bound as parameters, so they are quoted with the
// dialect's identifier quote and embedded quotes are doubled. No user value
// is ever interpolated.
type SQLBuilder struct {
	dialect sqlschema.Dialect
}

// NewSQLBuilder creates a builder for d.
func NewSQLBuilder(d sqlschema.Dialect) *SQLBuilder {
	return &SQLBuilder{dialect: d}
}

// QuoteIdent quotes a single identifier. A dot is part of the name.
func (b *SQLBuilder) QuoteIdent(name string) string {
	switch b.dialect {
	case sqlschema.DialectMySQL:
		return "`" + strings.ReplaceAll(name, "`", "``") + "`"
	case sqlschema.DialectPostgres:
		return pq.QuoteIdentifier(name)
	default:
		return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
	}
}

// RowCount returns a query yielding the number of rows in table.
func (b *SQLBuilder) RowCount(table string) string {
	return fmt.Sprintf("SELECT COUNT(*) FROM %s", b.QuoteIdent(table))
}

// NonNullCount returns a query yielding the number of non-null values in
// table.column. COUNT(expr) skips NULLs on every supported engine.
func (b *SQLBuilder) NonNullCount(table, column string) string {
	return fmt.Sprintf("SELECT COUNT(%s) FROM %s", b.QuoteIdent(column), b.QuoteIdent(table))
}

// NullCount returns a query yielding the number of NULLs in table.column.
func (b *SQLBuilder) NullCount(table, column string) string {
	return fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s IS NULL", b.QuoteIdent(table), b.QuoteIdent(column))
}
