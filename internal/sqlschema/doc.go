// Package sqlschema describes database schemas as plain data.
//
// A Schema is an ordered list of tables, each an ordered list of columns.
// Order is significant: the destructive change checker walks tables and
// columns in declaration order, so the warnings it produces are
// reproducible.
//
// Columns carry a raw DataType (exactly as the engine spells it) alongside a
// coarse Family. Two columns whose families and list-ness match are the same
// type even when the raw spellings differ, e.g. MySQL "int(11)" and "int".
package sqlschema
