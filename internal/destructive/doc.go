// Package destructive decides whether a schema migration may run unattended.
//
// A Checker walks a differ.SchemaDiff and fills a Plan with two kinds of
// findings:
//
//   - Warning: data may be lost, but the step can run. The migration
//     proceeds only when forced.
//   - Unexecutable: the step cannot be applied in place (e.g. NOT NULL on a
//     column that may hold NULLs). The migration aborts regardless of force.
//
// Column alterations are classified per dialect. The dialect set is closed;
// each dialect has its own rule file (mysql.go, postgres.go, sqlite.go).
package destructive
