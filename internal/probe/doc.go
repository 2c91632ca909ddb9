// Package probe inspects live data for the destructive change checker.
//
// The checker only asks two questions: how many rows a table has and how
// many non-null values a column holds. Answers let it skip warnings for
// drops that cannot lose data. The probe is read-only and every call takes
// a context.
package probe
