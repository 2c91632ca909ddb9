// Package differ matches two schema snapshots and classifies what changed.
//
// Matching is order preserving: tables and columns of the previous schema
// keep their order, added ones follow in next-schema order. ColumnDiffer
// exposes the derived change facts the dialect rules consume.
package differ
