// Package query defines the read and write operations held by query graph
// nodes, and the projections that describe which fields a result exposes.
//
// Query and Predicate are sealed: only types in this package implement
// them, so type switches over them are exhaustive.
package query
