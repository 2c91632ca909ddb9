// Package expression defines the evaluable tree the query graph compiles to.
//
// The tree is data only. Deferred work such as injecting a parent's
// result into a child query is an Invoke carrying the query and an ordered
// transformer list; applying it is the evaluator's job. Trees therefore
// serialize to canonical JSON and fingerprint deterministically.
package expression
