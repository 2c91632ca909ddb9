// Package querygraph is the directed graph of queries that the
// expressionista package compiles.
//
// Nodes and edges live in arenas and are addressed by NodeRef and EdgeRef.
// Edges run from a parent (producer) to a child (consumer) and may carry a
// Dependency describing which parent fields the child needs.
//
// Translation relies on three invariants checked by Validate: exactly one
// root, no cycles, no dangling references. Node content is plucked once;
// a second pluck is an InternalError, never undefined behaviour.
package querygraph
