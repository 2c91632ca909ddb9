// Package expressionista compiles a query graph into an expression tree.
//
// Each query node becomes a Data leaf, or an Invoke(TransformQuery) when
// parents feed it values. A node is bound under its id when later nodes
// run after it. When downstream nodes need fields a write does not return,
// the write is followed by a reload that re-binds the same id:
//
//	let n0 = create_record User
//	in let n0 = transform read_one User (inject_filter {id} from n0)
//	   in <rest of the graph>
package expressionista
