package query

import (
	"github.com/roach88/lift/internal/ir"
)

// Query is a sealed interface over the read and write operations a query
// graph node can hold.
//
// Reads: ReadOne, ReadMany.
// Writes: CreateRecord, CreateManyRecords, UpdateRecord, UpdateManyRecords,
// DeleteRecord, DeleteManyRecords.
type Query interface {
	queryNode()

	// Kind is the stable snake_case name of the variant.
	Kind() string

	// Target is the model the query operates on.
	Target() *Model

	// Returns reports whether the query's own result already exposes every
	// field of p.
	Returns(p ModelProjection) bool
}

// ReadOne reads at most one record. An empty Selection selects every field.
type ReadOne struct {
	Model     *Model
	Filter    Predicate
	Selection ModelProjection
}

// ReadMany reads a set of records. An empty Selection selects every field.
type ReadMany struct {
	Model     *Model
	Filter    Predicate
	Selection ModelProjection
	Take      *int64
}

// CreateRecord inserts one record and returns its primary identifier.
type CreateRecord struct {
	Model *Model
	Args  ir.IRObject
}

// CreateManyRecords inserts records and returns only a count.
type CreateManyRecords struct {
	Model   *Model
	Records []ir.IRObject
}

// UpdateRecord updates one record and returns its primary identifier plus
// Selection.
type UpdateRecord struct {
	Model     *Model
	Filter    Predicate
	Args      ir.IRObject
	Selection ModelProjection
}

// UpdateManyRecords updates matching records and returns only a count.
type UpdateManyRecords struct {
	Model  *Model
	Filter Predicate
	Args   ir.IRObject
}

// DeleteRecord deletes one record. Selection is read before the delete and
// returned alongside the primary identifier.
type DeleteRecord struct {
	Model     *Model
	Filter    Predicate
	Selection ModelProjection
}

// DeleteManyRecords deletes matching records and returns only a count.
type DeleteManyRecords struct {
	Model  *Model
	Filter Predicate
}

func (ReadOne) queryNode()           {}
func (ReadMany) queryNode()          {}
func (CreateRecord) queryNode()      {}
func (CreateManyRecords) queryNode() {}
func (UpdateRecord) queryNode()      {}
func (UpdateManyRecords) queryNode() {}
func (DeleteRecord) queryNode()      {}
func (DeleteManyRecords) queryNode() {}

func (ReadOne) Kind() string           { return "read_one" }
func (ReadMany) Kind() string          { return "read_many" }
func (CreateRecord) Kind() string      { return "create_record" }
func (CreateManyRecords) Kind() string { return "create_many_records" }
func (UpdateRecord) Kind() string      { return "update_record" }
func (UpdateManyRecords) Kind() string { return "update_many_records" }
func (DeleteRecord) Kind() string      { return "delete_record" }
func (DeleteManyRecords) Kind() string { return "delete_many_records" }

func (q ReadOne) Target() *Model           { return q.Model }
func (q ReadMany) Target() *Model          { return q.Model }
func (q CreateRecord) Target() *Model      { return q.Model }
func (q CreateManyRecords) Target() *Model { return q.Model }
func (q UpdateRecord) Target() *Model      { return q.Model }
func (q UpdateManyRecords) Target() *Model { return q.Model }
func (q DeleteRecord) Target() *Model      { return q.Model }
func (q DeleteManyRecords) Target() *Model { return q.Model }

func effectiveSelection(m *Model, selection ModelProjection) ModelProjection {
	if selection.IsEmpty() {
		return m.AllFields()
	}
	return selection
}

func (q ReadOne) Returns(p ModelProjection) bool {
	return p.IsSubsetOf(effectiveSelection(q.Model, q.Selection))
}

func (q ReadMany) Returns(p ModelProjection) bool {
	return p.IsSubsetOf(effectiveSelection(q.Model, q.Selection))
}

func (q CreateRecord) Returns(p ModelProjection) bool {
	return p.IsSubsetOf(q.Model.PrimaryIdentifier())
}

func (CreateManyRecords) Returns(p ModelProjection) bool { return p.IsEmpty() }

func (q UpdateRecord) Returns(p ModelProjection) bool {
	return p.IsSubsetOf(q.Model.PrimaryIdentifier().Union(q.Selection))
}

func (UpdateManyRecords) Returns(p ModelProjection) bool { return p.IsEmpty() }

func (q DeleteRecord) Returns(p ModelProjection) bool {
	return p.IsSubsetOf(q.Model.PrimaryIdentifier().Union(q.Selection))
}

func (DeleteManyRecords) Returns(p ModelProjection) bool { return p.IsEmpty() }

// ReadBack derives the read that re-fetches the records q produced,
// selecting p plus the primary identifier. The read carries no filter: the
// caller injects one from q's result. ok is false when q's result does not
// identify live records (deletes, and writes that only return a count).
func ReadBack(q Query, p ModelProjection) (Query, bool) {
	m := q.Target()
	selection := p.Union(m.PrimaryIdentifier())

	switch q.(type) {
	case CreateRecord, UpdateRecord:
		return ReadOne{Model: m, Selection: selection}, true
	case ReadOne:
		if !q.Returns(m.PrimaryIdentifier()) {
			return nil, false
		}
		return ReadOne{Model: m, Selection: selection}, true
	case ReadMany:
		if !q.Returns(m.PrimaryIdentifier()) {
			return nil, false
		}
		return ReadMany{Model: m, Selection: selection}, true
	default:
		return nil, false
	}
}
