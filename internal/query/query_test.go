package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/lift/internal/ir"
)

var user = &Model{Name: "User", Fields: []string{"id", "email", "name"}, PrimaryKey: []string{"id"}}

func TestProjection_SetSemantics(t *testing.T) {
	p := NewProjection("name", "id", "name")
	assert.Equal(t, []string{"id", "name"}, p.Fields())
	assert.Equal(t, 2, p.Len())
	assert.True(t, p.Contains("id"))
	assert.False(t, p.Contains("email"))
	assert.Equal(t, "{id, name}", p.String())

	assert.True(t, ModelProjection{}.IsEmpty())
	assert.True(t, ModelProjection{}.IsSubsetOf(p))
	assert.True(t, NewProjection("id").IsSubsetOf(p))
	assert.False(t, p.IsSubsetOf(NewProjection("id")))
}

func TestProjection_UnionOrderIndependent(t *testing.T) {
	a := NewProjection("id")
	b := NewProjection("email", "id")
	c := NewProjection("name")

	want := NewProjection("email", "id", "name")
	for _, order := range [][]ModelProjection{{a, b, c}, {c, b, a}, {b, a, c}, {c, a, b}} {
		assert.True(t, want.Equal(Union(order...)))
	}
	assert.True(t, a.Union(c).Equal(c.Union(a)))
	assert.True(t, Union().IsEmpty())
}

func TestProjection_FieldsIsCopy(t *testing.T) {
	p := NewProjection("a", "b")
	fields := p.Fields()
	fields[0] = "z"
	assert.Equal(t, []string{"a", "b"}, p.Fields())
}

func TestReturns(t *testing.T) {
	idOnly := NewProjection("id")
	email := NewProjection("email")

	tests := []struct {
		name string
		q    Query
		p    ModelProjection
		want bool
	}{
		{"create returns id", CreateRecord{Model: user}, idOnly, true},
		{"create lacks email", CreateRecord{Model: user}, email, false},
		{"empty projection always satisfied", CreateManyRecords{Model: user}, ModelProjection{}, true},
		{"count-only writes", UpdateManyRecords{Model: user}, idOnly, false},
		{"update selection", UpdateRecord{Model: user, Selection: email}, NewProjection("id", "email"), true},
		{"update without selection", UpdateRecord{Model: user}, email, false},
		{"delete selection", DeleteRecord{Model: user, Selection: email}, email, true},
		{"delete many", DeleteManyRecords{Model: user}, idOnly, false},
		{"read all fields", ReadOne{Model: user}, NewProjection("id", "email", "name"), true},
		{"read narrow selection", ReadMany{Model: user, Selection: idOnly}, email, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.q.Returns(tt.p))
		})
	}
}

func TestReadBack(t *testing.T) {
	q, ok := ReadBack(CreateRecord{Model: user}, NewProjection("email"))
	require.True(t, ok)
	assert.Equal(t, ReadOne{Model: user, Selection: NewProjection("email", "id")}, q)

	q, ok = ReadBack(ReadMany{Model: user, Selection: NewProjection("id")}, NewProjection("name"))
	require.True(t, ok)
	assert.Equal(t, ReadMany{Model: user, Selection: NewProjection("id", "name")}, q)

	_, ok = ReadBack(ReadOne{Model: user, Selection: NewProjection("email")}, NewProjection("name"))
	assert.False(t, ok, "read without primary key cannot be re-identified")

	_, ok = ReadBack(DeleteRecord{Model: user}, NewProjection("email"))
	assert.False(t, ok)

	_, ok = ReadBack(UpdateManyRecords{Model: user}, NewProjection("email"))
	assert.False(t, ok)
}

func TestModel_Validate(t *testing.T) {
	require.NoError(t, user.Validate(NewProjection("email")))

	err := user.Validate(NewProjection("age"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no field "age"`)

	require.Error(t, (&Model{Name: "Log", Fields: []string{"msg"}}).Validate(ModelProjection{}))
	require.Error(t, (&Model{Name: "Log", Fields: []string{"msg"}, PrimaryKey: []string{"id"}}).Validate(ModelProjection{}))

	var nilModel *Model
	require.Error(t, nilModel.Validate(ModelProjection{}))
}

func TestDocument(t *testing.T) {
	take := int64(10)
	doc := Document(ReadMany{
		Model:     user,
		Filter:    And{Predicates: []Predicate{Equals{Field: "name", Value: ir.IRString("ada")}, In{Field: "id", Values: ir.IRArray{ir.IRInt(1)}}}},
		Selection: NewProjection("email", "id"),
		Take:      &take,
	})

	data, err := ir.MarshalCanonical(doc)
	require.NoError(t, err)
	assert.Equal(t,
		`{"filter":{"and":[{"equals":{"field":"name","value":"ada"}},{"in":{"field":"id","values":[1]}}]},"kind":"read_many","model":"User","selection":["email","id"],"take":10}`,
		string(data))

	data, err = ir.MarshalCanonical(Document(CreateRecord{Model: user}))
	require.NoError(t, err)
	assert.Equal(t, `{"args":{},"kind":"create_record","model":"User"}`, string(data))
}
