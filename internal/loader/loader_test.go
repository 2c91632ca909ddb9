package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/lift/internal/expression"
	"github.com/roach88/lift/internal/expressionista"
	"github.com/roach88/lift/internal/ir"
	"github.com/roach88/lift/internal/query"
	"github.com/roach88/lift/internal/querygraph"
	"github.com/roach88/lift/internal/sqlschema"
)

func TestLoadSchema_CUE(t *testing.T) {
	s, err := LoadSchema("testdata/users_before.cue")
	require.NoError(t, err)

	assert.Equal(t, sqlschema.DialectMySQL, s.Dialect)
	require.Len(t, s.Tables, 2)
	assert.Equal(t, "users", s.Tables[0].Name)
	assert.Equal(t, "posts", s.Tables[1].Name)

	users := s.Tables[0]
	assert.Equal(t, []string{"id"}, users.PrimaryKey)
	require.Len(t, users.Columns, 3)
	assert.Equal(t, []string{"id", "email", "bio"}, []string{users.Columns[0].Name, users.Columns[1].Name, users.Columns[2].Name})
	assert.True(t, users.Columns[0].AutoIncrement)
	assert.Equal(t, sqlschema.ArityNullable, users.Columns[1].Type.Arity)
	assert.Equal(t, sqlschema.ValueDefault(ir.IRNull{}), users.Columns[2].Default)

	created, ok := s.Tables[1].Column("created_at")
	require.True(t, ok)
	assert.Equal(t, sqlschema.NowDefault(), created.Default)
}

func TestLoadSchema_YAML(t *testing.T) {
	s, err := LoadSchema("testdata/users_after.yaml")
	require.NoError(t, err)

	email, ok := s.Tables[0].Column("email")
	require.True(t, ok)
	assert.Equal(t, sqlschema.ArityRequired, email.Type.Arity)
	assert.Equal(t, "varchar(191)", email.Type.DataType)

	title, ok := s.Tables[1].Column("title")
	require.True(t, ok)
	assert.Equal(t, sqlschema.ValueDefault(ir.IRString("untitled")), title.Default)
}

func TestParseSchemaYAML_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code string
	}{
		{
			name: "unknown key",
			src:  "dialect: mysql\nextra: true\n",
			code: ErrCodeDecode,
		},
		{
			name: "unknown dialect",
			src:  "dialect: oracle\n",
			code: ErrCodeDialect,
		},
		{
			name: "unknown family",
			src:  "tables:\n  - name: t\n    columns:\n      - {name: c, type: x, family: blob, arity: required}\n",
			code: ErrCodeColumn,
		},
		{
			name: "float default",
			src:  "tables:\n  - name: t\n    columns:\n      - {name: c, type: x, family: float, arity: required, default: {value: 1.5}}\n",
			code: ErrCodeDefault,
		},
		{
			name: "two default kinds",
			src:  "tables:\n  - name: t\n    columns:\n      - {name: c, type: x, family: int, arity: required, default: {value: 1, now: true}}\n",
			code: ErrCodeDefault,
		},
		{
			name: "list column on mysql",
			src:  "dialect: mysql\ntables:\n  - name: t\n    columns:\n      - {name: c, type: int, family: int, arity: list}\n",
			code: ErrCodeSchema,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSchemaYAML([]byte(tt.src))
			require.Error(t, err)
			var le *LoadError
			require.ErrorAs(t, err, &le)
			assert.Equal(t, tt.code, le.Code, "got %v", err)
		})
	}
}

func TestParseSchemaCUE_Errors(t *testing.T) {
	_, err := ParseSchemaCUE("bad.cue", []byte("table: t: column: c: {family: \"int\", arity: \"required\", default: value: 1.5}\n"))
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ErrCodeDefault, le.Code)
	assert.True(t, le.Pos.IsValid())

	_, err = ParseSchemaCUE("bad.cue", []byte("table: t: {\n"))
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ErrCodeBuildFailed, le.Code)
	assert.Contains(t, err.Error(), "bad.cue:")
}

func TestLoadSchema_UnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	_, err := LoadSchema(path)
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ErrCodeFormat, le.Code)

	_, err = LoadSchema(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ErrCodeNotFound, le.Code)
}

func TestLoadSnapshots(t *testing.T) {
	snaps, err := LoadSnapshots(context.Background(), "testdata/users_before.cue", "testdata/users_after.yaml")
	require.NoError(t, err)
	assert.Len(t, snaps.Before.Tables, 2)
	assert.Len(t, snaps.After.Tables, 2)

	d, err := snaps.Dialect()
	require.NoError(t, err)
	assert.Equal(t, sqlschema.DialectMySQL, d)
}

func TestLoadSnapshots_Error(t *testing.T) {
	_, err := LoadSnapshots(context.Background(), "testdata/users_before.cue", "testdata/nope.yaml")
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ErrCodeNotFound, le.Code)
}

func TestSnapshots_DialectMismatch(t *testing.T) {
	snaps := &Snapshots{
		Before: &sqlschema.Schema{Dialect: sqlschema.DialectMySQL},
		After:  &sqlschema.Schema{Dialect: sqlschema.DialectSQLite},
	}
	_, err := snaps.Dialect()
	require.Error(t, err)

	snaps.Before.Dialect = 0
	d, err := snaps.Dialect()
	require.NoError(t, err)
	assert.Equal(t, sqlschema.DialectSQLite, d)
}

func TestLoadGraph_YAMLAndCUEAgree(t *testing.T) {
	var trees []expression.Expression
	for _, path := range []string{"testdata/reload.yaml", "testdata/reload.cue"} {
		g, err := LoadGraph(path)
		require.NoError(t, err, path)

		assert.Equal(t, "n0", g.Names["create_user"].ID())
		assert.Equal(t, "create_post", g.NameOf(g.Names["create_post"]))

		expr, err := expressionista.Translate(g.QueryGraph)
		require.NoError(t, err, path)
		trees = append(trees, expr)
	}

	a, err := expression.Fingerprint(trees[0])
	require.NoError(t, err)
	b, err := expression.Fingerprint(trees[1])
	require.NoError(t, err)
	assert.Equal(t, a, b)

	// create_record returns only the id, so email is reloaded under n0.
	outer, ok := trees[0].(expression.Let)
	require.True(t, ok)
	require.Len(t, outer.Bindings, 1)
	assert.Equal(t, "n0", outer.Bindings[0].Name)
	reload, ok := outer.Inner.(expression.Let)
	require.True(t, ok)
	assert.Equal(t, "n0", reload.Bindings[0].Name)
}

func TestParseGraphYAML_Queries(t *testing.T) {
	src := `
models:
  User: {fields: [id, email], primary_key: [id]}
nodes:
  - name: find
    query:
      kind: read_many
      model: User
      selection: [email]
      take: 5
      filter:
        and:
          - equals: {field: email, value: a@b.c}
          - in: {field: id, values: [1, 2]}
  - name: bulk
    query:
      kind: create_many_records
      model: User
      records: [{email: x}, {email: y}]
  - name: diff
    diff: {left: [1, 2], right: [2]}
edges:
  - {from: find, to: bulk}
  - {from: bulk, to: diff}
result: find
`
	g, err := ParseGraphYAML([]byte(src))
	require.NoError(t, err)

	content, err := g.NodeContent(g.Names["find"])
	require.NoError(t, err)
	read := content.(querygraph.QueryNode).Query.(query.ReadMany)
	require.NotNil(t, read.Take)
	assert.Equal(t, int64(5), *read.Take)
	assert.Equal(t, query.And{Predicates: []query.Predicate{
		query.Equals{Field: "email", Value: ir.IRString("a@b.c")},
		query.In{Field: "id", Values: ir.IRArray{ir.IRInt(1), ir.IRInt(2)}},
	}}, read.Filter)

	content, err = g.NodeContent(g.Names["bulk"])
	require.NoError(t, err)
	bulk := content.(querygraph.QueryNode).Query.(query.CreateManyRecords)
	assert.Len(t, bulk.Records, 2)

	result, ok := g.ResultNode()
	require.True(t, ok)
	assert.Equal(t, g.Names["find"], result)
}

func TestParseGraphYAML_Errors(t *testing.T) {
	models := "models:\n  User: {fields: [id], primary_key: [id]}\n"
	tests := []struct {
		name string
		src  string
		code string
	}{
		{"unknown key", "nodes: []\nbogus: 1\n", ErrCodeDecode},
		{"model without key", "models:\n  User: {fields: [id]}\n", ErrCodeModel},
		{"unknown model", "nodes:\n  - {name: a, query: {kind: read_one, model: Nope}}\n", ErrCodeQuery},
		{"unknown kind", models + "nodes:\n  - {name: a, query: {kind: upsert, model: User}}\n", ErrCodeQuery},
		{"unknown field", models + "nodes:\n  - {name: a, query: {kind: read_one, model: User, selection: [name]}}\n", ErrCodeQuery},
		{"two contents", models + "nodes:\n  - {name: a, empty: true, flow: if}\n", ErrCodeNode},
		{"duplicate name", "nodes:\n  - {name: a, empty: true}\n  - {name: a, empty: true}\n", ErrCodeNode},
		{"unknown edge end", "nodes:\n  - {name: a, empty: true}\nedges:\n  - {from: a, to: b}\n", ErrCodeEdge},
		{"two dependencies", models + "nodes:\n  - {name: a, empty: true}\n  - {name: b, empty: true}\nedges:\n  - {from: a, to: b, inject_filter: {fields: [id]}, inject_data: {fields: [id]}}\n", ErrCodeEdge},
		{"two roots", "nodes:\n  - {name: a, empty: true}\n  - {name: b, empty: true}\n", ErrCodeGraph},
		{"wrong root", "nodes:\n  - {name: a, empty: true}\n  - {name: b, empty: true}\nedges:\n  - {from: a, to: b}\nroot: b\n", ErrCodeGraph},
		{"bad predicate", models + "nodes:\n  - {name: a, query: {kind: read_one, model: User, filter: {like: {field: id}}}}\n", ErrCodeQuery},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseGraphYAML([]byte(tt.src))
			require.Error(t, err)
			var le *LoadError
			require.True(t, errors.As(err, &le), "got %T %v", err, err)
			assert.Equal(t, tt.code, le.Code, "got %v", err)
		})
	}
}
