package migration

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/lift/internal/destructive"
	"github.com/roach88/lift/internal/differ"
	"github.com/roach88/lift/internal/sqlschema"
)

func col(name, dataType string, family sqlschema.Family, arity sqlschema.Arity) sqlschema.Column {
	return sqlschema.Column{Name: name, Type: sqlschema.ColumnType{DataType: dataType, Family: family, Arity: arity}}
}

func usersSchema(emailArity sqlschema.Arity) *sqlschema.Schema {
	return &sqlschema.Schema{
		Dialect: sqlschema.DialectMySQL,
		Tables: []sqlschema.Table{{
			Name: "users",
			Columns: []sqlschema.Column{
				col("id", "int", sqlschema.FamilyInt, sqlschema.ArityRequired),
				col("email", "varchar(191)", sqlschema.FamilyString, emailArity),
			},
			PrimaryKey: []string{"id"},
		}},
	}
}

// TestUUIDv7Generator tests the id format and version.
func TestUUIDv7Generator(t *testing.T) {
	id := UUIDv7Generator{}.Generate()
	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
	assert.Len(t, id, 36)
}

// TestFixedGenerator tests ordered ids and exhaustion.
func TestFixedGenerator(t *testing.T) {
	g := NewFixedGenerator("m-1", "m-2")
	assert.Equal(t, "m-1", g.Generate())
	assert.Equal(t, "m-2", g.Generate())
	assert.Panics(t, func() { g.Generate() })
}

// TestInfer_MadeRequired tests the users.email scenario end to end.
func TestInfer_MadeRequired(t *testing.T) {
	inf := NewInferrer(sqlschema.DialectMySQL, WithIDGenerator(NewFixedGenerator("m-1")))

	m, err := inf.Infer(context.Background(), usersSchema(sqlschema.ArityNullable), usersSchema(sqlschema.ArityRequired))
	require.NoError(t, err)

	assert.Equal(t, "m-1", m.ID)
	assert.False(t, m.IsEmpty())
	assert.NotEqual(t, m.Before, m.After)
	require.Len(t, m.Steps, 1)
	assert.Equal(t, "alter column users.email [arity]", m.Steps[0].String())
	assert.Equal(t, []destructive.Unexecutable{
		destructive.MadeOptionalFieldRequired{Table: "users", Column: "email"},
	}, m.Plan.Unexecutable)
	assert.Equal(t, destructive.Abort, m.Decide(true))
}

// TestInfer_NoChange tests that identical snapshots infer nothing.
func TestInfer_NoChange(t *testing.T) {
	inf := NewInferrer(sqlschema.DialectMySQL, WithIDGenerator(NewFixedGenerator("m-1")))

	m, err := inf.Infer(context.Background(), usersSchema(sqlschema.ArityNullable), usersSchema(sqlschema.ArityNullable))
	require.NoError(t, err)

	assert.True(t, m.IsEmpty())
	assert.True(t, m.Plan.IsEmpty())
	assert.Equal(t, m.Before, m.After)
	assert.Equal(t, destructive.Proceed, m.Decide(false))
}

// TestInfer_InvalidSchema tests that validation runs before diffing.
func TestInfer_InvalidSchema(t *testing.T) {
	bad := usersSchema(sqlschema.ArityNullable)
	bad.Tables[0].Columns = append(bad.Tables[0].Columns, col("email", "text", sqlschema.FamilyString, sqlschema.ArityNullable))

	inf := NewInferrer(sqlschema.DialectMySQL, WithIDGenerator(NewFixedGenerator()))
	_, err := inf.Infer(context.Background(), usersSchema(sqlschema.ArityNullable), bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "next schema")
}

// TestInfer_DialectMismatch tests that the differ's dialect check surfaces.
func TestInfer_DialectMismatch(t *testing.T) {
	inf := NewInferrer(sqlschema.DialectPostgres, WithIDGenerator(NewFixedGenerator()))
	_, err := inf.Infer(context.Background(), usersSchema(sqlschema.ArityNullable), usersSchema(sqlschema.ArityNullable))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema targets mysql")
}

type failingInspector struct{}

func (failingInspector) RowCount(context.Context, string) (int64, error) {
	return 0, errors.New("connection refused")
}

func (failingInspector) NonNullCount(context.Context, string, string) (int64, error) {
	return 0, errors.New("connection refused")
}

// TestInfer_InspectorError tests that probe failures are wrapped.
func TestInfer_InspectorError(t *testing.T) {
	after := usersSchema(sqlschema.ArityNullable)
	after.Tables[0].Columns = after.Tables[0].Columns[:1]

	inf := NewInferrer(sqlschema.DialectMySQL,
		WithIDGenerator(NewFixedGenerator("m-1")),
		WithChecker(destructive.NewChecker(destructive.WithInspector(failingInspector{}))),
	)
	_, err := inf.Infer(context.Background(), usersSchema(sqlschema.ArityNullable), after)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "destructive check")
	assert.Contains(t, err.Error(), "connection refused")
}

// TestMigration_MarshalJSON tests the document shape.
func TestMigration_MarshalJSON(t *testing.T) {
	m := &Migration{
		ID:      "m-1",
		Dialect: sqlschema.DialectMySQL,
		Before:  "aa",
		After:   "bb",
		Steps:   []differ.Step{differ.DropTable{Table: "logs"}},
		Plan:    destructive.NewPlan(),
	}
	m.Plan.PushWarning(destructive.DropTable{Table: "logs"})

	data, err := json.Marshal(m)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "m-1", doc["id"])
	assert.Equal(t, "mysql", doc["dialect"])
	assert.Equal(t, "needs_force", doc["decision"])
	assert.Len(t, doc["steps"], 1)

	assert.Equal(t, "proceed_forced", m.Document(true)["decision"])
}
