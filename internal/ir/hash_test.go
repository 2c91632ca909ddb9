package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprint_Deterministic(t *testing.T) {
	doc := map[string]any{"tables": []any{"users", "posts"}}

	a, err := Fingerprint(DomainSchema, doc)
	require.NoError(t, err)
	b, err := Fingerprint(DomainSchema, doc)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, 64, "SHA-256 hex is 64 characters")
}

func TestFingerprint_KeyOrderIrrelevant(t *testing.T) {
	a := MustFingerprint(DomainSchema, IRObject{"a": IRInt(1), "b": IRInt(2)})
	b := MustFingerprint(DomainSchema, IRObject{"b": IRInt(2), "a": IRInt(1)})
	assert.Equal(t, a, b)
}

func TestFingerprint_DomainSeparation(t *testing.T) {
	doc := IRString("same")
	assert.NotEqual(t,
		MustFingerprint(DomainSchema, doc),
		MustFingerprint(DomainExpression, doc),
	)
}

func TestFingerprint_Error(t *testing.T) {
	_, err := Fingerprint(DomainSchema, 1.5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), DomainSchema)

	assert.Panics(t, func() { MustFingerprint(DomainSchema, 1.5) })
}
