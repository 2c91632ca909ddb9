package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIRValueSealed(t *testing.T) {
	var _ IRValue = IRNull{}
	var _ IRValue = IRString("test")
	var _ IRValue = IRInt(42)
	var _ IRValue = IRBool(true)
	var _ IRValue = IRArray{IRString("a"), IRInt(1)}
	var _ IRValue = IRObject{"key": IRString("value")}
}

func TestIRObjectSortedKeys(t *testing.T) {
	obj := IRObject{"a": IRInt(1), "A": IRInt(2), "aa": IRInt(3), "AA": IRInt(4)}
	assert.Equal(t, []string{"A", "AA", "a", "aa"}, obj.SortedKeys())
}

func TestNewObject(t *testing.T) {
	obj := NewObject(O("id", IRInt(1)), O("email", IRString("a@b.c")))
	assert.Equal(t, IRObject{"id": IRInt(1), "email": IRString("a@b.c")}, obj)
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b IRValue
		want bool
	}{
		{"nil nil", nil, nil, true},
		{"nil null", nil, IRNull{}, false},
		{"null null", IRNull{}, IRNull{}, true},
		{"same string", IRString("x"), IRString("x"), true},
		{"string vs int", IRString("1"), IRInt(1), false},
		{"bools", IRBool(true), IRBool(false), false},
		{"arrays", IRArray{IRInt(1), IRInt(2)}, IRArray{IRInt(1), IRInt(2)}, true},
		{"array order", IRArray{IRInt(1), IRInt(2)}, IRArray{IRInt(2), IRInt(1)}, false},
		{"objects", IRObject{"a": IRNull{}}, IRObject{"a": IRNull{}}, true},
		{"object keys", IRObject{"a": IRNull{}}, IRObject{"b": IRNull{}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Equal(tt.a, tt.b))
			assert.Equal(t, tt.want, Equal(tt.b, tt.a))
		})
	}
}

func TestLiteral(t *testing.T) {
	assert.Equal(t, "NULL", Literal(IRNull{}))
	assert.Equal(t, "NULL", Literal(nil))
	assert.Equal(t, "'untitled'", Literal(IRString("untitled")))
	assert.Equal(t, "'it''s'", Literal(IRString("it's")))
	assert.Equal(t, "-3", Literal(IRInt(-3)))
	assert.Equal(t, "false", Literal(IRBool(false)))
	assert.Equal(t, "[1, 'a']", Literal(IRArray{IRInt(1), IRString("a")}))
	assert.Equal(t, `'{"k":true}'`, Literal(IRObject{"k": IRBool(true)}))
}

func TestFromAny(t *testing.T) {
	v, err := FromAny(map[string]any{
		"n":    nil,
		"list": []any{"a", 2, true},
		"num":  float64(10),
	})
	require.NoError(t, err)
	assert.Equal(t, IRObject{
		"n":    IRNull{},
		"list": IRArray{IRString("a"), IRInt(2), IRBool(true)},
		"num":  IRInt(10),
	}, v)
}

func TestFromAny_RejectsFractionalFloat(t *testing.T) {
	_, err := FromAny([]any{1.25})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[0]")
}

func TestFromAny_Unsupported(t *testing.T) {
	_, err := FromAny(struct{}{})
	require.Error(t, err)
}
