package ir

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode/utf16"
)

// IRValue is a sealed interface over the value kinds lift understands.
// Only IRNull, IRString, IRInt, IRBool, IRArray and IRObject implement it.
type IRValue interface {
	irValue()
}

// IRNull is an explicit null. Defaults such as `DEFAULT NULL` use it.
type IRNull struct{}

func (IRNull) irValue() {}

// IRString is a string literal.
type IRString string

func (IRString) irValue() {}

// IRInt is an integer literal. Always int64.
type IRInt int64

func (IRInt) irValue() {}

// IRBool is a boolean literal.
type IRBool bool

func (IRBool) irValue() {}

// IRArray is an ordered list of values.
type IRArray []IRValue

func (IRArray) irValue() {}

// IRObject maps keys to values. Iterate with SortedKeys for stable output.
type IRObject map[string]IRValue

func (IRObject) irValue() {}

// O builds a single-entry pair for NewObject.
func O(key string, value IRValue) IRPair {
	return IRPair{Key: key, Value: value}
}

// IRPair is a key/value pair used by NewObject.
type IRPair struct {
	Key   string
	Value IRValue
}

// NewObject builds an IRObject from typed pairs.
func NewObject(pairs ...IRPair) IRObject {
	obj := make(IRObject, len(pairs))
	for _, p := range pairs {
		obj[p.Key] = p.Value
	}
	return obj
}

// SortedKeys returns the keys in RFC 8785 order (UTF-16 code units).
func (obj IRObject) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareUTF16)
	return keys
}

func compareUTF16(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))
	for i := 0; i < len(a16) && i < len(b16); i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}
	return len(a16) - len(b16)
}

// Equal reports whether two values are structurally identical.
// A nil IRValue is only equal to another nil.
func Equal(a, b IRValue) bool {
	switch av := a.(type) {
	case nil:
		return b == nil
	case IRNull:
		_, ok := b.(IRNull)
		return ok
	case IRString:
		bv, ok := b.(IRString)
		return ok && av == bv
	case IRInt:
		bv, ok := b.(IRInt)
		return ok && av == bv
	case IRBool:
		bv, ok := b.(IRBool)
		return ok && av == bv
	case IRArray:
		bv, ok := b.(IRArray)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case IRObject:
		bv, ok := b.(IRObject)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			other, exists := bv[k]
			if !exists || !Equal(v, other) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Literal renders a value the way it would appear in a SQL DEFAULT clause.
// Used only for human-readable messages, never for executed SQL.
func Literal(v IRValue) string {
	switch val := v.(type) {
	case nil, IRNull:
		return "NULL"
	case IRString:
		return "'" + strings.ReplaceAll(string(val), "'", "''") + "'"
	case IRInt:
		return strconv.FormatInt(int64(val), 10)
	case IRBool:
		if val {
			return "true"
		}
		return "false"
	case IRArray:
		parts := make([]string, len(val))
		for i, elem := range val {
			parts[i] = Literal(elem)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case IRObject:
		data, err := MarshalCanonical(val)
		if err != nil {
			return "<invalid object>"
		}
		return "'" + string(data) + "'"
	default:
		return fmt.Sprintf("<%T>", v)
	}
}

// FromAny converts a decoded YAML/JSON/CUE Go value into an IRValue.
// Floats are rejected; whole-number floats produced by JSON decoders are
// accepted as integers.
func FromAny(v any) (IRValue, error) {
	switch val := v.(type) {
	case nil:
		return IRNull{}, nil
	case IRValue:
		return val, nil
	case string:
		return IRString(val), nil
	case bool:
		return IRBool(val), nil
	case int:
		return IRInt(val), nil
	case int64:
		return IRInt(val), nil
	case int32:
		return IRInt(val), nil
	case uint64:
		return IRInt(int64(val)), nil
	case float64:
		if val != float64(int64(val)) {
			return nil, fmt.Errorf("floats are forbidden: %v", val)
		}
		return IRInt(int64(val)), nil
	case []any:
		arr := make(IRArray, len(val))
		for i, elem := range val {
			conv, err := FromAny(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			arr[i] = conv
		}
		return arr, nil
	case map[string]any:
		obj := make(IRObject, len(val))
		for k, elem := range val {
			conv, err := FromAny(elem)
			if err != nil {
				return nil, fmt.Errorf("[%q]: %w", k, err)
			}
			obj[k] = conv
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}
