package querygraph

import (
	"errors"
	"fmt"
)

// InternalError reports a malformed graph or a misuse of it during
// translation. These are programming errors in whoever built the graph,
// never user input problems.
type InternalError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Node identifies the offending node, if any.
	Node string
}

// ErrorCode categorizes internal errors.
type ErrorCode string

const (
	// ErrCodeNoRoot: no node is free of incoming edges.
	ErrCodeNoRoot ErrorCode = "NO_ROOT"

	// ErrCodeMultipleRoots: more than one node has no incoming edges.
	ErrCodeMultipleRoots ErrorCode = "MULTIPLE_ROOTS"

	// ErrCodeDanglingEdge: an edge or ref points outside the arena.
	ErrCodeDanglingEdge ErrorCode = "DANGLING_EDGE"

	// ErrCodeDoublePluck: a node's content was taken twice.
	ErrCodeDoublePluck ErrorCode = "DOUBLE_PLUCK"

	// ErrCodeEmptyResult: the result marker names a node with no value.
	ErrCodeEmptyResult ErrorCode = "EMPTY_RESULT"

	// ErrCodeCycle: the graph is not a DAG.
	ErrCodeCycle ErrorCode = "CYCLE"

	// ErrCodeUnreloadable: a reload was required for a node whose result
	// cannot be read back.
	ErrCodeUnreloadable ErrorCode = "UNRELOADABLE"
)

func (e *InternalError) Error() string {
	if e.Node != "" {
		return fmt.Sprintf("%s: %s (node=%s)", e.Code, e.Message, e.Node)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInternalError creates an InternalError.
func NewInternalError(code ErrorCode, node, format string, args ...any) *InternalError {
	return &InternalError{Code: code, Node: node, Message: fmt.Sprintf(format, args...)}
}

// HasCode reports whether err wraps an InternalError with the given code.
func HasCode(err error, code ErrorCode) bool {
	var ie *InternalError
	if errors.As(err, &ie) {
		return ie.Code == code
	}
	return false
}

// IsCycleError reports whether err is a cycle error.
func IsCycleError(err error) bool {
	return HasCode(err, ErrCodeCycle)
}
