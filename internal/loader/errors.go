package loader

import (
	"fmt"

	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// Error codes shared by every loader entry point.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeFormat      = "E008" // Unknown file extension
	ErrCodeDecode      = "E009" // YAML or JSON decode failed

	// Schema snapshot errors
	ErrCodeDialect = "E201" // Unknown dialect
	ErrCodeColumn  = "E202" // Invalid column description
	ErrCodeDefault = "E203" // Invalid default value
	ErrCodeSchema  = "E204" // Snapshot fails schema validation

	// Query graph errors
	ErrCodeModel = "E301" // Unknown or invalid model
	ErrCodeQuery = "E302" // Invalid query description
	ErrCodeNode  = "E303" // Invalid node or unknown node name
	ErrCodeEdge  = "E304" // Invalid edge
	ErrCodeGraph = "E305" // Graph fails structural validation
)

// LoadError represents an error that occurred while loading a fixture.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
	File    string
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	if e.File != "" {
		return fmt.Sprintf("%s: %s: %s", e.File, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newError(code, format string, args ...any) *LoadError {
	return &LoadError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// fromCUEError keeps the first CUE error with its position.
func fromCUEError(code string, err error) *LoadError {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Code: code, Message: err.Error()}
	}

	first := errs[0]
	le := &LoadError{Code: code, Message: first.Error()}
	if positions := errors.Positions(first); len(positions) > 0 {
		le.Pos = positions[0]
	}
	return le
}

// withFile stamps the source file on a LoadError that has no position.
func withFile(err error, file string) error {
	if le, ok := err.(*LoadError); ok && !le.Pos.IsValid() && le.File == "" {
		le.File = file
	}
	return err
}
