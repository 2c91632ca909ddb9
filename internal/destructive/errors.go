package destructive

import (
	"errors"
	"fmt"
)

// GateError is returned by Plan.Err when a migration may not run.
type GateError struct {
	Decision     Decision
	Warnings     int
	Unexecutable int
}

func (e *GateError) Error() string {
	if e.Decision == Abort {
		return fmt.Sprintf("migration aborted: %d unexecutable step(s), %d warning(s)", e.Unexecutable, e.Warnings)
	}
	return fmt.Sprintf("migration has %d warning(s) and was not forced", e.Warnings)
}

// IsAbort reports whether err blocks regardless of force.
func IsAbort(err error) bool {
	var ge *GateError
	if errors.As(err, &ge) {
		return ge.Decision == Abort
	}
	return false
}

// IsNeedsForce reports whether err would clear with force.
func IsNeedsForce(err error) bool {
	var ge *GateError
	if errors.As(err, &ge) {
		return ge.Decision == NeedsForce
	}
	return false
}
