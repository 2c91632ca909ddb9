package destructive

import (
	"fmt"

	"github.com/roach88/lift/internal/ir"
)

// Plan accumulates the warnings and unexecutable steps of one schema diff
// walk. Entries keep the order they were pushed in.
type Plan struct {
	Warnings     []Warning
	Unexecutable []Unexecutable
}

// NewPlan returns an empty plan.
func NewPlan() *Plan {
	return &Plan{}
}

func (p *Plan) PushWarning(w Warning) {
	p.Warnings = append(p.Warnings, w)
}

func (p *Plan) PushUnexecutable(u Unexecutable) {
	p.Unexecutable = append(p.Unexecutable, u)
}

// Merge appends other's entries after p's.
func (p *Plan) Merge(other *Plan) {
	if other == nil {
		return
	}
	p.Warnings = append(p.Warnings, other.Warnings...)
	p.Unexecutable = append(p.Unexecutable, other.Unexecutable...)
}

func (p *Plan) IsEmpty() bool {
	return len(p.Warnings) == 0 && len(p.Unexecutable) == 0
}

// Decision is the outcome of the force gate.
type Decision int

const (
	// Proceed: nothing to report.
	Proceed Decision = iota
	// NeedsForce: warnings present and the operator did not force.
	NeedsForce
	// ProceedForced: warnings present and acknowledged.
	ProceedForced
	// Abort: at least one unexecutable step; force does not help.
	Abort
)

func (d Decision) String() string {
	switch d {
	case Proceed:
		return "proceed"
	case NeedsForce:
		return "needs_force"
	case ProceedForced:
		return "proceed_forced"
	case Abort:
		return "abort"
	default:
		return fmt.Sprintf("decision(%d)", int(d))
	}
}

// Decide applies the force gate.
func (p *Plan) Decide(force bool) Decision {
	switch {
	case len(p.Unexecutable) > 0:
		return Abort
	case len(p.Warnings) == 0:
		return Proceed
	case force:
		return ProceedForced
	default:
		return NeedsForce
	}
}

// Err returns a *GateError when the gate blocks, nil otherwise.
func (p *Plan) Err(force bool) error {
	d := p.Decide(force)
	if d == NeedsForce || d == Abort {
		return &GateError{Decision: d, Warnings: len(p.Warnings), Unexecutable: len(p.Unexecutable)}
	}
	return nil
}

// Document renders the plan as plain data for JSON output.
func (p *Plan) Document() map[string]any {
	warnings := make([]any, len(p.Warnings))
	for i, w := range p.Warnings {
		doc := w.document()
		doc["kind"] = w.Kind()
		doc["message"] = w.Description()
		warnings[i] = doc
	}
	unexecutable := make([]any, len(p.Unexecutable))
	for i, u := range p.Unexecutable {
		doc := u.document()
		doc["kind"] = u.Kind()
		doc["message"] = u.Description()
		unexecutable[i] = doc
	}
	return map[string]any{"warnings": warnings, "unexecutable": unexecutable}
}

// MarshalJSON encodes the plan as canonical JSON.
func (p *Plan) MarshalJSON() ([]byte, error) {
	return ir.MarshalCanonical(p.Document())
}
