package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/lift/internal/destructive"
	"github.com/roach88/lift/internal/differ"
	"github.com/roach88/lift/internal/expression"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string   // Assertion type for categorization
	Expected string   // Human-readable expected outcome
	Actual   string   // Human-readable actual outcome
	Context  []string // Plan entries, steps or bindings for debugging
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Context) > 0 {
		fmt.Fprintf(&buf, "\nContext:\n")
		for i, line := range e.Context {
			fmt.Fprintf(&buf, "  [%d] %s\n", i+1, line)
		}
	}

	return buf.String()
}

// planEntry is a warning or unexecutable flattened for matching.
type planEntry struct {
	kind   string
	table  string
	column string
}

func (e planEntry) String() string {
	if e.column == "" {
		return fmt.Sprintf("%s %s", e.kind, e.table)
	}
	return fmt.Sprintf("%s %s.%s", e.kind, e.table, e.column)
}

func planEntries(p *destructive.Plan) []planEntry {
	var entries []planEntry
	doc := p.Document()
	for _, section := range []string{"unexecutable", "warnings"} {
		for _, item := range doc[section].([]any) {
			m := item.(map[string]any)
			table, _ := m["table"].(string)
			column, _ := m["column"].(string)
			entries = append(entries, planEntry{kind: m["kind"].(string), table: table, column: column})
		}
	}
	return entries
}

func planContext(entries []planEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.String()
	}
	return out
}

// assertPlanContains checks for a plan entry of the given kind. Table and
// column are only compared when the assertion sets them.
func assertPlanContains(p *destructive.Plan, a Assertion) error {
	entries := planEntries(p)
	for _, e := range entries {
		if e.kind != a.Kind {
			continue
		}
		if a.Table != "" && e.table != a.Table {
			continue
		}
		if a.Column != "" && e.column != a.Column {
			continue
		}
		return nil
	}

	want := planEntry{kind: a.Kind, table: a.Table, column: a.Column}
	return &AssertionError{
		Type:     AssertPlanContains,
		Expected: want.String(),
		Actual:   "not found in plan",
		Context:  planContext(entries),
	}
}

// assertPlanCount checks the number of plan entries of the given kind.
func assertPlanCount(p *destructive.Plan, a Assertion) error {
	entries := planEntries(p)
	count := 0
	for _, e := range entries {
		if e.kind == a.Kind {
			count++
		}
	}

	if count != a.Count {
		return &AssertionError{
			Type:     AssertPlanCount,
			Expected: fmt.Sprintf("%d entries of %s", a.Count, a.Kind),
			Actual:   fmt.Sprintf("%d entries", count),
			Context:  planContext(entries),
		}
	}
	return nil
}

// assertStepContains checks that a step renders exactly as a.Step.
func assertStepContains(steps []differ.Step, a Assertion) error {
	rendered := make([]string, len(steps))
	for i, s := range steps {
		rendered[i] = s.String()
		if rendered[i] == a.Step {
			return nil
		}
	}

	return &AssertionError{
		Type:     AssertStepContains,
		Expected: a.Step,
		Actual:   "not found in steps",
		Context:  rendered,
	}
}

// assertBindingCount counts let bindings named a.Binding anywhere in the
// tree. A failed translation has no bindings.
func assertBindingCount(e expression.Expression, a Assertion) error {
	var names []string
	collectBindings(e, &names)

	count := 0
	for _, n := range names {
		if n == a.Binding {
			count++
		}
	}

	if count != a.Count {
		return &AssertionError{
			Type:     AssertBindingCount,
			Expected: fmt.Sprintf("%d bindings of %s", a.Count, a.Binding),
			Actual:   fmt.Sprintf("%d bindings", count),
			Context:  names,
		}
	}
	return nil
}

func collectBindings(e expression.Expression, names *[]string) {
	switch v := e.(type) {
	case expression.Let:
		for _, b := range v.Bindings {
			*names = append(*names, b.Name)
			collectBindings(b.Expr, names)
		}
		collectBindings(v.Inner, names)
	case expression.Sequence:
		for _, sub := range v.Exprs {
			collectBindings(sub, names)
		}
	}
}
