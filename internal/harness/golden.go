package harness

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/lift/internal/differ"
	"github.com/roach88/lift/internal/expression"
	"github.com/roach88/lift/internal/ir"
)

// Snapshot renders the deterministic part of a result as canonical JSON.
//
// Check scenarios record steps, plan and decision. Schema fingerprints and
// the migration id are left out; they are covered by the migration tests.
// Compile scenarios record the expression tree, or the error message when
// translation failed.
func Snapshot(scenario *Scenario, result *Result) ([]byte, error) {
	doc := map[string]any{"scenario_name": scenario.Name}

	switch {
	case result.Migration != nil:
		steps := make([]any, len(result.Migration.Steps))
		for i, s := range result.Migration.Steps {
			steps[i] = differ.StepDocument(s)
		}
		doc["steps"] = steps
		doc["plan"] = result.Migration.Plan.Document()
		doc["decision"] = result.Decision
	case result.Err != nil:
		doc["error"] = result.Err.Error()
	case result.Expression != nil:
		doc["expression"] = expression.Document(result.Expression)
	}

	data, err := ir.MarshalCanonical(doc)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenario *Scenario, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenario, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)
	return nil
}
