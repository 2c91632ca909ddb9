package harness

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/lift/internal/destructive"
	"github.com/roach88/lift/internal/expressionista"
	"github.com/roach88/lift/internal/loader"
	"github.com/roach88/lift/internal/migration"
	"github.com/roach88/lift/internal/probe"
	"github.com/roach88/lift/internal/sqlschema"
)

// scenarioID is the migration id every check scenario gets, so golden
// output does not depend on the clock.
const scenarioID = "scenario"

// Run executes a scenario and returns the result.
//
// Check scenarios load both snapshots, seed the in-memory database when the
// scenario carries data, and infer the migration. Compile scenarios load the
// graph and translate it. Fixture and setup failures are returned as
// errors; mismatches with the scenario's expectations are recorded in the
// result.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	slog.Debug("running scenario", "name", scenario.Name, "kind", scenario.Kind)

	switch scenario.Kind {
	case KindCheck:
		return runCheck(ctx, scenario)
	case KindCompile:
		return runCompile(scenario)
	default:
		return nil, fmt.Errorf("unknown scenario kind %q", scenario.Kind)
	}
}

func runCheck(ctx context.Context, scenario *Scenario) (*Result, error) {
	snaps, err := loader.LoadSnapshots(ctx, scenario.Before, scenario.After)
	if err != nil {
		return nil, err
	}
	d, err := snaps.Dialect()
	if err != nil {
		return nil, err
	}
	if d == 0 {
		return nil, fmt.Errorf("neither snapshot declares a dialect")
	}

	var checkerOpts []destructive.CheckerOption
	if len(scenario.Data) > 0 {
		p, err := seedDatabase(ctx, scenario.Data)
		if err != nil {
			return nil, err
		}
		defer p.Close()
		checkerOpts = append(checkerOpts, destructive.WithInspector(p))
	}

	inf := migration.NewInferrer(d,
		migration.WithChecker(destructive.NewChecker(checkerOpts...)),
		migration.WithIDGenerator(migration.NewFixedGenerator(scenarioID)),
	)
	m, err := inf.Infer(ctx, snaps.Before, snaps.After)
	if err != nil {
		return nil, fmt.Errorf("infer migration: %w", err)
	}

	result := NewResult()
	result.Migration = m
	result.Decision = m.Decide(scenario.Force).String()
	if result.Decision != scenario.Expect.Decision {
		result.AddError(fmt.Sprintf("expected decision %s, got %s", scenario.Expect.Decision, result.Decision))
	}

	evaluateAssertions(scenario, result)
	return result, nil
}

func runCompile(scenario *Scenario) (*Result, error) {
	g, err := loader.LoadGraph(scenario.Graph)
	if err != nil {
		return nil, err
	}

	result := NewResult()
	result.Expression, result.Err = expressionista.Translate(g.QueryGraph)

	switch {
	case scenario.Expect.Error == "" && result.Err != nil:
		result.AddError(fmt.Sprintf("translation failed: %v", result.Err))
	case scenario.Expect.Error != "" && result.Err == nil:
		result.AddError(fmt.Sprintf("expected error containing %q, translation succeeded", scenario.Expect.Error))
	case scenario.Expect.Error != "" && !strings.Contains(result.Err.Error(), scenario.Expect.Error):
		result.AddError(fmt.Sprintf("expected error containing %q, got %v", scenario.Expect.Error, result.Err))
	}

	evaluateAssertions(scenario, result)
	return result, nil
}

// seedDatabase loads statements into a fresh in-memory SQLite database and
// returns a probe over it. The pool holds one connection so the database
// outlives each statement.
func seedDatabase(ctx context.Context, statements []string) (*probe.Probe, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory database: %w", err)
	}
	db.SetMaxOpenConns(1)

	for i, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("data[%d]: %w", i, err)
		}
	}
	return probe.Adopt(db, sqlschema.DialectSQLite), nil
}

// evaluateAssertions runs every assertion and records failures.
func evaluateAssertions(scenario *Scenario, result *Result) {
	for _, a := range scenario.Assertions {
		var err error
		switch a.Type {
		case AssertPlanContains:
			err = assertPlanContains(result.Migration.Plan, a)
		case AssertPlanCount:
			err = assertPlanCount(result.Migration.Plan, a)
		case AssertStepContains:
			err = assertStepContains(result.Migration.Steps, a)
		case AssertBindingCount:
			err = assertBindingCount(result.Expression, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			result.AddError(err.Error())
		}
	}
}
