package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario kinds.
const (
	KindCheck   = "check"
	KindCompile = "compile"
)

// Scenario defines one harness case: either a schema snapshot pair run
// through the destructive-change checker, or a query graph run through the
// translator.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Kind is "check" or "compile".
	Kind string `yaml:"kind"`

	// Before and After are snapshot paths (check scenarios).
	// Paths are relative to the scenario file location.
	Before string `yaml:"before,omitempty"`
	After  string `yaml:"after,omitempty"`

	// Force acknowledges warnings when the gate is applied.
	Force bool `yaml:"force,omitempty"`

	// Data holds SQL statements loaded into an in-memory SQLite database
	// before the check. When present the checker inspects that database.
	Data []string `yaml:"data,omitempty"`

	// Graph is a query graph fixture path (compile scenarios).
	Graph string `yaml:"graph,omitempty"`

	// Expect is the expected overall outcome.
	Expect ExpectClause `yaml:"expect"`

	// Assertions validate the plan, steps or expression tree.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// ExpectClause specifies the expected outcome.
type ExpectClause struct {
	// Decision is the expected gate decision (check scenarios):
	// proceed, needs_force, proceed_forced or abort.
	Decision string `yaml:"decision,omitempty"`

	// Error is a substring the translation error must contain (compile
	// scenarios). Empty means translation must succeed.
	Error string `yaml:"error,omitempty"`
}

// Assertion validates part of a scenario's output.
type Assertion struct {
	// Type specifies the assertion type:
	// - "plan_contains": a warning or unexecutable of Kind on Table/Column
	// - "plan_count": exactly Count plan entries of Kind
	// - "step_contains": a step whose rendering equals Step
	// - "binding_count": exactly Count bindings of Binding in the tree
	Type string `yaml:"type"`

	Kind    string `yaml:"kind,omitempty"`
	Table   string `yaml:"table,omitempty"`
	Column  string `yaml:"column,omitempty"`
	Step    string `yaml:"step,omitempty"`
	Binding string `yaml:"binding,omitempty"`
	Count   int    `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertPlanContains = "plan_contains"
	AssertPlanCount    = "plan_count"
	AssertStepContains = "step_contains"
	AssertBindingCount = "binding_count"
)

var validDecisions = map[string]bool{
	"proceed":        true,
	"needs_force":    true,
	"proceed_forced": true,
	"abort":          true,
}

// LoadScenario reads and parses a scenario YAML file. Fixture paths are
// resolved against the scenario file's directory.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving fixture paths relative to basePath.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Unknown fields are rejected, so "assertion:" is caught.
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	for _, p := range []*string{&scenario.Before, &scenario.After, &scenario.Graph} {
		if *p != "" && !filepath.IsAbs(*p) && basePath != "" {
			*p = filepath.Join(basePath, *p)
		}
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	switch s.Kind {
	case KindCheck:
		if s.Before == "" || s.After == "" {
			return fmt.Errorf("check scenarios need before and after")
		}
		if s.Graph != "" {
			return fmt.Errorf("check scenarios take no graph")
		}
		if !validDecisions[s.Expect.Decision] {
			return fmt.Errorf("expect.decision must be one of proceed, needs_force, proceed_forced, abort (got %q)", s.Expect.Decision)
		}
		if s.Expect.Error != "" {
			return fmt.Errorf("expect.error applies to compile scenarios only")
		}
	case KindCompile:
		if s.Graph == "" {
			return fmt.Errorf("compile scenarios need a graph")
		}
		if s.Before != "" || s.After != "" || len(s.Data) > 0 || s.Force {
			return fmt.Errorf("compile scenarios take no snapshots, data or force")
		}
		if s.Expect.Decision != "" {
			return fmt.Errorf("expect.decision applies to check scenarios only")
		}
	case "":
		return fmt.Errorf("kind is required")
	default:
		return fmt.Errorf("unknown kind %q", s.Kind)
	}

	for _, p := range []string{s.Before, s.After, s.Graph} {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return fmt.Errorf("fixture not found: %s", p)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, s.Kind, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, kind string, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertPlanContains, AssertPlanCount:
		if kind != KindCheck {
			return fmt.Errorf("assertions[%d]: %s applies to check scenarios only", index, a.Type)
		}
		if a.Kind == "" {
			return fmt.Errorf("assertions[%d]: kind is required for %s", index, a.Type)
		}
	case AssertStepContains:
		if kind != KindCheck {
			return fmt.Errorf("assertions[%d]: %s applies to check scenarios only", index, a.Type)
		}
		if a.Step == "" {
			return fmt.Errorf("assertions[%d]: step is required for step_contains", index)
		}
	case AssertBindingCount:
		if kind != KindCompile {
			return fmt.Errorf("assertions[%d]: %s applies to compile scenarios only", index, a.Type)
		}
		if a.Binding == "" {
			return fmt.Errorf("assertions[%d]: binding is required for binding_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	if a.Count < 0 {
		return fmt.Errorf("assertions[%d]: count must be non-negative", index)
	}
	return nil
}
