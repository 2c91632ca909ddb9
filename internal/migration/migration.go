package migration

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/lift/internal/destructive"
	"github.com/roach88/lift/internal/differ"
	"github.com/roach88/lift/internal/ir"
	"github.com/roach88/lift/internal/sqlschema"
)

// Migration is the inferred move from one schema snapshot to another,
// together with its destructive-change plan.
type Migration struct {
	ID      string
	Dialect sqlschema.Dialect

	// Before and After are the schema fingerprints.
	Before string
	After  string

	Steps []differ.Step
	Plan  *destructive.Plan
}

// IsEmpty reports whether the schemas are already equivalent.
func (m *Migration) IsEmpty() bool {
	return len(m.Steps) == 0
}

// Decide applies the force gate to the plan.
func (m *Migration) Decide(force bool) destructive.Decision {
	return m.Plan.Decide(force)
}

// Document renders the migration as plain data for JSON output.
func (m *Migration) Document(force bool) map[string]any {
	steps := make([]any, len(m.Steps))
	for i, s := range m.Steps {
		steps[i] = differ.StepDocument(s)
	}
	return map[string]any{
		"id":       m.ID,
		"dialect":  m.Dialect.String(),
		"before":   m.Before,
		"after":    m.After,
		"steps":    steps,
		"plan":     m.Plan.Document(),
		"decision": m.Decide(force).String(),
	}
}

// MarshalJSON encodes the migration, unforced, as canonical JSON.
func (m *Migration) MarshalJSON() ([]byte, error) {
	return ir.MarshalCanonical(m.Document(false))
}

// Inferrer pairs the schema differ with the destructive-change checker.
type Inferrer struct {
	dialect sqlschema.Dialect
	checker *destructive.Checker
	ids     IDGenerator
}

// Option configures an Inferrer.
type Option func(*Inferrer)

// WithChecker replaces the default checker, typically with one that has an
// inspector attached.
func WithChecker(c *destructive.Checker) Option {
	return func(inf *Inferrer) {
		inf.checker = c
	}
}

// WithIDGenerator replaces the UUIDv7 generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(inf *Inferrer) {
		inf.ids = g
	}
}

// NewInferrer creates an inferrer for dialect d.
func NewInferrer(d sqlschema.Dialect, opts ...Option) *Inferrer {
	inf := &Inferrer{
		dialect: d,
		checker: destructive.NewChecker(),
		ids:     UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(inf)
	}
	return inf
}

// Infer validates both snapshots, diffs them and checks the diff for
// destructive changes. The only I/O is whatever the checker's inspector does.
func (inf *Inferrer) Infer(ctx context.Context, previous, next *sqlschema.Schema) (*Migration, error) {
	if err := sqlschema.Validate(previous); err != nil {
		return nil, fmt.Errorf("previous schema: %w", err)
	}
	if err := sqlschema.Validate(next); err != nil {
		return nil, fmt.Errorf("next schema: %w", err)
	}

	diff, err := differ.Diff(inf.dialect, previous, next)
	if err != nil {
		return nil, err
	}

	plan, err := inf.checker.Check(ctx, diff)
	if err != nil {
		return nil, fmt.Errorf("destructive check: %w", err)
	}

	before, err := previous.Fingerprint()
	if err != nil {
		return nil, err
	}
	after, err := next.Fingerprint()
	if err != nil {
		return nil, err
	}

	m := &Migration{
		ID:      inf.ids.Generate(),
		Dialect: inf.dialect,
		Before:  before,
		After:   after,
		Steps:   diff.Steps(),
		Plan:    plan,
	}

	slog.Debug("migration inferred",
		"id", m.ID,
		"dialect", m.Dialect.String(),
		"steps", len(m.Steps),
		"warnings", len(plan.Warnings),
		"unexecutable", len(plan.Unexecutable),
	)
	return m, nil
}
