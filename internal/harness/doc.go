// Package harness runs YAML scenarios against the destructive-change
// checker and the query graph translator.
//
// # Scenario Format
//
// A check scenario diffs two schema snapshots and applies the force gate:
//
//	name: required_email_aborts
//	description: "Making a nullable column required aborts"
//	kind: check
//	before: ../fixtures/users_before.cue
//	after: ../fixtures/users_after.cue
//	force: true
//	data:                       # optional; seeds an in-memory SQLite probe
//	  - CREATE TABLE users (id INTEGER PRIMARY KEY, email TEXT)
//	expect:
//	  decision: abort
//	assertions:
//	  - type: plan_contains
//	    kind: made_optional_field_required
//	    table: users
//	    column: email
//
// A compile scenario translates a query graph fixture:
//
//	name: reload_chain
//	description: "A created user is re-read before injection"
//	kind: compile
//	graph: ../fixtures/reload.yaml
//	expect: {}                  # or {error: "UNRELOADABLE"}
//	assertions:
//	  - type: binding_count
//	    binding: n0
//	    count: 2
//
// Fixture paths are relative to the scenario file.
//
// # Assertion Types
//
//   - plan_contains: a warning or unexecutable of kind, optionally on table/column
//   - plan_count: exactly count plan entries of kind
//   - step_contains: a migration step rendered exactly as step
//   - binding_count: exactly count let bindings named binding
//
// # Deterministic Output
//
// Check scenarios use a fixed migration id, so Snapshot output depends only
// on the fixtures. Snapshots are canonical JSON and are compared against
// testdata/golden/{name}.golden by RunWithGolden.
package harness
