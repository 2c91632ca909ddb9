// Package migration infers a Migration from two schema snapshots: the
// ordered steps, the destructive-change plan and the fingerprints of both
// sides.
package migration
