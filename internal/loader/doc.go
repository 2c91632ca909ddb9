// Package loader reads schema snapshots and query graph fixtures from CUE
// and YAML files.
//
// YAML is decoded strictly: unknown keys are errors. CUE errors keep their
// source position in LoadError.Pos.
package loader
