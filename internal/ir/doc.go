// Package ir provides the constrained value model shared by the schema and
// query packages.
//
// Column defaults, record arguments and filter literals are all expressed as
// IRValue. The package imports nothing internal, so every other package can
// depend on it without cycles.
//
// Key constraints:
//   - NO float values. Decimal defaults are carried as their literal text.
//   - Object keys are serialised in RFC 8785 order (UTF-16 code units).
//   - Strings are NFC normalised at the serialisation boundary.
//   - Hashes are domain separated and versioned (see hash.go).
package ir
