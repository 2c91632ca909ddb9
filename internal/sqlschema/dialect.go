package sqlschema

import (
	"fmt"
	"strings"
)

// Dialect identifies the database engine a schema targets.
// The set is closed; every switch over it is exhaustive.
type Dialect int

const (
	DialectMySQL Dialect = iota + 1
	DialectPostgres
	DialectSQLite
)

// Dialects lists every supported dialect in declaration order.
var Dialects = []Dialect{DialectMySQL, DialectPostgres, DialectSQLite}

func (d Dialect) String() string {
	switch d {
	case DialectMySQL:
		return "mysql"
	case DialectPostgres:
		return "postgres"
	case DialectSQLite:
		return "sqlite"
	default:
		return fmt.Sprintf("dialect(%d)", int(d))
	}
}

// SupportsLists reports whether columns may have list arity.
func (d Dialect) SupportsLists() bool {
	return d == DialectPostgres
}

// FoldsColumnCase reports whether the engine compares column identifiers
// case-insensitively.
func (d Dialect) FoldsColumnCase() bool {
	switch d {
	case DialectMySQL, DialectSQLite:
		return true
	default:
		return false
	}
}

// ParseDialect resolves a dialect name. Accepts common aliases.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mysql", "mariadb":
		return DialectMySQL, nil
	case "postgres", "postgresql", "pg":
		return DialectPostgres, nil
	case "sqlite", "sqlite3":
		return DialectSQLite, nil
	default:
		return 0, fmt.Errorf("unknown dialect %q (want mysql, postgres or sqlite)", s)
	}
}

// DialectFromURL picks the dialect from a connection string scheme.
func DialectFromURL(url string) (Dialect, error) {
	scheme, _, found := strings.Cut(url, ":")
	if !found {
		return 0, fmt.Errorf("connection string %q has no scheme", url)
	}
	switch strings.ToLower(scheme) {
	case "mysql":
		return DialectMySQL, nil
	case "postgres", "postgresql":
		return DialectPostgres, nil
	case "file", "sqlite":
		return DialectSQLite, nil
	default:
		return 0, fmt.Errorf("unsupported connection scheme %q", scheme)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (d Dialect) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Dialect) UnmarshalText(text []byte) error {
	parsed, err := ParseDialect(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
