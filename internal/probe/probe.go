package probe

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/lift/internal/sqlschema"
)

// Probe answers row and value counts against a live database. It
// implements destructive.Inspector and never writes.
type Probe struct {
	db      *sql.DB
	dialect sqlschema.Dialect
	sql     *SQLBuilder
	owned   bool
}

// New wraps an existing connection. Close does not close db.
func New(db *sql.DB, d sqlschema.Dialect) *Probe {
	return &Probe{db: db, dialect: d, sql: NewSQLBuilder(d)}
}

// Adopt wraps db and takes ownership: Close closes it.
func Adopt(db *sql.DB, d sqlschema.Dialect) *Probe {
	p := New(db, d)
	p.owned = true
	return p
}

// DriverName returns the database/sql driver registered for d.
func DriverName(d sqlschema.Dialect) (string, error) {
	switch d {
	case sqlschema.DialectMySQL:
		return "mysql", nil
	case sqlschema.DialectPostgres:
		return "postgres", nil
	case sqlschema.DialectSQLite:
		return "sqlite3", nil
	default:
		return "", fmt.Errorf("no driver for %s", d)
	}
}

// Open connects to dsn with the driver for d and verifies the connection.
// dsn is in the driver's native format; see OpenURL for URLs.
//
// SQLite connections are limited to one and switched to query_only.
func Open(ctx context.Context, d sqlschema.Dialect, dsn string) (*Probe, error) {
	driver, err := DriverName(d)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if d == sqlschema.DialectSQLite {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		if err := applyPragmas(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply pragmas: %w", err)
		}
	}

	slog.Debug("probe connected", "dialect", d.String(), "driver", driver)

	p := New(db, d)
	p.owned = true
	return p, nil
}

// OpenURL picks the dialect from the URL scheme and opens it.
func OpenURL(ctx context.Context, url string) (*Probe, error) {
	d, err := sqlschema.DialectFromURL(url)
	if err != nil {
		return nil, err
	}
	dsn, err := DSNFromURL(d, url)
	if err != nil {
		return nil, err
	}
	return Open(ctx, d, dsn)
}

func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA query_only = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// Dialect returns the dialect the probe was opened for.
func (p *Probe) Dialect() sqlschema.Dialect {
	return p.dialect
}

// Close closes the connection if the probe opened it.
func (p *Probe) Close() error {
	if p.db == nil || !p.owned {
		return nil
	}
	return p.db.Close()
}

// RowCount counts the rows of table.
func (p *Probe) RowCount(ctx context.Context, table string) (int64, error) {
	return p.count(ctx, p.sql.RowCount(table))
}

// NonNullCount counts the non-null values of table.column.
func (p *Probe) NonNullCount(ctx context.Context, table, column string) (int64, error) {
	return p.count(ctx, p.sql.NonNullCount(table, column))
}

// NullCount counts the NULLs of table.column.
func (p *Probe) NullCount(ctx context.Context, table, column string) (int64, error) {
	return p.count(ctx, p.sql.NullCount(table, column))
}

func (p *Probe) count(ctx context.Context, query string) (int64, error) {
	slog.Debug("probe query", "sql", query)

	var n int64
	if err := p.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("run %s: %w", query, err)
	}
	return n, nil
}
