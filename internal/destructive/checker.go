package destructive

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/lift/internal/differ"
	"github.com/roach88/lift/internal/sqlschema"
)

// Inspector reads live data so that drops of empty tables and columns need
// not be reported. It is optional.
type Inspector interface {
	RowCount(ctx context.Context, table string) (int64, error)
	NonNullCount(ctx context.Context, table, column string) (int64, error)
}

// Checker walks a schema diff and fills a Plan.
type Checker struct {
	inspector Inspector
}

// CheckerOption configures a Checker.
type CheckerOption func(*Checker)

// WithInspector enables data inspection. Without one every drop and every
// required column addition is assumed to touch data.
func WithInspector(i Inspector) CheckerOption {
	return func(c *Checker) {
		c.inspector = i
	}
}

// NewChecker creates a Checker.
func NewChecker(opts ...CheckerOption) *Checker {
	c := &Checker{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check walks the previous schema's tables in order. Dropped tables warn.
// For retained tables the previous columns are walked in order (dropped
// columns warn, altered columns go to the dialect rules), then added
// columns in next order. Added tables contribute nothing.
//
// Only the inspector can fail; without one Check always succeeds.
func (c *Checker) Check(ctx context.Context, diff *differ.SchemaDiff) (*Plan, error) {
	plan := NewPlan()

	for _, tp := range diff.Tables() {
		if tp.Dropped() {
			if err := c.checkDropTable(ctx, tp.Previous, plan); err != nil {
				return nil, err
			}
			continue
		}

		td := diff.TableDiffer(tp)
		for _, cp := range td.Columns() {
			if cp.Dropped() {
				if err := c.checkDropColumn(ctx, tp.Previous, cp.Previous, plan); err != nil {
					return nil, err
				}
				continue
			}

			columns := td.ColumnDiffer(cp)
			if !columns.Altered() {
				continue
			}
			slog.Debug("checking altered column",
				"dialect", diff.Dialect.String(),
				"table", tp.Previous.Name,
				"column", cp.Previous.Name,
				"changes", columns.AllChanges().String(),
			)
			checkAlterColumn(diff.Dialect, tp.Previous, columns, plan)
		}

		for _, added := range td.AddedColumns() {
			if err := c.checkAddColumn(ctx, tp.Previous, added, plan); err != nil {
				return nil, err
			}
		}
	}

	return plan, nil
}

func (c *Checker) checkDropTable(ctx context.Context, table *sqlschema.Table, plan *Plan) error {
	w := DropTable{Table: table.Name}
	if c.inspector != nil {
		n, err := c.inspector.RowCount(ctx, table.Name)
		if err != nil {
			return fmt.Errorf("count rows of %s: %w", table.Name, err)
		}
		if n == 0 {
			return nil
		}
		w.RowCount = &n
	}
	plan.PushWarning(w)
	return nil
}

func (c *Checker) checkDropColumn(ctx context.Context, table *sqlschema.Table, column *sqlschema.Column, plan *Plan) error {
	w := DropColumn{Table: table.Name, Column: column.Name}
	if c.inspector != nil {
		n, err := c.inspector.NonNullCount(ctx, table.Name, column.Name)
		if err != nil {
			return fmt.Errorf("count values of %s.%s: %w", table.Name, column.Name, err)
		}
		if n == 0 {
			return nil
		}
		w.NonNullCount = &n
	}
	plan.PushWarning(w)
	return nil
}

func (c *Checker) checkAddColumn(ctx context.Context, table *sqlschema.Table, column *sqlschema.Column, plan *Plan) error {
	if !column.Type.Arity.IsRequired() || column.HasDefault() {
		return nil
	}
	u := AddedRequiredFieldToTable{Table: table.Name, Column: column.Name}
	if c.inspector != nil {
		n, err := c.inspector.RowCount(ctx, table.Name)
		if err != nil {
			return fmt.Errorf("count rows of %s: %w", table.Name, err)
		}
		if n == 0 {
			return nil
		}
		u.RowCount = &n
	}
	plan.PushUnexecutable(u)
	return nil
}
