package loader

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/lift/internal/sqlschema"
)

// Snapshots is a before/after pair of schema snapshots.
type Snapshots struct {
	Before *sqlschema.Schema
	After  *sqlschema.Schema
}

// LoadSnapshots reads both snapshots concurrently. The first failure
// cancels the other read and is returned.
func LoadSnapshots(ctx context.Context, beforePath, afterPath string) (*Snapshots, error) {
	g, ctx := errgroup.WithContext(ctx)

	var out Snapshots
	for _, job := range []struct {
		path string
		dst  **sqlschema.Schema
	}{
		{beforePath, &out.Before},
		{afterPath, &out.After},
	} {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			s, err := LoadSchema(job.path)
			if err != nil {
				return err
			}
			slog.Debug("snapshot loaded", "path", job.path, "tables", len(s.Tables))
			*job.dst = s
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}

// Dialect returns the dialect both snapshots agree on, or 0 when neither
// declares one. A disagreement is an error.
func (s *Snapshots) Dialect() (sqlschema.Dialect, error) {
	switch {
	case s.Before.Dialect == 0:
		return s.After.Dialect, nil
	case s.After.Dialect == 0 || s.After.Dialect == s.Before.Dialect:
		return s.Before.Dialect, nil
	default:
		return 0, newError(ErrCodeDialect, "snapshots disagree on dialect: %s vs %s", s.Before.Dialect, s.After.Dialect)
	}
}
