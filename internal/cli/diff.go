package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/lift/internal/differ"
	"github.com/roach88/lift/internal/loader"
	"github.com/roach88/lift/internal/sqlschema"
)

// DiffOptions holds flags for the diff command.
type DiffOptions struct {
	*RootOptions
	Dialect string
}

// NewDiffCommand creates the diff command.
func NewDiffCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DiffOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "diff <before> <after>",
		Short: "List the migration steps between two schema snapshots",
		Long: `Diff two schema snapshots (.cue, .yaml or .yml) and list the steps
that move the first onto the second. No destructive checks are run.

Examples:
  lift diff schema/v1.cue schema/v2.cue
  lift diff before.yaml after.yaml --dialect postgres --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(cmd.Context(), opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Dialect, "dialect", "", "dialect for snapshots that do not declare one (mysql|postgres|sqlite)")

	return cmd
}

func runDiff(ctx context.Context, opts *DiffOptions, before, after string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	snaps, d, err := loadSnapshots(ctx, opts.RootOptions, opts.Dialect, before, after)
	if err != nil {
		return formatter.fail("loading snapshots", err)
	}

	diff, err := differ.Diff(d, snaps.Before, snaps.After)
	if err != nil {
		return formatter.fail("diffing snapshots", err)
	}
	steps := diff.Steps()
	formatter.VerboseLog("Diffed %d -> %d table(s) for %s", len(snaps.Before.Tables), len(snaps.After.Tables), d)

	if formatter.Format == "json" {
		docs := make([]map[string]any, len(steps))
		for i, s := range steps {
			docs[i] = differ.StepDocument(s)
		}
		return formatter.Success(map[string]any{
			"dialect": d.String(),
			"steps":   docs,
		})
	}

	w := formatter.Writer
	if len(steps) == 0 {
		fmt.Fprintln(w, "No changes.")
		return nil
	}
	fmt.Fprintf(w, "%d step(s) for %s:\n", len(steps), d)
	for _, s := range steps {
		fmt.Fprintf(w, "  %s\n", s)
	}
	return nil
}

// loadSnapshots reads both snapshots and settles the dialect. A dialect
// declared by the snapshots wins over the config file; an explicit flag
// that disagrees with them is an error.
func loadSnapshots(ctx context.Context, opts *RootOptions, flagDialect, before, after string) (*loader.Snapshots, sqlschema.Dialect, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	snaps, err := loader.LoadSnapshots(ctx, before, after)
	if err != nil {
		return nil, 0, err
	}
	d, err := snaps.Dialect()
	if err != nil {
		return nil, 0, err
	}

	if flagDialect != "" {
		fd, err := sqlschema.ParseDialect(flagDialect)
		if err != nil {
			return nil, 0, err
		}
		if d != 0 && d != fd {
			return nil, 0, fmt.Errorf("snapshots declare %s, --dialect is %s", d, fd)
		}
		d = fd
	}

	if d == 0 && opts.config().Dialect != "" {
		cd, err := sqlschema.ParseDialect(opts.config().Dialect)
		if err != nil {
			return nil, 0, fmt.Errorf("config dialect: %w", err)
		}
		d = cd
	}

	if d == 0 {
		return nil, 0, fmt.Errorf("no dialect: declare one in the snapshots, pass --dialect or set dialect in lift.yaml")
	}
	return snaps, d, nil
}
