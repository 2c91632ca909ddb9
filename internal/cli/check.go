package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/lift/internal/destructive"
	"github.com/roach88/lift/internal/ir"
	"github.com/roach88/lift/internal/migration"
	"github.com/roach88/lift/internal/probe"
	"github.com/roach88/lift/internal/sqlschema"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	Dialect     string
	Force       bool
	ProbeURL    string
	ProbeDriver string
	ProbeDSN    string
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <before> <after>",
		Short: "Infer a migration and check it for destructive changes",
		Long: `Infer the migration between two schema snapshots and check every step
for data loss. Warnings block the migration unless --force is given;
unexecutable steps block it regardless.

With a probe database, dropped tables and columns that hold no data are
not reported.

Exit codes:
  0 - Migration may proceed
  1 - Migration needs --force, or cannot be executed
  2 - Command error (bad snapshots, unreachable probe, etc.)

Examples:
  lift check schema/v1.cue schema/v2.cue
  lift check v1.yaml v2.yaml --force
  lift check v1.yaml v2.yaml --probe-url postgres://localhost/app`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Dialect, "dialect", "", "dialect for snapshots that do not declare one (mysql|postgres|sqlite)")
	cmd.Flags().BoolVarP(&opts.Force, "force", "f", false, "accept warnings")
	cmd.Flags().StringVar(&opts.ProbeURL, "probe-url", "", "database URL to inspect for data (mysql://, postgres://, file:)")
	cmd.Flags().StringVar(&opts.ProbeDriver, "probe-driver", "", "probe dialect when using --probe-dsn (defaults to the snapshot dialect)")
	cmd.Flags().StringVar(&opts.ProbeDSN, "probe-dsn", "", "driver-native DSN of the database to inspect")

	return cmd
}

func runCheck(ctx context.Context, opts *CheckOptions, before, after string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	force := resolveBool(opts.Force, opts.config().Force)

	snaps, d, err := loadSnapshots(ctx, opts.RootOptions, opts.Dialect, before, after)
	if err != nil {
		return formatter.fail("loading snapshots", err)
	}

	var checkerOpts []destructive.CheckerOption
	p, err := openProbe(ctx, opts, d)
	if err != nil {
		_ = formatter.Error(ErrCodeProbe, err.Error(), nil)
		return WrapExitError(ExitCommandError, "opening probe", err)
	}
	if p != nil {
		defer p.Close()
		checkerOpts = append(checkerOpts, destructive.WithInspector(p))
		formatter.VerboseLog("Probing %s database for data", p.Dialect())
	}

	inf := migration.NewInferrer(d, migration.WithChecker(destructive.NewChecker(checkerOpts...)))
	m, err := inf.Infer(ctx, snaps.Before, snaps.After)
	if err != nil {
		_ = formatter.Error(ErrCodeInfer, err.Error(), nil)
		return WrapExitError(ExitCommandError, "inferring migration", err)
	}

	gateErr := m.Plan.Err(force)

	if formatter.Format == "json" {
		data, err := ir.MarshalCanonical(m.Document(force))
		if err != nil {
			return WrapExitError(ExitCommandError, "encoding migration", err)
		}
		if gateErr != nil {
			if err := formatter.Refused(json.RawMessage(data), ErrCodeDestructive, gateErr.Error()); err != nil {
				return err
			}
		} else if err := formatter.Success(json.RawMessage(data)); err != nil {
			return err
		}
	} else {
		writeMigrationText(formatter.Writer, m, force)
	}

	if gateErr != nil {
		return WrapExitError(ExitFailure, "destructive change check failed", gateErr)
	}
	return nil
}

// openProbe opens the probe database named by flags or config, flags
// first. It returns nil when none is configured.
func openProbe(ctx context.Context, opts *CheckOptions, d sqlschema.Dialect) (*probe.Probe, error) {
	cfg := opts.config().Probe

	var (
		p   *probe.Probe
		err error
	)
	switch {
	case opts.ProbeURL != "":
		p, err = probe.OpenURL(ctx, opts.ProbeURL)
	case opts.ProbeDSN != "":
		p, err = openProbeDSN(ctx, resolveString(opts.ProbeDriver, cfg.Driver), opts.ProbeDSN, d)
	case cfg.URL != "":
		p, err = probe.OpenURL(ctx, cfg.URL)
	case cfg.DSN != "":
		p, err = openProbeDSN(ctx, resolveString(opts.ProbeDriver, cfg.Driver), cfg.DSN, d)
	default:
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if p.Dialect() != d {
		p.Close()
		return nil, fmt.Errorf("probe database is %s, snapshots are %s", p.Dialect(), d)
	}
	return p, nil
}

func openProbeDSN(ctx context.Context, driver, dsn string, d sqlschema.Dialect) (*probe.Probe, error) {
	if driver != "" {
		pd, err := sqlschema.ParseDialect(driver)
		if err != nil {
			return nil, fmt.Errorf("probe driver: %w", err)
		}
		d = pd
	}
	return probe.Open(ctx, d, dsn)
}

func writeMigrationText(w io.Writer, m *migration.Migration, force bool) {
	fmt.Fprintf(w, "Migration %s (%s)\n", m.ID, m.Dialect)

	if m.IsEmpty() {
		fmt.Fprintln(w, "  No changes.")
	} else {
		fmt.Fprintf(w, "\nSteps:\n")
		for _, s := range m.Steps {
			fmt.Fprintf(w, "  %s\n", s)
		}
	}

	if len(m.Plan.Unexecutable) > 0 {
		fmt.Fprintf(w, "\nUnexecutable:\n")
		for _, u := range m.Plan.Unexecutable {
			fmt.Fprintf(w, "  ✗ %s\n", u.Description())
		}
	}
	if len(m.Plan.Warnings) > 0 {
		fmt.Fprintf(w, "\nWarnings:\n")
		for _, warning := range m.Plan.Warnings {
			fmt.Fprintf(w, "  ! %s\n", warning.Description())
		}
	}

	decision := m.Decide(force)
	fmt.Fprintf(w, "\nDecision: %s\n", decision)
	if decision == destructive.NeedsForce {
		fmt.Fprintln(w, "Run with --force to accept the warnings.")
	}
}
