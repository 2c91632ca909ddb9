package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/lift/internal/loader"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Graph bool // files are query graphs rather than schema snapshots
}

// FileResult is the validation outcome for one file.
type FileResult struct {
	Path  string    `json:"path"`
	Valid bool      `json:"valid"`
	Error *CLIError `json:"error,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid bool         `json:"valid"`
	Files []FileResult `json:"files"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <file>...",
		Short: "Validate schema snapshots or query graphs without checking them",
		Long: `Load each file and report whether it is a well-formed schema snapshot,
or with --graph a well-formed query graph. Every file is checked; errors
do not stop at the first failure.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Graph, "graph", false, "treat files as query graphs")

	return cmd
}

func runValidate(opts *ValidateOptions, paths []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	result := ValidationResult{Valid: true, Files: make([]FileResult, 0, len(paths))}
	for _, path := range paths {
		fr := FileResult{Path: path, Valid: true}
		if err := validateFile(path, opts.Graph); err != nil {
			fr.Valid = false
			fr.Error = &CLIError{Code: errorCode(err), Message: err.Error()}
			result.Valid = false
		}
		result.Files = append(result.Files, fr)
	}

	if formatter.Format == "json" {
		if result.Valid {
			return formatter.Success(result)
		}
		if err := formatter.Refused(result, result.Files[firstInvalid(result)].Error.Code, "validation failed"); err != nil {
			return err
		}
		return NewExitError(ExitFailure, "validation failed")
	}

	w := formatter.Writer
	for _, fr := range result.Files {
		if fr.Valid {
			fmt.Fprintf(w, "✓ %s\n", fr.Path)
			continue
		}
		fmt.Fprintf(w, "✗ %s\n", fr.Path)
		fmt.Fprintf(w, "  %s\n", fr.Error.Message)
	}

	if !result.Valid {
		return NewExitError(ExitFailure, "validation failed")
	}
	fmt.Fprintln(w, "\n✓ All files valid")
	return nil
}

func validateFile(path string, graph bool) error {
	if graph {
		g, err := loader.LoadGraph(path)
		if err != nil {
			return err
		}
		return g.Validate()
	}
	_, err := loader.LoadSchema(path)
	return err
}

func firstInvalid(r ValidationResult) int {
	for i, fr := range r.Files {
		if !fr.Valid {
			return i
		}
	}
	return 0
}
