package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/lift/internal/expression"
	"github.com/roach88/lift/internal/expressionista"
	"github.com/roach88/lift/internal/loader"
	"github.com/roach88/lift/internal/querygraph"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// CompilationResult is the JSON payload of a successful compile.
type CompilationResult struct {
	Expression  json.RawMessage `json:"expression"`
	Fingerprint string          `json:"fingerprint"`
	Nodes       int             `json:"nodes"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <graph>",
		Short: "Translate a query graph into an expression tree",
		Long: `Translate a query graph fixture (.yaml, .yml or .cue) into an
expression tree. Writes that re-read their result before a dependent
query get a reload binding.

Exit codes:
  0 - Graph translated
  1 - Graph could not be translated (unsupported node, cycle, etc.)
  2 - Command error (missing or malformed fixture)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the canonical expression JSON to this file")

	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	g, err := loader.LoadGraph(path)
	if err != nil {
		return formatter.fail("loading graph", err)
	}
	nodes := g.Len()
	formatter.VerboseLog("Loaded %d node(s) from %s", nodes, path)

	expr, err := expressionista.Translate(g.QueryGraph)
	if err != nil {
		return outputCompileError(formatter, err)
	}

	data, err := expression.Marshal(expr)
	if err != nil {
		return WrapExitError(ExitCommandError, "encoding expression", err)
	}
	fingerprint, err := expression.Fingerprint(expr)
	if err != nil {
		return WrapExitError(ExitCommandError, "fingerprinting expression", err)
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, append(data, '\n'), 0644); err != nil {
			return WrapExitError(ExitCommandError, "writing output", err)
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(CompilationResult{
			Expression:  data,
			Fingerprint: fingerprint,
			Nodes:       nodes,
		})
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✓ Translated %d node(s)\n\n", nodes)
	fmt.Fprint(w, expression.Render(expr))
	fmt.Fprintf(w, "\nFingerprint: %s\n", fingerprint)
	if opts.Output != "" {
		fmt.Fprintf(w, "Wrote canonical expression to %s\n", opts.Output)
	}
	return nil
}

// outputCompileError reports a translation failure. Malformed graphs carry
// their code and node in the details.
func outputCompileError(formatter *OutputFormatter, err error) error {
	var details any
	var ie *querygraph.InternalError
	if errors.As(err, &ie) {
		d := map[string]string{"code": string(ie.Code)}
		if ie.Node != "" {
			d["node"] = ie.Node
		}
		details = d
	} else if errors.Is(err, expressionista.ErrNotYetSupported) {
		details = map[string]string{"code": "NOT_YET_SUPPORTED"}
	}

	_ = formatter.Error(ErrCodeTranslate, err.Error(), details)
	return WrapExitError(ExitFailure, "translation failed", err)
}
