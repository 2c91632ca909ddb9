package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/lift/internal/logger"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	Debug      bool
	ConfigFile string

	// Config is loaded by the root command before any subcommand runs.
	Config     *Config
	ConfigPath string
}

// config returns the loaded config, or an empty one when a subcommand runs
// without the root command.
func (o *RootOptions) config() *Config {
	if o.Config == nil {
		return &Config{}
	}
	return o.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the lift CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "lift",
		Short: "lift - schema migration checks and query graph compilation",
		Long: `Infer migrations between schema snapshots, refuse destructive ones
unless forced, and lower query graphs into expression trees.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}

			cfg, path, err := LoadConfig(opts.ConfigFile)
			if err != nil {
				return WrapExitError(ExitCommandError, "loading config", err)
			}
			opts.Config = cfg
			opts.ConfigPath = path

			log := logger.Setup(cmd.ErrOrStderr(), resolveBool(opts.Debug, cfg.Debug))
			if path != "" {
				log.Debug("config loaded", "path", path)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVar(&opts.Debug, "debug", false, "debug logging on stderr")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (default: lift.yaml found by walking up from cwd)")

	cmd.AddCommand(NewDiffCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
