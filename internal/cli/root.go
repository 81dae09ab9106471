package cli

import (
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/statuslog/internal/config"
	"github.com/roach88/statuslog/internal/ir"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	// Config is the settings file. When the flag is not given a missing
	// statuslog.yaml is not an error.
	Config string

	// Overrides applied on top of the settings file when set.
	Backend  string
	Dir      string
	Database string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the statuslog CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "statuslog",
		Version: ir.ToolVersion,
		Short:   "statuslog - per-athlete daily status log",
		Long: `Maintain a sparse per-athlete, per-day status log stored as CSV.

Every write is a read-modify-write against a versioned blob: if another
writer committed in between, the change is re-applied to the fresh
content before giving up with a conflict.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVarP(&opts.Config, "config", "c", "", "settings file (default "+config.DefaultFile+")")
	cmd.PersistentFlags().StringVar(&opts.Backend, "backend", "", "storage backend (memory|file|sqlite|badger|gcs)")
	cmd.PersistentFlags().StringVar(&opts.Dir, "dir", "", "data directory for the file and badger backends")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "database path for the sqlite backend")

	// Add subcommands
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewLogCommand(opts))
	cmd.AddCommand(NewConfigCommand(opts))
	cmd.AddCommand(NewStatusCommand(opts))
	cmd.AddCommand(NewSeasonsCommand(opts))
	cmd.AddCommand(NewCarryForwardCommand(opts))
	cmd.AddCommand(NewRecordCommand(opts))
	cmd.AddCommand(NewSubjectCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// Execute runs the CLI with args and returns the process exit code.
// Errors are reported on stdout in JSON mode and on stderr otherwise.
func Execute(args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.Execute()
	if err == nil {
		return ExitSuccess
	}
	format, _ := cmd.PersistentFlags().GetString("format")
	if !slices.Contains(ValidFormats, format) {
		format = "text"
	}
	f := &OutputFormatter{Format: format, Writer: stdout, ErrWriter: stderr}
	return f.Report(err)
}
