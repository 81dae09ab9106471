package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/statuslog/internal/codec"
	"github.com/roach88/statuslog/internal/ir"
	"github.com/roach88/statuslog/internal/roster"
)

// NewLogCommand creates the log command.
func NewLogCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "log",
		Short: "Print the status log",
		Long: `Print the full status log.

Text output is the stored CSV; JSON output carries the version token and
the entries in file order.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withEnv(cmd, func(ctx context.Context, e *env) error {
				log, version, err := e.svc.Log(ctx)
				if err != nil {
					return err
				}
				data := map[string]any{"version": version, "entries": log.Entries()}
				return e.out.Success(data, string(codec.Encode(log)))
			})
		},
	}
}

// NewConfigCommand creates the config command.
func NewConfigCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the roster configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withEnv(cmd, func(ctx context.Context, e *env) error {
				cfg, err := e.svc.Config(ctx)
				if err != nil {
					return err
				}
				return e.out.Success(cfg, formatConfig(cfg))
			})
		},
	}
}

func formatConfig(cfg roster.Config) string {
	var b strings.Builder
	line := func(name string, values []string) {
		fmt.Fprintf(&b, "%-12s %s\n", name+":", strings.Join(values, ", "))
	}
	line("athletes", cfg.Athletes)
	line("injurySites", cfg.InjurySites)
	line("injuries", cfg.Injuries)
	line("severities", cfg.Severities)
	line("statuses", cfg.Statuses)

	colors := make([]string, 0, len(cfg.StatusColors))
	for status, color := range cfg.StatusColors {
		colors = append(colors, status+"="+color)
	}
	sort.Strings(colors)
	line("colors", colors)
	return b.String()
}

// StatusOptions holds flags for the status command.
type StatusOptions struct {
	*RootOptions
	Date string
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StatusOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "status <athlete>",
		Short: "Show an athlete's effective status on a date",
		Long: `Show the record in effect for an athlete on a date (default today).

The record is the entry on that date, or the most recent one within the
lookback window before it. Without either the athlete is Available.

Example:
  statuslog status "Jane Doe" --date 2024-03-01`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var date ir.Date
			if opts.Date != "" {
				d, err := ir.ParseDate(opts.Date)
				if err != nil {
					return WrapExitError(ExitFailure, "invalid --date", err)
				}
				date = d
			}
			return rootOpts.withEnv(cmd, func(ctx context.Context, e *env) error {
				res, err := e.svc.Status(ctx, args[0], date)
				if err != nil {
					return err
				}
				source := "default"
				if res.Source != "" {
					source = string(res.Source)
				}
				r := res.Record
				text := fmt.Sprintf("%s on %s: %s\n  injury site: %s\n  injury:      %s\n  severity:    %s\n  comment:     %s\n  from:        %s\n",
					res.Subject, res.Date, r.Status, r.InjurySite, r.Injury, r.Severity, r.Comment, source)
				return e.out.Success(res, text)
			})
		},
	}

	cmd.Flags().StringVar(&opts.Date, "date", "", "date as YYYY-MM-DD (default today)")

	return cmd
}
