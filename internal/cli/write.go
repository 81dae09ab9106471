package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/statuslog/internal/codec"
	"github.com/roach88/statuslog/internal/ir"
)

// RecordOptions holds flags for record set.
type RecordOptions struct {
	*RootOptions
	Record ir.Record
}

// NewRecordCommand creates the record command group.
func NewRecordCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Write log entries",
	}
	cmd.AddCommand(newRecordSetCommand(rootOpts))
	cmd.AddCommand(newRecordMergeCommand(rootOpts))
	return cmd
}

func newRecordSetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RecordOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "set <key>",
		Short: "Set the record for one athlete-date key",
		Long: `Set the record stored at an athlete-date key, replacing any existing one.

The key is the athlete name followed by -YYYY-MM-DD.

Example:
  statuslog record set "Jane Doe-2024-03-01" --status Injured --injury-site Knee --severity High`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withEnv(cmd, func(ctx context.Context, e *env) error {
				res, err := e.svc.UpdateRecord(ctx, args[0], opts.Record)
				if err != nil {
					return err
				}
				e.out.VerboseLog("committed in %d attempt(s)", res.Attempts)
				return e.out.Success(res, fmt.Sprintf("%s %s (version %s)\n", args[0], changedWord(res.Changed), res.Version))
			})
		},
	}

	cmd.Flags().StringVar(&opts.Record.Status, "status", ir.StatusAvailable, "status from the roster's status catalogue")
	cmd.Flags().StringVar(&opts.Record.InjurySite, "injury-site", "", "injury site")
	cmd.Flags().StringVar(&opts.Record.Injury, "injury", "", "injury")
	cmd.Flags().StringVar(&opts.Record.Severity, "severity", "", "severity")
	cmd.Flags().StringVar(&opts.Record.Comment, "comment", "", "free-text comment (may contain commas)")

	return cmd
}

func newRecordMergeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "merge <file>",
		Short: "Back-fill many records in one commit",
		Long: `Merge every row of a log-format CSV file into the log in one commit,
overwriting existing keys. Use "-" to read from stdin.

The file has the same header as the log:
  key,status,injurySite,injury,severity,comment`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			if first, _, _ := strings.Cut(string(raw), "\n"); strings.TrimSpace(first) != codec.Header {
				return NewExitError(ExitFailure, fmt.Sprintf("input header must be %q", codec.Header))
			}
			entries := codec.Decode(raw).Entries()
			return rootOpts.withEnv(cmd, func(ctx context.Context, e *env) error {
				res, err := e.svc.MergeRecords(ctx, entries)
				if err != nil {
					return err
				}
				return e.out.Success(res, fmt.Sprintf("%d records merged, log %s (version %s)\n", len(entries), changedWord(res.Changed), res.Version))
			})
		},
	}
}

// NewSubjectCommand creates the subject command group.
func NewSubjectCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "subject",
		Aliases: []string{"athlete"},
		Short:   "Add or remove roster athletes",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <name>",
		Short: "Add an athlete to the roster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withEnv(cmd, func(ctx context.Context, e *env) error {
				res, err := e.svc.AddSubject(ctx, args[0])
				if err != nil {
					return err
				}
				text := fmt.Sprintf("%s added\n", res.Subject)
				if !res.RosterChanged {
					text = fmt.Sprintf("%s already on the roster\n", res.Subject)
				}
				return e.out.Success(res, text)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <name>",
		Short: "Remove an athlete and delete their history",
		Long: `Remove an athlete from the roster and delete every log entry whose key
belongs to exactly that athlete. Other athletes whose names start with the
same text are not affected.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withEnv(cmd, func(ctx context.Context, e *env) error {
				res, err := e.svc.RemoveSubject(ctx, args[0])
				if err != nil {
					return err
				}
				return e.out.Success(res, fmt.Sprintf("%s removed, %d log entries deleted\n", res.Subject, res.EntriesRemoved))
			})
		},
	})

	return cmd
}

// CarryForwardOptions holds flags for the carry-forward command.
type CarryForwardOptions struct {
	*RootOptions
	AsOf string
}

// NewCarryForwardCommand creates the carry-forward command.
func NewCarryForwardCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CarryForwardOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "carry-forward",
		Short: "Fill in the next day for every athlete",
		Long: `Copy each roster athlete's most recent record onto the day after --as-of
when that day has no entry yet. Athletes with no history get Available.

Without --as-of the run fills in today. Running it twice adds nothing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var asOf ir.Date
			if opts.AsOf != "" {
				d, err := ir.ParseDate(opts.AsOf)
				if err != nil {
					return WrapExitError(ExitFailure, "invalid --as-of", err)
				}
				asOf = d
			}
			return rootOpts.withEnv(cmd, func(ctx context.Context, e *env) error {
				if asOf.IsZero() {
					asOf = e.svc.Today().AddDays(-1)
				}
				res, err := e.svc.CarryForward(ctx, asOf)
				if err != nil {
					return err
				}
				var b strings.Builder
				fmt.Fprintf(&b, "%d entries added for %s\n", len(res.Added), res.Target)
				for _, a := range res.Added {
					fmt.Fprintf(&b, "  %s %s\n", a.Key, a.Record.Status)
				}
				return e.out.Success(res, b.String())
			})
		},
	}

	cmd.Flags().StringVar(&opts.AsOf, "as-of", "", "project this date onto the next (default yesterday)")

	return cmd
}
