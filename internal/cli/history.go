package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "history [blob]",
		Short: "List committed revisions of a blob (sqlite backend)",
		Long: `List every committed revision of a blob, oldest first. Defaults to the
log blob. Only the sqlite backend records history.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withEnv(cmd, func(ctx context.Context, e *env) error {
				if e.backend.SQLite == nil {
					return NewExitError(ExitCommandError, fmt.Sprintf("history requires the sqlite backend, not %q", e.settings.Backend))
				}
				path := e.svc.Paths().Log
				if len(args) == 1 {
					path = args[0]
				}
				revs, err := e.backend.SQLite.History(ctx, path)
				if err != nil {
					return err
				}
				var b strings.Builder
				for _, r := range revs {
					fmt.Fprintf(&b, "%s\t%d bytes\n", r.Version, r.Size)
				}
				return e.out.Success(revs, b.String())
			})
		},
	}
}
