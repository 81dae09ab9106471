package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/statuslog/internal/roster"
)

// NewSeasonsCommand creates the seasons command group.
func NewSeasonsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seasons",
		Short: "Print or replace the season table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withEnv(cmd, func(ctx context.Context, e *env) error {
				seasons, err := e.svc.Seasons(ctx)
				if err != nil {
					return err
				}
				if seasons == nil {
					seasons = []roster.Season{}
				}
				return e.out.Success(seasons, string(roster.EncodeSeasons(seasons)))
			})
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <file>",
		Short: "Replace the season table from a season,start,end CSV file",
		Long: `Replace the season table from a CSV file with header season,start,end.
Use "-" to read from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			seasons, err := roster.ParseSeasons(raw)
			if err != nil {
				return WrapExitError(ExitFailure, "invalid season table", err)
			}
			return rootOpts.withEnv(cmd, func(ctx context.Context, e *env) error {
				res, err := e.svc.UpdateSeasons(ctx, seasons)
				if err != nil {
					return err
				}
				return e.out.Success(res, fmt.Sprintf("%d seasons %s\n", len(seasons), changedWord(res.Changed)))
			})
		},
	})

	return cmd
}

// readInput reads a named file, or stdin for "-".
func readInput(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "-" {
		raw, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to read stdin", err)
		}
		return raw, nil
	}
	raw, err := os.ReadFile(name)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to read input file", err)
	}
	return raw, nil
}

func changedWord(changed bool) string {
	if changed {
		return "written"
	}
	return "unchanged"
}
