package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/statuslog/internal/api"
	"github.com/roach88/statuslog/internal/engine"
	"github.com/roach88/statuslog/internal/store"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Listen string

	// NoSchedule disables the daily carry-forward.
	NoSchedule bool
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Serve the HTTP API and keep the log current.

Besides answering requests, the server runs carry-forward for today at
start-up and again at every local midnight (settings: timezone). With the
file backend it also watches the roster file and re-runs carry-forward when
it changes, so newly added athletes get a record for today.

Example:
  statuslog serve --listen :8080
  statuslog serve --backend sqlite --db ./statuslog.db --verbose`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Listen, "listen", "", "listen address (default from settings)")
	cmd.Flags().BoolVar(&opts.NoSchedule, "no-schedule", false, "disable the daily carry-forward")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	// Setup signal handling for graceful shutdown
	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	e, err := opts.openEnv(ctx, cmd)
	if err != nil {
		return err
	}
	defer e.close()

	listen := e.settings.Listen
	if opts.Listen != "" {
		listen = opts.Listen
	}
	loc, err := e.settings.Location()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load time zone", err)
	}

	srv := api.NewServer(e.svc, api.Options{
		Addr:               listen,
		CarryForwardOnRead: e.settings.CarryForwardOnRead,
		Logger:             e.logger,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})
	if !opts.NoSchedule {
		g.Go(func() error {
			return runDailyCarryForward(gctx, srv, e, func() time.Duration {
				// A little past midnight so the clock reads the new day.
				return engine.UntilNextDay(time.Now(), loc) + time.Second
			})
		})
	}
	if e.backend.File != nil {
		g.Go(func() error {
			return watchRoster(gctx, e.backend.File, srv, e)
		})
	}

	fmt.Fprintf(cmd.OutOrStdout(), "statuslog serving on %s (backend %s)\n", listen, e.settings.Backend)
	if err := g.Wait(); err != nil {
		return WrapExitError(ExitCommandError, "server error", err)
	}
	e.logger.Info("server stopped gracefully")
	return nil
}

// runDailyCarryForward fills in today now and again each time the wait
// returned by next elapses, until ctx is done. Failures are logged and
// retried at the next tick.
func runDailyCarryForward(ctx context.Context, srv *api.Server, e *env, next func() time.Duration) error {
	for {
		carryForwardToday(ctx, srv, e, "schedule")

		wait := next()
		e.logger.Debug("next scheduled carry-forward", "in", wait.Round(time.Second))
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

// watchRoster re-runs carry-forward whenever the roster file changes.
func watchRoster(ctx context.Context, f *store.File, srv *api.Server, e *env) error {
	roster := e.svc.Paths().Roster
	e.logger.Info("watching roster", "path", roster, "dir", f.Root())
	return f.Watch(ctx, []string{roster}, store.DefaultDebounce, e.logger, func(string) {
		carryForwardToday(ctx, srv, e, "roster change")
	})
}

func carryForwardToday(ctx context.Context, srv *api.Server, e *env, reason string) {
	asOf := e.svc.Today().AddDays(-1)
	res, err := srv.CarryForward(ctx, asOf)
	if err != nil {
		if ctx.Err() == nil {
			e.logger.Error("carry-forward failed", "reason", reason, "as_of", asOf, "error", err)
		}
		return
	}
	e.logger.LogAttrs(ctx, slog.LevelInfo, "carry-forward ran",
		slog.String("reason", reason),
		slog.String("target", res.Target.String()),
		slog.Int("added", len(res.Added)),
	)
}
