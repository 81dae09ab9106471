package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/statuslog/internal/config"
	"github.com/roach88/statuslog/internal/engine"
	"github.com/roach88/statuslog/internal/service"
	"github.com/roach88/statuslog/internal/update"
)

// env is everything a command needs to run operations.
type env struct {
	settings config.Settings
	logger   *slog.Logger
	backend  *config.Backend
	svc      *service.Service
	out      *OutputFormatter
}

// loadSettings reads the settings file and applies flag overrides.
func (o *RootOptions) loadSettings() (config.Settings, error) {
	path, required := o.Config, true
	if path == "" {
		path, required = config.DefaultFile, false
	}
	s, err := config.Load(path, required)
	if err != nil {
		return config.Settings{}, WrapExitError(ExitCommandError, "failed to load settings", err)
	}
	if o.Backend != "" {
		s.Backend = o.Backend
	}
	if o.Dir != "" {
		s.Dir = o.Dir
	}
	if o.Database != "" {
		s.Database = o.Database
	}
	if err := s.Validate(); err != nil {
		return config.Settings{}, WrapExitError(ExitCommandError, "invalid flags", err)
	}
	return s, nil
}

// formatter returns the output formatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// openEnv loads settings, opens the storage backend and builds the service.
// The caller must call close.
func (o *RootOptions) openEnv(ctx context.Context, cmd *cobra.Command) (*env, error) {
	s, err := o.loadSettings()
	if err != nil {
		return nil, err
	}
	logger, err := s.NewLogger(cmd.ErrOrStderr(), o.Verbose)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to configure logging", err)
	}
	loc, err := s.Location()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load time zone", err)
	}

	logger.Debug("opening storage", "backend", s.Backend)
	backend, err := s.OpenBackend(ctx, logger)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open storage", err)
	}

	coord := update.New(backend.Adapter,
		update.WithMaxAttempts(s.MaxAttempts),
		update.WithLogger(logger),
	)
	svc := service.New(coord, service.Options{
		Paths: service.Paths{
			Log:     s.LogPath,
			Roster:  s.RosterPath,
			Seasons: s.SeasonsPath,
		},
		LookbackDays: s.LookbackDays,
		Clock:        engine.NewSystemClock(loc),
		Logger:       logger,
	})
	return &env{
		settings: s,
		logger:   logger,
		backend:  backend,
		svc:      svc,
		out:      o.formatter(cmd),
	}, nil
}

func (e *env) close() {
	if err := e.backend.Close(); err != nil {
		e.logger.Error("error closing storage", "error", err)
	}
}

// withEnv runs fn with an opened env and closes it afterwards.
func (o *RootOptions) withEnv(cmd *cobra.Command, fn func(ctx context.Context, e *env) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	e, err := o.openEnv(ctx, cmd)
	if err != nil {
		return err
	}
	defer e.close()
	if err := fn(ctx, e); err != nil {
		return fmt.Errorf("%s: %w", cmd.CommandPath(), err)
	}
	return nil
}
