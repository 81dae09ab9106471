package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/singleflight"

	"github.com/roach88/statuslog/internal/ir"
	"github.com/roach88/statuslog/internal/service"
)

// Options configures a Server.
type Options struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string

	// CarryForwardOnRead runs carry-forward for today before GET /log.
	CarryForwardOnRead bool

	Logger *slog.Logger
}

// Server is the statuslog HTTP server.
//
// Thread-safety: Server is safe for concurrent use.
type Server struct {
	svc    *service.Service
	opts   Options
	logger *slog.Logger
	router chi.Router
	srv    *http.Server

	// carry coalesces concurrent carry-forward runs for the same date.
	carry singleflight.Group
}

// NewServer builds the router for svc.
func NewServer(svc *service.Service, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{svc: svc, opts: opts, logger: logger}

	r := chi.NewRouter()
	r.Use(instrument(logger))

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Get("/log", s.handleLog)
	r.Get("/config", s.handleConfig)
	r.Get("/seasons", s.handleSeasons)
	r.Get("/status/{subject}", s.handleStatus)
	r.Post("/actions/{action}", s.handleAction)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, http.StatusNotFound, CodeNotFound, "no route for "+req.URL.Path, nil)
	})

	s.router = r
	s.srv = &http.Server{
		Addr:         opts.Addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.opts.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("http server shutting down")
	return s.srv.Shutdown(shutdownCtx)
}

// CarryForward runs carry-forward from asOf, sharing the result with any
// concurrent call for the same date.
//
// The shared run is detached from ctx so one caller giving up does not
// fail the others; each caller still returns as soon as its own ctx is
// done.
func (s *Server) CarryForward(ctx context.Context, asOf ir.Date) (service.CarryForwardResult, error) {
	runCtx := context.WithoutCancel(ctx)
	ch := s.carry.DoChan(asOf.String(), func() (any, error) {
		return s.svc.CarryForward(runCtx, asOf)
	})
	select {
	case <-ctx.Done():
		return service.CarryForwardResult{}, ctx.Err()
	case r := <-ch:
		if r.Shared {
			s.logger.Debug("carry-forward coalesced", "as_of", asOf)
		}
		res, _ := r.Val.(service.CarryForwardResult)
		return res, r.Err
	}
}
