package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/statuslog/internal/codec"
	"github.com/roach88/statuslog/internal/engine"
	"github.com/roach88/statuslog/internal/ir"
	"github.com/roach88/statuslog/internal/metrics"
	"github.com/roach88/statuslog/internal/roster"
	"github.com/roach88/statuslog/internal/store"
	"github.com/roach88/statuslog/internal/update"
	"github.com/roach88/statuslog/internal/validation"
)

// Paths names the blobs a Service reads and writes.
type Paths struct {
	Log     string
	Roster  string
	Seasons string
}

// DefaultPaths returns the blob names used when none are configured.
func DefaultPaths() Paths {
	return Paths{Log: "log.csv", Roster: "roster.csv", Seasons: "seasons.csv"}
}

// Options configures a Service. Zero fields take defaults.
type Options struct {
	Paths        Paths
	LookbackDays int
	Clock        engine.Clock
	Logger       *slog.Logger
}

// Service runs statuslog operations against one coordinator.
//
// Thread-safety: Service is safe for concurrent use.
type Service struct {
	coord  *update.Coordinator
	roster *roster.StoreProvider
	paths  Paths
	engine engine.Options
	clock  engine.Clock
	logger *slog.Logger
}

// New returns a Service committing through coord.
func New(coord *update.Coordinator, opts Options) *Service {
	paths := opts.Paths
	def := DefaultPaths()
	if paths.Log == "" {
		paths.Log = def.Log
	}
	if paths.Roster == "" {
		paths.Roster = def.Roster
	}
	if paths.Seasons == "" {
		paths.Seasons = def.Seasons
	}
	clock := opts.Clock
	if clock == nil {
		clock = engine.NewSystemClock(nil)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		coord:  coord,
		roster: roster.NewStoreProvider(coord.Store(), paths.Roster),
		paths:  paths,
		engine: engine.Options{LookbackDays: opts.LookbackDays},
		clock:  clock,
		logger: logger,
	}
}

// Paths returns the blob names the service uses.
func (s *Service) Paths() Paths {
	return s.paths
}

// Today returns the current date from the service clock.
func (s *Service) Today() ir.Date {
	return s.clock.Today()
}

// Log returns the stored log and its version.
func (s *Service) Log(ctx context.Context) (*ir.Log, store.Version, error) {
	return s.coord.Read(ctx, s.paths.Log)
}

// LogCSV returns the stored log serialised in the log file format.
func (s *Service) LogCSV(ctx context.Context) ([]byte, error) {
	log, _, err := s.Log(ctx)
	if err != nil {
		return nil, err
	}
	return codec.Encode(log), nil
}

// Config returns the configuration object from the roster file.
func (s *Service) Config(ctx context.Context) (roster.Config, error) {
	return s.roster.Config(ctx)
}

// Roster returns the current subjects.
func (s *Service) Roster(ctx context.Context) ([]string, error) {
	return s.roster.List(ctx)
}

// Seasons returns the season table. A missing table is empty.
func (s *Service) Seasons(ctx context.Context) ([]roster.Season, error) {
	blob, err := s.coord.Store().Get(ctx, s.paths.Seasons)
	if store.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read seasons: %w", err)
	}
	return roster.ParseSeasons(blob.Content)
}

// Status resolves the record in effect for subject on date. A zero date
// means today.
func (s *Service) Status(ctx context.Context, subject string, date ir.Date) (engine.Resolution, error) {
	name, err := validation.New(nil).Subject(subject)
	if err != nil {
		return engine.Resolution{}, err
	}
	if date.IsZero() {
		date = s.clock.Today()
	}
	log, _, err := s.Log(ctx)
	if err != nil {
		return engine.Resolution{}, err
	}
	return engine.Resolve(log, name, date, s.engine), nil
}

// validator returns a validator for the roster's current status catalogue.
func (s *Service) validator(ctx context.Context) (*validation.Validator, error) {
	cfg, err := s.Config(ctx)
	if err != nil {
		return nil, err
	}
	return validation.New(cfg.Statuses), nil
}

// SubjectResult reports the outcome of a roster edit.
type SubjectResult struct {
	Subject string `json:"subject"`

	// RosterChanged is false when the roster already matched.
	RosterChanged bool `json:"rosterChanged"`

	// EntriesRemoved counts pruned log entries (remove only).
	EntriesRemoved int `json:"entriesRemoved"`

	Roster update.Result  `json:"roster"`
	Log    *update.Result `json:"log,omitempty"`
}

// AddSubject appends name to the roster with empty attribute cells.
// Adding a subject already on the roster changes nothing.
func (s *Service) AddSubject(ctx context.Context, name string) (SubjectResult, error) {
	name, err := validation.New(nil).Subject(name)
	if err != nil {
		return SubjectResult{}, err
	}
	res, err := s.coord.CommitBlob(ctx, s.paths.Roster, func(content []byte, _ bool) ([]byte, bool, error) {
		t := roster.ParseTable(content)
		if !t.AddSubject(name) {
			return nil, false, nil
		}
		return t.Encode(), true, nil
	})
	if err != nil {
		return SubjectResult{Subject: name}, fmt.Errorf("add subject %s: %w", name, err)
	}
	s.logger.Info("subject added", "subject", name, "changed", res.Changed)
	return SubjectResult{Subject: name, RosterChanged: res.Changed, Roster: res}, nil
}

// RemoveSubject drops name from the roster and deletes every log entry
// whose key decomposes to exactly name. Catalogue values sharing the
// subject's roster row are kept.
func (s *Service) RemoveSubject(ctx context.Context, name string) (SubjectResult, error) {
	name, err := validation.New(nil).Subject(name)
	if err != nil {
		return SubjectResult{}, err
	}
	out := SubjectResult{Subject: name}

	rosterRes, err := s.coord.CommitBlob(ctx, s.paths.Roster, func(content []byte, exists bool) ([]byte, bool, error) {
		if !exists {
			return nil, false, nil
		}
		t := roster.ParseTable(content)
		if !t.RemoveSubject(name) {
			return nil, false, nil
		}
		return t.Encode(), true, nil
	})
	if err != nil {
		return out, fmt.Errorf("remove subject %s from roster: %w", name, err)
	}
	out.Roster, out.RosterChanged = rosterRes, rosterRes.Changed

	var removed int
	logRes, err := s.coord.Commit(ctx, s.paths.Log, update.RemoveSubject(name, &removed))
	if err != nil {
		return out, fmt.Errorf("remove subject %s from log: %w", name, err)
	}
	out.Log, out.EntriesRemoved = &logRes, removed
	s.logger.Info("subject removed", "subject", name, "roster_changed", out.RosterChanged, "entries_removed", removed)
	return out, nil
}

// UpdateRecord assigns rec to the entry at key.
func (s *Service) UpdateRecord(ctx context.Context, key string, rec ir.Record) (update.Result, error) {
	val, err := s.validator(ctx)
	if err != nil {
		return update.Result{}, err
	}
	entry, err := val.Entry(ir.Entry{Key: ir.Key(key), Record: rec})
	if err != nil {
		return update.Result{}, err
	}
	res, err := s.coord.Commit(ctx, s.paths.Log, update.SetRecord(entry.Key, entry.Record))
	if err != nil {
		return res, fmt.Errorf("update record %s: %w", entry.Key, err)
	}
	return res, nil
}

// MergeRecords writes every entry in one commit, overwriting existing
// keys. All entries are validated before anything is read or written.
func (s *Service) MergeRecords(ctx context.Context, entries []ir.Entry) (update.Result, error) {
	val, err := s.validator(ctx)
	if err != nil {
		return update.Result{}, err
	}
	clean := make([]ir.Entry, 0, len(entries))
	for _, e := range entries {
		v, err := val.Entry(e)
		if err != nil {
			return update.Result{}, err
		}
		clean = append(clean, v)
	}
	res, err := s.coord.Commit(ctx, s.paths.Log, update.MergeRecords(clean))
	if err != nil {
		return res, fmt.Errorf("merge %d records: %w", len(clean), err)
	}
	s.logger.Info("records merged", "count", len(clean), "changed", res.Changed)
	return res, nil
}

// UpdateSeasons replaces the season table.
func (s *Service) UpdateSeasons(ctx context.Context, seasons []roster.Season) (update.Result, error) {
	if err := roster.ValidateSeasons(seasons); err != nil {
		return update.Result{}, &validation.Error{
			Subject: "seasons",
			Fields:  []validation.FieldError{{Field: "seasons", Reason: err.Error()}},
		}
	}
	next := roster.EncodeSeasons(seasons)
	res, err := s.coord.CommitBlob(ctx, s.paths.Seasons, func(content []byte, exists bool) ([]byte, bool, error) {
		if exists && string(content) == string(next) {
			return nil, false, nil
		}
		return next, true, nil
	})
	if err != nil {
		return res, fmt.Errorf("update seasons: %w", err)
	}
	return res, nil
}

// CarryForwardResult reports one carry-forward run.
type CarryForwardResult struct {
	update.Result

	AsOf   ir.Date    `json:"asOf"`
	Target ir.Date    `json:"target"`
	Added  []ir.Entry `json:"added"`
}

// CarryForward fills in the day after asOf for every roster subject that
// has no entry on that day.
func (s *Service) CarryForward(ctx context.Context, asOf ir.Date) (CarryForwardResult, error) {
	subjects, err := s.Roster(ctx)
	if err != nil {
		return CarryForwardResult{}, err
	}
	var p engine.Projection
	res, err := s.coord.Commit(ctx, s.paths.Log, update.CarryForward(subjects, asOf, s.engine, &p))
	out := CarryForwardResult{Result: res, AsOf: asOf, Target: asOf.AddDays(1)}
	if err != nil {
		return out, fmt.Errorf("carry forward from %s: %w", asOf, err)
	}
	if res.Changed {
		out.Added = p.Added
		metrics.CarryForwardEntriesTotal.Add(float64(len(p.Added)))
	}
	s.logger.Info("carry-forward finished", "as_of", asOf, "target", out.Target, "added", len(out.Added))
	return out, nil
}

// CarryForwardToday fills in today from yesterday's state.
func (s *Service) CarryForwardToday(ctx context.Context) (CarryForwardResult, error) {
	return s.CarryForward(ctx, s.clock.Today().AddDays(-1))
}
