package update

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/statuslog/internal/codec"
	"github.com/roach88/statuslog/internal/ir"
	"github.com/roach88/statuslog/internal/metrics"
	"github.com/roach88/statuslog/internal/store"
)

// DefaultMaxAttempts is the number of read-mutate-write cycles tried
// before a conflict is surfaced.
const DefaultMaxAttempts = 3

// DefaultBackoff is the pause before the second attempt; it grows
// linearly with each further attempt.
const DefaultBackoff = 20 * time.Millisecond

// BlobMutateFunc computes new content from the current content.
// exists is false when the blob has never been written.
// Returning changed=false skips the write.
type BlobMutateFunc func(content []byte, exists bool) (next []byte, changed bool, err error)

// MutateFunc edits a decoded log in place and reports whether it changed.
// It may be called more than once per commit, each time with a freshly
// read log, so it must not depend on state from a previous call.
type MutateFunc func(log *ir.Log) (changed bool, err error)

// Result describes a finished commit.
type Result struct {
	// Path is the blob that was committed.
	Path string `json:"path"`

	// Version is the blob's version after the commit, or the observed
	// version when nothing changed.
	Version store.Version `json:"version"`

	// Changed is false when the mutation reported no change.
	Changed bool `json:"changed"`

	// Attempts is the number of read-mutate-write cycles used.
	Attempts int `json:"attempts"`
}

// Coordinator runs commits against one storage adapter.
//
// Thread-safety: Coordinator holds no mutable state and is safe for
// concurrent use; concurrency control is entirely the adapter's CAS.
type Coordinator struct {
	store       store.Adapter
	maxAttempts int
	backoff     time.Duration
	logger      *slog.Logger
	newID       func() string
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithMaxAttempts sets the attempt budget. 1 disables retries.
func WithMaxAttempts(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithBackoff sets the base pause between attempts.
func WithBackoff(d time.Duration) Option {
	return func(c *Coordinator) {
		c.backoff = d
	}
}

// WithLogger sets the logger for commit diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithIDGenerator overrides the generator for commit correlation ids.
func WithIDGenerator(fn func() string) Option {
	return func(c *Coordinator) {
		if fn != nil {
			c.newID = fn
		}
	}
}

// New returns a Coordinator for adapter.
func New(adapter store.Adapter, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:       adapter,
		maxAttempts: DefaultMaxAttempts,
		backoff:     DefaultBackoff,
		logger:      slog.Default(),
		newID:       func() string { return uuid.Must(uuid.NewV7()).String() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Store returns the adapter commits are written to.
func (c *Coordinator) Store() store.Adapter {
	return c.store
}

// Read returns the decoded log at path and its version. A missing blob
// yields an empty log and the empty version.
func (c *Coordinator) Read(ctx context.Context, path string) (*ir.Log, store.Version, error) {
	blob, err := c.store.Get(ctx, path)
	if store.IsNotFound(err) {
		return ir.NewLog(), "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", path, err)
	}
	return codec.Decode(blob.Content), blob.Version, nil
}

// Commit applies fn to the log stored at path.
func (c *Coordinator) Commit(ctx context.Context, path string, fn MutateFunc) (Result, error) {
	return c.CommitBlob(ctx, path, func(content []byte, _ bool) ([]byte, bool, error) {
		log := codec.Decode(content)
		changed, err := fn(log)
		if err != nil || !changed {
			return nil, false, err
		}
		return codec.Encode(log), true, nil
	})
}

// CommitBlob applies fn to the raw content stored at path.
func (c *Coordinator) CommitBlob(ctx context.Context, path string, fn BlobMutateFunc) (Result, error) {
	opID := c.newID()
	logger := c.logger.With("op_id", opID, "path", path)
	res := Result{Path: path}

	var lastConflict error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		res.Attempts = attempt
		if attempt > 1 {
			if err := c.wait(ctx, attempt); err != nil {
				metrics.CommitsTotal.WithLabelValues(path, metrics.ResultError).Inc()
				return res, fmt.Errorf("commit %s: %w", path, err)
			}
		}

		var content []byte
		var observed store.Version
		exists := true
		blob, err := c.store.Get(ctx, path)
		switch {
		case err == nil:
			content, observed = blob.Content, blob.Version
		case store.IsNotFound(err):
			exists = false
		default:
			metrics.CommitsTotal.WithLabelValues(path, metrics.ResultError).Inc()
			return res, fmt.Errorf("commit %s: read: %w", path, err)
		}

		next, changed, err := fn(content, exists)
		if err != nil {
			metrics.CommitsTotal.WithLabelValues(path, metrics.ResultError).Inc()
			return res, err
		}
		if !changed {
			res.Version = observed
			logger.Debug("commit skipped, nothing changed", "attempt", attempt, "version", observed)
			metrics.CommitsTotal.WithLabelValues(path, metrics.ResultUnchanged).Inc()
			metrics.CommitAttempts.WithLabelValues(path).Observe(float64(attempt))
			return res, nil
		}

		version, err := c.store.Put(ctx, path, next, observed)
		if err == nil {
			res.Version = version
			res.Changed = true
			logger.Debug("commit written", "attempt", attempt, "from", observed, "to", version)
			metrics.CommitsTotal.WithLabelValues(path, metrics.ResultCommitted).Inc()
			metrics.CommitAttempts.WithLabelValues(path).Observe(float64(attempt))
			return res, nil
		}
		if !store.IsConflict(err) {
			metrics.CommitsTotal.WithLabelValues(path, metrics.ResultError).Inc()
			return res, fmt.Errorf("commit %s: write: %w", path, err)
		}

		lastConflict = err
		metrics.CommitConflictsTotal.WithLabelValues(path).Inc()
		logger.Info("commit conflicted", "attempt", attempt, "max_attempts", c.maxAttempts, "error", err)
	}

	logger.Warn("commit gave up after conflicts", "attempts", res.Attempts)
	metrics.CommitsTotal.WithLabelValues(path, metrics.ResultConflict).Inc()
	metrics.CommitAttempts.WithLabelValues(path).Observe(float64(res.Attempts))
	return res, lastConflict
}

// wait pauses before the given attempt, returning early if ctx is done.
func (c *Coordinator) wait(ctx context.Context, attempt int) error {
	if c.backoff <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(c.backoff * time.Duration(attempt-1))
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
