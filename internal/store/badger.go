package store

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
)

// badgerKeyPrefix namespaces blob keys inside the database.
const badgerKeyPrefix = "blob/"

// genHeaderLen is the size of the generation counter stored before the content.
const genHeaderLen = 8

// BadgerConfig holds configuration for a Badger adapter.
type BadgerConfig struct {
	// Path is the directory for BadgerDB files.
	// Ignored when InMemory is true.
	Path string

	// InMemory enables in-memory mode (no disk persistence).
	// Useful for testing.
	InMemory bool

	// SyncWrites enables synchronous writes for durability.
	SyncWrites bool

	// Logger receives BadgerDB's internal logging. Nil disables it.
	Logger *slog.Logger
}

// Badger is an Adapter backed by an embedded BadgerDB.
//
// Each value is an 8-byte big-endian generation followed by the blob
// content. The generation is the version token. Put reads and writes in
// one update transaction, so Badger's own conflict detection also turns
// a racing writer into a ConflictError.
type Badger struct {
	db *badger.DB
}

// badgerLogger adapts slog.Logger to BadgerDB's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// OpenBadger opens a Badger adapter with the given configuration.
// The caller must call Close when done.
func OpenBadger(cfg BadgerConfig) (*Badger, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent database")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	return &Badger{db: db}, nil
}

// Close closes the database.
func (b *Badger) Close() error {
	return b.db.Close()
}

func badgerKey(path string) []byte {
	return []byte(badgerKeyPrefix + path)
}

// Get implements Adapter.
func (b *Badger) Get(ctx context.Context, path string) (Blob, error) {
	if err := ctx.Err(); err != nil {
		return Blob{}, err
	}
	var blob Blob
	err := b.db.View(func(txn *badger.Txn) error {
		gen, content, err := readBadgerBlob(txn, path)
		if err != nil {
			return err
		}
		blob = Blob{Content: content, Version: genVersion(gen)}
		return nil
	})
	if err != nil {
		return Blob{}, err
	}
	return blob, nil
}

// Stat implements Statter.
func (b *Badger) Stat(ctx context.Context, path string) (Version, error) {
	blob, err := b.Get(ctx, path)
	if err != nil {
		return "", err
	}
	return blob.Version, nil
}

// Put implements Adapter.
func (b *Badger) Put(ctx context.Context, path string, content []byte, expected Version) (Version, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var next int64
	err := b.db.Update(func(txn *badger.Txn) error {
		gen, _, err := readBadgerBlob(txn, path)
		var actual Version
		switch {
		case err == nil:
			actual = genVersion(gen)
		case errors.Is(err, ErrNotFound):
		default:
			return err
		}
		if actual != expected {
			return &ConflictError{Path: path, Expected: expected, Actual: actual}
		}

		next = gen + 1
		value := make([]byte, genHeaderLen+len(content))
		binary.BigEndian.PutUint64(value, uint64(next))
		copy(value[genHeaderLen:], content)
		return txn.Set(badgerKey(path), value)
	})
	if errors.Is(err, badger.ErrConflict) {
		return "", &ConflictError{Path: path, Expected: expected}
	}
	if err != nil {
		if IsConflict(err) {
			return "", err
		}
		return "", fmt.Errorf("put %s: %w", path, err)
	}
	return genVersion(next), nil
}

// readBadgerBlob decodes the value stored for path inside txn.
func readBadgerBlob(txn *badger.Txn, path string) (int64, []byte, error) {
	item, err := txn.Get(badgerKey(path))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil, ErrNotFound
	}
	if err != nil {
		return 0, nil, fmt.Errorf("get %s: %w", path, err)
	}
	value, err := item.ValueCopy(nil)
	if err != nil {
		return 0, nil, fmt.Errorf("get %s: read value: %w", path, err)
	}
	if len(value) < genHeaderLen {
		return 0, nil, fmt.Errorf("get %s: corrupt value (%d bytes)", path, len(value))
	}
	gen := int64(binary.BigEndian.Uint64(value[:genHeaderLen]))
	return gen, value[genHeaderLen:], nil
}
