package config

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/statuslog/internal/store"
)

// Backend is an opened storage adapter.
type Backend struct {
	Adapter store.Adapter

	// File is set for the file backend; the server watches it for changes.
	File *store.File

	// SQLite is set for the sqlite backend; it exposes revision history.
	SQLite *store.SQLite

	closer io.Closer
}

// Close releases the backend's resources.
func (b *Backend) Close() error {
	if b.closer == nil {
		return nil
	}
	return b.closer.Close()
}

// OpenBackend opens the storage adapter named by s.Backend and wraps it in
// the read cache when s.CacheSize is positive.
func (s Settings) OpenBackend(ctx context.Context, logger *slog.Logger) (*Backend, error) {
	b := &Backend{}
	var inner store.Adapter

	switch s.Backend {
	case BackendMemory:
		inner = store.NewMemory()
	case BackendFile:
		f, err := store.NewFile(s.Dir)
		if err != nil {
			return nil, fmt.Errorf("open file backend: %w", err)
		}
		b.File = f
		inner = f
	case BackendSQLite:
		db, err := store.OpenSQLite(s.Database)
		if err != nil {
			return nil, fmt.Errorf("open sqlite backend: %w", err)
		}
		b.SQLite, b.closer = db, db
		inner = db
	case BackendBadger:
		db, err := store.OpenBadger(store.BadgerConfig{Path: s.Dir, SyncWrites: true, Logger: logger})
		if err != nil {
			return nil, fmt.Errorf("open badger backend: %w", err)
		}
		b.closer = db
		inner = db
	case BackendGCS:
		g, err := store.NewGCS(ctx, s.Bucket, s.Prefix, s.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("open gcs backend: %w", err)
		}
		b.closer = g
		inner = g
	default:
		return nil, fmt.Errorf("unknown backend %q", s.Backend)
	}

	adapter, err := store.NewCached(inner, s.CacheSize)
	if err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("open read cache: %w", err)
	}
	b.Adapter = adapter
	return b, nil
}
