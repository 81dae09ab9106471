package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/roach88/statuslog/internal/ir"
)

const (
	// lockFileName is the directory lock shared by every process using
	// the same root.
	lockFileName = ".statuslog.lock"

	// lockRetryInterval is how long Put waits between attempts to take the
	// directory lock held by another process.
	lockRetryInterval = 10 * time.Millisecond
)

// File is an Adapter storing one file per blob under a root directory.
// Versions are content hashes, the same way a version-controlled
// working tree identifies file contents.
//
// Writes go to a temporary file that is renamed over the target, so
// readers see either the old or the new content. Concurrent writers,
// including other processes, are serialised by a lock on a file in the
// root directory. The lock belongs to the holding process, so a writer that
// dies never leaves the directory locked.
type File struct {
	root string
	mu   sync.Mutex
}

// NewFile returns a File adapter rooted at dir, creating dir if needed.
func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store directory %s: %w", dir, err)
	}
	return &File{root: dir}, nil
}

// Root returns the directory blobs are stored under.
func (f *File) Root() string {
	return f.root
}

func (f *File) resolve(path string) (string, error) {
	if !filepath.IsLocal(path) {
		return "", fmt.Errorf("invalid blob path %q: must be relative and inside the store", path)
	}
	return filepath.Join(f.root, path), nil
}

// Get implements Adapter.
func (f *File) Get(ctx context.Context, path string) (Blob, error) {
	if err := ctx.Err(); err != nil {
		return Blob{}, err
	}
	full, err := f.resolve(path)
	if err != nil {
		return Blob{}, err
	}
	content, err := os.ReadFile(full)
	if errors.Is(err, fs.ErrNotExist) {
		return Blob{}, ErrNotFound
	}
	if err != nil {
		return Blob{}, fmt.Errorf("get %s: %w", path, err)
	}
	return Blob{Content: content, Version: Version(ir.ContentVersion(content))}, nil
}

// Put implements Adapter.
func (f *File) Put(ctx context.Context, path string, content []byte, expected Version) (Version, error) {
	full, err := f.resolve(path)
	if err != nil {
		return "", err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	unlock, err := f.lock(ctx)
	if err != nil {
		return "", fmt.Errorf("put %s: %w", path, err)
	}
	defer unlock()

	var actual Version
	current, err := os.ReadFile(full)
	switch {
	case err == nil:
		actual = Version(ir.ContentVersion(current))
	case errors.Is(err, fs.ErrNotExist):
	default:
		return "", fmt.Errorf("put %s: read current: %w", path, err)
	}
	if actual != expected {
		return "", &ConflictError{Path: path, Expected: expected, Actual: actual}
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("put %s: %w", path, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(full), ".statuslog-*")
	if err != nil {
		return "", fmt.Errorf("put %s: create temp: %w", path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // No-op after a successful rename

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return "", fmt.Errorf("put %s: write temp: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return "", fmt.Errorf("put %s: sync temp: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("put %s: close temp: %w", path, err)
	}
	if err := os.Rename(tmpName, full); err != nil {
		return "", fmt.Errorf("put %s: rename: %w", path, err)
	}
	return Version(ir.ContentVersion(content)), nil
}
