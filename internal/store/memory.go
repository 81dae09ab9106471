package store

import (
	"context"
	"strconv"
	"sync"
)

// Memory is an in-process Adapter. Versions are per-blob generation numbers.
//
// Thread-safety: Memory is safe for concurrent use.
type Memory struct {
	mu    sync.Mutex
	blobs map[string]memoryBlob
}

type memoryBlob struct {
	content []byte
	gen     int64
}

// NewMemory returns an empty in-memory adapter.
func NewMemory() *Memory {
	return &Memory{blobs: make(map[string]memoryBlob)}
}

// Get implements Adapter.
func (m *Memory) Get(ctx context.Context, path string) (Blob, error) {
	if err := ctx.Err(); err != nil {
		return Blob{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.blobs[path]
	if !ok {
		return Blob{}, ErrNotFound
	}
	content := make([]byte, len(b.content))
	copy(content, b.content)
	return Blob{Content: content, Version: genVersion(b.gen)}, nil
}

// Stat implements Statter.
func (m *Memory) Stat(ctx context.Context, path string) (Version, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.blobs[path]
	if !ok {
		return "", ErrNotFound
	}
	return genVersion(b.gen), nil
}

// Put implements Adapter.
func (m *Memory) Put(ctx context.Context, path string, content []byte, expected Version) (Version, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, exists := m.blobs[path]
	var actual Version
	if exists {
		actual = genVersion(cur.gen)
	}
	if actual != expected {
		return "", &ConflictError{Path: path, Expected: expected, Actual: actual}
	}

	stored := make([]byte, len(content))
	copy(stored, content)
	next := memoryBlob{content: stored, gen: cur.gen + 1}
	m.blobs[path] = next
	return genVersion(next.gen), nil
}

func genVersion(gen int64) Version {
	return Version(strconv.FormatInt(gen, 10))
}
