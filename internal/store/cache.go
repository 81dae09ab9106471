package store

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cached serves Get from an LRU cache when the inner adapter reports
// that the blob's version has not changed since it was cached.
//
// Only adapters implementing Statter benefit; NewCached returns others
// unchanged.
type Cached struct {
	inner Adapter
	stat  Statter
	cache *lru.Cache[string, Blob]
}

// NewCached wraps inner with a cache holding up to size blobs.
func NewCached(inner Adapter, size int) (Adapter, error) {
	stat, ok := inner.(Statter)
	if !ok || size <= 0 {
		return inner, nil
	}
	cache, err := lru.New[string, Blob](size)
	if err != nil {
		return nil, fmt.Errorf("create blob cache: %w", err)
	}
	return &Cached{inner: inner, stat: stat, cache: cache}, nil
}

// Get implements Adapter.
func (c *Cached) Get(ctx context.Context, path string) (Blob, error) {
	version, err := c.stat.Stat(ctx, path)
	if err != nil {
		if IsNotFound(err) {
			c.cache.Remove(path)
		}
		return Blob{}, err
	}
	if b, ok := c.cache.Get(path); ok && b.Version == version {
		return b.clone(), nil
	}
	b, err := c.inner.Get(ctx, path)
	if err != nil {
		return Blob{}, err
	}
	c.cache.Add(path, b.clone())
	return b, nil
}

// Stat implements Statter.
func (c *Cached) Stat(ctx context.Context, path string) (Version, error) {
	return c.stat.Stat(ctx, path)
}

// Put implements Adapter.
func (c *Cached) Put(ctx context.Context, path string, content []byte, expected Version) (Version, error) {
	v, err := c.inner.Put(ctx, path, content, expected)
	if err != nil {
		return "", err
	}
	c.cache.Add(path, Blob{Content: content, Version: v}.clone())
	return v, nil
}

// Unwrap returns the wrapped adapter.
func (c *Cached) Unwrap() Adapter {
	return c.inner
}

// clone returns b with its own copy of the content, so cached entries
// never share memory with callers.
func (b Blob) clone() Blob {
	content := make([]byte, len(b.Content))
	copy(content, b.Content)
	return Blob{Content: content, Version: b.Version}
}
