package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strconv"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GCS is an Adapter backed by a Google Cloud Storage bucket.
// Versions are object generations; writes carry a GenerationMatch (or
// DoesNotExist) precondition, so the bucket itself performs the
// compare-and-swap.
type GCS struct {
	client *storage.Client
	bucket string
	prefix string
	owned  bool
}

// NewGCS creates a client and returns an adapter for bucket.
// credentialsFile may be empty to use application default credentials.
func NewGCS(ctx context.Context, bucket, prefix, credentialsFile string) (*GCS, error) {
	if bucket == "" {
		return nil, errors.New("bucket is required")
	}
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS storage client: %w", err)
	}
	g := NewGCSWithClient(client, bucket, prefix)
	g.owned = true
	return g, nil
}

// NewGCSWithClient returns an adapter using an existing client.
// The client is not closed by Close.
func NewGCSWithClient(client *storage.Client, bucket, prefix string) *GCS {
	return &GCS{client: client, bucket: bucket, prefix: prefix}
}

// Close releases the client if the adapter created it.
func (g *GCS) Close() error {
	if !g.owned {
		return nil
	}
	return g.client.Close()
}

func (g *GCS) object(p string) *storage.ObjectHandle {
	return g.client.Bucket(g.bucket).Object(path.Join(g.prefix, p))
}

// Get implements Adapter.
func (g *GCS) Get(ctx context.Context, p string) (Blob, error) {
	r, err := g.object(p).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return Blob{}, ErrNotFound
	}
	if err != nil {
		return Blob{}, fmt.Errorf("get %s: %w", p, err)
	}
	defer r.Close()

	content, err := io.ReadAll(r)
	if err != nil {
		return Blob{}, fmt.Errorf("get %s: read: %w", p, err)
	}
	return Blob{Content: content, Version: generationVersion(r.Attrs.Generation)}, nil
}

// Stat implements Statter.
func (g *GCS) Stat(ctx context.Context, p string) (Version, error) {
	attrs, err := g.object(p).Attrs(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", p, err)
	}
	return generationVersion(attrs.Generation), nil
}

// Put implements Adapter.
func (g *GCS) Put(ctx context.Context, p string, content []byte, expected Version) (Version, error) {
	cond, err := gcsConditions(expected)
	if err != nil {
		return "", &ConflictError{Path: p, Expected: expected}
	}

	w := g.object(p).If(cond).NewWriter(ctx)
	w.ContentType = "text/csv"
	w.CacheControl = "no-cache, no-store, must-revalidate"
	if _, err := w.Write(content); err != nil {
		w.Close()
		return "", fmt.Errorf("put %s: write: %w", p, err)
	}
	if err := w.Close(); err != nil {
		if isPreconditionFailed(err) {
			return "", &ConflictError{Path: p, Expected: expected}
		}
		return "", fmt.Errorf("put %s: %w", p, err)
	}
	return generationVersion(w.Attrs().Generation), nil
}

// gcsConditions maps an expected version to a write precondition.
func gcsConditions(expected Version) (storage.Conditions, error) {
	if expected == "" {
		return storage.Conditions{DoesNotExist: true}, nil
	}
	gen, err := strconv.ParseInt(string(expected), 10, 64)
	if err != nil {
		return storage.Conditions{}, fmt.Errorf("invalid generation %q: %w", expected, err)
	}
	return storage.Conditions{GenerationMatch: gen}, nil
}

// isPreconditionFailed reports whether err is a failed write precondition.
func isPreconditionFailed(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed
}

func generationVersion(gen int64) Version {
	return Version(strconv.FormatInt(gen, 10))
}
