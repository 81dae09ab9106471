package store

import (
	"context"
	"errors"
	"fmt"
)

// Version is an opaque token identifying one generation of a blob.
// The empty Version denotes a blob that does not exist.
type Version string

// Blob is the content of a stored blob at one version.
type Blob struct {
	Content []byte
	Version Version
}

// Adapter stores named blobs with compare-and-swap writes.
type Adapter interface {
	// Get returns the current content and version of path.
	// Returns ErrNotFound if the blob does not exist.
	Get(ctx context.Context, path string) (Blob, error)

	// Put replaces the content of path if its current version equals
	// expected and returns the new version. Returns *ConflictError when
	// the versions differ.
	Put(ctx context.Context, path string, content []byte, expected Version) (Version, error)
}

// Statter is implemented by adapters that can report a blob's version
// without transferring its content.
type Statter interface {
	Stat(ctx context.Context, path string) (Version, error)
}

// ErrNotFound is returned by Get and Stat when a blob does not exist.
var ErrNotFound = errors.New("blob not found")

// ConflictError reports a compare-and-swap failure.
type ConflictError struct {
	// Path is the blob that was being written.
	Path string

	// Expected is the version the writer observed.
	Expected Version

	// Actual is the version found at write time, if known.
	Actual Version
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict writing %s: expected version %q, found %q", e.Path, e.Expected, e.Actual)
}

// IsConflict returns true if err is or wraps a *ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// IsNotFound returns true if err is or wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
