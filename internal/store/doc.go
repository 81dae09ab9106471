// Package store provides versioned blob storage for the status log.
//
// Every adapter implements the same compare-and-swap contract:
//   - Get returns the blob content together with an opaque version token
//   - Put succeeds only if the caller's expected version still matches
//   - An empty expected version means "the blob must not exist yet"
//   - A missing blob is reported as ErrNotFound, a stale write as *ConflictError
//
// Writes replace the whole blob in one operation; readers never observe a
// partially written blob.
//
// # Adapters
//
//   - Memory: in-process map with a generation counter (tests, dry runs)
//   - File: one file per blob, content-hash versions, atomic rename
//   - SQLite: single table keyed by path with an integer version column
//   - Badger: embedded KV store, generation stored alongside the content
//   - GCS: object generations with GenerationMatch preconditions
//
// Cached wraps any adapter that can report versions cheaply (Statter) and
// serves unchanged blobs from an LRU cache.
package store
