// Package update commits mutations to stored blobs with optimistic
// concurrency.
//
// A commit is a read-mutate-write cycle: read the blob and its version,
// apply a mutation to the decoded content, and write the result back with
// the observed version as a compare-and-swap precondition. A writer that
// lost the race sees a conflict; the Coordinator then re-runs the whole
// cycle against the fresh content, so the mutation is re-applied to what
// the other writer committed instead of overwriting it. After MaxAttempts
// conflicts the last *store.ConflictError is returned unchanged.
//
// A mutation that reports no change ends the commit without writing.
package update
