//go:build !unix

package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// lockStaleAfter is the age after which a lock file left behind by a dead
// writer is broken. A Put holds the lock for one read and one rename.
const lockStaleAfter = 30 * time.Second

// lock creates the root's lock file exclusively, waiting until it is free
// or ctx is done. Lock files older than lockStaleAfter are removed.
func (f *File) lock(ctx context.Context) (func(), error) {
	lockPath := filepath.Join(f.root, lockFileName)
	for {
		lf, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
		if err == nil {
			lf.Close()
			return func() { os.Remove(lockPath) }, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("acquire lock: %w", err)
		}
		if info, err := os.Stat(lockPath); err == nil && time.Since(info.ModTime()) > lockStaleAfter {
			os.Remove(lockPath)
			continue
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("acquire lock: %w", ctx.Err())
		case <-time.After(lockRetryInterval):
		}
	}
}
