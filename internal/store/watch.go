package store

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period before a change is reported.
const DefaultDebounce = 200 * time.Millisecond

// Watch reports changes made to the given blob paths by anyone, including
// other processes and tools such as git, until ctx is done.
//
// Events are debounced per path: a burst of writes (temp file, rename,
// chmod) produces a single onChange call once the path has been quiet for
// debounce.
func (f *File) Watch(ctx context.Context, paths []string, debounce time.Duration, logger *slog.Logger, onChange func(path string)) error {
	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watched := make(map[string]string, len(paths))
	dirs := make(map[string]bool)
	for _, p := range paths {
		full, err := f.resolve(p)
		if err != nil {
			return err
		}
		watched[filepath.Clean(full)] = p
		dirs[filepath.Dir(full)] = true
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	// Watch directories rather than files: atomic renames replace the inode.
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	var mu sync.Mutex
	timers := make(map[string]*time.Timer)
	defer func() {
		mu.Lock()
		defer mu.Unlock()
		for _, t := range timers {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			blobPath, ok := watched[filepath.Clean(ev.Name)]
			if !ok {
				continue
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
				continue
			}
			logger.Debug("blob changed on disk", "path", blobPath, "op", ev.Op.String())
			mu.Lock()
			if t, exists := timers[blobPath]; exists {
				t.Reset(debounce)
			} else {
				timers[blobPath] = time.AfterFunc(debounce, func() {
					mu.Lock()
					delete(timers, blobPath)
					mu.Unlock()
					onChange(blobPath)
				})
			}
			mu.Unlock()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("file watcher error", "error", err)
		}
	}
}
