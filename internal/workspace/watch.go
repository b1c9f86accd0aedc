package workspace

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce groups bursts of file events into one run.
const DefaultDebounce = 300 * time.Millisecond

// WatchFunc receives the results of a re-run over the changed files and
// the wall time the run took.
type WatchFunc func(results []FileResult, elapsed time.Duration, err error)

// Watch re-lints files under roots whenever they change, until ctx is
// done. Only paths Collect would return are re-linted. Watching needs the
// real filesystem.
func (w *Workspace) Watch(ctx context.Context, roots []string, opts LintOptions, debounce time.Duration, fn WatchFunc) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if len(roots) == 0 {
		roots = []string{w.loaded.Root}
	}
	for _, root := range roots {
		root = w.abs(root)
		if info, err := os.Stat(root); err == nil && !info.IsDir() {
			root = filepath.Dir(root)
		}
		if err := w.addWatchRecursive(watcher, root); err != nil {
			return err
		}
	}
	w.logger.Info().Strs("roots", roots).Msg("watching for changes")

	var (
		mu      sync.Mutex
		pending = make(map[string]bool)
		timer   *time.Timer
	)
	trigger := func() {
		mu.Lock()
		changed := make([]string, 0, len(pending))
		for p := range pending {
			changed = append(changed, p)
		}
		clear(pending)
		mu.Unlock()
		slices.Sort(changed)

		files, err := w.Collect(changed)
		if err != nil {
			fn(nil, 0, err)
			return
		}
		if len(files) == 0 {
			return
		}
		start := time.Now()
		results, err := w.LintAll(ctx, files, opts)
		fn(results, time.Since(start), err)
	}
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = w.addWatchRecursive(watcher, ev.Name)
					continue
				}
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if _, err := Language(ev.Name); err != nil {
				continue
			}
			if _, err := os.Stat(ev.Name); err != nil {
				continue
			}
			mu.Lock()
			pending[ev.Name] = true
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, trigger)
			mu.Unlock()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error().Err(err).Msg("watcher error")
		}
	}
}

func (w *Workspace) addWatchRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if path != root && (skippedDirs[info.Name()] || !w.loaded.Included(path, true)) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}
