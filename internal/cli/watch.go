package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce collapses the burst of events an editor save produces.
var watchDebounce = 150 * time.Millisecond

// watch calls run once, then again after each change to one of paths, until
// ctx is cancelled.
//
// Directories are watched instead of the files themselves because many
// editors save by writing a temporary file and renaming it over the
// original, which drops a file-level watch.
func (c *CLI) watch(ctx context.Context, paths []string, run func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	targets := make(map[string]bool, len(paths))
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		targets[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	run()
	printInfo("Watching %d files for changes (ctrl+c to stop)", len(targets))

	var timer *time.Timer
	var timerC <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !targets[filepath.Clean(event.Name)] || !isContentChange(event) {
				continue
			}
			c.Logger.Debug("input changed", "file", event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			run()

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			c.Logger.Warn("watch error", "error", err)
		}
	}
}

func isContentChange(e fsnotify.Event) bool {
	return e.Has(fsnotify.Write) || e.Has(fsnotify.Create) || e.Has(fsnotify.Rename)
}
