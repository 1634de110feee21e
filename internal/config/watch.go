package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultReloadDelay coalesces the bursts of events editors produce when
// saving a file.
const DefaultReloadDelay = 250 * time.Millisecond

// Watch reloads path whenever it or one of its includes changes and passes
// each successfully validated result to onReload. Invalid edits are logged
// and the previous configuration stays in effect. Watch blocks until ctx is
// cancelled.
func Watch(ctx context.Context, path string, delay time.Duration, logger *slog.Logger, onReload func(*LoadResult)) error {
	if logger == nil {
		logger = slog.Default()
	}
	if delay <= 0 {
		delay = DefaultReloadDelay
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create config watcher: %w", err)
	}
	defer watcher.Close()

	files := map[string]struct{}{}
	dirs := map[string]struct{}{}
	track := func(list []string) {
		for _, f := range list {
			f = filepath.Clean(f)
			files[f] = struct{}{}
			dir := filepath.Dir(f)
			if _, ok := dirs[dir]; ok {
				continue
			}
			// Editors replace files by rename, so watch the directory.
			if err := watcher.Add(dir); err != nil {
				logger.Warn("cannot watch config directory", "dir", dir, "error", err)
				continue
			}
			dirs[dir] = struct{}{}
		}
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	track([]string{abs})
	if res, err := LoadFromPath(abs); err == nil {
		track(res.Files)
	}

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if _, ok := files[filepath.Clean(ev.Name)]; !ok {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(delay)
			} else {
				timer.Reset(delay)
			}
			fire = timer.C

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("config watcher error", "error", err)

		case <-fire:
			fire = nil
			res, err := LoadFromPath(abs)
			if err != nil {
				logger.Warn("config reload rejected", "path", abs, "error", err)
				continue
			}
			track(res.Files)
			onReload(res)
		}
	}
}
