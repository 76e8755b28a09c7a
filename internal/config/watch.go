package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"zurie/internal/logging"
)

// reloadDelay coalesces the burst of events editors produce for one save.
const reloadDelay = 100 * time.Millisecond

// Watch reloads path whenever it is written or replaced and passes each
// valid result to onChange. Invalid edits are logged and ignored. The
// watcher is running when Watch returns and stops when ctx is done.
// onChange is called from the watcher goroutine.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config watcher creation failed: %w", err)
	}
	// Watch the directory: editors often replace the file instead of
	// writing it in place.
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return fmt.Errorf("watching %s failed: %w", filepath.Dir(abs), err)
	}

	go func() {
		defer watcher.Close()

		timer := time.NewTimer(reloadDelay)
		timer.Stop()
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != abs {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
					timer.Reset(reloadDelay)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logging.Logger().Warn("config watcher error", "error", err)
			case <-timer.C:
				cfg, err := Load(abs)
				if err != nil {
					logging.Logger().Warn("config reload rejected", "path", abs, "error", err)
					continue
				}
				logging.Logger().Info("config reloaded", "path", abs)
				onChange(cfg)
			}
		}
	}()
	return nil
}
