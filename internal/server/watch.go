package server

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/HendryAvila/agentrc/internal/config"
	"github.com/HendryAvila/agentrc/internal/dispatch"
	"github.com/HendryAvila/agentrc/internal/logging"
)

// DefaultDebounce is how long Watch waits for further writes before
// reloading.
const DefaultDebounce = 300 * time.Millisecond

// Watch feeds file.changed events for the project-root .agentrc into d
// until ctx is done. It watches the directory rather than the file so
// that editors which replace the file on save are still seen.
func Watch(ctx context.Context, d *dispatch.Dispatcher, debounce time.Duration) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	root := d.Handle().Root()
	if err := w.Add(root); err != nil {
		_ = w.Close()
		return err
	}
	logging.Info("Watcher", "Watching %s for %s changes", root, config.FileName)

	go func() {
		defer func() { _ = w.Close() }()

		var (
			timer   *time.Timer
			timerC  <-chan time.Time
			changed string
		)
		for {
			select {
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return

			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Base(ev.Name) != config.FileName || ev.Op == fsnotify.Chmod {
					continue
				}
				changed = ev.Name
				if timer == nil {
					timer = time.NewTimer(debounce)
				} else {
					timer.Reset(debounce)
				}
				timerC = timer.C

			case <-timerC:
				timerC = nil
				logging.Debug("Watcher", "%s changed", changed)
				d.Event(ctx, dispatch.Event{
					Type: dispatch.EventFileChanged,
					Data: map[string]any{"file": changed},
				})

			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logging.Error("Watcher", err, "Filesystem watcher error")
			}
		}
	}()
	return nil
}
