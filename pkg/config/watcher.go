package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const debounceWindow = 200 * time.Millisecond

// Watch reloads the config whenever the file changes and hands each
// valid new config to onChange. Invalid reloads are logged and
// ignored. Watch blocks until ctx is done.
func Watch(ctx context.Context, path string, log *zap.Logger, onChange func(*Config)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config watcher: %w", err)
	}
	defer w.Close()

	// Watch the directory rather than the file: editors and config
	// management tools replace the file on save, which would drop a
	// watch registered on the path itself.
	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	debounce := time.NewTimer(debounceWindow)
	if !debounce.Stop() {
		<-debounce.C
	}
	pending := false

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(path) {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			// Saves arrive as bursts of events; collapse each burst
			// into one reload.
			debounce.Reset(debounceWindow)
			pending = true
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("config watcher error", zap.Error(err))
		case <-debounce.C:
			if !pending {
				continue
			}
			pending = false
			cfg, err := Load(path)
			if err != nil {
				log.Warn("config reload ignored", zap.Error(err))
				continue
			}
			log.Info("config reloaded", zap.String("path", path))
			onChange(cfg)
		}
	}
}
