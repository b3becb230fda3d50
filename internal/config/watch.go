package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

const reloadDebounce = 100 * time.Millisecond

// Watch reloads path whenever it is written or replaced and passes the new
// config to onChange. Invalid files are logged and skipped, keeping the
// previous config in effect. The parent directory is watched because editors
// often replace the file instead of writing it. Watch returns once the
// watcher is running; it stops when ctx is done.
func Watch(ctx context.Context, path string, onChange func(*AppConfig)) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	target := filepath.Clean(path)
	if err := fsw.Add(filepath.Dir(target)); err != nil {
		fsw.Close()
		return err
	}

	go func() {
		defer fsw.Close()
		var timer *time.Timer
		reload := func() {
			cfg, err := Load(target)
			if err != nil {
				log.Warn().Err(err).Str("path", target).Msg("Config reload failed, keeping previous config")
				return
			}
			log.Info().Str("path", target).Msg("Config reloaded")
			onChange(cfg)
		}
		for {
			select {
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return
			case event, ok := <-fsw.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(reloadDebounce, reload)
			case err, ok := <-fsw.Errors:
				if !ok {
					return
				}
				log.Error().Err(err).Msg("Config watcher error")
			}
		}
	}()
	return nil
}
