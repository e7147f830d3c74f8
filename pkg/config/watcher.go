package config

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads config.toml each time it is written or replaced and passes
// the result to onChange. Parse failures are passed to onError and the
// previous configuration stays in effect. Watch blocks until ctx is done.
//
// The parent directory is watched rather than the file so that editors
// which save by rename are still observed.
func (c *Configer) Watch(ctx context.Context, onChange func(*Config), onError func(error)) error {
	if c.targetPath == "" {
		return errors.New("cannot watch empty target path")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating config watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(c.targetPath)); err != nil {
		return fmt.Errorf("watching config dir: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != configFile {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			cfg, err := c.LoadConfig()
			if err != nil {
				onError(err)
				continue
			}
			onChange(cfg)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			onError(fmt.Errorf("config watcher error: %w", err))
		}
	}
}
