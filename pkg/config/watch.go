package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch blocks watching config.toml for writes and invokes onChange with the
// freshly loaded Config after each one. Vendor credentials can be rotated
// without restarting the server this way.
//
// Watch returns when ctx is cancelled or the watcher fails. A Configer with
// no resolved target path returns immediately.
func (c *Configer) Watch(ctx context.Context, onChange func(*Config)) error {
	if c.targetPath == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating config watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory, not the file: editors often replace the file,
	// which drops a direct file watch.
	if err := watcher.Add(filepath.Dir(c.targetPath)); err != nil {
		return fmt.Errorf("watching config dir: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event := <-watcher.Events:
			if filepath.Clean(event.Name) != filepath.Clean(c.targetPath) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			cfg, err := c.LoadConfig()
			if err != nil {
				// A half-written file parses next time around.
				continue
			}
			onChange(cfg)

		case err := <-watcher.Errors:
			return fmt.Errorf("config watcher error: %w", err)
		}
	}
}
