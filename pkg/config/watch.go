package config

import (
	"context"
	"fmt"
	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml"
	"go.uber.org/zap"
	"path/filepath"
	"time"
)

const reloadDelay = 100 * time.Millisecond

type Apps struct {
	AlwaysMain        []string
	AlwaysAlternative []string
}

func ReadApps(tree *toml.Tree) Apps {
	var apps Apps
	if s, ok := tree.Get("Apps.AlwaysMain").(string); ok {
		apps.AlwaysMain = ParseAppList(s)
	}
	if s, ok := tree.Get("Apps.AlwaysAlternative").(string); ok {
		apps.AlwaysAlternative = ParseAppList(s)
	}
	return apps
}

// WatchApps calls onChange with the [Apps] section whenever the config file is
// written. Other sections only take effect after a restart. Editors that replace
// the file are handled by watching the directory.
func WatchApps(ctx context.Context, path string, log *zap.SugaredLogger, onChange func(Apps)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch directory: %w", err)
	}

	reload := make(chan struct{}, 1)
	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != filepath.Base(path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(reloadDelay, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})

		case <-reload:
			tree, err := toml.LoadFile(path)
			if err != nil {
				log.Warnw("config reload failed, keeping app lists", "path", path, "error", err)
				continue
			}

			apps := ReadApps(tree)
			log.Infow("reloaded app lists", "always_main", apps.AlwaysMain, "always_alternative", apps.AlwaysAlternative)
			onChange(apps)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warnw("config watcher error", "error", err)
		}
	}
}
