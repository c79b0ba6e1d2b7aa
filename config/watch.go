package config

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads the config file on change and hands the validated result to
// a callback. A cooldown suppresses the event bursts editors produce on save.
type Watcher struct {
	path     string
	cooldown time.Duration
	watcher  *fsnotify.Watcher

	mu         sync.Mutex
	lastReload time.Time
}

// NewWatcher creates a Watcher for the given config path. cooldown <= 0
// defaults to 2s.
func NewWatcher(path string, cooldown time.Duration) (*Watcher, error) {
	if cooldown <= 0 {
		cooldown = 2 * time.Second
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: create watcher: %w", err)
	}
	if err := fw.Add(path); err != nil {
		fw.Close()
		return nil, fmt.Errorf("config: watch %s: %w", path, err)
	}
	return &Watcher{path: path, cooldown: cooldown, watcher: fw}, nil
}

// Start blocks until ctx is done, invoking onUpdate with each successfully
// reloaded config. Reload failures are reported through onError (which may be
// nil) and watching continues.
func (w *Watcher) Start(ctx context.Context, onUpdate func(AppConfig), onError func(error)) error {
	defer w.watcher.Close()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if !w.shouldReload() {
				continue
			}
			cfg, err := LoadWithEnvOverrides(w.path)
			if err != nil {
				if onError != nil {
					onError(err)
				}
				continue
			}
			if onUpdate != nil {
				onUpdate(cfg)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			if onError != nil {
				onError(err)
			}
		}
	}
}

func (w *Watcher) shouldReload() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if time.Since(w.lastReload) < w.cooldown {
		return false
	}
	w.lastReload = time.Now()
	return true
}
