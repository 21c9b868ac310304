package config

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceDelay coalesces the burst of filesystem events an editor
// emits for a single save into one reload.
const debounceDelay = 500 * time.Millisecond

// Watcher applies configuration changes while the service runs. Reload
// callbacks may apply ambient settings only; the server, storage and
// engine sections are fixed at startup by contract, and callbacks must
// not touch them.
type Watcher struct {
	path     string
	onReload func(*Config, error)

	mu      sync.RWMutex
	current *Config
	applied atomic.Uint32
}

// NewWatcher loads the file once and begins watching it for changes.
// A path that cannot be watched (typically because no config file
// exists and the defaults are in effect) disables live reload rather
// than failing.
func NewWatcher(path string, onReload func(*Config, error)) (*Watcher, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load initial config: %w", err)
	}
	w := &Watcher{
		path:     path,
		onReload: onReload,
		current:  cfg,
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fw.Add(path); err != nil {
		slog.Warn("Config file not watchable, live reload disabled", "path", path, "error", err)
		fw.Close()
		return w, nil
	}
	go w.watch(fw)

	return w, nil
}

// watch owns the fsnotify loop. A write (or an editor's
// replace-on-save) arms the debounce timer; the reload happens when the
// timer fires with no further events in between.
func (w *Watcher) watch(fw *fsnotify.Watcher) {
	defer fw.Close()

	debounce := time.NewTimer(debounceDelay)
	debounce.Stop()

	for {
		select {
		case <-debounce.C:
			w.reload()

		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				debounce.Reset(debounceDelay)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			slog.Warn("Config watch error", "error", err)
		}
	}
}

// reload re-validates the file and swaps the snapshot. An invalid file
// keeps the previous snapshot in effect.
func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		slog.Warn("Config file changed but is invalid, keeping previous settings",
			"path", w.path, "error", err)
		w.onReload(nil, err)
		return
	}

	w.mu.Lock()
	w.current = cfg
	w.mu.Unlock()

	slog.Info("Config file reloaded", "path", w.path, "reload", w.applied.Add(1))
	w.onReload(cfg, nil)
}

// Snapshot returns the most recently applied configuration.
func (w *Watcher) Snapshot() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return w.current
}

// ReloadCount reports how many config changes have been applied.
func (w *Watcher) ReloadCount() uint32 {
	return w.applied.Load()
}
