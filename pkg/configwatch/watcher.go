// Package configwatch hot-reloads a permission.Config from disk and swaps
// it into a running Evaluator, grounded on the teacher's skill directory
// watcher.
package configwatch

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jg-phare/toolcore/pkg/permission"
)

// ConfigTarget receives a freshly-loaded config on every reload. Satisfied
// by *permission.Evaluator.
type ConfigTarget interface {
	SetConfig(config *permission.Config)
}

// Load reads and parses a permission.Config from path.
func Load(path string) (*permission.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("configwatch: reading %s: %w", path, err)
	}
	var cfg permission.Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("configwatch: parsing %s: %w", path, err)
	}
	return &cfg, nil
}

// Watcher watches a single config file and pushes reloaded config into a
// target whenever the file changes.
type Watcher struct {
	path     string
	target   ConfigTarget
	debounce time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
}

// New creates a Watcher for path. Call Start to begin watching.
func New(path string, target ConfigTarget) *Watcher {
	return &Watcher{
		path:     path,
		target:   target,
		debounce: 250 * time.Millisecond,
	}
}

// Start performs an initial load into the target, then begins watching
// the config file's directory for changes. Call Stop, or cancel ctx, to
// stop watching.
func (w *Watcher) Start(ctx context.Context) error {
	cfg, err := Load(w.path)
	if err != nil {
		return err
	}
	w.target.SetConfig(cfg)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("configwatch: watching %s: %w", dir, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	w.mu.Lock()
	w.cancel = cancel
	w.mu.Unlock()

	go w.run(ctx, watcher)
	return nil
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
}

func (w *Watcher) run(ctx context.Context, watcher *fsnotify.Watcher) {
	defer watcher.Close()

	var debounceTimer *time.Timer
	pendingReload := false

	for {
		select {
		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			pendingReload = true
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(w.debounce, func() {
				if pendingReload {
					w.reload()
					pendingReload = false
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Printf("configwatch: watch error: %v", err)
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		log.Printf("configwatch: reload failed, keeping previous config: %v", err)
		return
	}
	w.target.SetConfig(cfg)
	log.Printf("configwatch: reloaded %s", w.path)
}
