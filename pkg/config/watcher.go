package config

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/edulane/edulane-go/pkg/logging"
)

// Watcher reloads the configuration file when it changes on disk, for
// long-running hosts. Rapid event bursts (editors write files in
// several steps) are debounced, and reloads that produce an identical
// configuration are suppressed.
type Watcher struct {
	loader     Loader
	configPath string
	lastHash   string
	onChange   func(*Config)
	logger     logging.Logger
}

// NewWatcher creates a watcher for the given config file. onChange is
// called with each successfully loaded, changed configuration.
func NewWatcher(path string, initial *Config, onChange func(*Config), logger logging.Logger) (*Watcher, error) {
	if path == "" {
		return nil, fmt.Errorf("config: watch path is required")
	}
	if onChange == nil {
		return nil, fmt.Errorf("config: onChange callback is required")
	}
	if logger == nil {
		logger = logging.NewSimpleLogger("config", logging.LevelInfo, false)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to resolve watch path: %w", err)
	}

	hash := ""
	if initial != nil {
		if hash, err = configHash(initial); err != nil {
			return nil, fmt.Errorf("config: failed to hash initial config: %w", err)
		}
	}

	return &Watcher{
		loader:     NewFileLoader(absPath),
		configPath: absPath,
		lastHash:   hash,
		onChange:   onChange,
		logger:     logger.WithModule("config"),
	}, nil
}

// Watch blocks until the context is cancelled, reloading the file on
// change. Run it in a goroutine.
func (w *Watcher) Watch(ctx context.Context) error {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: failed to create fsnotify watcher: %w", err)
	}
	defer fsWatcher.Close()

	if err := fsWatcher.Add(w.configPath); err != nil {
		return fmt.Errorf("config: failed to watch %s: %w", w.configPath, err)
	}

	w.logger.Info("watching configuration file", "path", w.configPath)

	const debounce = 100 * time.Millisecond
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()

		case event, ok := <-fsWatcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
				timerC = timer.C
			} else {
				timer.Reset(debounce)
			}

		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)

		case <-timerC:
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := w.loader.Load()
	if err != nil {
		// Keep serving the previous config; a broken edit must not
		// take the host down.
		w.logger.Error("reload failed, keeping previous configuration", "error", err)
		return
	}

	hash, err := configHash(cfg)
	if err != nil {
		w.logger.Error("failed to hash reloaded configuration", "error", err)
		return
	}
	if hash == w.lastHash {
		w.logger.Debug("configuration unchanged, skipping reload")
		return
	}

	w.lastHash = hash
	w.logger.Info("configuration reloaded")
	w.onChange(cfg)
}

func configHash(cfg *Config) (string, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", sha256.Sum256(data)), nil
}
