package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edulane/edulane-go/pkg/logging"
)

const watcherInitialConfig = `
api:
  base_url: "http://localhost:8000/api/v1"
storage:
  type: "memory"
logging:
  level: "info"
`

func TestNewWatcherValidation(t *testing.T) {
	_, err := NewWatcher("", nil, func(*Config) {}, logging.NewTestLogger())
	assert.Error(t, err, "path is required")

	_, err = NewWatcher("config.yaml", nil, nil, logging.NewTestLogger())
	assert.Error(t, err, "callback is required")
}

func TestWatcherReloadsOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(watcherInitialConfig), 0644))

	initial, err := NewFileLoader(path).Load()
	require.NoError(t, err)

	reloaded := make(chan *Config, 1)
	watcher, err := NewWatcher(path, initial, func(cfg *Config) {
		select {
		case reloaded <- cfg:
		default:
		}
	}, logging.NewTestLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = watcher.Watch(ctx) }()

	// Give the watcher a moment to register before writing.
	time.Sleep(100 * time.Millisecond)

	updated := `
api:
  base_url: "http://localhost:9000/api/v1"
storage:
  type: "memory"
logging:
  level: "debug"
`
	require.NoError(t, os.WriteFile(path, []byte(updated), 0644))

	select {
	case cfg := <-reloaded:
		assert.Equal(t, "http://localhost:9000/api/v1", cfg.API.BaseURL)
		assert.Equal(t, "debug", cfg.Logging.Level)
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not report the change in time")
	}
}

func TestWatcherKeepsPreviousConfigOnBrokenEdit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(watcherInitialConfig), 0644))

	initial, err := NewFileLoader(path).Load()
	require.NoError(t, err)

	reloaded := make(chan *Config, 1)
	watcher, err := NewWatcher(path, initial, func(cfg *Config) {
		select {
		case reloaded <- cfg:
		default:
		}
	}, logging.NewTestLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = watcher.Watch(ctx) }()

	time.Sleep(100 * time.Millisecond)

	// A broken edit must not produce a callback.
	require.NoError(t, os.WriteFile(path, []byte("api: [unclosed"), 0644))

	select {
	case cfg := <-reloaded:
		t.Fatalf("broken config should not reload, got %+v", cfg)
	case <-time.After(500 * time.Millisecond):
	}
}
