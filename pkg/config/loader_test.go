package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestFileLoaderYAML(t *testing.T) {
	path := writeConfigFile(t, "config.yaml", `
api:
  base_url: "http://localhost:8000/api/v1"
  timeout: "10s"
storage:
  type: "memory"
guard:
  login_path: "/signin"
logging:
  level: "debug"
`)

	cfg, err := NewFileLoader(path).Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000/api/v1", cfg.API.BaseURL)
	assert.Equal(t, "/token", cfg.API.TokenPath, "defaults fill unset fields")
	assert.Equal(t, "/users/me", cfg.API.UserPath)
	assert.Equal(t, "memory", cfg.Storage.Type)
	assert.Equal(t, "edulane", cfg.Storage.Namespace)
	assert.Equal(t, "/signin", cfg.Guard.LoginPath)
	assert.Equal(t, "/unauthorized", cfg.Guard.UnauthorizedPath)
	assert.Equal(t, "debug", cfg.Logging.Level)

	timeout, err := cfg.API.GetTimeout()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, timeout)
}

func TestFileLoaderJSON(t *testing.T) {
	path := writeConfigFile(t, "config.json", `{
  "api": {"base_url": "http://localhost:8000/api/v1"},
  "storage": {"type": "leveldb"}
}`)

	cfg, err := NewFileLoader(path).Load()
	require.NoError(t, err)
	assert.Equal(t, "leveldb", cfg.Storage.Type)
}

func TestFileLoaderErrors(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(t *testing.T) string
		errContains string
		errIs       error
	}{
		{
			name:  "missing file",
			setup: func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.yaml") },
			errIs: ErrConfigFileNotFound,
		},
		{
			name: "unsupported extension",
			setup: func(t *testing.T) string {
				return writeConfigFile(t, "config.toml", "api:\n  base_url: x\n")
			},
			errContains: "unsupported config file format",
		},
		{
			name: "invalid yaml",
			setup: func(t *testing.T) string {
				return writeConfigFile(t, "config.yaml", "api: [unclosed")
			},
			errContains: "failed to parse YAML",
		},
		{
			name: "missing base url",
			setup: func(t *testing.T) string {
				return writeConfigFile(t, "config.yaml", "logging:\n  level: info\n")
			},
			errIs: ErrAPIBaseURLRequired,
		},
		{
			name: "bad timeout",
			setup: func(t *testing.T) string {
				return writeConfigFile(t, "config.yaml", "api:\n  base_url: \"http://x\"\n  timeout: \"soon\"\n")
			},
			errIs: ErrInvalidTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFileLoader(tt.setup(t)).Load()
			require.Error(t, err)
			if tt.errIs != nil {
				assert.ErrorIs(t, err, tt.errIs)
			}
			if tt.errContains != "" {
				assert.Contains(t, err.Error(), tt.errContains)
			}
		})
	}
}

func TestGetTimeoutDefault(t *testing.T) {
	timeout, err := APIConfig{}.GetTimeout()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, timeout)
}
