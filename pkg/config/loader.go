package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Loader is an interface for loading configuration
type Loader interface {
	Load() (*Config, error)
}

// FileLoader loads configuration from a YAML or JSON file
type FileLoader struct {
	path string
}

// NewFileLoader creates a new FileLoader
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{path: path}
}

// Load reads and parses the configuration file. YAML (.yaml, .yml) and
// JSON (.json) are supported; the format is detected from the extension.
func (l *FileLoader) Load() (*Config, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigFileNotFound, l.path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	ext := strings.ToLower(filepath.Ext(l.path))

	switch ext {
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config file: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s (supported: .yaml, .yml, .json)", ext)
	}

	ApplyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// ApplyDefaults sets default values for optional fields
func ApplyDefaults(cfg *Config) {
	if cfg.API.TokenPath == "" {
		cfg.API.TokenPath = "/token"
	}
	if cfg.API.UserPath == "" {
		cfg.API.UserPath = "/users/me"
	}
	if cfg.API.Timeout == "" {
		cfg.API.Timeout = "30s"
	}

	if cfg.Storage.Type == "" {
		cfg.Storage.Type = "leveldb"
	}
	if cfg.Storage.Namespace == "" {
		cfg.Storage.Namespace = "edulane"
	}

	if cfg.Guard.LoginPath == "" {
		cfg.Guard.LoginPath = "/login"
	}
	if cfg.Guard.UnauthorizedPath == "" {
		cfg.Guard.UnauthorizedPath = "/unauthorized"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}
