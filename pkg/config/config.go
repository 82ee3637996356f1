// Package config loads and validates the client configuration.
package config

import (
	"net/url"
	"time"

	"github.com/edulane/edulane-go/pkg/kvs"
)

// Config represents the client configuration
type Config struct {
	API     APIConfig     `yaml:"api" json:"api"`
	Storage kvs.Config    `yaml:"storage" json:"storage"`
	Guard   GuardConfig   `yaml:"guard" json:"guard"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// APIConfig contains the platform API endpoints
type APIConfig struct {
	// BaseURL is the API root including any version prefix
	// (e.g. "http://localhost:8000/api/v1"). Required.
	BaseURL string `yaml:"base_url" json:"base_url"`

	// TokenPath is the token-issuing endpoint (default: "/token")
	TokenPath string `yaml:"token_path" json:"token_path"`

	// UserPath is the current-user endpoint (default: "/users/me")
	UserPath string `yaml:"user_path" json:"user_path"`

	// Timeout bounds each request, as a duration string (default: "30s")
	Timeout string `yaml:"timeout" json:"timeout"`
}

// GetTimeout returns the request timeout as a time.Duration
func (a APIConfig) GetTimeout() (time.Duration, error) {
	if a.Timeout == "" {
		return 30 * time.Second, nil
	}
	return time.ParseDuration(a.Timeout)
}

// GuardConfig contains the route guard's redirect targets
type GuardConfig struct {
	// LoginPath is where unauthenticated users are sent (default: "/login")
	LoginPath string `yaml:"login_path" json:"login_path"`

	// UnauthorizedPath is where users lacking a required role are sent
	// (default: "/unauthorized")
	UnauthorizedPath string `yaml:"unauthorized_path" json:"unauthorized_path"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	// Level is the minimum level to emit: debug, info, warn, error, fatal
	Level string `yaml:"level" json:"level"`

	// Color enables colored console output (TTY only)
	Color bool `yaml:"color" json:"color"`

	// File enables additional rotated file output
	File *FileLoggingConfig `yaml:"file" json:"file"`
}

// FileLoggingConfig contains log file rotation settings
type FileLoggingConfig struct {
	Path       string `yaml:"path" json:"path"`
	MaxSizeMB  int    `yaml:"max_size_mb" json:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" json:"max_backups"`
	MaxAge     int    `yaml:"max_age" json:"max_age"`
	Compress   bool   `yaml:"compress" json:"compress"`
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return ErrAPIBaseURLRequired
	}
	if _, err := url.Parse(c.API.BaseURL); err != nil {
		return ErrInvalidAPIBaseURL
	}
	if _, err := c.API.GetTimeout(); err != nil {
		return ErrInvalidTimeout
	}
	return nil
}
