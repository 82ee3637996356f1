package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/edulane/edulane-go/pkg/apiclient"
	"github.com/edulane/edulane-go/pkg/config"
	"github.com/edulane/edulane-go/pkg/kvs"
	"github.com/edulane/edulane-go/pkg/logging"
	"github.com/edulane/edulane-go/pkg/session"
)

const defaultBaseURL = "http://localhost:8000/api/v1"

// app wires the session layer together for one CLI invocation: config,
// logger, persistence, session store, rehydrator, and API client.
type app struct {
	cfg        *config.Config
	logger     logging.Logger
	kv         kvs.Store
	slot       *session.Slot
	store      *session.Store
	rehydrator *session.Rehydrator
	client     *apiclient.Client
}

// newApp builds the layer and runs rehydration, so every command
// starts from whatever session the previous invocation left behind.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	level := logging.ParseLevel(cfg.Logging.Level)
	var rotation *logging.FileRotationConfig
	if cfg.Logging.File != nil && cfg.Logging.File.Path != "" {
		rotation = &logging.FileRotationConfig{
			Path:       cfg.Logging.File.Path,
			MaxSizeMB:  cfg.Logging.File.MaxSizeMB,
			MaxBackups: cfg.Logging.File.MaxBackups,
			MaxAge:     cfg.Logging.File.MaxAge,
			Compress:   cfg.Logging.File.Compress,
		}
	}
	logger, err := logging.NewLoggerWithFile("edulane", level, cfg.Logging.Color, rotation)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}

	// A failed backend leaves the slot without persistence: the
	// session still works, it just won't survive this process.
	var kv kvs.Store
	kv, err = kvs.New(cfg.Storage)
	if err != nil {
		logger.Warn("persistent storage unavailable, session will not survive restarts", "error", err)
		kv = nil
	}

	slot := session.NewSlot(kv)
	store := session.NewStore(slot, logger.WithModule("session"))
	rehydrator := session.NewRehydrator(store, slot, logger.WithModule("rehydrate"))

	timeout, err := cfg.API.GetTimeout()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	client, err := apiclient.New(apiclient.Config{
		BaseURL:   cfg.API.BaseURL,
		TokenPath: cfg.API.TokenPath,
		UserPath:  cfg.API.UserPath,
		Timeout:   timeout,
	}, store, logger.WithModule("apiclient"))
	if err != nil {
		return nil, err
	}

	rehydrator.Run(ctx)

	return &app{
		cfg:        cfg,
		logger:     logger,
		kv:         kv,
		slot:       slot,
		store:      store,
		rehydrator: rehydrator,
		client:     client,
	}, nil
}

func (a *app) close() {
	if a.kv != nil {
		_ = a.kv.Close()
	}
}

// loadConfig reads the configured file, or falls back to defaults when
// no file was requested and none exists at the default location.
func loadConfig() (*config.Config, error) {
	path := cfgFile
	explicit := path != ""
	if !explicit {
		path = "edulane.yaml"
	}

	cfg, err := config.NewFileLoader(path).Load()
	if err != nil {
		if !explicit && errors.Is(err, config.ErrConfigFileNotFound) {
			cfg = &config.Config{}
			cfg.API.BaseURL = defaultBaseURL
			config.ApplyDefaults(cfg)
		} else {
			return nil, err
		}
	}

	if apiURL != "" {
		cfg.API.BaseURL = apiURL
	}
	return cfg, nil
}
