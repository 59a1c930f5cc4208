package main

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"tether/internal/config"
	"tether/internal/logging"
	"tether/internal/storage"
	"tether/internal/syncer"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// openStorage builds the configured snapshot adapter. The SQLite handle
// must be closed by the caller; the returned func is a no-op for the file
// backend.
func (c *commandContext) openStorage() (storage.Adapter, func(), error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	switch cfg.Storage.Backend {
	case config.BackendFile:
		store, err := storage.NewFileStore(cfg.SnapshotPath())
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	default:
		store, err := storage.OpenSQLite(cfg.SnapshotPath())
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	}
}

// withEngine runs fn against an initialized engine backed by the configured
// storage. Executors are attached only when withExecutors is set, so
// queue-only commands work without a configured remote.
func (c *commandContext) withEngine(ctx context.Context, withExecutors bool, fn func(cfg *config.Config, engine *syncer.Engine) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}

	store, closeStore, err := c.openStorage()
	if err != nil {
		return err
	}
	defer closeStore()

	registry, err := cfg.Registry()
	if err != nil {
		return fmt.Errorf("build mutation registry: %w", err)
	}

	opts := syncer.Options{
		Storage:    store,
		Registry:   registry,
		MaxRetries: cfg.Sync.MaxRetries,
		Logger:     logging.NewNop(),
	}
	if withExecutors {
		executors, err := buildExecutors(cfg)
		if err != nil {
			return err
		}
		opts.Executors = executors
	}

	engine, err := syncer.New(opts)
	if err != nil {
		return err
	}
	if err := engine.Initialize(ctx); err != nil {
		return err
	}
	return fn(cfg, engine)
}
