package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tether/internal/config"
	"tether/internal/logging"
	"tether/internal/network"
	"tether/internal/queue"
	"tether/internal/remote"
	"tether/internal/storage"
	"tether/internal/syncer"
)

// buildEngine wires storage, registry, and the HTTP executors into a sync
// engine. The returned func releases the storage handle.
func buildEngine(cfg *config.Config, logger *slog.Logger) (*syncer.Engine, func(), error) {
	var (
		store      storage.Adapter
		closeStore = func() {}
	)
	switch cfg.Storage.Backend {
	case config.BackendFile:
		fileStore, err := storage.NewFileStore(cfg.SnapshotPath())
		if err != nil {
			return nil, nil, fmt.Errorf("open file store: %w", err)
		}
		store = fileStore
	default:
		sqliteStore, err := storage.OpenSQLite(cfg.SnapshotPath())
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		store = sqliteStore
		closeStore = func() { _ = sqliteStore.Close() }
	}

	registry, err := cfg.Registry()
	if err != nil {
		closeStore()
		return nil, nil, fmt.Errorf("build mutation registry: %w", err)
	}

	client, err := remote.NewClient(cfg, logger)
	if err != nil {
		closeStore()
		return nil, nil, err
	}

	engine, err := syncer.New(syncer.Options{
		Storage:    store,
		Registry:   registry,
		Executors:  client.Executors(cfg),
		MaxRetries: cfg.Sync.MaxRetries,
		Logger:     logger,
		OnItemProcessed: func(item queue.Item, result queue.SyncResult) {
			logger.Debug("item processed",
				logging.String(logging.FieldItemID, item.ID),
				logging.String(logging.FieldMutation, item.Type),
				logging.String("result", string(result.Status)),
			)
		},
	})
	if err != nil {
		closeStore()
		return nil, nil, err
	}
	return engine, closeStore, nil
}

// runLoop drives the engine on a fixed cadence until ctx is cancelled. The
// engine never schedules itself; this loop is the external timer the sync
// contract requires.
func runLoop(ctx context.Context, logger *slog.Logger, engine *syncer.Engine, probe *network.Probe, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	wasOnline := false
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		status := probe.Check(ctx)
		if status.Connected != wasOnline {
			logger.Info("connectivity changed", logging.Bool("online", status.Connected))
			wasOnline = status.Connected
		}
		if !status.Connected {
			continue
		}

		results, err := engine.Sync(ctx, status)
		if err != nil {
			logger.Error("sync cycle failed to persist", logging.Error(err))
			continue
		}
		if len(results) > 0 {
			logger.Info("sync cycle complete",
				logging.Int("processed", len(results)),
				logging.Int("pending", engine.PendingCount()),
			)
		}
	}
}
