package testsupport

import (
	"testing"
	"time"

	"tether/internal/config"
	"tether/internal/queue"
	"tether/internal/storage"
	"tether/internal/syncer"
)

// MustOpenSQLite opens a SQLiteStore for tests and registers cleanup.
func MustOpenSQLite(t testing.TB, cfg *config.Config) *storage.SQLiteStore {
	t.Helper()

	store, err := storage.OpenSQLite(cfg.SnapshotPath())
	if err != nil {
		t.Fatalf("storage.OpenSQLite: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// MustRegistry builds the reconciliation registry from the test config.
func MustRegistry(t testing.TB, cfg *config.Config) *queue.Registry {
	t.Helper()

	registry, err := cfg.Registry()
	if err != nil {
		t.Fatalf("cfg.Registry: %v", err)
	}
	return registry
}

// NewEngine constructs a memory-backed engine for tests.
func NewEngine(t testing.TB, cfg *config.Config, opts syncer.Options) *syncer.Engine {
	t.Helper()

	if opts.Storage == nil {
		opts.Storage = storage.NewMemoryStore()
	}
	if opts.Registry == nil {
		opts.Registry = MustRegistry(t, cfg)
	}
	engine, err := syncer.New(opts)
	if err != nil {
		t.Fatalf("syncer.New: %v", err)
	}
	return engine
}

// PendingItem builds a fully-formed pending item the way callers are
// expected to: fresh id, pending status, zero retries.
func PendingItem(mutationType, entityID string, payload []byte) queue.Item {
	return queue.Item{
		ID:        queue.NewItemID(),
		Type:      mutationType,
		EntityID:  entityID,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
		Status:    queue.StatusPending,
	}
}
