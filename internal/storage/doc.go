// Package storage persists mutation queue snapshots and exposes the Adapter
// contract the sync engine depends on.
//
// Two production adapters are provided: SQLiteStore for durable local state
// and FileStore for a flock-guarded JSON snapshot. MemoryStore backs tests.
// The engine treats the snapshot as the whole truth: Save always writes the
// complete queue, and Load returns an empty slice when no data exists.
package storage
