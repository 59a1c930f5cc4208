// Package syncer orchestrates the offline mutation queue: it owns the
// in-memory queue, drives reconciliation on every add, persists snapshots
// through a storage adapter, and replays pending mutations against
// caller-supplied executors when a sync cycle runs.
//
// The engine schedules nothing itself. An external component (cmd/tetherd,
// or any timer/connectivity listener) must call Sync periodically or on
// reconnect; concurrent Sync calls are rejected by an in-flight flag rather
// than queued.
package syncer
