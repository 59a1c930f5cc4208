// Package queue implements the pure reconciliation core of the mutation
// queue: the item model, per-type strategy registry, and the merge rules
// that fold a newly intended mutation into the set of already queued ones.
//
// Nothing in this package performs I/O. All operations take a queue slice
// and return a new one, leaving the input untouched, so the syncer can own
// concurrency and persistence without this package knowing about either.
//
// Treat this package as the single source of truth for reconciliation
// semantics; when you add a strategy, extend the Strategy enum and the
// Reconciler.Add switch together.
package queue
