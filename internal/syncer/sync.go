package syncer

import (
	"context"
	"fmt"

	"tether/internal/logging"
	"tether/internal/network"
	"tether/internal/queue"
)

// Sync runs one bounded sync cycle against the pending snapshot.
//
// It returns immediately with no results and no side effects when offline,
// when nothing is pending, or when another cycle is already in flight (the
// concurrent caller is rejected, never queued). Items added mid-cycle are
// excluded from the running cycle. The snapshot is processed sequentially
// in queue order, and once started the cycle runs to completion; ctx is
// passed through to executors and storage but does not abort the loop.
//
// Executor failures never escape Sync — they surface only through results
// and callbacks. Only the post-cycle snapshot save error propagates.
func (e *Engine) Sync(ctx context.Context, status network.Status) ([]queue.SyncResult, error) {
	if !status.Connected {
		return nil, nil
	}

	e.mu.Lock()
	if e.syncing {
		e.mu.Unlock()
		return nil, nil
	}
	snapshot := e.reconciler.Pending(e.items)
	if len(snapshot) == 0 {
		e.mu.Unlock()
		return nil, nil
	}
	e.syncing = true
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.syncing = false
		e.mu.Unlock()
	}()

	if e.onSyncStart != nil {
		e.onSyncStart()
	}
	e.logger.Info("sync cycle started", logging.Int("pending", len(snapshot)))

	results := make([]queue.SyncResult, 0, len(snapshot))
	for _, item := range snapshot {
		result, processed := e.processItem(ctx, item)
		results = append(results, result)
		if e.onItemProcessed != nil {
			e.onItemProcessed(processed, result)
		}
	}

	e.mu.Lock()
	remaining := e.snapshotLocked()
	saveErr := e.store.Save(ctx, remaining)
	e.mu.Unlock()
	if saveErr != nil {
		return results, fmt.Errorf("persist queue: %w", saveErr)
	}

	e.fireQueueChange(remaining)
	if e.onSyncComplete != nil {
		e.onSyncComplete(results)
	}
	e.logger.Info("sync cycle finished",
		logging.Int("processed", len(results)),
		logging.Int("remaining", len(remaining)),
	)
	return results, nil
}

// processItem executes one snapshot item and applies the classification
// outcome to the live queue. It returns the per-item result alongside the
// item as it should appear to the OnItemProcessed callback.
func (e *Engine) processItem(ctx context.Context, item queue.Item) (queue.SyncResult, queue.Item) {
	e.mu.Lock()
	e.items = e.reconciler.UpdateStatus(item.ID, queue.StatusSyncing, e.items)
	e.mu.Unlock()
	item.Status = queue.StatusSyncing

	var execErr error
	executor, ok := e.executors[item.Type]
	if !ok {
		// Routed through the generic error path without a network call.
		// Deliberately retried like any transient failure until eviction.
		execErr = fmt.Errorf("no executor for mutation type %q", item.Type)
	} else {
		execErr = executor(ctx, item)
	}

	switch {
	case execErr == nil:
		e.dropFromQueue(item.ID)
		item.Status = queue.StatusSuccess
		e.logger.Info("mutation applied",
			logging.String("item", item.ID),
			logging.String("type", item.Type),
			logging.String("entity", item.EntityID),
		)
		return queue.SyncResult{ItemID: item.ID, Status: queue.StatusSuccess}, item

	case isConflict(execErr):
		// Conflicts are terminal: the remote state has diverged past the
		// point this intent can apply. Never retried.
		e.dropFromQueue(item.ID)
		item.Status = queue.StatusConflict
		reason := conflictReason(execErr)
		e.logger.Warn("mutation conflicted",
			logging.String("item", item.ID),
			logging.String("type", item.Type),
			logging.String("reason", reason),
		)
		return queue.SyncResult{
			ItemID:         item.ID,
			Status:         queue.StatusConflict,
			ConflictReason: reason,
			Err:            execErr,
		}, item

	default:
		retries := e.recordFailure(item.ID)
		item.RetryCount = retries
		if retries >= e.maxRetries {
			item.Status = queue.StatusError
			e.logger.Warn("mutation evicted after retries",
				logging.String("item", item.ID),
				logging.Int("retries", retries),
				logging.Error(execErr),
			)
		} else {
			item.Status = queue.StatusPending
			e.logger.Warn("mutation failed; will retry on a future cycle",
				logging.String("item", item.ID),
				logging.Int("retries", retries),
				logging.Error(execErr),
			)
		}
		return queue.SyncResult{ItemID: item.ID, Status: queue.StatusError, Err: execErr}, item
	}
}

// recordFailure increments the live item's retry counter and either evicts
// it (silently, still reported via the result) or resets it to pending for
// a future cycle. Returns the new retry count.
func (e *Engine) recordFailure(id string) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := -1
	for i := range e.items {
		if e.items[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		// Removed mid-cycle by a caller; nothing left to update.
		return e.maxRetries
	}

	next := e.snapshotLocked()
	next[idx].RetryCount++
	retries := next[idx].RetryCount
	if retries >= e.maxRetries {
		next = append(next[:idx], next[idx+1:]...)
	} else {
		next[idx].Status = queue.StatusPending
	}
	e.items = next
	return retries
}

func (e *Engine) dropFromQueue(id string) {
	e.mu.Lock()
	e.items = e.reconciler.Remove(id, e.items)
	e.mu.Unlock()
}
