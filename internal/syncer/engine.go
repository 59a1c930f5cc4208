package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"tether/internal/logging"
	"tether/internal/queue"
	"tether/internal/storage"
)

// DefaultMaxRetries bounds how many failed cycles an item survives before
// silent eviction.
const DefaultMaxRetries = 3

// Options configures an Engine. Storage and Registry are required; the rest
// have working defaults.
type Options struct {
	Storage    storage.Adapter
	Registry   *queue.Registry
	Executors  ExecutorSet
	MaxRetries int
	Logger     *slog.Logger

	// Lifecycle callbacks, all optional and invoked synchronously. They run
	// outside the engine's internal lock, so they may safely call back into
	// read-only engine methods.
	OnQueueChange   func(items []queue.Item)
	OnSyncStart     func()
	OnSyncComplete  func(results []queue.SyncResult)
	OnItemProcessed func(item queue.Item, result queue.SyncResult)
}

// Engine owns the in-memory mutation queue and its persistence lifecycle.
// One engine instance is driven from one logical execution context; it
// provides no cross-process coordination beyond what its storage adapter
// guarantees.
type Engine struct {
	store      storage.Adapter
	reconciler *queue.Reconciler
	executors  ExecutorSet
	maxRetries int
	logger     *slog.Logger

	onQueueChange   func([]queue.Item)
	onSyncStart     func()
	onSyncComplete  func([]queue.SyncResult)
	onItemProcessed func(queue.Item, queue.SyncResult)

	mu      sync.Mutex
	items   []queue.Item
	syncing bool
}

// New constructs an Engine from options.
func New(opts Options) (*Engine, error) {
	if opts.Storage == nil {
		return nil, errors.New("syncer: storage adapter is required")
	}
	if opts.Registry == nil {
		return nil, errors.New("syncer: mutation registry is required")
	}
	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Engine{
		store:           opts.Storage,
		reconciler:      queue.NewReconciler(opts.Registry),
		executors:       opts.Executors,
		maxRetries:      maxRetries,
		logger:          logging.NewComponentLogger(logger, "syncer"),
		onQueueChange:   opts.OnQueueChange,
		onSyncStart:     opts.OnSyncStart,
		onSyncComplete:  opts.OnSyncComplete,
		onItemProcessed: opts.OnItemProcessed,
	}, nil
}

// Initialize loads the persisted queue snapshot. A load failure never
// blocks startup: the engine logs it and starts from an empty queue.
func (e *Engine) Initialize(ctx context.Context) error {
	items, err := e.store.Load(ctx)
	if err != nil {
		e.logger.Warn("queue snapshot load failed; starting empty",
			logging.Error(err),
		)
		items = nil
	}
	e.mu.Lock()
	e.items = items
	e.mu.Unlock()
	return nil
}

// AddItem reconciles a fully-formed item into the queue, commits the result,
// persists it, and fires OnQueueChange — in that order. A reconcile error
// (unknown mutation type) leaves all state untouched; a persistence error
// propagates after the in-memory commit.
func (e *Engine) AddItem(ctx context.Context, item queue.Item) error {
	e.mu.Lock()
	next, err := e.reconciler.Add(item, e.items)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	e.items = next
	snapshot := e.snapshotLocked()
	saveErr := e.store.Save(ctx, snapshot)
	e.mu.Unlock()

	if saveErr != nil {
		return fmt.Errorf("persist queue: %w", saveErr)
	}
	e.fireQueueChange(snapshot)
	return nil
}

// RemoveItem drops an item by id, persists, and fires OnQueueChange.
func (e *Engine) RemoveItem(ctx context.Context, id string) error {
	e.mu.Lock()
	e.items = e.reconciler.Remove(id, e.items)
	snapshot := e.snapshotLocked()
	saveErr := e.store.Save(ctx, snapshot)
	e.mu.Unlock()

	if saveErr != nil {
		return fmt.Errorf("persist queue: %w", saveErr)
	}
	e.fireQueueChange(snapshot)
	return nil
}

// ClearQueue empties the queue, clears storage, and fires OnQueueChange.
func (e *Engine) ClearQueue(ctx context.Context) error {
	e.mu.Lock()
	e.items = nil
	clearErr := e.store.Clear(ctx)
	e.mu.Unlock()

	if clearErr != nil {
		return fmt.Errorf("clear queue storage: %w", clearErr)
	}
	e.fireQueueChange([]queue.Item{})
	return nil
}

// Queue returns a snapshot copy of the current queue.
func (e *Engine) Queue() []queue.Item {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// PendingCount returns the number of items awaiting sync.
func (e *Engine) PendingCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.reconciler.Pending(e.items))
}

// HasPendingOperation reports whether any queued item targets the entity.
func (e *Engine) HasPendingOperation(entityID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, item := range e.items {
		if item.EntityID == entityID {
			return true
		}
	}
	return false
}

// Registry exposes the mutation registry the engine reconciles against.
func (e *Engine) Registry() *queue.Registry {
	return e.reconciler.Registry()
}

func (e *Engine) snapshotLocked() []queue.Item {
	cp := make([]queue.Item, len(e.items))
	copy(cp, e.items)
	return cp
}

func (e *Engine) fireQueueChange(snapshot []queue.Item) {
	if e.onQueueChange == nil {
		return
	}
	e.onQueueChange(snapshot)
}
