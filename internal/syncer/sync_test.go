package syncer_test

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tether/internal/network"
	"tether/internal/queue"
	"tether/internal/syncer"
	"tether/internal/testsupport"
)

func succeed(context.Context, queue.Item) error { return nil }

func failWith(code int, reason string) syncer.Executor {
	return func(context.Context, queue.Item) error {
		return &syncer.StatusError{Code: code, Reason: reason}
	}
}

func TestSyncSkipsWhenOffline(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	calls := 0
	engine := testsupport.NewEngine(t, cfg, syncer.Options{
		Executors: syncer.ExecutorSet{
			"applyForExchange": func(context.Context, queue.Item) error {
				calls++
				return nil
			},
		},
		OnSyncStart: func() { t.Error("OnSyncStart fired while offline") },
	})
	require.NoError(t, engine.Initialize(context.Background()))
	require.NoError(t, engine.AddItem(context.Background(), testsupport.PendingItem("applyForExchange", "ex-1", nil)))

	results, err := engine.Sync(context.Background(), network.Offline())
	require.NoError(t, err)
	assert.Nil(t, results)
	assert.Zero(t, calls)
	assert.Equal(t, 1, engine.PendingCount())
}

func TestSyncSkipsWhenNothingPending(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	engine := testsupport.NewEngine(t, cfg, syncer.Options{
		OnSyncStart: func() { t.Error("OnSyncStart fired with an empty queue") },
	})
	require.NoError(t, engine.Initialize(context.Background()))

	results, err := engine.Sync(context.Background(), network.Online())
	require.NoError(t, err)
	assert.Nil(t, results)
}

func TestSyncRejectsConcurrentCycle(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	release := make(chan struct{})
	started := make(chan struct{})
	var calls atomic.Int32

	engine := testsupport.NewEngine(t, cfg, syncer.Options{
		Executors: syncer.ExecutorSet{
			"applyForExchange": func(context.Context, queue.Item) error {
				calls.Add(1)
				close(started)
				<-release
				return nil
			},
		},
	})
	require.NoError(t, engine.Initialize(context.Background()))
	require.NoError(t, engine.AddItem(context.Background(), testsupport.PendingItem("applyForExchange", "ex-1", nil)))

	var wg sync.WaitGroup
	wg.Add(1)
	var firstResults []queue.SyncResult
	var firstErr error
	go func() {
		defer wg.Done()
		firstResults, firstErr = engine.Sync(context.Background(), network.Online())
	}()

	<-started

	// A second cycle while the first is mid-executor is rejected outright.
	second, err := engine.Sync(context.Background(), network.Online())
	require.NoError(t, err)
	assert.Nil(t, second)

	close(release)
	wg.Wait()

	require.NoError(t, firstErr)
	require.Len(t, firstResults, 1)
	assert.Equal(t, queue.StatusSuccess, firstResults[0].Status)
	assert.Equal(t, int32(1), calls.Load(), "the single pending item must run exactly once")
}

func TestSyncSuccessDrainsQueueAndPersistsEmpty(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := newFlakyStore()

	engine := testsupport.NewEngine(t, cfg, syncer.Options{
		Storage:   store,
		Executors: syncer.ExecutorSet{"applyForExchange": succeed},
	})
	require.NoError(t, engine.Initialize(context.Background()))

	item := testsupport.PendingItem("applyForExchange", "ex-1", []byte(`{"seat":"A"}`))
	require.NoError(t, engine.AddItem(context.Background(), item))

	results, err := engine.Sync(context.Background(), network.Online())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, item.ID, results[0].ItemID)
	assert.Equal(t, queue.StatusSuccess, results[0].Status)

	assert.Empty(t, engine.Queue())
	assert.NotNil(t, store.lastSave())
	assert.Empty(t, store.lastSave(), "post-cycle snapshot must persist the empty queue")
}

func TestSyncRetriesUntilEviction(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	engine := testsupport.NewEngine(t, cfg, syncer.Options{
		MaxRetries: 3,
		Executors:  syncer.ExecutorSet{"applyForExchange": failWith(http.StatusInternalServerError, "")},
	})
	require.NoError(t, engine.Initialize(context.Background()))

	item := testsupport.PendingItem("applyForExchange", "ex-1", nil)
	require.NoError(t, engine.AddItem(context.Background(), item))

	for cycle, wantRetries := range []int{1, 2} {
		results, err := engine.Sync(context.Background(), network.Online())
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, queue.StatusError, results[0].Status)
		require.Error(t, results[0].Err)

		items := engine.Queue()
		require.Len(t, items, 1, "cycle %d", cycle)
		assert.Equal(t, wantRetries, items[0].RetryCount)
		assert.Equal(t, queue.StatusPending, items[0].Status, "failed item must be re-queued as pending")
	}

	// Third failure reaches the cap: silent eviction, still reported.
	results, err := engine.Sync(context.Background(), network.Online())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, queue.StatusError, results[0].Status)
	assert.Empty(t, engine.Queue())

	// Nothing left to process afterwards.
	results, err = engine.Sync(context.Background(), network.Online())
	require.NoError(t, err)
	assert.Nil(t, results)
}

func TestSyncConflictEvictsImmediately(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	engine := testsupport.NewEngine(t, cfg, syncer.Options{
		Executors: syncer.ExecutorSet{"applyForExchange": failWith(http.StatusConflict, "")},
	})
	require.NoError(t, engine.Initialize(context.Background()))
	require.NoError(t, engine.AddItem(context.Background(), testsupport.PendingItem("applyForExchange", "ex-1", nil)))

	results, err := engine.Sync(context.Background(), network.Online())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, queue.StatusConflict, results[0].Status)
	assert.Equal(t, syncer.DefaultConflictReason, results[0].ConflictReason)
	assert.Empty(t, engine.Queue(), "conflicts are terminal, never retried")
}

func TestSyncConflictReasonFromExecutor(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	engine := testsupport.NewEngine(t, cfg, syncer.Options{
		Executors: syncer.ExecutorSet{"updateAvailability": failWith(http.StatusConflict, "shift_locked")},
	})
	require.NoError(t, engine.Initialize(context.Background()))
	require.NoError(t, engine.AddItem(context.Background(), testsupport.PendingItem("updateAvailability", "day-1", []byte(`{}`))))

	results, err := engine.Sync(context.Background(), network.Online())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "shift_locked", results[0].ConflictReason)
}

func TestSyncMixedCycleProcessesSequentially(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	engine := testsupport.NewEngine(t, cfg, syncer.Options{
		MaxRetries: 3,
		Executors: syncer.ExecutorSet{
			"applyForExchange":    succeed,
			"withdrawApplication": failWith(http.StatusConflict, ""),
			"updateAvailability":  failWith(http.StatusBadGateway, ""),
		},
	})
	require.NoError(t, engine.Initialize(context.Background()))

	success := testsupport.PendingItem("applyForExchange", "ex-1", nil)
	conflict := testsupport.PendingItem("withdrawApplication", "ex-2", nil)
	transient := testsupport.PendingItem("updateAvailability", "day-1", []byte(`{}`))
	for _, item := range []queue.Item{success, conflict, transient} {
		require.NoError(t, engine.AddItem(context.Background(), item))
	}

	results, err := engine.Sync(context.Background(), network.Online())
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, success.ID, results[0].ItemID)
	assert.Equal(t, queue.StatusSuccess, results[0].Status)
	assert.Equal(t, conflict.ID, results[1].ItemID)
	assert.Equal(t, queue.StatusConflict, results[1].Status)
	assert.Equal(t, transient.ID, results[2].ItemID)
	assert.Equal(t, queue.StatusError, results[2].Status)

	remaining := engine.Queue()
	require.Len(t, remaining, 1)
	assert.Equal(t, transient.ID, remaining[0].ID)
	assert.Equal(t, 1, remaining[0].RetryCount)
	assert.Equal(t, queue.StatusPending, remaining[0].Status)
}

func TestSyncMissingExecutorIsRetryable(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	engine := testsupport.NewEngine(t, cfg, syncer.Options{MaxRetries: 2})
	require.NoError(t, engine.Initialize(context.Background()))
	require.NoError(t, engine.AddItem(context.Background(), testsupport.PendingItem("applyForExchange", "ex-1", nil)))

	results, err := engine.Sync(context.Background(), network.Online())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, queue.StatusError, results[0].Status)
	require.Error(t, results[0].Err)
	assert.Contains(t, results[0].Err.Error(), "no executor")

	// Retried like any transient failure, then evicted at the cap.
	require.Len(t, engine.Queue(), 1)
	_, err = engine.Sync(context.Background(), network.Online())
	require.NoError(t, err)
	assert.Empty(t, engine.Queue())
}

func TestSyncCallbackOrdering(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	var events []string
	engine := testsupport.NewEngine(t, cfg, syncer.Options{
		Executors:   syncer.ExecutorSet{"applyForExchange": succeed},
		OnSyncStart: func() { events = append(events, "start") },
		OnItemProcessed: func(queue.Item, queue.SyncResult) {
			events = append(events, "item")
		},
		OnQueueChange: func([]queue.Item) { events = append(events, "queue") },
		OnSyncComplete: func([]queue.SyncResult) {
			events = append(events, "complete")
		},
	})
	require.NoError(t, engine.Initialize(context.Background()))
	require.NoError(t, engine.AddItem(context.Background(), testsupport.PendingItem("applyForExchange", "ex-1", nil)))

	// AddItem itself only announces the queue change.
	require.Equal(t, []string{"queue"}, events)
	events = nil

	_, err := engine.Sync(context.Background(), network.Online())
	require.NoError(t, err)
	assert.Equal(t, []string{"start", "item", "queue", "complete"}, events)
}

func TestSyncSaveFailureSkipsCompletionCallbacks(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := newFlakyStore()

	completions := 0
	queueChanges := 0
	engine := testsupport.NewEngine(t, cfg, syncer.Options{
		Storage:        store,
		Executors:      syncer.ExecutorSet{"applyForExchange": succeed},
		OnSyncComplete: func([]queue.SyncResult) { completions++ },
		OnQueueChange:  func([]queue.Item) { queueChanges++ },
	})
	require.NoError(t, engine.Initialize(context.Background()))
	require.NoError(t, engine.AddItem(context.Background(), testsupport.PendingItem("applyForExchange", "ex-1", nil)))
	queueChanges = 0

	store.mu.Lock()
	store.saveErr = assert.AnError
	store.mu.Unlock()

	results, err := engine.Sync(context.Background(), network.Online())
	require.Error(t, err)
	require.Len(t, results, 1, "per-item results still surface alongside the persistence error")
	assert.Zero(t, completions)
	assert.Zero(t, queueChanges)

	// The engine is not wedged: the in-flight flag was released.
	store.mu.Lock()
	store.saveErr = nil
	store.mu.Unlock()
	require.NoError(t, engine.AddItem(context.Background(), testsupport.PendingItem("applyForExchange", "ex-2", nil)))
	_, err = engine.Sync(context.Background(), network.Online())
	require.NoError(t, err)
}

func TestSyncItemsAddedMidCycleWaitForNextCycle(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	release := make(chan struct{})
	started := make(chan struct{})
	var once sync.Once
	var processed atomic.Int32

	engine := testsupport.NewEngine(t, cfg, syncer.Options{
		Executors: syncer.ExecutorSet{
			"applyForExchange": func(context.Context, queue.Item) error {
				processed.Add(1)
				once.Do(func() {
					close(started)
					<-release
				})
				return nil
			},
		},
	})
	require.NoError(t, engine.Initialize(context.Background()))
	require.NoError(t, engine.AddItem(context.Background(), testsupport.PendingItem("applyForExchange", "ex-1", nil)))

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = engine.Sync(context.Background(), network.Online())
	}()

	<-started
	require.NoError(t, engine.AddItem(context.Background(), testsupport.PendingItem("applyForExchange", "ex-2", nil)))
	close(release)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("sync cycle did not finish")
	}

	assert.Equal(t, int32(1), processed.Load(), "mid-cycle additions stay out of the running snapshot")
	require.Len(t, engine.Queue(), 1)
	assert.Equal(t, "ex-2", engine.Queue()[0].EntityID)
}

// End-to-end walk of the headline flow: queue an application offline,
// reconcile a duplicate away, then drain on reconnect.
func TestOfflineApplyThenReconnect(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := newFlakyStore()

	engine := testsupport.NewEngine(t, cfg, syncer.Options{
		Storage:   store,
		Executors: syncer.ExecutorSet{"applyForExchange": succeed},
	})
	require.NoError(t, engine.Initialize(context.Background()))

	tap := testsupport.PendingItem("applyForExchange", "ex-42", []byte(`{"note":"can cover"}`))
	require.NoError(t, engine.AddItem(context.Background(), tap))
	// Impatient double tap collapses into the original.
	require.NoError(t, engine.AddItem(context.Background(), testsupport.PendingItem("applyForExchange", "ex-42", nil)))
	require.Equal(t, 1, engine.PendingCount())
	assert.True(t, engine.HasPendingOperation("ex-42"))

	// Still offline: nothing moves.
	results, err := engine.Sync(context.Background(), network.Offline())
	require.NoError(t, err)
	assert.Nil(t, results)

	// Back online: the one surviving item applies and the empty queue is
	// persisted.
	results, err = engine.Sync(context.Background(), network.Online())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, tap.ID, results[0].ItemID)
	assert.Equal(t, queue.StatusSuccess, results[0].Status)
	assert.False(t, engine.HasPendingOperation("ex-42"))
	assert.Empty(t, store.lastSave())
}
