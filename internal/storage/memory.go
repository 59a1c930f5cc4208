package storage

import (
	"context"
	"sync"

	"tether/internal/queue"
)

// MemoryStore is an in-process Adapter used by tests and ephemeral setups.
type MemoryStore struct {
	mu    sync.Mutex
	items []queue.Item
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load(context.Context) ([]queue.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]queue.Item, len(m.items))
	copy(cp, m.items)
	return cp, nil
}

func (m *MemoryStore) Save(_ context.Context, items []queue.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]queue.Item, len(items))
	copy(cp, items)
	m.items = cp
	return nil
}

func (m *MemoryStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = nil
	return nil
}
