package queue_test

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"tether/internal/queue"
)

func TestNewItemIDUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id := queue.NewItemID()
		_, dup := seen[id]
		assert.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}

func TestNewItemIDSortsByCreationOrder(t *testing.T) {
	ids := make([]string, 0, 5)
	for i := 0; i < 5; i++ {
		ids = append(ids, queue.NewItemID())
		time.Sleep(time.Millisecond)
	}
	assert.True(t, sort.StringsAreSorted(ids), "time-prefixed ids must sort in creation order: %v", ids)
}
