package queue_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tether/internal/queue"
)

func TestParseStatus(t *testing.T) {
	status, ok := queue.ParseStatus(" Pending ")
	require.True(t, ok)
	assert.Equal(t, queue.StatusPending, status)

	_, ok = queue.ParseStatus("queued")
	assert.False(t, ok)

	_, ok = queue.ParseStatus("")
	assert.False(t, ok)
}

func TestIsPending(t *testing.T) {
	item := queue.Item{Status: queue.StatusPending}
	assert.True(t, item.IsPending())

	item.Status = queue.StatusSyncing
	assert.False(t, item.IsPending())
}
