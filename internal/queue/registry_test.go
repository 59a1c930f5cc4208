package queue_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tether/internal/queue"
)

func TestNewRegistryRejectsEmptySet(t *testing.T) {
	_, err := queue.NewRegistry(nil)
	require.Error(t, err)

	_, err = queue.NewRegistry(map[string]queue.Config{})
	require.Error(t, err)
}

func TestNewRegistryRejectsInvalidStrategy(t *testing.T) {
	_, err := queue.NewRegistry(map[string]queue.Config{
		"applyForExchange": {Strategy: "merge"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid strategy")
}

func TestNewRegistryRejectsUnregisteredOpposingType(t *testing.T) {
	_, err := queue.NewRegistry(map[string]queue.Config{
		"withdrawApplication": {Strategy: queue.StrategyDeduplicate, OpposingType: "applyForExchange"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opposing type")
}

func TestNewRegistryRejectsEmptyTypeName(t *testing.T) {
	_, err := queue.NewRegistry(map[string]queue.Config{
		"  ": {Strategy: queue.StrategyDeduplicate},
	})
	require.Error(t, err)
}

func TestRegistryLookups(t *testing.T) {
	registry := testRegistry(t)

	cfg, err := registry.Config("withdrawApplication")
	require.NoError(t, err)
	assert.Equal(t, queue.StrategyDeduplicate, cfg.Strategy)
	assert.Equal(t, "applyForExchange", cfg.OpposingType)

	_, err = registry.Config("renameExchange")
	require.ErrorIs(t, err, queue.ErrUnknownType)

	assert.True(t, registry.Known("updateAvailability"))
	assert.False(t, registry.Known("renameExchange"))

	assert.Equal(t, []string{"applyForExchange", "updateAvailability", "withdrawApplication"}, registry.Types())
}

func TestParseStrategyNormalizes(t *testing.T) {
	strategy, ok := queue.ParseStrategy("  Replace ")
	require.True(t, ok)
	assert.Equal(t, queue.StrategyReplace, strategy)

	_, ok = queue.ParseStrategy("merge")
	assert.False(t, ok)
}
