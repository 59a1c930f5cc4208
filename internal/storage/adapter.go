package storage

import (
	"context"

	"tether/internal/queue"
)

// Adapter is the persistence boundary for queue snapshots.
//
// Load must return an empty slice (not an error) for "no data yet"; the
// engine additionally tolerates a Load error by starting from an empty
// queue. Save and Clear errors are surfaced to the caller of the mutation
// that triggered them.
type Adapter interface {
	Load(ctx context.Context) ([]queue.Item, error)
	Save(ctx context.Context, items []queue.Item) error
	Clear(ctx context.Context) error
}
