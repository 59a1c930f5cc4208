package syncer

import (
	"context"

	"tether/internal/queue"
)

// Executor performs one mutation type against the backend. A nil return
// means the mutation applied; an error carrying StatusCode() == 409 means a
// terminal conflict; any other error is retryable.
type Executor func(ctx context.Context, item queue.Item) error

// ExecutorSet maps mutation types to their executors. A missing entry for
// an encountered type is a per-item runtime error, not fatal to the engine.
type ExecutorSet map[string]Executor
