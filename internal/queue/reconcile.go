package queue

// Reconciler folds new mutation intents into an ordered queue according to
// the registry's per-type strategy. All methods are pure: the input slice is
// never mutated and the result is always a fresh slice.
type Reconciler struct {
	registry *Registry
}

// NewReconciler builds a Reconciler over the given registry.
func NewReconciler(registry *Registry) *Reconciler {
	return &Reconciler{registry: registry}
}

// Registry exposes the registry the reconciler consults.
func (r *Reconciler) Registry() *Registry {
	return r.registry
}

// Add merges item into the queue.
//
// Resolution order: an opposing queued item for the same entity cancels both
// intents; a deduplicate match keeps the first queued item; a replace match
// swaps payloads in place preserving queue position; otherwise the item is
// appended FIFO.
func (r *Reconciler) Add(item Item, queue []Item) ([]Item, error) {
	cfg, err := r.registry.Config(item.Type)
	if err != nil {
		return nil, err
	}

	if cfg.OpposingType != "" {
		if idx := indexOf(queue, cfg.OpposingType, item.EntityID); idx >= 0 {
			next := make([]Item, 0, len(queue)-1)
			next = append(next, queue[:idx]...)
			next = append(next, queue[idx+1:]...)
			return next, nil
		}
	}

	idx := indexOf(queue, item.Type, item.EntityID)

	switch {
	case idx >= 0 && cfg.Strategy == StrategyDeduplicate:
		return copyQueue(queue), nil
	case idx >= 0 && cfg.Strategy == StrategyReplace:
		next := copyQueue(queue)
		next[idx] = item
		return next, nil
	default:
		next := make([]Item, 0, len(queue)+1)
		next = append(next, queue...)
		next = append(next, item)
		return next, nil
	}
}

// Remove drops the item with the given id. Absent ids are a no-op.
func (r *Reconciler) Remove(id string, queue []Item) []Item {
	next := make([]Item, 0, len(queue))
	for _, item := range queue {
		if item.ID == id {
			continue
		}
		next = append(next, item)
	}
	return next
}

// UpdateStatus replaces only the status of the matching item. Absent ids are
// a no-op.
func (r *Reconciler) UpdateStatus(id string, status Status, queue []Item) []Item {
	next := copyQueue(queue)
	for i := range next {
		if next[i].ID == id {
			next[i].Status = status
			break
		}
	}
	return next
}

// Pending returns all pending items in their original queue order.
func (r *Reconciler) Pending(queue []Item) []Item {
	pending := make([]Item, 0, len(queue))
	for _, item := range queue {
		if item.IsPending() {
			pending = append(pending, item)
		}
	}
	return pending
}

func indexOf(queue []Item, mutationType, entityID string) int {
	for i, item := range queue {
		if item.Type == mutationType && item.EntityID == entityID {
			return i
		}
	}
	return -1
}

func copyQueue(queue []Item) []Item {
	next := make([]Item, len(queue))
	copy(next, queue)
	return next
}
