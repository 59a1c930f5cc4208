package queue

import (
	"encoding/json"
	"strings"
	"time"
)

// Status represents the lifecycle of a queue item.
type Status string

const (
	StatusPending  Status = "pending"
	StatusSyncing  Status = "syncing"
	StatusSuccess  Status = "success"
	StatusConflict Status = "conflict"
	StatusError    Status = "error"
)

var allStatuses = []Status{
	StatusPending,
	StatusSyncing,
	StatusSuccess,
	StatusConflict,
	StatusError,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// Item is one queued mutation intent.
//
// Payload is opaque to the engine; executors decode it. DisplayLabel exists
// for presentation surfaces only and never influences reconciliation or
// sync decisions.
type Item struct {
	ID           string          `json:"id"`
	Type         string          `json:"type"`
	EntityID     string          `json:"entity_id"`
	Payload      json.RawMessage `json:"payload,omitempty"`
	Timestamp    time.Time       `json:"timestamp"`
	Status       Status          `json:"status"`
	RetryCount   int             `json:"retry_count"`
	DisplayLabel string          `json:"display_label,omitempty"`
}

// IsPending reports whether the item is waiting for a sync cycle.
func (i Item) IsPending() bool {
	return i.Status == StatusPending
}

// SyncResult describes the outcome of processing one item during a cycle.
type SyncResult struct {
	ItemID         string
	Status         Status
	ConflictReason string
	Err            error
}
