package queue

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NewItemID generates a unique, time-prefixed item id. The nanosecond UTC
// prefix keeps ids lexically sortable by creation order; the uuid suffix
// keeps them collision-resistant under rapid successive calls.
func NewItemID() string {
	now := time.Now().UTC().Format("20060102T150405.000000000Z")
	suffix := uuid.NewString()[:8]
	return fmt.Sprintf("%s-%s", now, suffix)
}
