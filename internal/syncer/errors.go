package syncer

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// DefaultConflictReason is reported when a conflicting executor error does
// not supply its own reason.
const DefaultConflictReason = "already_taken"

// StatusError is the canonical shape for executor failures that carry a
// remote status code. Executors may return any error implementing
// StatusCode() int; this concrete type additionally carries an optional
// conflict reason.
type StatusError struct {
	Code   int
	Reason string
	Detail string
}

func (e *StatusError) Error() string {
	detail := strings.TrimSpace(e.Detail)
	if detail == "" {
		detail = http.StatusText(e.Code)
	}
	return fmt.Sprintf("remote returned %d: %s", e.Code, detail)
}

// StatusCode returns the remote status code.
func (e *StatusError) StatusCode() int {
	return e.Code
}

type statusCoder interface {
	StatusCode() int
}

// isConflict reports whether an executor error signals a terminal conflict
// (the remote state diverged past the point the queued intent can apply).
// The contract is a numeric status of 409; everything else is retryable.
func isConflict(err error) bool {
	var coder statusCoder
	if errors.As(err, &coder) {
		return coder.StatusCode() == http.StatusConflict
	}
	return false
}

// conflictReason extracts the executor-supplied reason, falling back to the
// single default. No richer taxonomy exists.
func conflictReason(err error) string {
	var statusErr *StatusError
	if errors.As(err, &statusErr) && strings.TrimSpace(statusErr.Reason) != "" {
		return statusErr.Reason
	}
	return DefaultConflictReason
}
