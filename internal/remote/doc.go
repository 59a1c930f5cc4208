// Package remote builds the HTTP-backed mutation executors the CLI and
// daemon hand to the sync engine. Each declared mutation type maps to one
// request shape; a 409 response is translated into the engine's conflict
// error contract, everything else non-2xx stays retryable.
package remote
