// Package config loads and validates tether's TOML configuration: storage
// backend selection, sync/retry policy, the remote endpoint the HTTP
// executors talk to, logging, and the per-mutation-type declarations that
// seed the reconciliation registry.
package config
