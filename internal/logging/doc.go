// Package logging constructs the slog loggers used across tether and
// provides shared attribute helpers and field-name constants so log output
// stays greppable.
package logging
