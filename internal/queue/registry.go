package queue

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Strategy selects how a new item merges with an already queued item of the
// same type and entity.
type Strategy string

const (
	// StrategyDeduplicate keeps the first queued item and drops the new one.
	StrategyDeduplicate Strategy = "deduplicate"
	// StrategyReplace swaps the queued item for the new one in place.
	StrategyReplace Strategy = "replace"
)

// ParseStrategy converts a string into a known Strategy.
func ParseStrategy(value string) (Strategy, bool) {
	normalized := Strategy(strings.ToLower(strings.TrimSpace(value)))
	switch normalized {
	case StrategyDeduplicate, StrategyReplace:
		return normalized, true
	default:
		return "", false
	}
}

// Config declares reconciliation behavior for one mutation type.
type Config struct {
	Strategy Strategy
	// OpposingType, when set, names a type whose queued items this type
	// cancels for the same entity (apply-then-withdraw nets to nothing).
	OpposingType string
}

// ErrUnknownType marks a lookup for a mutation type the registry was never
// told about. Enqueueing such a type is a programming error, never a silent
// fallback.
var ErrUnknownType = errors.New("unknown mutation type")

// Registry is the exhaustive static map from mutation type to Config.
type Registry struct {
	configs map[string]Config
}

// NewRegistry validates the full config set up front and fails fast on the
// first inconsistency: an invalid strategy, or an opposing type that is not
// itself registered.
func NewRegistry(configs map[string]Config) (*Registry, error) {
	if len(configs) == 0 {
		return nil, errors.New("registry requires at least one mutation type")
	}
	types := make([]string, 0, len(configs))
	for mutationType := range configs {
		types = append(types, mutationType)
	}
	sort.Strings(types)

	copied := make(map[string]Config, len(configs))
	for _, mutationType := range types {
		cfg := configs[mutationType]
		if strings.TrimSpace(mutationType) == "" {
			return nil, errors.New("mutation type must not be empty")
		}
		if _, ok := ParseStrategy(string(cfg.Strategy)); !ok {
			return nil, fmt.Errorf("mutation type %q: invalid strategy %q", mutationType, cfg.Strategy)
		}
		if cfg.OpposingType != "" {
			if _, ok := configs[cfg.OpposingType]; !ok {
				return nil, fmt.Errorf("mutation type %q: opposing type %q is not registered", mutationType, cfg.OpposingType)
			}
		}
		copied[mutationType] = cfg
	}
	return &Registry{configs: copied}, nil
}

// Config returns the declaration for a mutation type.
func (r *Registry) Config(mutationType string) (Config, error) {
	cfg, ok := r.configs[mutationType]
	if !ok {
		return Config{}, fmt.Errorf("%w: %q", ErrUnknownType, mutationType)
	}
	return cfg, nil
}

// Known reports whether the registry has a declaration for the type.
func (r *Registry) Known(mutationType string) bool {
	_, ok := r.configs[mutationType]
	return ok
}

// Types returns the sorted list of registered mutation types.
func (r *Registry) Types() []string {
	types := make([]string, 0, len(r.configs))
	for mutationType := range r.configs {
		types = append(types, mutationType)
	}
	sort.Strings(types)
	return types
}
