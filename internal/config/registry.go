package config

import (
	"fmt"

	"tether/internal/queue"
)

// Registry builds the reconciliation registry from the declared mutation
// types. Construction fails fast on any inconsistency rather than
// defaulting silently.
func (c *Config) Registry() (*queue.Registry, error) {
	configs := make(map[string]queue.Config, len(c.Mutations))
	for _, m := range c.Mutations {
		strategy, ok := queue.ParseStrategy(m.Strategy)
		if !ok {
			return nil, fmt.Errorf("mutation %q: invalid strategy %q", m.Type, m.Strategy)
		}
		configs[m.Type] = queue.Config{
			Strategy:     strategy,
			OpposingType: m.OpposingType,
		}
	}
	return queue.NewRegistry(configs)
}

// MutationByType returns the declaration for a type, if present.
func (c *Config) MutationByType(mutationType string) (Mutation, bool) {
	for _, m := range c.Mutations {
		if m.Type == mutationType {
			return m, true
		}
	}
	return Mutation{}, false
}
