package config

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

var validMethods = map[string]struct{}{
	http.MethodGet:    {},
	http.MethodPost:   {},
	http.MethodPut:    {},
	http.MethodPatch:  {},
	http.MethodDelete: {},
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateRemote(); err != nil {
		return err
	}
	if err := c.validateMutations(); err != nil {
		return err
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}

func (c *Config) validateStorage() error {
	switch c.Storage.Backend {
	case BackendSQLite, BackendFile:
		return nil
	default:
		return fmt.Errorf("storage.backend: unsupported value %q (expected %q or %q)",
			c.Storage.Backend, BackendSQLite, BackendFile)
	}
}

func (c *Config) validateRemote() error {
	base := strings.TrimSpace(c.Remote.BaseURL)
	if base == "" {
		// Queue-only usage (add/list/clear) works without a remote; the
		// executors refuse to build instead.
		return nil
	}
	parsed, err := url.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("remote.base_url: invalid URL %q", base)
	}
	return nil
}

func (c *Config) validateMutations() error {
	seen := make(map[string]struct{}, len(c.Mutations))
	for _, m := range c.Mutations {
		if m.Type == "" {
			return fmt.Errorf("mutation: type must not be empty")
		}
		if _, dup := seen[m.Type]; dup {
			return fmt.Errorf("mutation %q: declared twice", m.Type)
		}
		seen[m.Type] = struct{}{}

		switch m.Strategy {
		case "deduplicate", "replace":
		default:
			return fmt.Errorf("mutation %q: invalid strategy %q", m.Type, m.Strategy)
		}
		if _, ok := validMethods[m.Method]; !ok {
			return fmt.Errorf("mutation %q: invalid method %q", m.Type, m.Method)
		}
	}
	for _, m := range c.Mutations {
		if m.OpposingType == "" {
			continue
		}
		if _, ok := seen[m.OpposingType]; !ok {
			return fmt.Errorf("mutation %q: opposing type %q is not declared", m.Type, m.OpposingType)
		}
	}
	return nil
}
