package testsupport

import (
	"path/filepath"
	"testing"

	"tether/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test
// and a small set of mutation declarations covering every strategy.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Mutations = []config.Mutation{
		{Type: "applyForExchange", Strategy: "deduplicate", Method: "POST", Path: "/exchanges/{entity}/applications", Label: "Apply for exchange"},
		{Type: "withdrawApplication", Strategy: "deduplicate", OpposingType: "applyForExchange", Method: "DELETE", Path: "/exchanges/{entity}/applications", Label: "Withdraw application"},
		{Type: "updateAvailability", Strategy: "replace", Method: "PUT", Path: "/availability/{entity}", Label: "Update availability"},
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return &cfg
}

// WithFileBackend switches the snapshot backend to the JSON file store.
func WithFileBackend() ConfigOption {
	return func(cfg *config.Config) {
		cfg.Storage.Backend = config.BackendFile
	}
}

// WithRemote points the executor client at a test server.
func WithRemote(baseURL string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Remote.BaseURL = baseURL
	}
}
