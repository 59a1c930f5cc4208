package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

// Storage selects and locates the queue snapshot backend.
type Storage struct {
	// Backend is "sqlite" or "file".
	Backend string `toml:"backend"`
	// Path overrides the snapshot location. Defaults to
	// <data_dir>/queue.db (sqlite) or <data_dir>/queue.json (file).
	Path string `toml:"path"`
}

// Sync contains retry policy and the daemon's cycle cadence.
type Sync struct {
	MaxRetries int `toml:"max_retries"`
	// IntervalSeconds is how often tetherd attempts a cycle. The engine
	// itself never schedules; this drives the external loop only.
	IntervalSeconds     int    `toml:"interval_seconds"`
	ProbeTarget         string `toml:"probe_target"`
	ProbeTimeoutSeconds int    `toml:"probe_timeout_seconds"`
}

// Remote configures the HTTP executor client.
type Remote struct {
	BaseURL               string `toml:"base_url"`
	AuthToken             string `toml:"auth_token"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Mutation declares one mutation type: its reconciliation strategy plus the
// HTTP shape its executor uses.
type Mutation struct {
	Type         string `toml:"type"`
	Strategy     string `toml:"strategy"`
	OpposingType string `toml:"opposing_type"`
	// Method and Path describe the executor request. Path may contain the
	// {entity} placeholder, replaced with the item's entity id.
	Method string `toml:"method"`
	Path   string `toml:"path"`
	// Label is the human-readable template for queue listings.
	Label string `toml:"label"`
}

// Config encapsulates all configuration values for tether.
type Config struct {
	Paths     Paths      `toml:"paths"`
	Storage   Storage    `toml:"storage"`
	Sync      Sync       `toml:"sync"`
	Remote    Remote     `toml:"remote"`
	Logging   Logging    `toml:"logging"`
	Mutations []Mutation `toml:"mutation"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/tether/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The boolean reports
// whether a config file actually existed at the resolved path.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("tether.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// WriteSample writes the annotated sample configuration to path, refusing
// to overwrite an existing file.
func WriteSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config already exists at %s", expanded)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(expanded, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// EnsureDirectories creates the data and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// SnapshotPath returns the effective queue snapshot location for the
// configured backend.
func (c *Config) SnapshotPath() string {
	if strings.TrimSpace(c.Storage.Path) != "" {
		return c.Storage.Path
	}
	switch c.Storage.Backend {
	case BackendFile:
		return filepath.Join(c.Paths.DataDir, "queue.json")
	default:
		return filepath.Join(c.Paths.DataDir, "queue.db")
	}
}

func (c *Config) normalize() error {
	var err error
	if c.Paths.DataDir, err = expandPath(defaultString(c.Paths.DataDir, defaultDataDir)); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(defaultString(c.Paths.LogDir, defaultLogDir)); err != nil {
		return err
	}
	if strings.TrimSpace(c.Storage.Path) != "" {
		if c.Storage.Path, err = expandPath(c.Storage.Path); err != nil {
			return err
		}
	}

	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	if c.Storage.Backend == "" {
		c.Storage.Backend = BackendSQLite
	}
	if c.Sync.MaxRetries <= 0 {
		c.Sync.MaxRetries = defaultMaxRetries
	}
	if c.Sync.IntervalSeconds <= 0 {
		c.Sync.IntervalSeconds = defaultSyncIntervalSeconds
	}
	if c.Sync.ProbeTimeoutSeconds <= 0 {
		c.Sync.ProbeTimeoutSeconds = defaultProbeTimeoutSeconds
	}
	if strings.TrimSpace(c.Sync.ProbeTarget) == "" {
		c.Sync.ProbeTarget = defaultProbeTarget
	}
	if c.Remote.RequestTimeoutSeconds <= 0 {
		c.Remote.RequestTimeoutSeconds = defaultRequestTimeoutSeconds
	}
	c.Logging.Format = strings.ToLower(defaultString(c.Logging.Format, defaultLogFormat))
	c.Logging.Level = strings.ToLower(defaultString(c.Logging.Level, defaultLogLevel))

	for i := range c.Mutations {
		c.Mutations[i].Type = strings.TrimSpace(c.Mutations[i].Type)
		c.Mutations[i].Strategy = strings.ToLower(strings.TrimSpace(c.Mutations[i].Strategy))
		c.Mutations[i].OpposingType = strings.TrimSpace(c.Mutations[i].OpposingType)
		c.Mutations[i].Method = strings.ToUpper(defaultString(c.Mutations[i].Method, "POST"))
	}
	return nil
}

func defaultString(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}
