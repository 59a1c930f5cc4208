package config

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
)

const (
	defaultDataDir               = "~/.local/share/tether"
	defaultLogDir                = "~/.local/share/tether/logs"
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
	defaultMaxRetries            = 3
	defaultSyncIntervalSeconds   = 30
	defaultProbeTimeoutSeconds   = 3
	defaultProbeTarget           = "1.1.1.1:443"
	defaultRequestTimeoutSeconds = 30
)

// Default returns a Config populated with repository defaults. Mutation
// declarations are intentionally empty; every deployment must declare its
// own types (an unregistered type is an error, never a fallback).
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Storage: Storage{
			Backend: BackendSQLite,
		},
		Sync: Sync{
			MaxRetries:          defaultMaxRetries,
			IntervalSeconds:     defaultSyncIntervalSeconds,
			ProbeTarget:         defaultProbeTarget,
			ProbeTimeoutSeconds: defaultProbeTimeoutSeconds,
		},
		Remote: Remote{
			RequestTimeoutSeconds: defaultRequestTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
