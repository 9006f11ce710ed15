package config

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendMemory = "memory"
)

const (
	defaultConfigPath           = "~/.config/cardcache/config.toml"
	defaultDataDir              = "~/.local/share/cardcache"
	defaultLogDir               = "~/.local/share/cardcache/logs"
	defaultBackend              = BackendSQLite
	defaultSQLiteFileName       = "cache.db"
	defaultFileDirName          = "kv"
	defaultEntityTTLSeconds     = 24 * 60 * 60
	defaultCleanupIntervalHours = 24
	defaultFAQExpiryDays        = 30
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Default returns a Config populated with repository defaults. Storage file
// locations are derived from the data dir during normalization.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Storage: Storage{
			Backend: defaultBackend,
		},
		Cache: Cache{
			EntityTTLSeconds:     defaultEntityTTLSeconds,
			CleanupIntervalHours: defaultCleanupIntervalHours,
			FAQExpiryDays:        defaultFAQExpiryDays,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
