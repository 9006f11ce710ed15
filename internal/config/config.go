package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir" env:"CARDCACHE_DATA_DIR"`
	LogDir  string `toml:"log_dir" env:"CARDCACHE_LOG_DIR"`
}

// Storage selects and configures the persistence backend.
type Storage struct {
	Backend    string `toml:"backend" env:"CARDCACHE_BACKEND"` // "sqlite", "file" or "memory"
	SQLiteFile string `toml:"sqlite_file" env:"CARDCACHE_SQLITE_FILE"`
	FileDir    string `toml:"file_dir" env:"CARDCACHE_FILE_DIR"`
}

// Cache contains the engine's timing knobs.
type Cache struct {
	// EntityTTLSeconds is the minimum age before an unforced SetEntity may
	// rewrite an existing card record.
	EntityTTLSeconds int `toml:"entity_ttl_seconds" env:"CARDCACHE_ENTITY_TTL_SECONDS"`
	// CleanupIntervalHours gates how often Initialize runs the cleanup sweep.
	CleanupIntervalHours int `toml:"cleanup_interval_hours" env:"CARDCACHE_CLEANUP_INTERVAL_HOURS"`
	// FAQExpiryDays drops FAQ entries not accessed for this long.
	FAQExpiryDays int `toml:"faq_expiry_days" env:"CARDCACHE_FAQ_EXPIRY_DAYS"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format" env:"CARDCACHE_LOG_FORMAT"`
	Level  string `toml:"level" env:"CARDCACHE_LOG_LEVEL"`
}

// Config encapsulates all configuration values for cardcache.
//
// Configuration sections by subsystem:
//   - Paths: data and log directories
//   - Storage: persistence backend selection
//   - Cache: TTL, cleanup interval and FAQ expiry
//   - Logging: log format and level
type Config struct {
	Paths   Paths   `toml:"paths"`
	Storage Storage `toml:"storage"`
	Cache   Cache   `toml:"cache"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and environment overrides applied.
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
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("cardcache.toml")
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

// EnsureDirectories creates the directories the selected backend writes to.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.DataDir, c.Paths.LogDir}
	if c.Storage.Backend == BackendFile {
		dirs = append(dirs, c.Storage.FileDir)
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// EntityTTL returns the card rewrite TTL as a duration.
func (c *Config) EntityTTL() time.Duration {
	return time.Duration(c.Cache.EntityTTLSeconds) * time.Second
}

// CleanupInterval returns the minimum spacing between cleanup sweeps.
func (c *Config) CleanupInterval() time.Duration {
	return time.Duration(c.Cache.CleanupIntervalHours) * time.Hour
}

// FAQExpiry returns how long an unaccessed FAQ entry survives cleanup.
func (c *Config) FAQExpiry() time.Duration {
	return time.Duration(c.Cache.FAQExpiryDays) * 24 * time.Hour
}

// LockPath returns the path of the single-owner lock file for the data dir.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "cardcache.lock")
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

// SampleConfig returns the embedded sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
