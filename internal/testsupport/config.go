package testsupport

import (
	"path/filepath"
	"testing"
	"time"

	"cardcache/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The memory backend is selected unless WithBackend overrides it.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Storage.Backend = config.BackendMemory
	cfgVal.Storage.SQLiteFile = filepath.Join(base, "data", "cache.db")
	cfgVal.Storage.FileDir = filepath.Join(base, "data", "kv")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithBackend selects the persistence backend on the test config.
func WithBackend(backend string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Storage.Backend = backend
	}
}

// WithEntityTTL overrides the card rewrite TTL.
func WithEntityTTL(ttl time.Duration) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Cache.EntityTTLSeconds = int(ttl / time.Second)
	}
}

// WithLogging overrides the log format and level.
func WithLogging(format, level string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Logging.Format = format
		b.cfg.Logging.Level = level
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
