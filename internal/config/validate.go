package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateStorage() error {
	switch c.Storage.Backend {
	case BackendSQLite, BackendFile, BackendMemory:
	default:
		return fmt.Errorf("storage.backend must be one of %q, %q or %q (got %q)",
			BackendSQLite, BackendFile, BackendMemory, c.Storage.Backend)
	}
	if c.Paths.DataDir == "" {
		return errors.New("paths.data_dir must be set")
	}
	return nil
}

func (c *Config) validateCache() error {
	if c.Cache.EntityTTLSeconds < 0 {
		return errors.New("cache.entity_ttl_seconds must be zero or positive")
	}
	if c.Cache.CleanupIntervalHours <= 0 {
		return errors.New("cache.cleanup_interval_hours must be positive")
	}
	if c.Cache.FAQExpiryDays <= 0 {
		return errors.New("cache.faq_expiry_days must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be \"console\" or \"json\" (got %q)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error (got %q)", c.Logging.Level)
	}
	return nil
}
