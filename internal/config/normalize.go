package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
)

func (c *Config) normalize() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeStorage(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(strings.TrimSpace(c.Paths.DataDir)); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeStorage() error {
	var err error
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	if c.Storage.Backend == "" {
		c.Storage.Backend = defaultBackend
	}

	if strings.TrimSpace(c.Storage.SQLiteFile) == "" {
		c.Storage.SQLiteFile = filepath.Join(c.Paths.DataDir, defaultSQLiteFileName)
	}
	if c.Storage.SQLiteFile, err = expandPath(strings.TrimSpace(c.Storage.SQLiteFile)); err != nil {
		return fmt.Errorf("storage.sqlite_file: %w", err)
	}

	if strings.TrimSpace(c.Storage.FileDir) == "" {
		c.Storage.FileDir = filepath.Join(c.Paths.DataDir, defaultFileDirName)
	}
	if c.Storage.FileDir, err = expandPath(strings.TrimSpace(c.Storage.FileDir)); err != nil {
		return fmt.Errorf("storage.file_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
