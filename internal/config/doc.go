// Package config loads, normalizes, and validates cardcache configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and applies CARDCACHE_* environment overrides.
// Storage file locations default to paths under the data directory so a single
// data_dir setting relocates the whole cache.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths and clear validation errors.
package config
