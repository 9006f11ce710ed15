package kvstore

import (
	"context"
	"errors"
	"fmt"

	"cardcache/internal/config"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("kvstore: store closed")

// Store is an asynchronous key-value blob store. Absent keys are reported as
// not found rather than as errors; every other failure is returned unchanged
// to the caller without retries.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// GetMany returns the values of every key that exists. Missing keys are omitted.
	GetMany(ctx context.Context, keys ...string) (map[string][]byte, error)
	// Set creates or overwrites one key.
	Set(ctx context.Context, key string, value []byte) error
	// SetMany creates or overwrites every key in items.
	SetMany(ctx context.Context, items map[string][]byte) error
	// Remove deletes one key. Missing keys are ignored.
	Remove(ctx context.Context, key string) error
	// RemoveMany deletes every listed key. Missing keys are ignored.
	RemoveMany(ctx context.Context, keys ...string) error
	// RemoveAll deletes every key.
	RemoveAll(ctx context.Context) error
	// Close releases resources held by the store.
	Close() error
}

// Open builds the backend selected by cfg.Storage.Backend.
func Open(cfg *config.Config) (Store, error) {
	if cfg == nil {
		return nil, errors.New("kvstore: config is nil")
	}
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		return NewMemory(), nil
	case config.BackendFile:
		return OpenFileStore(cfg.Storage.FileDir)
	case config.BackendSQLite:
		return OpenSQLite(cfg.Storage.SQLiteFile)
	default:
		return nil, fmt.Errorf("kvstore: unsupported backend %q", cfg.Storage.Backend)
	}
}
