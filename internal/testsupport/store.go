package testsupport

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"cardcache/internal/config"
	"cardcache/internal/kvstore"
)

// ErrInjected is returned by FailingStore for every failed call.
var ErrInjected = errors.New("testsupport: injected failure")

// MustOpenStore opens the configured kvstore backend and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) kvstore.Store {
	t.Helper()

	store, err := kvstore.Open(cfg)
	if err != nil {
		t.Fatalf("kvstore.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// FailingStore wraps a store and fails selected operations on demand.
type FailingStore struct {
	kvstore.Store

	mu        sync.Mutex
	failReads bool
	failWrite bool
	prefix    string
}

// NewFailingStore wraps inner. Nothing fails until configured.
func NewFailingStore(inner kvstore.Store) *FailingStore {
	return &FailingStore{Store: inner}
}

// FailReads toggles failure of Get and GetMany.
func (f *FailingStore) FailReads(fail bool) {
	f.mu.Lock()
	f.failReads = fail
	f.mu.Unlock()
}

// FailWrites toggles failure of Set, SetMany, Remove, RemoveMany and RemoveAll.
// When prefix is non-empty only keys with that prefix fail.
func (f *FailingStore) FailWrites(fail bool, prefix string) {
	f.mu.Lock()
	f.failWrite = fail
	f.prefix = prefix
	f.mu.Unlock()
}

func (f *FailingStore) readFails() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.failReads
}

func (f *FailingStore) writeFails(keys ...string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.failWrite {
		return false
	}
	if f.prefix == "" || len(keys) == 0 {
		return true
	}
	for _, key := range keys {
		if strings.HasPrefix(key, f.prefix) {
			return true
		}
	}
	return false
}

func (f *FailingStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if f.readFails() {
		return nil, false, ErrInjected
	}
	return f.Store.Get(ctx, key)
}

func (f *FailingStore) GetMany(ctx context.Context, keys ...string) (map[string][]byte, error) {
	if f.readFails() {
		return nil, ErrInjected
	}
	return f.Store.GetMany(ctx, keys...)
}

func (f *FailingStore) Set(ctx context.Context, key string, value []byte) error {
	if f.writeFails(key) {
		return ErrInjected
	}
	return f.Store.Set(ctx, key, value)
}

func (f *FailingStore) SetMany(ctx context.Context, items map[string][]byte) error {
	keys := make([]string, 0, len(items))
	for key := range items {
		keys = append(keys, key)
	}
	if f.writeFails(keys...) {
		return ErrInjected
	}
	return f.Store.SetMany(ctx, items)
}

func (f *FailingStore) Remove(ctx context.Context, key string) error {
	if f.writeFails(key) {
		return ErrInjected
	}
	return f.Store.Remove(ctx, key)
}

func (f *FailingStore) RemoveMany(ctx context.Context, keys ...string) error {
	if f.writeFails(keys...) {
		return ErrInjected
	}
	return f.Store.RemoveMany(ctx, keys...)
}

func (f *FailingStore) RemoveAll(ctx context.Context) error {
	if f.writeFails() {
		return ErrInjected
	}
	return f.Store.RemoveAll(ctx)
}
