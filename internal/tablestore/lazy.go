package tablestore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"cardcache/internal/kvstore"
	"cardcache/internal/logging"
)

// LazyTable keeps one persisted record per id under prefix+id. Records are
// read from the store on first access and cached in memory afterwards.
// It is not safe for concurrent mutation; the owner serializes access.
type LazyTable[V any] struct {
	name   string
	prefix string
	store  kvstore.Store
	logger *slog.Logger
	items  map[string]V
}

// NewLazyTable returns a table backed by store.
func NewLazyTable[V any](name, prefix string, store kvstore.Store, logger *slog.Logger) *LazyTable[V] {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &LazyTable[V]{
		name:   name,
		prefix: prefix,
		store:  store,
		logger: logger,
		items:  make(map[string]V),
	}
}

func (t *LazyTable[V]) Name() string { return t.name }

// Key returns the persistence key for id.
func (t *LazyTable[V]) Key(id string) string { return t.prefix + id }

// Peek returns the in-memory record without touching the store.
func (t *LazyTable[V]) Peek(id string) (V, bool) {
	v, ok := t.items[id]
	return v, ok
}

// Get returns the record for id, reading it from the store when it is not
// cached yet. An unreadable record is treated as absent.
func (t *LazyTable[V]) Get(ctx context.Context, id string) (V, bool, error) {
	if v, ok := t.items[id]; ok {
		return v, true, nil
	}
	var zero V
	data, ok, err := t.store.Get(ctx, t.Key(id))
	if err != nil {
		return zero, false, fmt.Errorf("load %s %s: %w", t.name, id, err)
	}
	if !ok {
		return zero, false, nil
	}
	var v V
	if err := json.Unmarshal(data, &v); err != nil {
		logging.WarnWithContext(t.logger, "discarding unreadable cache record", "cache_record_malformed",
			logging.String(logging.FieldTable, t.name),
			logging.String(logging.FieldEntityID, id),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "the record is refetched on next use"),
			logging.String(logging.FieldImpact, "one cached record treated as missing"),
		)
		return zero, false, nil
	}
	t.items[id] = v
	return v, true, nil
}

// Set persists v and then caches it. On a store failure the cache is left as it was.
func (t *LazyTable[V]) Set(ctx context.Context, id string, v V) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s %s: %w", t.name, id, err)
	}
	if err := t.store.Set(ctx, t.Key(id), data); err != nil {
		return fmt.Errorf("store %s %s: %w", t.name, id, err)
	}
	t.items[id] = v
	return nil
}

// Remove deletes ids from the store and from memory. It returns how many of
// ids had a record in either layer.
func (t *LazyTable[V]) Remove(ctx context.Context, ids ...string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	keys := make([]string, len(ids))
	var unloaded []string
	present := 0
	for i, id := range ids {
		keys[i] = t.Key(id)
		if _, ok := t.items[id]; ok {
			present++
		} else {
			unloaded = append(unloaded, keys[i])
		}
	}
	if len(unloaded) > 0 {
		found, err := t.store.GetMany(ctx, unloaded...)
		if err != nil {
			return 0, fmt.Errorf("remove %s: %w", t.name, err)
		}
		present += len(found)
	}
	if err := t.store.RemoveMany(ctx, keys...); err != nil {
		return 0, fmt.Errorf("remove %s: %w", t.name, err)
	}
	t.Forget(ids...)
	return present, nil
}

// Forget drops ids from memory only.
func (t *LazyTable[V]) Forget(ids ...string) {
	for _, id := range ids {
		delete(t.items, id)
	}
}

// Reset empties the in-memory layer.
func (t *LazyTable[V]) Reset() {
	t.items = make(map[string]V)
}

// Loaded returns the number of records cached in memory.
func (t *LazyTable[V]) Loaded() int { return len(t.items) }

// LoadedIDs returns the cached ids in ascending order.
func (t *LazyTable[V]) LoadedIDs() []string {
	return slices.Sorted(maps.Keys(t.items))
}
