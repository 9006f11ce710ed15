package tablestore

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// Bulk is a collection persisted as one blob and held in memory in full.
// BulkTable and Slot implement it.
type Bulk interface {
	// Name is the short label used in logs and stats.
	Name() string
	// StoreKey is the persistence key of the blob.
	StoreKey() string
	// Decode replaces the in-memory contents with data.
	Decode(data []byte) error
	// Encode serializes the in-memory contents.
	Encode() ([]byte, error)
	// Reset empties the in-memory contents.
	Reset()
}

// BulkTable is an always-loaded map persisted under a single key.
// It is not safe for concurrent mutation; the owner serializes access.
type BulkTable[K ~string, V any] struct {
	name  string
	key   string
	items map[K]V
}

// NewBulkTable returns an empty table persisted under key.
func NewBulkTable[K ~string, V any](name, key string) *BulkTable[K, V] {
	return &BulkTable[K, V]{name: name, key: key, items: make(map[K]V)}
}

func (t *BulkTable[K, V]) Name() string     { return t.name }
func (t *BulkTable[K, V]) StoreKey() string { return t.key }

func (t *BulkTable[K, V]) Get(id K) (V, bool) {
	v, ok := t.items[id]
	return v, ok
}

func (t *BulkTable[K, V]) Has(id K) bool {
	_, ok := t.items[id]
	return ok
}

func (t *BulkTable[K, V]) Set(id K, v V) {
	t.items[id] = v
}

// Delete removes ids and returns how many were present.
func (t *BulkTable[K, V]) Delete(ids ...K) int {
	removed := 0
	for _, id := range ids {
		if _, ok := t.items[id]; ok {
			delete(t.items, id)
			removed++
		}
	}
	return removed
}

func (t *BulkTable[K, V]) Len() int { return len(t.items) }

// Keys returns every id in ascending order.
func (t *BulkTable[K, V]) Keys() []K {
	return slices.Sorted(maps.Keys(t.items))
}

// Range calls fn for every entry until fn returns false. Order is unspecified.
func (t *BulkTable[K, V]) Range(fn func(K, V) bool) {
	for id, v := range t.items {
		if !fn(id, v) {
			return
		}
	}
}

func (t *BulkTable[K, V]) Reset() {
	t.items = make(map[K]V)
}

func (t *BulkTable[K, V]) Decode(data []byte) error {
	items := make(map[K]V)
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("decode %s: %w", t.name, err)
	}
	if items == nil {
		items = make(map[K]V)
	}
	t.items = items
	return nil
}

func (t *BulkTable[K, V]) Encode() ([]byte, error) {
	data, err := json.Marshal(t.items)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", t.name, err)
	}
	return data, nil
}

// Slot is a single always-loaded value persisted under one key.
type Slot[T any] struct {
	name  string
	key   string
	value T
}

// NewSlot returns a zero-valued slot persisted under key.
func NewSlot[T any](name, key string) *Slot[T] {
	return &Slot[T]{name: name, key: key}
}

func (s *Slot[T]) Name() string     { return s.name }
func (s *Slot[T]) StoreKey() string { return s.key }
func (s *Slot[T]) Get() T           { return s.value }
func (s *Slot[T]) Set(v T)          { s.value = v }

func (s *Slot[T]) Reset() {
	var zero T
	s.value = zero
}

func (s *Slot[T]) Decode(data []byte) error {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("decode %s: %w", s.name, err)
	}
	s.value = v
	return nil
}

func (s *Slot[T]) Encode() ([]byte, error) {
	data, err := json.Marshal(s.value)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", s.name, err)
	}
	return data, nil
}
