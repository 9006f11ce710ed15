package cardcache

import (
	"strings"

	"cardcache/internal/logging"
	"cardcache/internal/tier"
)

// stampLocked creates or updates the recency record of id.
func (e *Engine) stampLocked(id string, update func(*tier.Record)) {
	rec, ok := e.t.recency.Get(id)
	if !ok {
		rec = tier.Record{ID: id}
	}
	update(&rec)
	e.t.recency.Set(id, rec)
}

// RecordCollectionOpened moves collectionID to the front of the
// recent-collections list and stamps every member's collection timestamp.
func (e *Engine) RecordCollectionOpened(collectionID string, ids []string) error {
	collectionID, err := normalizeID(collectionID)
	if err != nil {
		return err
	}
	members := cleanIDs(ids)

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialized {
		return ErrNotInitialized
	}

	now := e.now()
	e.t.recent.Set(e.t.recent.Get().Push(collectionID, members, now))
	for _, id := range members {
		e.stampLocked(id, func(r *tier.Record) { r.LastAddedToCollection = now.UnixMilli() })
	}
	e.logger.Debug("collection opened",
		logging.String("collection_id", collectionID),
		logging.Int("members", len(members)),
	)
	return nil
}

// RecordSearch stamps the search timestamp of every id that appeared in a
// search result.
func (e *Engine) RecordSearch(ids ...string) error {
	members := cleanIDs(ids)

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialized {
		return ErrNotInitialized
	}
	now := e.nowMillis()
	for _, id := range members {
		e.stampLocked(id, func(r *tier.Record) { r.LastSearched = now })
	}
	return nil
}

// Tier returns the current tier of id, or 0 when it has no recency record.
func (e *Engine) Tier(id string) int {
	id = strings.TrimSpace(id)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tierLocked(id)
}

func (e *Engine) tierLocked(id string) int {
	rec, ok := e.t.recency.Get(id)
	if !ok {
		return 0
	}
	rec.ID = id
	return tier.Compute(rec, e.t.recent.Get(), e.now())
}

// Recency returns the raw recency record of id.
func (e *Engine) Recency(id string) (tier.Record, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.t.recency.Get(strings.TrimSpace(id))
}

// RecentCollections returns a copy of the recent-collections list.
func (e *Engine) RecentCollections() tier.List {
	e.mu.Lock()
	defer e.mu.Unlock()

	current := e.t.recent.Get()
	out := make(tier.List, len(current))
	for i, entry := range current {
		entry.EntityIDs = append([]string(nil), entry.EntityIDs...)
		out[i] = entry
	}
	return out
}

func cleanIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
