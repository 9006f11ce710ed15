package tier

import (
	"slices"
	"time"
)

// MaxRecentCollections bounds the recent-collections list.
const MaxRecentCollections = 5

// Collection is one entry of the recent-collections list.
type Collection struct {
	CollectionID string   `json:"collectionId"`
	EntityIDs    []string `json:"entityIds"`
	OpenedAt     int64    `json:"openedAt"`
}

// Has reports whether id belongs to the collection.
func (c Collection) Has(id string) bool {
	return slices.Contains(c.EntityIDs, id)
}

// List is the most-recent-first list of opened collections.
type List []Collection

// Push moves collectionID to the front with the given members, replacing
// any earlier entry for the same collection, and truncates the list.
// Duplicate member ids are collapsed.
func (l List) Push(collectionID string, entityIDs []string, openedAt time.Time) List {
	members := make([]string, 0, len(entityIDs))
	seen := make(map[string]struct{}, len(entityIDs))
	for _, id := range entityIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		members = append(members, id)
	}

	next := make(List, 0, MaxRecentCollections)
	next = append(next, Collection{
		CollectionID: collectionID,
		EntityIDs:    members,
		OpenedAt:     openedAt.UnixMilli(),
	})
	for _, entry := range l {
		if entry.CollectionID == collectionID {
			continue
		}
		next = append(next, entry)
	}
	if len(next) > MaxRecentCollections {
		next = next[:MaxRecentCollections]
	}
	return next
}

// Contains reports whether id appears in any listed collection.
func (l List) Contains(id string) bool {
	for _, entry := range l {
		if entry.Has(id) {
			return true
		}
	}
	return false
}

// IDs returns the collection ids, most recent first.
func (l List) IDs() []string {
	ids := make([]string, len(l))
	for i, entry := range l {
		ids[i] = entry.CollectionID
	}
	return ids
}
