package tier

import "time"

// Horizons used by Compute.
const (
	Week  = 7 * 24 * time.Hour
	Month = 30 * 24 * time.Hour
)

// Record holds the raw recency signals of one entity as unix milliseconds.
// Zero means the event never happened. A tier is never stored; it is always
// derived from these fields by Compute.
type Record struct {
	ID                    string `json:"id"`
	LastAddedToCollection int64  `json:"lastAddedToCollection,omitempty"`
	LastShownDetail       int64  `json:"lastShownDetail,omitempty"`
	LastSearched          int64  `json:"lastSearched,omitempty"`
}

// Compute maps a record and the recent-collections list to a tier in [0,5].
// The first matching rule wins:
//
//	5  id is in any recently opened collection
//	4  collection add or detail view within a week
//	3  collection add or detail view within a month
//	2  search within a week
//	1  search within a month
//	0  otherwise
func Compute(rec Record, recent List, now time.Time) int {
	if recent.Contains(rec.ID) {
		return 5
	}
	nowMs := now.UnixMilli()

	deck := max(rec.LastAddedToCollection, rec.LastShownDetail)
	if deck > 0 {
		age := time.Duration(nowMs-deck) * time.Millisecond
		if age < Week {
			return 4
		}
		if age < Month {
			return 3
		}
	}

	if rec.LastSearched > 0 {
		age := time.Duration(nowMs-rec.LastSearched) * time.Millisecond
		if age < Week {
			return 2
		}
		if age < Month {
			return 1
		}
	}
	return 0
}
