package tier_test

import (
	"fmt"
	"slices"
	"testing"
	"time"

	"cardcache/internal/tier"
)

var base = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func ago(d time.Duration) int64 {
	return base.Add(-d).UnixMilli()
}

func TestComputePrecedence(t *testing.T) {
	day := 24 * time.Hour
	cases := []struct {
		name string
		rec  tier.Record
		want int
	}{
		{"never used", tier.Record{ID: "1"}, 0},
		{"collection add today", tier.Record{ID: "1", LastAddedToCollection: ago(time.Hour)}, 4},
		{"detail view six days ago", tier.Record{ID: "1", LastShownDetail: ago(6 * day)}, 4},
		{"detail view exactly a week ago", tier.Record{ID: "1", LastShownDetail: ago(tier.Week)}, 3},
		{"collection add 20 days ago", tier.Record{ID: "1", LastAddedToCollection: ago(20 * day)}, 3},
		{"deck signal beats stale search", tier.Record{ID: "1", LastAddedToCollection: ago(day), LastSearched: ago(60 * day)}, 4},
		{"newest deck signal wins", tier.Record{ID: "1", LastAddedToCollection: ago(40 * day), LastShownDetail: ago(2 * day)}, 4},
		{"search today", tier.Record{ID: "1", LastSearched: ago(time.Minute)}, 2},
		{"search ten days ago", tier.Record{ID: "1", LastSearched: ago(10 * day)}, 1},
		{"stale deck falls back to search", tier.Record{ID: "1", LastShownDetail: ago(45 * day), LastSearched: ago(day)}, 2},
		{"everything stale", tier.Record{ID: "1", LastAddedToCollection: ago(31 * day), LastShownDetail: ago(50 * day), LastSearched: ago(40 * day)}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tier.Compute(tc.rec, nil, base); got != tc.want {
				t.Fatalf("Compute = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestComputeCollectionMembershipDominates(t *testing.T) {
	recent := tier.List(nil).Push("deck-1", []string{"42", "43"}, base.Add(-90*24*time.Hour))
	for _, rec := range []tier.Record{
		{ID: "42"},
		{ID: "42", LastSearched: ago(400 * 24 * time.Hour)},
		{ID: "42", LastShownDetail: ago(time.Hour)},
	} {
		if got := tier.Compute(rec, recent, base); got != 5 {
			t.Fatalf("Compute(%+v) = %d, want 5", rec, got)
		}
	}
	if got := tier.Compute(tier.Record{ID: "44"}, recent, base); got != 0 {
		t.Fatalf("non-member tier = %d, want 0", got)
	}
}

func TestSearchDecayScenario(t *testing.T) {
	rec := tier.Record{ID: "7", LastSearched: base.UnixMilli()}
	if got := tier.Compute(rec, nil, base); got != 2 {
		t.Fatalf("fresh search tier = %d, want 2", got)
	}
	later := base.Add(40 * 24 * time.Hour)
	if got := tier.Compute(rec, nil, later); got != 0 {
		t.Fatalf("tier after 40 days = %d, want 0", got)
	}
}

func TestListBoundedAndOrdered(t *testing.T) {
	var list tier.List
	for i := range 10 {
		list = list.Push(fmt.Sprintf("c%d", i), []string{"x"}, base.Add(time.Duration(i)*time.Minute))
	}
	if len(list) != tier.MaxRecentCollections {
		t.Fatalf("len = %d, want %d", len(list), tier.MaxRecentCollections)
	}
	want := []string{"c9", "c8", "c7", "c6", "c5"}
	if got := list.IDs(); !slices.Equal(got, want) {
		t.Fatalf("IDs = %v, want %v", got, want)
	}
}

func TestListPushMovesDuplicateToFront(t *testing.T) {
	list := tier.List(nil).
		Push("a", []string{"1"}, base).
		Push("b", []string{"2"}, base).
		Push("c", []string{"3"}, base)

	list = list.Push("a", []string{"9", "9"}, base.Add(time.Hour))
	if len(list) != 3 {
		t.Fatalf("len = %d, want 3", len(list))
	}
	if got := list.IDs(); !slices.Equal(got, []string{"a", "c", "b"}) {
		t.Fatalf("IDs = %v", got)
	}
	if !slices.Equal(list[0].EntityIDs, []string{"9"}) {
		t.Fatalf("members = %v, want [9]", list[0].EntityIDs)
	}
	if list.Contains("1") {
		t.Fatal("replaced entry members should be gone")
	}
	if list[0].OpenedAt != base.Add(time.Hour).UnixMilli() {
		t.Fatalf("OpenedAt not refreshed: %d", list[0].OpenedAt)
	}
}

func TestPushDoesNotMutateReceiver(t *testing.T) {
	orig := tier.List(nil).Push("a", []string{"1"}, base)
	_ = orig.Push("b", []string{"2"}, base)
	if len(orig) != 1 || orig[0].CollectionID != "a" {
		t.Fatalf("receiver mutated: %+v", orig)
	}
}
