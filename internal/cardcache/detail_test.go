package cardcache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"cardcache/internal/cardcache"
	"cardcache/internal/kvstore"
	"cardcache/internal/testsupport"
)

func TestSetDetailRequiresBasicInfo(t *testing.T) {
	engine := newEngine(t, kvstore.NewMemory(), testsupport.NewClock(start))
	err := engine.SetDetail(context.Background(), cardcache.CardC{ID: "1", Text: "orphan"})
	if !errors.Is(err, cardcache.ErrMissingBasicInfo) {
		t.Fatalf("expected ErrMissingBasicInfo, got %v", err)
	}
}

func TestSetDetailStampsAndPersists(t *testing.T) {
	ctx := context.Background()
	clock := testsupport.NewClock(start)
	store := kvstore.NewMemory()
	engine := newEngine(t, store, clock)
	mustSet(t, engine, monster("1", "en", "x", "1"), false)

	clock.Advance(time.Minute)
	if err := engine.SetDetail(ctx, cardcache.CardC{ID: "1", Lang: "en", Text: "Long text"}); err != nil {
		t.Fatalf("SetDetail: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "cardcache/card_c/1"); !ok {
		t.Fatal("detail must be written to the store immediately")
	}

	c, ok, err := engine.GetDetail(ctx, "1")
	if err != nil || !ok {
		t.Fatalf("GetDetail: ok=%v err=%v", ok, err)
	}
	now := clock.Now().UnixMilli()
	if c.FetchedAt != now || c.LangFetchedAt["en"] != now {
		t.Fatalf("fetch stamps = %d %v, want %d", c.FetchedAt, c.LangFetchedAt, now)
	}
	rec, _ := engine.Recency("1")
	if rec.LastShownDetail != now {
		t.Fatalf("LastShownDetail = %d, want %d", rec.LastShownDetail, now)
	}
	if got := engine.Tier("1"); got != 4 {
		t.Fatalf("Tier = %d, want 4", got)
	}
}

func TestGetDetailLoadsLazily(t *testing.T) {
	ctx := context.Background()
	clock := testsupport.NewClock(start)
	store := kvstore.NewMemory()

	first := newEngine(t, store, clock)
	mustSet(t, first, monster("1", "en", "x", "1"), false)
	if err := first.SetDetail(ctx, cardcache.CardC{ID: "1", Lang: "en", Text: "body"}); err != nil {
		t.Fatal(err)
	}
	if err := first.SaveAll(ctx); err != nil {
		t.Fatal(err)
	}

	second := newEngine(t, store, clock)
	if got := second.Stats().CardCLoaded; got != 0 {
		t.Fatalf("detail records loaded at startup: %d", got)
	}
	c, ok, err := second.GetDetail(ctx, "1")
	if err != nil || !ok || c.Text != "body" {
		t.Fatalf("GetDetail = %+v ok=%v err=%v", c, ok, err)
	}
	if got := second.Stats().CardCLoaded; got != 1 {
		t.Fatalf("CardCLoaded = %d, want 1", got)
	}
	if _, ok, err := second.GetDetail(ctx, "2"); ok || err != nil {
		t.Fatalf("absent detail: ok=%v err=%v", ok, err)
	}
}

func TestGetDetailPropagatesStoreFailure(t *testing.T) {
	failing := testsupport.NewFailingStore(kvstore.NewMemory())
	engine := newEngine(t, failing, testsupport.NewClock(start))
	failing.FailReads(true)
	if _, _, err := engine.GetDetail(context.Background(), "1"); !errors.Is(err, testsupport.ErrInjected) {
		t.Fatalf("expected injected error, got %v", err)
	}
}

func TestSetDetailFailureLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	failing := testsupport.NewFailingStore(kvstore.NewMemory())
	clock := testsupport.NewClock(start)
	engine := newEngine(t, failing, clock)
	mustSet(t, engine, monster("1", "en", "x", "1"), false)

	failing.FailWrites(true, "cardcache/card_c/")
	clock.Advance(time.Hour)
	if err := engine.SetDetail(ctx, cardcache.CardC{ID: "1", Text: "t"}); !errors.Is(err, testsupport.ErrInjected) {
		t.Fatalf("SetDetail error = %v", err)
	}
	if rec, _ := engine.Recency("1"); rec.LastShownDetail != 0 {
		t.Fatalf("failed SetDetail stamped recency: %+v", rec)
	}
	if got := engine.Stats().CardCLoaded; got != 0 {
		t.Fatalf("failed SetDetail cached a record")
	}
}

func TestTouchDetailRefreshesLanguage(t *testing.T) {
	ctx := context.Background()
	clock := testsupport.NewClock(start)
	engine := newEngine(t, kvstore.NewMemory(), clock)
	mustSet(t, engine, monster("1", "en", "x", "1"), false)
	if err := engine.SetDetail(ctx, cardcache.CardC{ID: "1", Lang: "en", Text: "body"}); err != nil {
		t.Fatal(err)
	}

	clock.Advance(3 * day)
	if engine.DetailFresh("1", "en", day) {
		t.Fatal("detail should be stale after three days")
	}
	if err := engine.TouchDetail(ctx, "1", "ja"); err != nil {
		t.Fatalf("TouchDetail: %v", err)
	}
	c, _, _ := engine.GetDetail(ctx, "1")
	now := clock.Now().UnixMilli()
	if c.Text != "body" || c.Lang != "en" {
		t.Fatalf("TouchDetail changed content: %+v", c)
	}
	if c.LangFetchedAt["ja"] != now || c.LangFetchedAt["en"] != start.UnixMilli() {
		t.Fatalf("LangFetchedAt = %v", c.LangFetchedAt)
	}
	if !engine.DetailFresh("1", "ja", day) || engine.DetailFresh("1", "en", day) {
		t.Fatal("freshness should follow the touched language only")
	}
	if rec, _ := engine.Recency("1"); rec.LastShownDetail != now {
		t.Fatalf("TouchDetail did not stamp detail view: %+v", rec)
	}

	if err := engine.TouchDetail(ctx, "1", ""); err != nil {
		t.Fatal(err)
	}
	if !engine.DetailFresh("1", "en", day) {
		t.Fatal("empty language should touch the record's own language")
	}
}

func TestTouchDetailMissingIsNoop(t *testing.T) {
	engine := newEngine(t, kvstore.NewMemory(), testsupport.NewClock(start))
	if err := engine.TouchDetail(context.Background(), "1", "en"); err != nil {
		t.Fatalf("TouchDetail: %v", err)
	}
	if _, ok := engine.Recency("1"); ok {
		t.Fatal("touching a missing detail must not create a recency record")
	}
}
