package cardcache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"cardcache/internal/cardcache"
	"cardcache/internal/kvstore"
	"cardcache/internal/logging"
	"cardcache/internal/testsupport"
)

var start = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

const day = 24 * time.Hour

func newEngine(t *testing.T, store kvstore.Store, clock *testsupport.Clock, opts ...cardcache.Option) *cardcache.Engine {
	t.Helper()
	opts = append([]cardcache.Option{cardcache.WithClock(clock.Now)}, opts...)
	engine := cardcache.New(store, logging.NewNop(), opts...)
	if err := engine.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return engine
}

func monster(id, lang, name string, variants ...string) cardcache.Entity {
	images := make([]cardcache.Image, 0, len(variants))
	for _, v := range variants {
		images = append(images, cardcache.Image{VariantID: v, Hash: "h" + v})
	}
	return cardcache.Entity{
		ID:     id,
		Lang:   lang,
		Name:   name,
		Images: images,
		Kind:   cardcache.KindMonster,
		Monster: &cardcache.MonsterFields{
			Attribute:  "DARK",
			Race:       "Spellcaster",
			LevelType:  "level",
			LevelValue: 7,
			ATK:        2500,
			DEF:        2100,
			Types:      []string{"Normal"},
		},
	}
}

func mustSet(t *testing.T, engine *cardcache.Engine, entity cardcache.Entity, force bool) bool {
	t.Helper()
	updated, err := engine.SetEntity(entity, force)
	if err != nil {
		t.Fatalf("SetEntity(%s): %v", entity.ID, err)
	}
	return updated
}

func TestInitializeIsIdempotentAndStampsCleanup(t *testing.T) {
	clock := testsupport.NewClock(start)
	store := kvstore.NewMemory()
	engine := newEngine(t, store, clock)

	stats := engine.Stats()
	if !stats.Initialized {
		t.Fatal("expected engine to be initialized")
	}
	if !stats.LastCleanup.Equal(start) {
		t.Fatalf("LastCleanup = %v, want %v", stats.LastCleanup, start)
	}
	if report, ok := engine.StartupSweep(); !ok || report.SweepID == "" {
		t.Fatalf("StartupSweep = %+v, %v", report, ok)
	}

	mustSet(t, engine, monster("4007", "en", "Dark Magician", "1"), false)
	if err := engine.Initialize(context.Background()); err != nil {
		t.Fatalf("second Initialize: %v", err)
	}
	if len(engine.IDs()) != 1 {
		t.Fatal("second Initialize must not reload tables")
	}
}

func TestInitializeSkipsCleanupWithinInterval(t *testing.T) {
	clock := testsupport.NewClock(start)
	store := kvstore.NewMemory()
	first := newEngine(t, store, clock)
	if err := first.SaveAll(context.Background()); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}

	clock.Advance(time.Hour)
	second := newEngine(t, store, clock)
	if got := second.Stats().LastCleanup; !got.Equal(start) {
		t.Fatalf("cleanup ran again after an hour: LastCleanup = %v", got)
	}
	if _, ok := second.StartupSweep(); ok {
		t.Fatal("no startup sweep expected within the interval")
	}

	clock.Advance(day)
	third := newEngine(t, store, clock)
	if got := third.Stats().LastCleanup; !got.Equal(clock.Now()) {
		t.Fatalf("cleanup should run after the interval: LastCleanup = %v", got)
	}
}

func TestInitializeReturnsLoadFailure(t *testing.T) {
	failing := testsupport.NewFailingStore(kvstore.NewMemory())
	failing.FailReads(true)
	engine := cardcache.New(failing, logging.NewNop())

	err := engine.Initialize(context.Background())
	if !errors.Is(err, testsupport.ErrInjected) {
		t.Fatalf("expected injected error, got %v", err)
	}
	if engine.Initialized() {
		t.Fatal("engine must stay uninitialized after a load failure")
	}
}

func TestInitializeColdStartsFromMalformedBlob(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemory()
	if err := store.Set(ctx, "cardcache/card_a", []byte("<html>")); err != nil {
		t.Fatal(err)
	}
	engine := newEngine(t, store, testsupport.NewClock(start))
	if ids := engine.IDs(); len(ids) != 0 {
		t.Fatalf("expected empty cache, got %v", ids)
	}
}

func TestInitializeSurvivesCleanupFailure(t *testing.T) {
	ctx := context.Background()
	clock := testsupport.NewClock(start)
	store := kvstore.NewMemory()

	seed := newEngine(t, store, clock)
	mustSet(t, seed, monster("1", "en", "Kuriboh", "1"), false)
	if err := seed.SaveAll(ctx); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}

	clock.Advance(2 * day)
	failing := testsupport.NewFailingStore(store)
	failing.FailWrites(true, "")
	engine := newEngine(t, failing, clock)

	if got := engine.Stats().LastCleanup; !got.Equal(start) {
		t.Fatalf("failed sweep advanced the stamp to %v", got)
	}
	if got := engine.Tier("1"); got != 2 {
		t.Fatalf("Tier = %d, want 2", got)
	}
	if !engine.CleanupDue() {
		t.Fatal("cleanup should still be due after a failed sweep")
	}
}

func TestMutationsRequireInitialize(t *testing.T) {
	engine := cardcache.New(kvstore.NewMemory(), nil)
	ctx := context.Background()

	if _, err := engine.SetEntity(monster("1", "en", "x", "1"), false); !errors.Is(err, cardcache.ErrNotInitialized) {
		t.Fatalf("SetEntity: %v", err)
	}
	if err := engine.RecordCollectionOpened("deck", []string{"1"}); !errors.Is(err, cardcache.ErrNotInitialized) {
		t.Fatalf("RecordCollectionOpened: %v", err)
	}
	if err := engine.SaveAll(ctx); !errors.Is(err, cardcache.ErrNotInitialized) {
		t.Fatalf("SaveAll: %v", err)
	}
	if _, err := engine.Cleanup(ctx); !errors.Is(err, cardcache.ErrNotInitialized) {
		t.Fatalf("Cleanup: %v", err)
	}
	if _, ok, err := engine.GetDetail(ctx, "1"); ok || err != nil {
		t.Fatalf("GetDetail before Initialize: ok=%v err=%v", ok, err)
	}
}

func TestInvalidIDs(t *testing.T) {
	engine := newEngine(t, kvstore.NewMemory(), testsupport.NewClock(start))
	if _, err := engine.SetEntity(cardcache.Entity{ID: "  "}, false); !errors.Is(err, cardcache.ErrInvalidID) {
		t.Fatalf("SetEntity blank id: %v", err)
	}
	if err := engine.RecordCollectionOpened("", nil); !errors.Is(err, cardcache.ErrInvalidID) {
		t.Fatalf("RecordCollectionOpened blank id: %v", err)
	}
}

func TestSaveAllPersistsAcrossEngines(t *testing.T) {
	ctx := context.Background()
	clock := testsupport.NewClock(start)
	store := kvstore.NewMemory()

	first := newEngine(t, store, clock)
	mustSet(t, first, monster("4007", "en", "Dark Magician", "1"), false)
	if err := first.RecordCollectionOpened("deck-1", []string{"4007"}); err != nil {
		t.Fatal(err)
	}
	if err := first.SaveAll(ctx); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}

	second := newEngine(t, store, clock)
	if _, ok := second.Reconstruct("4007"); !ok {
		t.Fatal("card not restored")
	}
	if got := second.Tier("4007"); got != 5 {
		t.Fatalf("Tier = %d, want 5", got)
	}
}

func TestSaveAllFailureKeepsMemory(t *testing.T) {
	failing := testsupport.NewFailingStore(kvstore.NewMemory())
	engine := newEngine(t, failing, testsupport.NewClock(start))
	mustSet(t, engine, monster("1", "en", "x", "1"), false)

	failing.FailWrites(true, "")
	if err := engine.SaveAll(context.Background()); !errors.Is(err, testsupport.ErrInjected) {
		t.Fatalf("SaveAll error = %v", err)
	}
	if _, ok := engine.Reconstruct("1"); !ok {
		t.Fatal("failed save must not drop in-memory data")
	}
}

func TestClearAll(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemory()
	engine := newEngine(t, store, testsupport.NewClock(start))
	mustSet(t, engine, monster("1", "en", "x", "1"), false)
	if err := engine.SetDetail(ctx, cardcache.CardC{ID: "1", Lang: "en", Text: "text"}); err != nil {
		t.Fatal(err)
	}
	if err := engine.SaveAll(ctx); err != nil {
		t.Fatal(err)
	}

	if err := engine.ClearAll(ctx); err != nil {
		t.Fatalf("ClearAll: %v", err)
	}
	if keys := store.Keys(); len(keys) != 0 {
		t.Fatalf("store not empty: %v", keys)
	}
	stats := engine.Stats()
	if stats.CardA != 0 || stats.RecencyRecords != 0 || stats.CardCLoaded != 0 {
		t.Fatalf("tables not empty: %+v", stats)
	}
	if !stats.Initialized {
		t.Fatal("ClearAll must leave the engine usable")
	}
}

func TestStatsCountsTables(t *testing.T) {
	ctx := context.Background()
	engine := newEngine(t, kvstore.NewMemory(), testsupport.NewClock(start))
	mustSet(t, engine, monster("1", "en", "a", "1"), false)
	mustSet(t, engine, monster("2", "en", "b", "1"), false)
	if err := engine.SetDetail(ctx, cardcache.CardC{ID: "2", Text: "t"}); err != nil {
		t.Fatal(err)
	}
	if err := engine.RecordCollectionOpened("deck", []string{"1", "3"}); err != nil {
		t.Fatal(err)
	}

	stats := engine.Stats()
	if stats.CardA != 2 || stats.CardB != 2 || stats.CardCLoaded != 1 {
		t.Fatalf("card counts = %+v", stats)
	}
	if stats.RecencyRecords != 3 || stats.RecentCollections != 1 {
		t.Fatalf("recency counts = %+v", stats)
	}
	rows := stats.Tables()
	if len(rows) != 9 || rows[0].Name != "recency" || !rows[4].Lazy {
		t.Fatalf("unexpected table rows: %+v", rows)
	}
}
