package tablestore_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"testing"

	"cardcache/internal/kvstore"
	"cardcache/internal/tablestore"
	"cardcache/internal/testsupport"
)

type note struct {
	Text string `json:"text"`
}

func TestLoadAllMissingKeysStartEmpty(t *testing.T) {
	store := kvstore.NewMemory()
	notes := tablestore.NewBulkTable[string, note]("notes", "t/notes")
	notes.Set("stale", note{Text: "x"})
	slot := tablestore.NewSlot[[]string]("recent", "t/recent")
	slot.Set([]string{"stale"})

	if err := tablestore.LoadAll(context.Background(), store, nil, notes, slot); err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if notes.Len() != 0 {
		t.Fatalf("expected empty table, got %d entries", notes.Len())
	}
	if slot.Get() != nil {
		t.Fatalf("expected zero slot, got %v", slot.Get())
	}
}

func TestSaveAllThenLoadAll(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemory()

	notes := tablestore.NewBulkTable[string, note]("notes", "t/notes")
	notes.Set("b", note{Text: "two"})
	notes.Set("a", note{Text: "one"})
	slot := tablestore.NewSlot[[]string]("recent", "t/recent")
	slot.Set([]string{"a"})

	if err := tablestore.SaveAll(ctx, store, notes, slot); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}
	if got := store.Keys(); !slices.Equal(got, []string{"t/notes", "t/recent"}) {
		t.Fatalf("stored keys = %v", got)
	}

	loaded := tablestore.NewBulkTable[string, note]("notes", "t/notes")
	loadedSlot := tablestore.NewSlot[[]string]("recent", "t/recent")
	if err := tablestore.LoadAll(ctx, store, nil, loaded, loadedSlot); err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if got := loaded.Keys(); !slices.Equal(got, []string{"a", "b"}) {
		t.Fatalf("Keys = %v", got)
	}
	if v, ok := loaded.Get("b"); !ok || v.Text != "two" {
		t.Fatalf("Get(b) = %+v, %v", v, ok)
	}
	if !slices.Equal(loadedSlot.Get(), []string{"a"}) {
		t.Fatalf("slot = %v", loadedSlot.Get())
	}
}

func TestLoadAllMalformedBlobWarnsAndStartsEmpty(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemory()
	if err := store.Set(ctx, "t/notes", []byte("{not json")); err != nil {
		t.Fatal(err)
	}
	if err := store.Set(ctx, "t/other", []byte(`{"x":{"text":"ok"}}`)); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	notes := tablestore.NewBulkTable[string, note]("notes", "t/notes")
	other := tablestore.NewBulkTable[string, note]("other", "t/other")
	if err := tablestore.LoadAll(ctx, store, logger, notes, other); err != nil {
		t.Fatalf("LoadAll returned error for malformed blob: %v", err)
	}
	if notes.Len() != 0 {
		t.Fatalf("malformed table should be empty, got %d", notes.Len())
	}
	if other.Len() != 1 {
		t.Fatalf("healthy table should load, got %d", other.Len())
	}
	out := buf.String()
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "event_type=cache_table_malformed") {
		t.Fatalf("expected malformed warning, got:\n%s", out)
	}
}

func TestLoadAllNullBlobIsUsable(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemory()
	if err := store.Set(ctx, "t/notes", []byte("null")); err != nil {
		t.Fatal(err)
	}
	notes := tablestore.NewBulkTable[string, note]("notes", "t/notes")
	if err := tablestore.LoadAll(ctx, store, nil, notes); err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	notes.Set("a", note{})
	if notes.Len() != 1 {
		t.Fatalf("Len = %d", notes.Len())
	}
}

func TestLoadAllPropagatesStoreFailure(t *testing.T) {
	failing := testsupport.NewFailingStore(kvstore.NewMemory())
	failing.FailReads(true)
	notes := tablestore.NewBulkTable[string, note]("notes", "t/notes")
	err := tablestore.LoadAll(context.Background(), failing, nil, notes)
	if !errors.Is(err, testsupport.ErrInjected) {
		t.Fatalf("expected injected error, got %v", err)
	}
}

func TestBulkTableDelete(t *testing.T) {
	table := tablestore.NewBulkTable[string, int]("n", "k")
	table.Set("a", 1)
	table.Set("b", 2)
	if removed := table.Delete("a", "missing"); removed != 1 {
		t.Fatalf("Delete removed %d, want 1", removed)
	}
	if table.Has("a") || !table.Has("b") {
		t.Fatal("unexpected contents after Delete")
	}
	count := 0
	table.Range(func(string, int) bool { count++; return true })
	if count != 1 {
		t.Fatalf("Range visited %d entries", count)
	}
}

func TestLazyTableReadsThroughOnce(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemory()
	if err := store.Set(ctx, "t/text/1", []byte(`{"text":"hello"}`)); err != nil {
		t.Fatal(err)
	}
	failing := testsupport.NewFailingStore(store)
	table := tablestore.NewLazyTable[note]("text", "t/text/", failing, nil)

	if table.Loaded() != 0 {
		t.Fatal("lazy table must start empty")
	}
	v, ok, err := table.Get(ctx, "1")
	if err != nil || !ok || v.Text != "hello" {
		t.Fatalf("Get = %+v ok=%v err=%v", v, ok, err)
	}
	if table.Loaded() != 1 {
		t.Fatalf("Loaded = %d, want 1", table.Loaded())
	}

	failing.FailReads(true)
	if _, ok, err := table.Get(ctx, "1"); err != nil || !ok {
		t.Fatalf("cached Get should not hit the store: ok=%v err=%v", ok, err)
	}
	if _, _, err := table.Get(ctx, "2"); err == nil {
		t.Fatal("expected read error for uncached id")
	}
}

func TestLazyTableMissingAndMalformed(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemory()
	if err := store.Set(ctx, "t/text/bad", []byte("][")); err != nil {
		t.Fatal(err)
	}
	table := tablestore.NewLazyTable[note]("text", "t/text/", store, nil)
	if _, ok, err := table.Get(ctx, "absent"); ok || err != nil {
		t.Fatalf("absent: ok=%v err=%v", ok, err)
	}
	if _, ok, err := table.Get(ctx, "bad"); ok || err != nil {
		t.Fatalf("malformed: ok=%v err=%v", ok, err)
	}
	if table.Loaded() != 0 {
		t.Fatalf("nothing should be cached, got %d", table.Loaded())
	}
}

func TestLazyTableSetAndRemove(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemory()
	failing := testsupport.NewFailingStore(store)
	table := tablestore.NewLazyTable[note]("text", "t/text/", failing, nil)

	if err := table.Set(ctx, "1", note{Text: "a"}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "t/text/1"); !ok {
		t.Fatal("Set must write through to the store")
	}

	failing.FailWrites(true, "")
	if err := table.Set(ctx, "1", note{Text: "b"}); err == nil {
		t.Fatal("expected write failure")
	}
	if v, _ := table.Peek("1"); v.Text != "a" {
		t.Fatalf("failed Set changed memory: %+v", v)
	}
	failing.FailWrites(false, "")

	if err := store.Set(ctx, "t/text/2", []byte(`{"text":"c"}`)); err != nil {
		t.Fatal(err)
	}
	removed, err := table.Remove(ctx, "1", "2", "3")
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if removed != 2 {
		t.Fatalf("removed = %d, want 2 (one cached, one only persisted)", removed)
	}
	if _, ok := table.Peek("1"); ok {
		t.Fatal("Remove must drop the memory layer")
	}
	if _, ok, _ := store.Get(ctx, "t/text/1"); ok {
		t.Fatal("Remove must drop the persisted key")
	}
}
