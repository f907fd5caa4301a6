package kv_test

import (
	"context"
	"path/filepath"
	"testing"

	"mamatimer/internal/platform/kv"
)

func exerciseStore(t *testing.T, store kv.Store) {
	t.Helper()
	ctx := context.Background()

	if _, found, err := store.Get(ctx, "fetal_count_records"); err != nil || found {
		t.Fatalf("expected missing key, found=%t err=%v", found, err)
	}
	if err := store.Set(ctx, "fetal_count_records", `[{"id":"a"}]`); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Set(ctx, "fetal_count_records", `[{"id":"b"}]`); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	value, found, err := store.Get(ctx, "fetal_count_records")
	if err != nil || !found {
		t.Fatalf("get after set: found=%t err=%v", found, err)
	}
	if value != `[{"id":"b"}]` {
		t.Fatalf("expected overwritten value, got %s", value)
	}
	if err := store.Delete(ctx, "fetal_count_records"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(ctx, "fetal_count_records"); err != nil {
		t.Fatalf("deleting a missing key must be a no-op: %v", err)
	}
	if _, found, _ := store.Get(ctx, "fetal_count_records"); found {
		t.Fatalf("key should be gone after delete")
	}
	if err := store.Set(ctx, "../escape", "x"); err == nil {
		t.Fatalf("expected invalid key error")
	}
}

func TestFileStore(t *testing.T) {
	t.Parallel()
	exerciseStore(t, kv.NewFileStore(filepath.Join(t.TempDir(), "store")))
}

func TestSQLiteStore(t *testing.T) {
	t.Parallel()
	store, err := kv.NewSQLiteStore(filepath.Join(t.TempDir(), "db", "kv.db"))
	if err != nil {
		t.Fatalf("new sqlite store: %v", err)
	}
	defer store.Close()
	exerciseStore(t, store)
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()
	exerciseStore(t, kv.NewMemoryStore())
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	ctx := context.Background()
	if err := kv.NewFileStore(dir).Set(ctx, "contraction_records", "[]"); err != nil {
		t.Fatalf("set: %v", err)
	}
	value, found, err := kv.NewFileStore(dir).Get(ctx, "contraction_records")
	if err != nil || !found || value != "[]" {
		t.Fatalf("expected persisted value, got %q found=%t err=%v", value, found, err)
	}
}

func TestJSONHelpers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := kv.NewMemoryStore()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}
	var got payload
	found, err := kv.GetJSON(ctx, store, "missing", &got)
	if err != nil || found {
		t.Fatalf("missing key: found=%v err=%v", found, err)
	}

	if err := kv.SetJSON(ctx, store, "p", payload{Name: "a", Count: 2}); err != nil {
		t.Fatalf("set: %v", err)
	}
	found, err = kv.GetJSON(ctx, store, "p", &got)
	if err != nil || !found || got != (payload{Name: "a", Count: 2}) {
		t.Fatalf("get: found=%v err=%v got=%+v", found, err, got)
	}

	if err := store.Set(ctx, "blank", "  "); err != nil {
		t.Fatalf("set blank: %v", err)
	}
	if found, err := kv.GetJSON(ctx, store, "blank", &got); err != nil || found {
		t.Fatalf("blank value: found=%v err=%v", found, err)
	}

	if err := store.Set(ctx, "bad", "{"); err != nil {
		t.Fatalf("set bad: %v", err)
	}
	if _, err := kv.GetJSON(ctx, store, "bad", &got); err == nil {
		t.Fatalf("expected decode error")
	}
}
