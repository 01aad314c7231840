package kvstore

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	layout "github.com/cubeos/go-layout/components/layout"
)

func openTestBackend(t *testing.T) *SQLiteBackend {
	t.Helper()
	path := filepath.Join(t.TempDir(), "layout.db")
	backend, err := OpenSQLite(context.Background(), path)
	if err != nil {
		t.Fatalf("OpenSQLite returned error: %v", err)
	}
	t.Cleanup(func() { _ = backend.Close() })
	return backend
}

func TestWriteReadRoundTrip(t *testing.T) {
	backend := openTestBackend(t)
	ctx := context.Background()

	if err := backend.Write(ctx, layout.ModeStandard, "favorite_cols", json.RawMessage(`5`)); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if err := backend.Write(ctx, layout.ModeStandard, "clock_format", json.RawMessage(`"12h"`)); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}

	stored, err := backend.ReadAll(ctx, layout.ModeStandard)
	if err != nil {
		t.Fatalf("ReadAll returned error: %v", err)
	}
	if string(stored["favorite_cols"]) != "5" {
		t.Fatalf("favorite_cols = %q", stored["favorite_cols"])
	}
	if string(stored["clock_format"]) != `"12h"` {
		t.Fatalf("clock_format = %q", stored["clock_format"])
	}
}

func TestWriteUpserts(t *testing.T) {
	backend := openTestBackend(t)
	ctx := context.Background()

	if err := backend.Write(ctx, layout.ModeStandard, "my_apps_rows", json.RawMessage(`2`)); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if err := backend.Write(ctx, layout.ModeStandard, "my_apps_rows", json.RawMessage(`4`)); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}

	stored, err := backend.ReadAll(ctx, layout.ModeStandard)
	if err != nil {
		t.Fatalf("ReadAll returned error: %v", err)
	}
	if len(stored) != 1 || string(stored["my_apps_rows"]) != "4" {
		t.Fatalf("upsert result %v", stored)
	}
}

func TestModesAreIsolated(t *testing.T) {
	backend := openTestBackend(t)
	ctx := context.Background()

	if err := backend.Write(ctx, layout.ModeStandard, "favorite_cols", json.RawMessage(`3`)); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if err := backend.Write(ctx, layout.ModeAdvanced, "favorite_cols", json.RawMessage(`6`)); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}

	standard, err := backend.ReadAll(ctx, layout.ModeStandard)
	if err != nil {
		t.Fatalf("ReadAll returned error: %v", err)
	}
	advanced, err := backend.ReadAll(ctx, layout.ModeAdvanced)
	if err != nil {
		t.Fatalf("ReadAll returned error: %v", err)
	}
	if string(standard["favorite_cols"]) != "3" || string(advanced["favorite_cols"]) != "6" {
		t.Fatalf("modes bleed: standard %v advanced %v", standard, advanced)
	}
}

func TestReadAllEmptyDatabase(t *testing.T) {
	backend := openTestBackend(t)
	stored, err := backend.ReadAll(context.Background(), layout.ModeStandard)
	if err != nil {
		t.Fatalf("ReadAll returned error: %v", err)
	}
	if len(stored) != 0 {
		t.Fatalf("expected empty map, got %v", stored)
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.db")
	ctx := context.Background()

	backend, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("OpenSQLite returned error: %v", err)
	}
	if err := backend.Write(ctx, layout.ModeStandard, "date_format", json.RawMessage(`"iso"`)); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if err := backend.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	reopened, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("reopen returned error: %v", err)
	}
	defer reopened.Close()
	stored, err := reopened.ReadAll(ctx, layout.ModeStandard)
	if err != nil {
		t.Fatalf("ReadAll returned error: %v", err)
	}
	if string(stored["date_format"]) != `"iso"` {
		t.Fatalf("date_format = %q", stored["date_format"])
	}
}

func TestBackedConfigStoreRoundTrip(t *testing.T) {
	backend := openTestBackend(t)
	ctx := context.Background()

	store := layout.NewConfigStore(layout.StoreOptions{Backend: backend})
	if err := store.Load(ctx); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if err := store.Update(ctx, "favorite_cols", json.RawMessage(`6`)); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if err := store.Flush(ctx); err != nil {
		t.Fatalf("Flush returned error: %v", err)
	}
	_ = store.Close()

	store2 := layout.NewConfigStore(layout.StoreOptions{Backend: backend})
	if err := store2.Load(ctx); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	defer store2.Close()
	if got := store2.Snapshot().FavoriteCols; got != 6 {
		t.Fatalf("favorite_cols = %d, want 6", got)
	}
}
