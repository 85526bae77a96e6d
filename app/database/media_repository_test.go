package database

import (
	"path/filepath"
	"testing"
	"time"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewConnection(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, _, err := RunMigrations(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return db
}

func testItem(externalID, name string) MediaItem {
	return MediaItem{
		ExternalID:  externalID,
		Name:        name,
		Kind:        KindMovie,
		DateCreated: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		SizeBytes:   1 << 30,
		Payload: ItemPayload{
			AudioLanguages: []string{"en"},
		},
	}
}

func TestReplaceUserItemsInitialSnapshot(t *testing.T) {
	repo := NewMediaItemRepository(newTestDB(t))

	stats, err := repo.ReplaceUserItems("alice", []MediaItem{
		testItem("m1", "First Movie"),
		testItem("m2", "Second Movie"),
	})
	if err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	if stats.Inserted != 2 || stats.Updated != 0 || stats.Removed != 0 {
		t.Errorf("Expected 2 inserts, got %+v", stats)
	}

	items, err := repo.GetItems("alice")
	if err != nil {
		t.Fatalf("GetItems failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(items))
	}
	if items[0].ID == "" {
		t.Errorf("Expected generated row id")
	}
	if len(items[0].Payload.AudioLanguages) != 1 || items[0].Payload.AudioLanguages[0] != "en" {
		t.Errorf("Payload should round-trip, got %v", items[0].Payload.AudioLanguages)
	}
}

func TestReplaceUserItemsReconciles(t *testing.T) {
	repo := NewMediaItemRepository(newTestDB(t))

	if _, err := repo.ReplaceUserItems("alice", []MediaItem{
		testItem("m1", "First Movie"),
		testItem("m2", "Second Movie"),
	}); err != nil {
		t.Fatalf("Initial replace failed: %v", err)
	}

	// m1 renamed, m2 gone, m3 new.
	updated := testItem("m1", "First Movie Extended")
	stats, err := repo.ReplaceUserItems("alice", []MediaItem{
		updated,
		testItem("m3", "Third Movie"),
	})
	if err != nil {
		t.Fatalf("Second replace failed: %v", err)
	}

	if stats.Inserted != 1 || stats.Updated != 1 || stats.Removed != 1 {
		t.Errorf("Expected 1 insert, 1 update, 1 removal, got %+v", stats)
	}

	items, err := repo.GetItems("alice")
	if err != nil {
		t.Fatalf("GetItems failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("Expected 2 items after reconciliation, got %d", len(items))
	}

	names := map[string]bool{}
	for _, item := range items {
		names[item.Name] = true
	}
	if !names["First Movie Extended"] || !names["Third Movie"] {
		t.Errorf("Unexpected surviving items: %v", names)
	}
}

func TestReplaceUserItemsScopedToUser(t *testing.T) {
	repo := NewMediaItemRepository(newTestDB(t))

	if _, err := repo.ReplaceUserItems("alice", []MediaItem{testItem("m1", "Alice Movie")}); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.ReplaceUserItems("bob", []MediaItem{testItem("m1", "Bob Movie")}); err != nil {
		t.Fatal(err)
	}

	// An empty snapshot for alice must not touch bob's cache.
	stats, err := repo.ReplaceUserItems("alice", nil)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Removed != 1 {
		t.Errorf("Expected 1 removal for alice, got %+v", stats)
	}

	count, err := repo.GetItemCount("bob")
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("Bob's cache should be untouched, got %d items", count)
	}
}

func TestReplaceUserItemsIdempotent(t *testing.T) {
	repo := NewMediaItemRepository(newTestDB(t))

	snapshot := []MediaItem{testItem("m1", "Stable Movie")}
	if _, err := repo.ReplaceUserItems("alice", snapshot); err != nil {
		t.Fatal(err)
	}

	stats, err := repo.ReplaceUserItems("alice", snapshot)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Inserted != 0 || stats.Updated != 1 || stats.Removed != 0 {
		t.Errorf("Replaying the same snapshot should only update, got %+v", stats)
	}

	count, err := repo.GetItemCount("alice")
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("Expected 1 item, got %d", count)
	}
}

func TestReplaceUserItemsSkipsEmptyExternalID(t *testing.T) {
	repo := NewMediaItemRepository(newTestDB(t))

	stats, err := repo.ReplaceUserItems("alice", []MediaItem{
		testItem("", "Broken Item"),
		testItem("m1", "Good Item"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if stats.Inserted != 1 {
		t.Errorf("Item without external id should be skipped, got %+v", stats)
	}
}

func TestDeleteItem(t *testing.T) {
	repo := NewMediaItemRepository(newTestDB(t))

	if _, err := repo.ReplaceUserItems("alice", []MediaItem{testItem("m1", "Doomed Movie")}); err != nil {
		t.Fatal(err)
	}

	removed, err := repo.DeleteItem("alice", "m1")
	if err != nil {
		t.Fatal(err)
	}
	if !removed {
		t.Errorf("Expected deletion to report removed")
	}

	removed, err = repo.DeleteItem("alice", "m1")
	if err != nil {
		t.Fatal(err)
	}
	if removed {
		t.Errorf("Deleting a missing item should report not removed")
	}
}
