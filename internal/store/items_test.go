package store

import (
	"testing"
)

func warmItem(id, origin string) *MemoryItem {
	return &MemoryItem{
		ID:         id,
		OriginID:   origin,
		Content:    "Summary of the original content.",
		Kind:       "episodic",
		Importance: 0.5,
		Metadata:   map[string]string{"summary": "Summary of the original content."},
	}
}

func TestInsertWarm(t *testing.T) {
	db := testDB(t)

	inserted, err := db.InsertWarm(warmItem("warm-1", "hot-1"))
	if err != nil {
		t.Fatalf("InsertWarm: %v", err)
	}
	if !inserted {
		t.Error("InsertWarm = false, want true for new item")
	}

	item, err := db.GetItem("warm-1")
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if item == nil {
		t.Fatal("item not found")
	}
	if item.Tier != "warm" {
		t.Errorf("Tier = %q, want warm", item.Tier)
	}
	if item.Metadata["summary"] == "" {
		t.Error("metadata summary missing")
	}
}

func TestInsertWarmIdempotentByOrigin(t *testing.T) {
	db := testDB(t)

	if _, err := db.InsertWarm(warmItem("warm-1", "hot-1")); err != nil {
		t.Fatalf("InsertWarm: %v", err)
	}

	// Second migration attempt for the same hot item is a no-op.
	inserted, err := db.InsertWarm(warmItem("warm-2", "hot-1"))
	if err != nil {
		t.Fatalf("InsertWarm repeat: %v", err)
	}
	if inserted {
		t.Error("InsertWarm = true for duplicate origin, want false")
	}

	if item, _ := db.GetItem("warm-2"); item != nil {
		t.Error("duplicate warm record was written")
	}
}

func TestGetItemByOrigin(t *testing.T) {
	db := testDB(t)

	if _, err := db.InsertWarm(warmItem("warm-1", "hot-1")); err != nil {
		t.Fatalf("InsertWarm: %v", err)
	}

	item, err := db.GetItem("hot-1")
	if err != nil {
		t.Fatalf("GetItem by origin: %v", err)
	}
	if item == nil || item.ID != "warm-1" {
		t.Errorf("GetItem by origin = %+v, want warm-1", item)
	}
}

func TestMarkConsolidated(t *testing.T) {
	db := testDB(t)

	if _, err := db.InsertWarm(warmItem("warm-1", "hot-1")); err != nil {
		t.Fatalf("InsertWarm: %v", err)
	}

	moved, err := db.MarkConsolidated("warm-1")
	if err != nil {
		t.Fatalf("MarkConsolidated: %v", err)
	}
	if !moved {
		t.Error("MarkConsolidated = false, want true")
	}

	item, _ := db.GetItem("warm-1")
	if item.Tier != "cold" {
		t.Errorf("Tier = %q, want cold", item.Tier)
	}
	if item.ConsolidatedAt == nil {
		t.Error("ConsolidatedAt not set")
	}

	// Re-running against an already-cold item is a no-op.
	moved, err = db.MarkConsolidated("warm-1")
	if err != nil {
		t.Fatalf("MarkConsolidated repeat: %v", err)
	}
	if moved {
		t.Error("MarkConsolidated = true on second run, want false")
	}
}

func TestListUnconsolidatedWarm(t *testing.T) {
	db := testDB(t)

	for _, id := range []string{"a", "b", "c"} {
		if _, err := db.InsertWarm(warmItem("warm-"+id, "hot-"+id)); err != nil {
			t.Fatalf("InsertWarm %s: %v", id, err)
		}
	}
	if _, err := db.MarkConsolidated("warm-b"); err != nil {
		t.Fatalf("MarkConsolidated: %v", err)
	}

	items, err := db.ListUnconsolidatedWarm(10)
	if err != nil {
		t.Fatalf("ListUnconsolidatedWarm: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	for _, item := range items {
		if item.ID == "warm-b" {
			t.Error("consolidated item returned")
		}
	}

	// Batch limit respected.
	items, err = db.ListUnconsolidatedWarm(1)
	if err != nil {
		t.Fatalf("ListUnconsolidatedWarm limit: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("got %d items with limit 1, want 1", len(items))
	}
}

func TestTouchItem(t *testing.T) {
	db := testDB(t)

	if _, err := db.InsertWarm(warmItem("warm-1", "hot-1")); err != nil {
		t.Fatalf("InsertWarm: %v", err)
	}

	if err := db.TouchItem("warm-1"); err != nil {
		t.Fatalf("TouchItem: %v", err)
	}

	item, _ := db.GetItem("warm-1")
	if item.AccessCount != 1 {
		t.Errorf("AccessCount = %d, want 1", item.AccessCount)
	}
	if item.LastAccessed == nil {
		t.Error("LastAccessed not set")
	}
}

func TestCountByTier(t *testing.T) {
	db := testDB(t)

	if _, err := db.InsertWarm(warmItem("warm-1", "hot-1")); err != nil {
		t.Fatalf("InsertWarm: %v", err)
	}
	if _, err := db.InsertWarm(warmItem("warm-2", "hot-2")); err != nil {
		t.Fatalf("InsertWarm: %v", err)
	}
	if _, err := db.MarkConsolidated("warm-1"); err != nil {
		t.Fatalf("MarkConsolidated: %v", err)
	}

	warm, err := db.CountByTier("warm")
	if err != nil {
		t.Fatalf("CountByTier warm: %v", err)
	}
	cold, err := db.CountByTier("cold")
	if err != nil {
		t.Fatalf("CountByTier cold: %v", err)
	}
	if warm != 1 || cold != 1 {
		t.Errorf("warm/cold = %d/%d, want 1/1", warm, cold)
	}
}
