package engine

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/driftlake/watershed/internal/store"
)

func hotItem(id string, age time.Duration) store.MemoryItem {
	return store.MemoryItem{
		ID:        id,
		Content:   "content for " + id,
		Kind:      "episodic",
		CreatedAt: time.Now().Add(-age).UnixMilli(),
	}
}

func TestHotStorePutGet(t *testing.T) {
	h := NewHotStore()
	h.Put(hotItem("a", 0))

	item, ok := h.Get("a")
	if !ok {
		t.Fatal("item not found")
	}
	if item.Tier != "hot" {
		t.Errorf("Tier = %q, want hot", item.Tier)
	}
	if item.AccessCount != 1 {
		t.Errorf("AccessCount = %d, want 1 (read touches)", item.AccessCount)
	}
	if item.LastAccessed == nil {
		t.Error("LastAccessed not set on read")
	}

	// Second read bumps again.
	item, _ = h.Get("a")
	if item.AccessCount != 2 {
		t.Errorf("AccessCount = %d, want 2", item.AccessCount)
	}
}

func TestHotStoreGetMissing(t *testing.T) {
	h := NewHotStore()
	if _, ok := h.Get("nope"); ok {
		t.Error("Get returned ok for missing id")
	}
}

func TestHotStoreOlderThan(t *testing.T) {
	h := NewHotStore()
	h.Put(hotItem("old", 25*time.Hour))
	h.Put(hotItem("fresh", time.Minute))

	old := h.OlderThan(time.Now().Add(-24 * time.Hour))
	if len(old) != 1 {
		t.Fatalf("got %d old items, want 1", len(old))
	}
	if old[0].ID != "old" {
		t.Errorf("old item = %s, want old", old[0].ID)
	}
}

func TestHotStoreRemove(t *testing.T) {
	h := NewHotStore()
	h.Put(hotItem("a", 0))
	h.Remove("a")
	h.Remove("a") // repeat is a no-op

	if h.Len() != 0 {
		t.Errorf("Len = %d, want 0", h.Len())
	}
}

func TestHotStoreConcurrent(t *testing.T) {
	h := NewHotStore()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("item-%d", i)
			h.Put(hotItem(id, 0))
			h.Get(id)
		}(i)
	}
	wg.Wait()

	if h.Len() != 20 {
		t.Errorf("Len = %d, want 20", h.Len())
	}
}
