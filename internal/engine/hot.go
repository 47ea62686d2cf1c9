package engine

import (
	"sync"
	"time"

	"github.com/driftlake/watershed/internal/store"
)

// HotStore is the fast mutable tier: an in-memory map keyed by item id.
// Items live here until the lifecycle compresses them into the warm tier.
type HotStore struct {
	mu    sync.RWMutex
	items map[string]store.MemoryItem
}

// NewHotStore creates an empty hot store.
func NewHotStore() *HotStore {
	return &HotStore{items: make(map[string]store.MemoryItem)}
}

// Put upserts an item keyed by id.
func (h *HotStore) Put(item store.MemoryItem) {
	item.Tier = string(TierHot)
	h.mu.Lock()
	h.items[item.ID] = item
	h.mu.Unlock()
}

// Get returns a copy of the item and records the access: every read updates
// last_accessed and bumps access_count.
func (h *HotStore) Get(id string) (*store.MemoryItem, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	item, ok := h.items[id]
	if !ok {
		return nil, false
	}

	now := time.Now().UnixMilli()
	item.LastAccessed = &now
	item.AccessCount++
	h.items[id] = item
	return &item, true
}

// Remove deletes an item by id. Removing a missing id is a no-op.
func (h *HotStore) Remove(id string) {
	h.mu.Lock()
	delete(h.items, id)
	h.mu.Unlock()
}

// OlderThan returns copies of all items created before the cutoff.
func (h *HotStore) OlderThan(cutoff time.Time) []store.MemoryItem {
	limit := cutoff.UnixMilli()

	h.mu.RLock()
	defer h.mu.RUnlock()

	var out []store.MemoryItem
	for _, item := range h.items {
		if item.CreatedAt < limit {
			out = append(out, item)
		}
	}
	return out
}

// Len returns the number of items currently hot.
func (h *HotStore) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.items)
}
