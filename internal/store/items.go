package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// MemoryItem is a unit of content under lifecycle management. Hot-tier items
// live in memory (see engine.HotStore); rows in memory_items are always warm
// or cold.
type MemoryItem struct {
	ID             string
	OriginID       string // hot-tier id this row was compressed from
	Content        string
	Kind           string
	Tier           string
	Importance     float64
	ProjectID      string
	Metadata       map[string]string
	AccessCount    int
	LastAccessed   *int64
	ConsolidatedAt *int64
	CreatedAt      int64
}

// InsertWarm writes a warm-tier record. The origin_id uniqueness makes the
// hot→warm migration idempotent: re-inserting the same origin is a no-op.
// Returns true if a row was actually written.
func (db *DB) InsertWarm(item *MemoryItem) (bool, error) {
	meta, err := json.Marshal(item.Metadata)
	if err != nil {
		return false, fmt.Errorf("marshal metadata: %w", err)
	}

	now := time.Now().UnixMilli()
	if item.CreatedAt == 0 {
		item.CreatedAt = now
	}

	result, err := db.Exec(`
		INSERT INTO memory_items (id, origin_id, content, kind, tier, importance, project_id, metadata, access_count, created_at)
		VALUES (?, NULLIF(?, ''), ?, ?, 'warm', ?, NULLIF(?, ''), ?, ?, ?)
		ON CONFLICT(origin_id) DO NOTHING
	`, item.ID, item.OriginID, item.Content, item.Kind, item.Importance,
		item.ProjectID, string(meta), item.AccessCount, item.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("insert warm item: %w", err)
	}

	n, _ := result.RowsAffected()
	item.Tier = "warm"
	return n > 0, nil
}

// GetItem returns a warm or cold item by id, or nil if not found.
func (db *DB) GetItem(id string) (*MemoryItem, error) {
	row := db.QueryRow(`
		SELECT id, origin_id, content, kind, tier, importance, project_id, metadata,
			access_count, last_accessed, consolidated_at, created_at
		FROM memory_items WHERE id = ? OR origin_id = ?
	`, id, id)
	return scanItem(row)
}

// ListUnconsolidatedWarm returns warm items not yet consolidated into the
// graph, oldest first, up to limit.
func (db *DB) ListUnconsolidatedWarm(limit int) ([]MemoryItem, error) {
	rows, err := db.Query(`
		SELECT id, origin_id, content, kind, tier, importance, project_id, metadata,
			access_count, last_accessed, consolidated_at, created_at
		FROM memory_items
		WHERE tier = 'warm' AND consolidated_at IS NULL
		ORDER BY created_at ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list unconsolidated warm: %w", err)
	}
	defer rows.Close()

	var items []MemoryItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// MarkConsolidated advances a warm item to cold and records the consolidation
// marker in one statement. The tier guard makes the transition forward-only
// and re-runs no-ops. Returns true if the item actually transitioned.
func (db *DB) MarkConsolidated(id string) (bool, error) {
	now := time.Now().UnixMilli()
	result, err := db.Exec(`
		UPDATE memory_items SET tier = 'cold', consolidated_at = ?
		WHERE id = ? AND tier = 'warm' AND consolidated_at IS NULL
	`, now, id)
	if err != nil {
		return false, fmt.Errorf("mark consolidated: %w", err)
	}
	n, _ := result.RowsAffected()
	return n > 0, nil
}

// TouchItem updates last_accessed and increments access_count.
func (db *DB) TouchItem(id string) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`
		UPDATE memory_items SET last_accessed = ?, access_count = access_count + 1
		WHERE id = ?
	`, now, id)
	if err != nil {
		return fmt.Errorf("touch item: %w", err)
	}
	return nil
}

// CountByTier returns the number of items in a given tier.
func (db *DB) CountByTier(tier string) (int, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM memory_items WHERE tier = ?", tier).Scan(&count)
	return count, err
}

func scanItem(row rowScanner) (*MemoryItem, error) {
	var item MemoryItem
	var originID, projectID sql.NullString
	var lastAccessed, consolidatedAt sql.NullInt64
	var meta string

	err := row.Scan(&item.ID, &originID, &item.Content, &item.Kind, &item.Tier,
		&item.Importance, &projectID, &meta,
		&item.AccessCount, &lastAccessed, &consolidatedAt, &item.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan item: %w", err)
	}

	item.OriginID = originID.String
	item.ProjectID = projectID.String
	if lastAccessed.Valid {
		item.LastAccessed = &lastAccessed.Int64
	}
	if consolidatedAt.Valid {
		item.ConsolidatedAt = &consolidatedAt.Int64
	}
	if err := json.Unmarshal([]byte(meta), &item.Metadata); err != nil {
		return nil, fmt.Errorf("unmarshal metadata for %s: %w", item.ID, err)
	}
	return &item, nil
}
