package store

import (
	"database/sql"
	"fmt"
	"time"
)

// BasinStat tracks how productive a basin/kind pairing has been: how many
// times content was routed through it and the running average of entities and
// relationships each routing produced.
type BasinStat struct {
	Basin            string
	Kind             string
	RoutedCount      int
	AvgEntities      float64
	AvgRelationships float64
	UpdatedAt        int64
}

// RecordRouting folds one routing outcome into the basin/kind running
// averages in a single atomic statement. SQLite evaluates the SET expressions
// against the pre-update row, so the incremental-mean arithmetic is safe
// under concurrent writers.
func (db *DB) RecordRouting(basin, kind string, entities, relationships int) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`
		INSERT INTO basin_stats (basin, kind, routed_count, avg_entities, avg_relationships, updated_at)
		VALUES (?, ?, 1, ?, ?, ?)
		ON CONFLICT(basin, kind) DO UPDATE SET
			avg_entities      = (avg_entities * routed_count + excluded.avg_entities) / (routed_count + 1),
			avg_relationships = (avg_relationships * routed_count + excluded.avg_relationships) / (routed_count + 1),
			routed_count      = routed_count + 1,
			updated_at        = excluded.updated_at
	`, basin, kind, float64(entities), float64(relationships), now)
	if err != nil {
		return fmt.Errorf("record routing %s/%s: %w", basin, kind, err)
	}
	return nil
}

// GetBasinStat returns the stat row for a basin/kind pair, or nil if the pair
// has never been routed.
func (db *DB) GetBasinStat(basin, kind string) (*BasinStat, error) {
	var s BasinStat
	err := db.QueryRow(`
		SELECT basin, kind, routed_count, avg_entities, avg_relationships, updated_at
		FROM basin_stats WHERE basin = ? AND kind = ?
	`, basin, kind).Scan(&s.Basin, &s.Kind, &s.RoutedCount, &s.AvgEntities, &s.AvgRelationships, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get basin stat: %w", err)
	}
	return &s, nil
}
