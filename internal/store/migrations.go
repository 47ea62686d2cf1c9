package store

import (
	"fmt"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "basins: semantic attractors with reinforcement state",
		SQL: `
CREATE TABLE basins (
    name             TEXT PRIMARY KEY,
    description      TEXT NOT NULL,
    concepts         TEXT NOT NULL DEFAULT '[]',

    -- Reinforcement state. Bounded, monotonic, never decayed.
    strength         REAL NOT NULL,
    stability        REAL NOT NULL,
    activation_count INTEGER NOT NULL DEFAULT 0,
    last_activated   INTEGER NOT NULL,

    created_at       INTEGER NOT NULL
);
`,
	},
	{
		Version:     2,
		Description: "memory_items: warm and cold tier records",
		SQL: `
CREATE TABLE memory_items (
    id              TEXT PRIMARY KEY,
    origin_id       TEXT UNIQUE,
    content         TEXT NOT NULL,
    kind            TEXT NOT NULL CHECK (kind IN ('episodic', 'semantic', 'procedural', 'strategic')),
    tier            TEXT NOT NULL CHECK (tier IN ('warm', 'cold')),
    importance      REAL NOT NULL DEFAULT 0.5,
    project_id      TEXT,
    metadata        TEXT NOT NULL DEFAULT '{}',

    access_count    INTEGER NOT NULL DEFAULT 0,
    last_accessed   INTEGER,

    -- Set exactly once, when the item is consolidated into the graph.
    consolidated_at INTEGER,

    created_at      INTEGER NOT NULL
);

CREATE INDEX idx_items_tier         ON memory_items(tier);
CREATE INDEX idx_items_consolidated ON memory_items(tier, consolidated_at);
CREATE INDEX idx_items_project      ON memory_items(project_id);
`,
	},
	{
		Version:     3,
		Description: "entities + edges: the knowledge graph",
		SQL: `
CREATE TABLE entities (
    id            INTEGER PRIMARY KEY,
    name          TEXT NOT NULL UNIQUE,
    mention_count INTEGER NOT NULL DEFAULT 1,
    created_at    INTEGER NOT NULL,
    updated_at    INTEGER NOT NULL
);

CREATE TABLE edges (
    id         INTEGER PRIMARY KEY,
    source     TEXT NOT NULL,
    target     TEXT NOT NULL,
    relation   TEXT NOT NULL,
    confidence REAL NOT NULL,
    evidence   TEXT,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL,

    UNIQUE (source, target, relation)
);

CREATE INDEX idx_edges_source ON edges(source);
CREATE INDEX idx_edges_target ON edges(target);
`,
	},
	{
		Version:     4,
		Description: "relationship_proposals: write-once extraction audit trail",
		SQL: `
CREATE TABLE relationship_proposals (
    id         INTEGER PRIMARY KEY,
    source     TEXT NOT NULL,
    target     TEXT NOT NULL,
    relation   TEXT NOT NULL,
    confidence REAL NOT NULL,
    evidence   TEXT,
    status     TEXT NOT NULL CHECK (status IN ('approved', 'pending_review')),
    run_id     TEXT NOT NULL,
    model_id   TEXT,
    created_at INTEGER NOT NULL
);

CREATE INDEX idx_proposals_status ON relationship_proposals(status);
CREATE INDEX idx_proposals_run    ON relationship_proposals(run_id);
`,
	},
	{
		Version:     5,
		Description: "basin_stats: basin/kind co-occurrence running averages",
		SQL: `
CREATE TABLE basin_stats (
    basin             TEXT NOT NULL,
    kind              TEXT NOT NULL,
    routed_count      INTEGER NOT NULL DEFAULT 0,
    avg_entities      REAL NOT NULL DEFAULT 0,
    avg_relationships REAL NOT NULL DEFAULT 0,
    updated_at        INTEGER NOT NULL,

    PRIMARY KEY (basin, kind)
);
`,
	},
}

func (db *DB) migrate() error {
	// Create schema_versions table if it doesn't exist
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_versions (
			version     INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at  INTEGER NOT NULL DEFAULT (strftime('%s', 'now') * 1000)
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_versions: %w", err)
	}

	for _, m := range migrations {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM schema_versions WHERE version = ?", m.Version).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %d: %w", m.Version, err)
		}
		if count > 0 {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}

		if _, err := tx.Exec(
			"INSERT INTO schema_versions (version, description) VALUES (?, ?)",
			m.Version, m.Description,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}

// SchemaVersion returns the current schema version.
func (db *DB) SchemaVersion() (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_versions").Scan(&version)
	return version, err
}
