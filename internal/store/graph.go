package store

import (
	"database/sql"
	"fmt"
	"time"
)

// Entity is a named node in the knowledge graph.
type Entity struct {
	ID           int64
	Name         string
	MentionCount int
	CreatedAt    int64
	UpdatedAt    int64
}

// Edge is a typed relationship between two entities.
type Edge struct {
	ID         int64
	Source     string
	Target     string
	Relation   string
	Confidence float64
	Evidence   string
	CreatedAt  int64
	UpdatedAt  int64
}

// Proposal statuses. Write-once: a proposal's status is fixed at creation.
const (
	StatusApproved      = "approved"
	StatusPendingReview = "pending_review"
)

// RelationshipProposal is a candidate typed edge recorded for audit. Approved
// ones also become edges; pending ones await external review.
type RelationshipProposal struct {
	ID         int64   `json:"id,omitempty"`
	Source     string  `json:"source"`
	Target     string  `json:"target"`
	Relation   string  `json:"relation_type"`
	Confidence float64 `json:"confidence"`
	Evidence   string  `json:"evidence"`
	Status     string  `json:"status"`
	RunID      string  `json:"run_id"`
	ModelID    string  `json:"model_id,omitempty"`
	CreatedAt  int64   `json:"created_at"`
}

// UpsertEntity creates an entity or bumps its mention count, atomically.
func (db *DB) UpsertEntity(name string) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`
		INSERT INTO entities (name, mention_count, created_at, updated_at)
		VALUES (?, 1, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			mention_count = mention_count + 1,
			updated_at    = excluded.updated_at
	`, name, now, now)
	if err != nil {
		return fmt.Errorf("upsert entity %q: %w", name, err)
	}
	return nil
}

// UpsertEdge creates a typed edge or refreshes its evidence and confidence.
func (db *DB) UpsertEdge(source, target, relation string, confidence float64, evidence string) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`
		INSERT INTO edges (source, target, relation, confidence, evidence, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(source, target, relation) DO UPDATE SET
			confidence = excluded.confidence,
			evidence   = excluded.evidence,
			updated_at = excluded.updated_at
	`, source, target, relation, confidence, evidence, now, now)
	if err != nil {
		return fmt.Errorf("upsert edge %s-[%s]->%s: %w", source, relation, target, err)
	}
	return nil
}

// InsertProposal records a relationship proposal. Proposals are append-only.
func (db *DB) InsertProposal(p *RelationshipProposal) error {
	now := time.Now().UnixMilli()
	result, err := db.Exec(`
		INSERT INTO relationship_proposals (source, target, relation, confidence, evidence, status, run_id, model_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, NULLIF(?, ''), ?)
	`, p.Source, p.Target, p.Relation, p.Confidence, p.Evidence, p.Status, p.RunID, p.ModelID, now)
	if err != nil {
		return fmt.Errorf("insert proposal: %w", err)
	}
	p.ID, _ = result.LastInsertId()
	p.CreatedAt = now
	return nil
}

// ListProposals returns proposals, optionally filtered by status, newest first.
func (db *DB) ListProposals(status string, limit int) ([]RelationshipProposal, error) {
	query := `
		SELECT id, source, target, relation, confidence, evidence, status, model_id, run_id, created_at
		FROM relationship_proposals
	`
	var args []any
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list proposals: %w", err)
	}
	defer rows.Close()

	var proposals []RelationshipProposal
	for rows.Next() {
		var p RelationshipProposal
		var evidence, modelID sql.NullString
		if err := rows.Scan(&p.ID, &p.Source, &p.Target, &p.Relation, &p.Confidence,
			&evidence, &p.Status, &modelID, &p.RunID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan proposal: %w", err)
		}
		p.Evidence = evidence.String
		p.ModelID = modelID.String
		proposals = append(proposals, p)
	}
	return proposals, rows.Err()
}

// GetEntity returns an entity by name, or nil if not found.
func (db *DB) GetEntity(name string) (*Entity, error) {
	var e Entity
	err := db.QueryRow(`
		SELECT id, name, mention_count, created_at, updated_at
		FROM entities WHERE name = ?
	`, name).Scan(&e.ID, &e.Name, &e.MentionCount, &e.CreatedAt, &e.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get entity: %w", err)
	}
	return &e, nil
}

// EdgesFrom returns all edges whose source is the given entity.
func (db *DB) EdgesFrom(source string) ([]Edge, error) {
	rows, err := db.Query(`
		SELECT id, source, target, relation, confidence, evidence, created_at, updated_at
		FROM edges WHERE source = ? ORDER BY relation, target
	`, source)
	if err != nil {
		return nil, fmt.Errorf("edges from %q: %w", source, err)
	}
	defer rows.Close()

	var edges []Edge
	for rows.Next() {
		var e Edge
		var evidence sql.NullString
		if err := rows.Scan(&e.ID, &e.Source, &e.Target, &e.Relation, &e.Confidence,
			&evidence, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan edge: %w", err)
		}
		e.Evidence = evidence.String
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

// CountEdges returns the total number of edges in the graph.
func (db *DB) CountEdges() (int, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM edges").Scan(&count)
	return count, err
}
