package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Reinforcement steps and caps. Strength and stability only ever move up,
// and only by these amounts.
const (
	StrengthStep = 0.05
	StrengthCap  = 2.0

	StabilityStep = 0.02
	StabilityCap  = 1.0
)

// Basin is a named semantic attractor with reinforcement state.
type Basin struct {
	Name            string
	Description     string
	Concepts        []string
	Strength        float64
	Stability       float64
	ActivationCount int
	LastActivated   int64
	CreatedAt       int64
}

// BasinSeed holds the creation defaults for a basin. First activation counts
// as a reinforcement, so a freshly created basin already carries one step.
type BasinSeed struct {
	Name          string
	Description   string
	Concepts      []string
	BaseStrength  float64
	BaseStability float64
}

// ReinforceBasin creates the basin if absent or applies one bounded
// reinforcement if present, in a single atomic statement. Concurrent callers
// compose: N calls yield exactly N increments regardless of interleaving.
func (db *DB) ReinforceBasin(seed BasinSeed) (*Basin, error) {
	concepts, err := json.Marshal(seed.Concepts)
	if err != nil {
		return nil, fmt.Errorf("marshal concepts: %w", err)
	}

	now := time.Now().UnixMilli()
	initialStrength := min(StrengthCap, seed.BaseStrength+StrengthStep)
	initialStability := min(StabilityCap, seed.BaseStability+StabilityStep)

	row := db.QueryRow(`
		INSERT INTO basins (name, description, concepts, strength, stability, activation_count, last_activated, created_at)
		VALUES (?, ?, ?, ?, ?, 1, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			strength         = MIN(?, strength + ?),
			stability        = MIN(?, stability + ?),
			activation_count = activation_count + 1,
			last_activated   = excluded.last_activated
		RETURNING name, description, concepts, strength, stability, activation_count, last_activated, created_at
	`, seed.Name, seed.Description, string(concepts), initialStrength, initialStability, now, now,
		StrengthCap, StrengthStep, StabilityCap, StabilityStep)

	return scanBasin(row)
}

// GetBasin returns a basin by name, or nil if not found. Read-only: does not
// reinforce.
func (db *DB) GetBasin(name string) (*Basin, error) {
	row := db.QueryRow(`
		SELECT name, description, concepts, strength, stability, activation_count, last_activated, created_at
		FROM basins WHERE name = ?
	`, name)

	b, err := scanBasin(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return b, err
}

// ListBasins returns all basins ordered by strength DESC.
func (db *DB) ListBasins() ([]Basin, error) {
	rows, err := db.Query(`
		SELECT name, description, concepts, strength, stability, activation_count, last_activated, created_at
		FROM basins ORDER BY strength DESC, name
	`)
	if err != nil {
		return nil, fmt.Errorf("list basins: %w", err)
	}
	defer rows.Close()

	var basins []Basin
	for rows.Next() {
		b, err := scanBasin(rows)
		if err != nil {
			return nil, err
		}
		basins = append(basins, *b)
	}
	return basins, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBasin(row rowScanner) (*Basin, error) {
	var b Basin
	var concepts string
	err := row.Scan(&b.Name, &b.Description, &concepts, &b.Strength, &b.Stability,
		&b.ActivationCount, &b.LastActivated, &b.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan basin: %w", err)
	}
	if err := json.Unmarshal([]byte(concepts), &b.Concepts); err != nil {
		return nil, fmt.Errorf("unmarshal concepts for %s: %w", b.Name, err)
	}
	return &b, nil
}
