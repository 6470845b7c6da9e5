package store

import (
	"database/sql"
	"fmt"
	"time"
)

// Relationship is the aggregate this core owns: one row per unordered
// citizen pair, canonicalized so Citizen1 < Citizen2. Scores are decayed
// cumulative sums; Notes carries the provenance tag set as text.
type Relationship struct {
	ID              int64
	Citizen1        string
	Citizen2        string
	StrengthScore   float64
	TrustScore      float64
	LastInteraction int64
	Notes           string
	CreatedAt       int64
	UpdatedAt       int64
}

// PairKey canonicalizes an unordered pair into lexicographic order.
// Processing (a, b) and (b, a) must land on the same row.
func PairKey(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}

// GetRelationship returns the aggregate for the unordered pair, or nil if
// none exists. Argument order does not matter.
func (db *DB) GetRelationship(a, b string) (*Relationship, error) {
	c1, c2 := PairKey(a, b)
	var r Relationship
	var notes sql.NullString
	err := db.QueryRow(`
		SELECT id, citizen1, citizen2, strength_score, trust_score, last_interaction, notes, created_at, updated_at
		FROM relationships WHERE citizen1 = ? AND citizen2 = ?
	`, c1, c2).Scan(&r.ID, &r.Citizen1, &r.Citizen2, &r.StrengthScore, &r.TrustScore,
		&r.LastInteraction, &notes, &r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get relationship (%s, %s): %w", c1, c2, err)
	}
	r.Notes = notes.String
	return &r, nil
}

// RelationshipsTouching returns all aggregates where the username appears
// on either side.
func (db *DB) RelationshipsTouching(username string) ([]Relationship, error) {
	rows, err := db.Query(`
		SELECT id, citizen1, citizen2, strength_score, trust_score, last_interaction, notes, created_at, updated_at
		FROM relationships WHERE citizen1 = ? OR citizen2 = ?
		ORDER BY citizen1, citizen2
	`, username, username)
	if err != nil {
		return nil, fmt.Errorf("relationships touching %s: %w", username, err)
	}
	defer rows.Close()
	return scanRelationships(rows)
}

// UpsertRelationship writes an aggregate: insert when ID is zero, update
// otherwise. The pair is re-canonicalized defensively before the write.
func (db *DB) UpsertRelationship(r *Relationship) error {
	r.Citizen1, r.Citizen2 = PairKey(r.Citizen1, r.Citizen2)
	now := time.Now().UnixMilli()

	if r.ID == 0 {
		result, err := db.Exec(`
			INSERT INTO relationships (citizen1, citizen2, strength_score, trust_score, last_interaction, notes, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, r.Citizen1, r.Citizen2, r.StrengthScore, r.TrustScore, r.LastInteraction, r.Notes, now, now)
		if err != nil {
			return fmt.Errorf("create relationship (%s, %s): %w", r.Citizen1, r.Citizen2, err)
		}
		id, _ := result.LastInsertId()
		r.ID = id
		r.CreatedAt = now
		r.UpdatedAt = now
		return nil
	}

	_, err := db.Exec(`
		UPDATE relationships SET strength_score = ?, trust_score = ?, last_interaction = ?, notes = ?, updated_at = ?
		WHERE id = ?
	`, r.StrengthScore, r.TrustScore, r.LastInteraction, r.Notes, now, r.ID)
	if err != nil {
		return fmt.Errorf("update relationship (%s, %s): %w", r.Citizen1, r.Citizen2, err)
	}
	r.UpdatedAt = now
	return nil
}

// CountRelationships returns the total number of aggregates.
func (db *DB) CountRelationships() (int, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM relationships").Scan(&count)
	return count, err
}

func scanRelationships(rows *sql.Rows) ([]Relationship, error) {
	var rels []Relationship
	for rows.Next() {
		var r Relationship
		var notes sql.NullString
		if err := rows.Scan(&r.ID, &r.Citizen1, &r.Citizen2, &r.StrengthScore, &r.TrustScore,
			&r.LastInteraction, &notes, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan relationship: %w", err)
		}
		r.Notes = notes.String
		rels = append(rels, r)
	}
	return rels, rows.Err()
}
