package store

import (
	"database/sql"
	"fmt"
)

// RunRecord is the persisted summary of one batch pass. Breakdown holds the
// per-citizen statistics as JSON; the notification collaborator reads it
// through the API rather than a delivery channel here.
type RunRecord struct {
	ID                   int64
	RunID                string
	StartedAt            int64
	FinishedAt           int64
	CitizensProcessed    int
	CitizensFailed       int
	RelevanciesFetched   int
	RelationshipsCreated int
	RelationshipsUpdated int
	PairsFailed          int
	Breakdown            string
}

// SaveRunSummary persists a completed run's statistics.
func (db *DB) SaveRunSummary(r *RunRecord) error {
	result, err := db.Exec(`
		INSERT INTO run_summaries (run_id, started_at, finished_at, citizens_processed, citizens_failed,
			relevancies_fetched, relationships_created, relationships_updated, pairs_failed, breakdown)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.RunID, r.StartedAt, r.FinishedAt, r.CitizensProcessed, r.CitizensFailed,
		r.RelevanciesFetched, r.RelationshipsCreated, r.RelationshipsUpdated, r.PairsFailed, r.Breakdown)
	if err != nil {
		return fmt.Errorf("save run summary %s: %w", r.RunID, err)
	}
	id, _ := result.LastInsertId()
	r.ID = id
	return nil
}

// LatestRun returns the most recently finished run summary, or nil if no
// run has completed yet.
func (db *DB) LatestRun() (*RunRecord, error) {
	var r RunRecord
	var breakdown sql.NullString
	err := db.QueryRow(`
		SELECT id, run_id, started_at, finished_at, citizens_processed, citizens_failed,
			relevancies_fetched, relationships_created, relationships_updated, pairs_failed, breakdown
		FROM run_summaries ORDER BY finished_at DESC, id DESC LIMIT 1
	`).Scan(&r.ID, &r.RunID, &r.StartedAt, &r.FinishedAt, &r.CitizensProcessed, &r.CitizensFailed,
		&r.RelevanciesFetched, &r.RelationshipsCreated, &r.RelationshipsUpdated, &r.PairsFailed, &breakdown)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest run: %w", err)
	}
	r.Breakdown = breakdown.String
	return &r, nil
}
