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
		Description: "citizens: simulation population roster",
		SQL: `
CREATE TABLE citizens (
    id         INTEGER PRIMARY KEY,
    username   TEXT NOT NULL UNIQUE,
    created_at INTEGER NOT NULL
);
`,
	},
	{
		Version:     2,
		Description: "interaction evidence: messages, loans, contracts, transactions",
		SQL: `
CREATE TABLE messages (
    id         INTEGER PRIMARY KEY,
    sender     TEXT NOT NULL,
    receiver   TEXT NOT NULL,
    body       TEXT,
    created_at INTEGER NOT NULL
);

CREATE INDEX idx_messages_pair ON messages(sender, receiver, created_at DESC);

CREATE TABLE loans (
    id         INTEGER PRIMARY KEY,
    lender     TEXT NOT NULL,
    borrower   TEXT NOT NULL,
    principal  REAL NOT NULL,
    status     TEXT NOT NULL CHECK (status IN ('pending', 'active', 'repaid', 'defaulted')),
    created_at INTEGER NOT NULL
);

CREATE INDEX idx_loans_pair ON loans(lender, borrower, status);

CREATE TABLE contracts (
    id             INTEGER PRIMARY KEY,
    buyer          TEXT NOT NULL,
    seller         TEXT NOT NULL,
    price_per_unit REAL NOT NULL,
    hourly_amount  REAL NOT NULL,
    end_at         TEXT,
    created_at     INTEGER NOT NULL
);

CREATE INDEX idx_contracts_pair ON contracts(buyer, seller);

CREATE TABLE transactions (
    id          INTEGER PRIMARY KEY,
    seller      TEXT NOT NULL,
    buyer       TEXT NOT NULL,
    price       REAL NOT NULL,
    executed_at INTEGER NOT NULL
);

CREATE INDEX idx_transactions_pair ON transactions(seller, buyer, executed_at DESC);
`,
	},
	{
		Version:     3,
		Description: "relationships: one aggregate per unordered citizen pair",
		SQL: `
CREATE TABLE relationships (
    id               INTEGER PRIMARY KEY,
    citizen1         TEXT NOT NULL,
    citizen2         TEXT NOT NULL,
    strength_score   REAL NOT NULL DEFAULT 0,
    trust_score      REAL NOT NULL DEFAULT 0,
    last_interaction INTEGER NOT NULL,
    notes            TEXT,
    created_at       INTEGER NOT NULL,
    updated_at       INTEGER NOT NULL,

    CHECK (citizen1 < citizen2),
    UNIQUE (citizen1, citizen2)
);

CREATE INDEX idx_relationships_c1 ON relationships(citizen1);
CREATE INDEX idx_relationships_c2 ON relationships(citizen2);
`,
	},
	{
		Version:     4,
		Description: "run_summaries: per-batch statistics",
		SQL: `
CREATE TABLE run_summaries (
    id                    INTEGER PRIMARY KEY,
    run_id                TEXT NOT NULL UNIQUE,
    started_at            INTEGER NOT NULL,
    finished_at           INTEGER NOT NULL,
    citizens_processed    INTEGER NOT NULL DEFAULT 0,
    citizens_failed       INTEGER NOT NULL DEFAULT 0,
    relevancies_fetched   INTEGER NOT NULL DEFAULT 0,
    relationships_created INTEGER NOT NULL DEFAULT 0,
    relationships_updated INTEGER NOT NULL DEFAULT 0,
    pairs_failed          INTEGER NOT NULL DEFAULT 0,
    breakdown             TEXT
);

CREATE INDEX idx_runs_finished ON run_summaries(finished_at DESC);
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
