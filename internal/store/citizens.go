package store

import (
	"fmt"
	"strconv"
	"time"
)

// Citizen is one member of the simulated population. Only the username is
// used for scoring; profile data lives with external collaborators.
type Citizen struct {
	ID        int64
	Username  string
	CreatedAt int64
}

// AddCitizen inserts a citizen by username.
func (db *DB) AddCitizen(username string) (*Citizen, error) {
	now := time.Now().UnixMilli()
	result, err := db.Exec(`
		INSERT INTO citizens (username, created_at) VALUES (?, ?)
	`, username, now)
	if err != nil {
		return nil, fmt.Errorf("add citizen %s: %w", username, err)
	}
	id, _ := result.LastInsertId()
	return &Citizen{ID: id, Username: username, CreatedAt: now}, nil
}

// ListCitizens returns all citizens ordered by username.
func (db *DB) ListCitizens() ([]Citizen, error) {
	rows, err := db.Query(`
		SELECT id, username, created_at FROM citizens ORDER BY username
	`)
	if err != nil {
		return nil, fmt.Errorf("list citizens: %w", err)
	}
	defer rows.Close()

	var citizens []Citizen
	for rows.Next() {
		var c Citizen
		if err := rows.Scan(&c.ID, &c.Username, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan citizen: %w", err)
		}
		citizens = append(citizens, c)
	}
	return citizens, rows.Err()
}

// CitizenLookup returns an id-to-username map for resolving foreign-key
// references in relevancy events. Keys are decimal record ids.
func (db *DB) CitizenLookup() (map[string]string, error) {
	citizens, err := db.ListCitizens()
	if err != nil {
		return nil, err
	}
	lookup := make(map[string]string, len(citizens))
	for _, c := range citizens {
		lookup[strconv.FormatInt(c.ID, 10)] = c.Username
	}
	return lookup, nil
}
