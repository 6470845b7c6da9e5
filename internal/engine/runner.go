package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/civitas/kinship/internal/store"
)

// CitizenStats is the per-source-citizen slice of a run summary.
type CitizenStats struct {
	Username    string `json:"username"`
	Relevancies int    `json:"relevancies"`
	Created     int    `json:"created"`
	Updated     int    `json:"updated"`
	PairsFailed int    `json:"pairs_failed,omitempty"`
	Error       string `json:"error,omitempty"`
}

// RunSummary aggregates one full batch pass.
type RunSummary struct {
	RunID                string         `json:"run_id"`
	StartedAt            time.Time      `json:"started_at"`
	FinishedAt           time.Time      `json:"finished_at"`
	CitizensProcessed    int            `json:"citizens_processed"`
	CitizensFailed       int            `json:"citizens_failed"`
	RelevanciesFetched   int            `json:"relevancies_fetched"`
	RelationshipsCreated int            `json:"relationships_created"`
	RelationshipsUpdated int            `json:"relationships_updated"`
	PairsFailed          int            `json:"pairs_failed"`
	Citizens             []CitizenStats `json:"citizens"`
}

// Run executes one batch pass: every citizen is processed as a source,
// sequentially. A failure while processing one citizen is logged and
// counted but never stops the rest of the batch; only failures around the
// run itself (listing citizens, building the lookup) abort.
func (e *Engine) Run(ctx context.Context) (*RunSummary, error) {
	started := time.Now()

	citizens, err := e.DB.ListCitizens()
	if err != nil {
		return nil, fmt.Errorf("list citizens: %w", err)
	}

	lookupMap, err := e.DB.CitizenLookup()
	if err != nil {
		return nil, fmt.Errorf("build citizen lookup: %w", err)
	}
	lookup := func(id string) (string, bool) {
		name, ok := lookupMap[id]
		return name, ok
	}

	summary := &RunSummary{
		RunID:     uuid.NewString(),
		StartedAt: started,
	}

	for _, c := range citizens {
		stats, err := e.processCitizen(ctx, c.Username, lookup)
		if err != nil {
			log.Printf("run: citizen %s failed: %v", c.Username, err)
			summary.CitizensFailed++
			summary.Citizens = append(summary.Citizens, CitizenStats{Username: c.Username, Error: err.Error()})
			continue
		}
		summary.CitizensProcessed++
		summary.RelevanciesFetched += stats.Relevancies
		summary.RelationshipsCreated += stats.Created
		summary.RelationshipsUpdated += stats.Updated
		summary.PairsFailed += stats.PairsFailed
		summary.Citizens = append(summary.Citizens, stats)
	}

	summary.FinishedAt = time.Now()

	if err := e.saveSummary(summary); err != nil {
		log.Printf("run: save summary: %v", err)
	}

	log.Printf("run %s: %d citizens (%d failed), %d relevancies, %d created, %d updated, %d pair writes failed",
		summary.RunID, summary.CitizensProcessed, summary.CitizensFailed, summary.RelevanciesFetched,
		summary.RelationshipsCreated, summary.RelationshipsUpdated, summary.PairsFailed)

	return summary, nil
}

// processCitizen handles one source citizen end to end. Panics are caught
// here so a single bad citizen cannot take down the batch.
func (e *Engine) processCitizen(ctx context.Context, username string, lookup func(string) (string, bool)) (stats CitizenStats, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	stats.Username = username
	since := time.Now().Add(-e.Weights.Window)

	// Evidence-fetch failure is not a citizen failure: existing aggregates
	// still decay and interaction evidence still counts.
	relevancies, ferr := e.Feed.Relevancies(ctx, username, since)
	if ferr != nil {
		log.Printf("run: relevancy fetch for %s: %v", username, ferr)
		relevancies = nil
	}
	stats.Relevancies = len(relevancies)

	existing, err := e.DB.RelationshipsTouching(username)
	if err != nil {
		return stats, fmt.Errorf("load relationships: %w", err)
	}

	for _, rel := range e.AggregateCitizen(username, relevancies, existing, lookup) {
		created := rel.ID == 0
		if err := e.DB.UpsertRelationship(rel); err != nil {
			log.Printf("run: persist (%s, %s): %v", rel.Citizen1, rel.Citizen2, err)
			stats.PairsFailed++
			continue
		}
		if created {
			stats.Created++
		} else {
			stats.Updated++
		}
	}

	return stats, nil
}

func (e *Engine) saveSummary(s *RunSummary) error {
	breakdown, err := json.Marshal(s.Citizens)
	if err != nil {
		return fmt.Errorf("marshal breakdown: %w", err)
	}
	return e.DB.SaveRunSummary(&store.RunRecord{
		RunID:                s.RunID,
		StartedAt:            s.StartedAt.UnixMilli(),
		FinishedAt:           s.FinishedAt.UnixMilli(),
		CitizensProcessed:    s.CitizensProcessed,
		CitizensFailed:       s.CitizensFailed,
		RelevanciesFetched:   s.RelevanciesFetched,
		RelationshipsCreated: s.RelationshipsCreated,
		RelationshipsUpdated: s.RelationshipsUpdated,
		PairsFailed:          s.PairsFailed,
		Breakdown:            string(breakdown),
	})
}
