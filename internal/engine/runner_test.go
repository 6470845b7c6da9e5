package engine

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/civitas/kinship/internal/feed"
)

func seedCitizens(t *testing.T, e *Engine, usernames ...string) {
	t.Helper()
	for _, u := range usernames {
		if _, err := e.DB.AddCitizen(u); err != nil {
			t.Fatalf("AddCitizen(%s): %v", u, err)
		}
	}
}

func TestRunCreatesRelationships(t *testing.T) {
	e := testEngine(t)
	seedCitizens(t, e, "alice", "bob")

	e.Feed = &feed.Mock{Events: map[string][]feed.Relevancy{
		"alice": {
			{Source: "alice", Target: literalTarget("bob"), Score: 5, Type: "x", CreatedAt: time.Now()},
			{Source: "alice", Target: literalTarget("bob"), Score: 3, Type: "y", CreatedAt: time.Now()},
		},
	}}

	summary, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if summary.CitizensProcessed != 2 {
		t.Errorf("processed = %d, want 2", summary.CitizensProcessed)
	}
	if summary.RelevanciesFetched != 2 {
		t.Errorf("fetched = %d, want 2", summary.RelevanciesFetched)
	}
	if summary.RelationshipsCreated != 1 {
		t.Errorf("created = %d, want 1", summary.RelationshipsCreated)
	}
	// Bob's pass revisits the aggregate alice's pass created.
	if summary.RelationshipsUpdated != 1 {
		t.Errorf("updated = %d, want 1", summary.RelationshipsUpdated)
	}

	rel, err := e.DB.GetRelationship("bob", "alice")
	if err != nil {
		t.Fatalf("GetRelationship: %v", err)
	}
	if rel == nil {
		t.Fatal("expected aggregate for (alice, bob)")
	}
	// Created at 8 by alice's pass, decayed once by bob's pass.
	if !almostEqual(rel.StrengthScore, 8*0.75) {
		t.Errorf("strength = %v, want 6", rel.StrengthScore)
	}
	if rel.Notes != "Sources: x, y" {
		t.Errorf("notes = %q", rel.Notes)
	}

	count, _ := e.DB.CountRelationships()
	if count != 1 {
		t.Errorf("relationship count = %d, want 1 (no duplicate for the pair)", count)
	}
}

func TestRunDecayOnlyWhenNoNewEvidence(t *testing.T) {
	e := testEngine(t)
	seedCitizens(t, e, "alice", "bob")

	e.Feed = &feed.Mock{Events: map[string][]feed.Relevancy{
		"alice": {{Source: "alice", Target: literalTarget("bob"), Score: 16, Type: "x", CreatedAt: time.Now()}},
	}}

	if _, err := e.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	rel, _ := e.DB.GetRelationship("alice", "bob")
	afterFirst := rel.StrengthScore // 16 from alice, then *0.75 from bob's pass

	// Second run with an empty feed: each side decays the pair once more.
	e.Feed = &feed.Mock{}
	if _, err := e.Run(context.Background()); err != nil {
		t.Fatalf("second run: %v", err)
	}

	rel, _ = e.DB.GetRelationship("alice", "bob")
	if !almostEqual(rel.StrengthScore, afterFirst*0.75*0.75) {
		t.Errorf("strength = %v, want %v", rel.StrengthScore, afterFirst*0.75*0.75)
	}
}

func TestRunFeedFailureIsolated(t *testing.T) {
	e := testEngine(t)
	seedCitizens(t, e, "alice", "bob")

	e.Feed = &feed.Mock{
		Events: map[string][]feed.Relevancy{
			"bob": {{Source: "bob", Target: literalTarget("alice"), Score: 4, Type: "x", CreatedAt: time.Now()}},
		},
		ErrFor: map[string]error{"alice": errors.New("feed unreachable")},
	}

	summary, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// A feed failure is evidence loss, not a citizen failure: both citizens
	// still complete and bob's evidence still lands.
	if summary.CitizensProcessed != 2 {
		t.Errorf("processed = %d, want 2", summary.CitizensProcessed)
	}
	if summary.CitizensFailed != 0 {
		t.Errorf("failed = %d, want 0", summary.CitizensFailed)
	}

	rel, _ := e.DB.GetRelationship("alice", "bob")
	if rel == nil {
		t.Fatal("expected aggregate from bob's evidence")
	}
}

func TestRunSavesSummary(t *testing.T) {
	e := testEngine(t)
	seedCitizens(t, e, "alice")

	summary, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.RunID == "" {
		t.Error("expected run id")
	}

	saved, err := e.DB.LatestRun()
	if err != nil {
		t.Fatalf("LatestRun: %v", err)
	}
	if saved == nil || saved.RunID != summary.RunID {
		t.Fatalf("saved = %+v, want run %s", saved, summary.RunID)
	}

	var breakdown []CitizenStats
	if err := json.Unmarshal([]byte(saved.Breakdown), &breakdown); err != nil {
		t.Fatalf("breakdown decode: %v", err)
	}
	if len(breakdown) != 1 || breakdown[0].Username != "alice" {
		t.Errorf("breakdown = %+v", breakdown)
	}
}

func TestRunEmptyPopulation(t *testing.T) {
	e := testEngine(t)

	summary, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.CitizensProcessed != 0 || summary.RelationshipsCreated != 0 {
		t.Errorf("summary = %+v, want all zeros", summary)
	}
}
