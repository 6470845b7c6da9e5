package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/civitas/kinship/internal/store"
)

func testServer(t *testing.T) (*Server, *store.DB) {
	t.Helper()
	db, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db, "test"), db
}

func TestHealth(t *testing.T) {
	s, _ := testServer(t)

	req := httptest.NewRequest("GET", "/api/health", nil)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %v, want ok", body["status"])
	}
	if body["db"] != true {
		t.Errorf("db = %v, want true", body["db"])
	}
}

func TestGetRelationship(t *testing.T) {
	s, db := testServer(t)

	db.UpsertRelationship(&store.Relationship{
		Citizen1: "alice", Citizen2: "bob",
		StrengthScore: 8, TrustScore: 1, LastInteraction: 123,
		Notes: "Sources: x, y",
	})

	// Pair order in the URL does not matter.
	for _, path := range []string{"/api/relationships/alice/bob", "/api/relationships/bob/alice"} {
		req := httptest.NewRequest("GET", path, nil)
		w := httptest.NewRecorder()
		s.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("%s: status = %d, want 200", path, w.Code)
		}

		var body relationshipResponse
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Citizen1 != "alice" || body.Citizen2 != "bob" {
			t.Errorf("pair = (%s, %s)", body.Citizen1, body.Citizen2)
		}
		if body.StrengthScore != 8 {
			t.Errorf("strength = %v, want 8", body.StrengthScore)
		}
		if len(body.Sources) != 2 || body.Sources[0] != "x" || body.Sources[1] != "y" {
			t.Errorf("sources = %v, want [x y]", body.Sources)
		}
	}
}

func TestGetRelationshipNotFound(t *testing.T) {
	s, _ := testServer(t)

	req := httptest.NewRequest("GET", "/api/relationships/alice/nobody", nil)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestCitizenRelationships(t *testing.T) {
	s, db := testServer(t)

	db.UpsertRelationship(&store.Relationship{Citizen1: "alice", Citizen2: "bob", LastInteraction: 1})
	db.UpsertRelationship(&store.Relationship{Citizen1: "bob", Citizen2: "carol", LastInteraction: 1})
	db.UpsertRelationship(&store.Relationship{Citizen1: "alice", Citizen2: "carol", LastInteraction: 1})

	req := httptest.NewRequest("GET", "/api/citizens/bob/relationships", nil)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var body []relationshipResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body) != 2 {
		t.Errorf("len = %d, want 2", len(body))
	}
}

func TestLatestRun(t *testing.T) {
	s, db := testServer(t)

	req := httptest.NewRequest("GET", "/api/runs/latest", nil)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 before any run", w.Code)
	}

	db.SaveRunSummary(&store.RunRecord{
		RunID: "run-9", StartedAt: 1, FinishedAt: 2,
		CitizensProcessed: 3, Breakdown: `[{"username":"alice"}]`,
	})

	w = httptest.NewRecorder()
	s.ServeHTTP(w, httptest.NewRequest("GET", "/api/runs/latest", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["run_id"] != "run-9" {
		t.Errorf("run_id = %v, want run-9", body["run_id"])
	}
	if body["citizens_processed"] != float64(3) {
		t.Errorf("citizens_processed = %v, want 3", body["citizens_processed"])
	}
}
