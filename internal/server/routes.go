package server

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/civitas/kinship/internal/engine"
	"github.com/civitas/kinship/internal/store"
)

// sourceTags exposes the provenance note as a sorted tag list.
func sourceTags(notes string) []string {
	set := engine.ParseNotes(notes)
	tags := make([]string, 0, len(set))
	for t := range set {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

type relationshipResponse struct {
	Citizen1        string   `json:"citizen1"`
	Citizen2        string   `json:"citizen2"`
	StrengthScore   float64  `json:"strength_score"`
	TrustScore      float64  `json:"trust_score"`
	LastInteraction int64    `json:"last_interaction"`
	Sources         []string `json:"sources"`
}

func toResponse(r store.Relationship) relationshipResponse {
	return relationshipResponse{
		Citizen1:        r.Citizen1,
		Citizen2:        r.Citizen2,
		StrengthScore:   r.StrengthScore,
		TrustScore:      r.TrustScore,
		LastInteraction: r.LastInteraction,
		Sources:         sourceTags(r.Notes),
	}
}

func (s *Server) handleGetRelationship(w http.ResponseWriter, r *http.Request) {
	a := chi.URLParam(r, "a")
	b := chi.URLParam(r, "b")

	rel, err := s.db.GetRelationship(a, b)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}
	if rel == nil {
		http.Error(w, `{"error":"no relationship"}`, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toResponse(*rel))
}

func (s *Server) handleCitizenRelationships(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	rels, err := s.db.RelationshipsTouching(name)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	out := make([]relationshipResponse, 0, len(rels))
	for _, rel := range rels {
		out = append(out, toResponse(rel))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

func (s *Server) handleLatestRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.db.LatestRun()
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}
	if run == nil {
		http.Error(w, `{"error":"no runs yet"}`, http.StatusNotFound)
		return
	}

	var breakdown json.RawMessage
	if run.Breakdown != "" {
		breakdown = json.RawMessage(run.Breakdown)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"run_id":                run.RunID,
		"started_at":            run.StartedAt,
		"finished_at":           run.FinishedAt,
		"citizens_processed":    run.CitizensProcessed,
		"citizens_failed":       run.CitizensFailed,
		"relevancies_fetched":   run.RelevanciesFetched,
		"relationships_created": run.RelationshipsCreated,
		"relationships_updated": run.RelationshipsUpdated,
		"pairs_failed":          run.PairsFailed,
		"citizens":              breakdown,
	})
}
