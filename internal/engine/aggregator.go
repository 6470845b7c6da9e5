package engine

import (
	"sort"
	"time"

	"github.com/civitas/kinship/internal/feed"
	"github.com/civitas/kinship/internal/store"
)

// AggregateCitizen combines one source citizen's relevancy events and
// interaction evidence into the set of relationship aggregates to persist.
//
// Relevancies are grouped by resolved target into per-target strength
// deltas. Every target with a nonzero delta or an existing aggregate then
// gets a trust contribution from the interaction sources, independent of
// whether relevancy evidence existed. Existing scores are decayed by a
// flat factor before new contributions are added; a brand-new pair starts
// at the raw contributions with no decay.
//
// Returned aggregates carry the canonical (lexicographic) pair key, so
// processing either side of a pair converges on the same row. Order is
// deterministic (sorted by target).
func (e *Engine) AggregateCitizen(source string, relevancies []feed.Relevancy, existing []store.Relationship, lookup func(id string) (string, bool)) []*store.Relationship {
	deltas := make(map[string]float64)
	relTags := make(map[string]map[string]bool)

	for _, r := range relevancies {
		for _, target := range ResolveTargets(source, r.Target, lookup) {
			deltas[target] += r.Score
			if r.Type != "" {
				if relTags[target] == nil {
					relTags[target] = make(map[string]bool)
				}
				relTags[target][r.Type] = true
			}
		}
	}

	existingByOther := make(map[string]store.Relationship, len(existing))
	for _, rel := range existing {
		other := rel.Citizen1
		if other == source {
			other = rel.Citizen2
		}
		existingByOther[other] = rel
	}

	targets := make(map[string]bool, len(deltas)+len(existingByOther))
	for t := range deltas {
		targets[t] = true
	}
	for t := range existingByOther {
		targets[t] = true
	}

	ordered := make([]string, 0, len(targets))
	for t := range targets {
		if t == source {
			continue
		}
		ordered = append(ordered, t)
	}
	sort.Strings(ordered)

	now := time.Now().UnixMilli()
	var updates []*store.Relationship

	for _, target := range ordered {
		delta := deltas[target]
		old, exists := existingByOther[target]
		if !exists && delta == 0 {
			continue
		}

		trust, interactionTags := e.TrustEvidence(source, target)

		var strength, trustScore float64
		tags := make(map[string]bool)
		if exists {
			strength = old.StrengthScore*e.Weights.Decay + delta
			trustScore = old.TrustScore*e.Weights.Decay + trust
			for tag := range ParseNotes(old.Notes) {
				tags[tag] = true
			}
		} else {
			strength = delta
			trustScore = trust
		}
		for tag := range relTags[target] {
			tags[tag] = true
		}
		for _, tag := range interactionTags {
			tags[tag] = true
		}

		c1, c2 := store.PairKey(source, target)
		rel := &store.Relationship{
			Citizen1:        c1,
			Citizen2:        c2,
			StrengthScore:   strength,
			TrustScore:      trustScore,
			LastInteraction: now,
			Notes:           RenderNotes(tags),
		}
		if exists {
			rel.ID = old.ID
			rel.CreatedAt = old.CreatedAt
		}
		updates = append(updates, rel)
	}

	return updates
}
