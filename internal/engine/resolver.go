package engine

import (
	"github.com/civitas/kinship/internal/feed"
)

// ResolveTargets turns a relevancy event's target reference into concrete
// usernames. Literal names pass through as-is; foreign-key refs go through
// the citizen lookup and unresolvable ids are dropped. The source citizen
// is excluded so self-relevancy never scores.
//
// Resolution never fails: the worst outcome of a garbage reference is an
// empty result.
func ResolveTargets(source string, ref feed.TargetRef, lookup func(id string) (string, bool)) []string {
	seen := make(map[string]bool)
	var targets []string

	add := func(name string) {
		if name == "" || name == source || seen[name] {
			return
		}
		seen[name] = true
		targets = append(targets, name)
	}

	for _, name := range ref.Names {
		add(name)
	}
	for _, id := range ref.Refs {
		if lookup == nil {
			continue
		}
		if name, ok := lookup(id); ok {
			add(name)
		}
	}
	return targets
}
