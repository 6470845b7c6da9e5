package engine

import (
	"sort"
	"strings"
)

// The provenance tag set is persisted inside the relationship's free-text
// notes field as "Sources: tag1, tag2". Everything outside this file works
// with the set form; the text shape exists only at the persistence boundary.

const notesPrefix = "Sources:"

// ParseNotes extracts the provenance tag set from a stored note. Absent or
// malformed notes yield an empty set; parsing never fails.
func ParseNotes(notes string) map[string]bool {
	tags := make(map[string]bool)
	notes = strings.TrimSpace(notes)
	if !strings.HasPrefix(notes, notesPrefix) {
		return tags
	}
	for _, part := range strings.Split(notes[len(notesPrefix):], ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags[tag] = true
		}
	}
	return tags
}

// RenderNotes serializes a tag set back to the note form, sorted so the
// output is stable regardless of map iteration order. An empty set renders
// as an empty string.
func RenderNotes(tags map[string]bool) string {
	if len(tags) == 0 {
		return ""
	}
	sorted := make([]string, 0, len(tags))
	for tag := range tags {
		sorted = append(sorted, tag)
	}
	sort.Strings(sorted)
	return notesPrefix + " " + strings.Join(sorted, ", ")
}
