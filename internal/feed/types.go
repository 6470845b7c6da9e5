package feed

import (
	"encoding/json"
	"strings"
	"time"
)

// Relevancy is one externally produced signal that a source citizen
// currently matters to one or more targets. Events are immutable and
// read-only to this service.
type Relevancy struct {
	Source    string    `json:"sourceCitizen"`
	Target    TargetRef `json:"targetCitizen"`
	Score     float64   `json:"score"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
}

// TargetRef is the feed's loosely-typed target field. Upstream sends one
// of three shapes: a plain username, a string containing a serialized JSON
// array of usernames, or a JSON array of citizen-record foreign keys.
//
// Names holds usernames known directly; Refs holds foreign-key ids that
// still need resolution against the citizen roster.
type TargetRef struct {
	Names []string
	Refs  []string
}

// UnmarshalJSON decodes all three target shapes. It never fails on shape
// surprises: a string that looks like a serialized array but won't decode
// is kept as a literal username.
func (t *TargetRef) UnmarshalJSON(data []byte) error {
	t.Names = nil
	t.Refs = nil

	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == "" {
		return nil
	}

	// JSON array: elements are foreign-key ids (strings or numbers).
	if strings.HasPrefix(trimmed, "[") {
		dec := json.NewDecoder(strings.NewReader(trimmed))
		dec.UseNumber()
		var anyList []any
		if err := dec.Decode(&anyList); err != nil {
			return nil
		}
		for _, el := range anyList {
			switch v := el.(type) {
			case string:
				t.Refs = append(t.Refs, v)
			case json.Number:
				t.Refs = append(t.Refs, v.String())
			}
		}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}

	// A string that itself contains a serialized array of usernames.
	if strings.HasPrefix(strings.TrimSpace(s), "[") {
		var names []string
		if err := json.Unmarshal([]byte(s), &names); err == nil {
			for _, n := range names {
				if n != "" {
					t.Names = append(t.Names, n)
				}
			}
			return nil
		}
		// Undecodable: fall through and keep the literal string.
	}

	if s != "" {
		t.Names = []string{s}
	}
	return nil
}

// MarshalJSON renders the ref back in its simplest faithful shape, mainly
// for logs and test fixtures.
func (t TargetRef) MarshalJSON() ([]byte, error) {
	if len(t.Refs) > 0 {
		return json.Marshal(t.Refs)
	}
	if len(t.Names) == 1 {
		return json.Marshal(t.Names[0])
	}
	if len(t.Names) > 1 {
		inner, err := json.Marshal(t.Names)
		if err != nil {
			return nil, err
		}
		return json.Marshal(string(inner))
	}
	return []byte(`""`), nil
}

// IsEmpty reports whether the ref carries no target at all.
func (t TargetRef) IsEmpty() bool {
	return len(t.Names) == 0 && len(t.Refs) == 0
}
