package feed

import (
	"context"
	"time"
)

// Mock is a test double for the Source interface.
type Mock struct {
	Events map[string][]Relevancy // keyed by source citizen
	Err    error                  // returned for every call when set
	ErrFor map[string]error       // per-citizen failures
	Calls  []string               // records citizens queried
}

// Relevancies records the call and returns the canned events.
func (m *Mock) Relevancies(ctx context.Context, citizen string, since time.Time) ([]Relevancy, error) {
	m.Calls = append(m.Calls, citizen)
	if m.Err != nil {
		return nil, m.Err
	}
	if err, ok := m.ErrFor[citizen]; ok {
		return nil, err
	}
	return m.Events[citizen], nil
}
