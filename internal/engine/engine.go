package engine

import (
	"time"

	"github.com/civitas/kinship/internal/feed"
	"github.com/civitas/kinship/internal/store"
)

// Weights are the simulation-tunable scoring constants. They shape score
// magnitudes, not the algorithm.
type Weights struct {
	// Decay is the flat multiplier applied to existing scores once per
	// batch invocation. It is deliberately per-run, not per-elapsed-hour:
	// the scheduler is expected to drive the batch at a fixed cadence, and
	// running twice in quick succession decays twice.
	Decay float64

	// Message is the trust contribution per recent message.
	Message float64

	// LoanDivisor scales active-loan principals into trust points.
	LoanDivisor float64

	// ContractDivisor scales open-contract value (price * hours) into
	// trust points.
	ContractDivisor float64

	// TransactionDivisor scales recent trade prices into trust points.
	TransactionDivisor float64

	// Window is the recency window for messages, transactions, and
	// relevancy events.
	Window time.Duration
}

// DefaultWeights returns the simulation's tuned constants.
func DefaultWeights() Weights {
	return Weights{
		Decay:              0.75,
		Message:            1.0,
		LoanDivisor:        100.0,
		ContractDivisor:    100.0,
		TransactionDivisor: 10.0,
		Window:             24 * time.Hour,
	}
}

// Engine computes pairwise relationship scores from relevancy and
// interaction evidence.
type Engine struct {
	DB      *store.DB
	Feed    feed.Source
	Weights Weights
}

// New creates an Engine over the record store and relevancy feed.
func New(db *store.DB, src feed.Source, w Weights) *Engine {
	return &Engine{DB: db, Feed: src, Weights: w}
}
