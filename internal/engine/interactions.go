package engine

import (
	"log"
	"time"
)

// Tags recorded in a relationship's provenance when a category contributed.
const (
	TagMessages     = "messages_interaction"
	TagLoans        = "loans_interaction"
	TagContracts    = "contracts_interaction"
	TagTransactions = "transactions_interaction"
)

// TrustEvidence computes the trust contribution between two citizens from
// the four interaction sources. Each category is independently fallible:
// a failed query is logged, contributes zero, and never blocks the others.
// Partial evidence is expected.
func (e *Engine) TrustEvidence(a, b string) (float64, []string) {
	now := time.Now()
	since := now.Add(-e.Weights.Window)

	var contribution float64
	var tags []string

	// Messages exchanged within the window.
	if count, err := e.DB.CountMessagesBetween(a, b, since); err != nil {
		log.Printf("trust: messages %s/%s: %v", a, b, err)
	} else if count > 0 {
		contribution += float64(count) * e.Weights.Message
		tags = append(tags, TagMessages)
	}

	// Active loans, scaled by principal.
	if loans, err := e.DB.ActiveLoansBetween(a, b); err != nil {
		log.Printf("trust: loans %s/%s: %v", a, b, err)
	} else if len(loans) > 0 {
		for _, l := range loans {
			contribution += l.Principal / e.Weights.LoanDivisor
		}
		tags = append(tags, TagLoans)
	}

	// Contracts still running at evaluation time. The contract scripts
	// store end_at as text; anything unparseable or already ended counts
	// for nothing.
	if contracts, err := e.DB.ContractsBetween(a, b); err != nil {
		log.Printf("trust: contracts %s/%s: %v", a, b, err)
	} else {
		open := 0
		for _, c := range contracts {
			end, perr := time.Parse(time.RFC3339, c.EndAt)
			if perr != nil || !end.After(now) {
				continue
			}
			contribution += (c.PricePerUnit * c.HourlyAmount) / e.Weights.ContractDivisor
			open++
		}
		if open > 0 {
			tags = append(tags, TagContracts)
		}
	}

	// Trades executed within the window.
	if txs, err := e.DB.TransactionsBetween(a, b, since); err != nil {
		log.Printf("trust: transactions %s/%s: %v", a, b, err)
	} else if len(txs) > 0 {
		for _, t := range txs {
			contribution += t.Price / e.Weights.TransactionDivisor
		}
		tags = append(tags, TagTransactions)
	}

	return contribution, tags
}
