package store

import (
	"database/sql"
	"fmt"
	"time"
)

// The four interaction-evidence tables are externally owned: the payment
// and contract scripts write them, this core only reads. Every query below
// is symmetric in the two usernames — evidence counts no matter which
// citizen initiated it.

// Loan is a loan record between two citizens.
type Loan struct {
	ID        int64
	Lender    string
	Borrower  string
	Principal float64
	Status    string
	CreatedAt int64
}

// Contract is a standing work contract between a buyer and a seller.
// EndAt is stored as text by the contract scripts and is not guaranteed
// to parse; callers decide what an unparseable end time means.
type Contract struct {
	ID           int64
	Buyer        string
	Seller       string
	PricePerUnit float64
	HourlyAmount float64
	EndAt        string
	CreatedAt    int64
}

// Transaction is one executed trade between two citizens.
type Transaction struct {
	ID         int64
	Seller     string
	Buyer      string
	Price      float64
	ExecutedAt int64
}

// AddMessage records a message for test fixtures and seeding.
func (db *DB) AddMessage(sender, receiver, body string, createdAt time.Time) error {
	_, err := db.Exec(`
		INSERT INTO messages (sender, receiver, body, created_at) VALUES (?, ?, ?, ?)
	`, sender, receiver, body, createdAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("add message: %w", err)
	}
	return nil
}

// AddLoan records a loan for test fixtures and seeding.
func (db *DB) AddLoan(lender, borrower string, principal float64, status string) error {
	_, err := db.Exec(`
		INSERT INTO loans (lender, borrower, principal, status, created_at) VALUES (?, ?, ?, ?, ?)
	`, lender, borrower, principal, status, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("add loan: %w", err)
	}
	return nil
}

// AddContract records a contract for test fixtures and seeding.
func (db *DB) AddContract(buyer, seller string, pricePerUnit, hourlyAmount float64, endAt string) error {
	_, err := db.Exec(`
		INSERT INTO contracts (buyer, seller, price_per_unit, hourly_amount, end_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, buyer, seller, pricePerUnit, hourlyAmount, endAt, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("add contract: %w", err)
	}
	return nil
}

// AddTransaction records an executed trade for test fixtures and seeding.
func (db *DB) AddTransaction(seller, buyer string, price float64, executedAt time.Time) error {
	_, err := db.Exec(`
		INSERT INTO transactions (seller, buyer, price, executed_at) VALUES (?, ?, ?, ?)
	`, seller, buyer, price, executedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("add transaction: %w", err)
	}
	return nil
}

// CountMessagesBetween returns how many messages were exchanged between the
// pair (either direction) at or after since.
func (db *DB) CountMessagesBetween(a, b string, since time.Time) (int, error) {
	var count int
	err := db.QueryRow(`
		SELECT COUNT(*) FROM messages
		WHERE ((sender = ? AND receiver = ?) OR (sender = ? AND receiver = ?))
		AND created_at >= ?
	`, a, b, b, a, since.UnixMilli()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count messages between %s and %s: %w", a, b, err)
	}
	return count, nil
}

// ActiveLoansBetween returns loans between the pair (either direction) with
// status 'active'.
func (db *DB) ActiveLoansBetween(a, b string) ([]Loan, error) {
	rows, err := db.Query(`
		SELECT id, lender, borrower, principal, status, created_at FROM loans
		WHERE ((lender = ? AND borrower = ?) OR (lender = ? AND borrower = ?))
		AND status = 'active'
	`, a, b, b, a)
	if err != nil {
		return nil, fmt.Errorf("active loans between %s and %s: %w", a, b, err)
	}
	defer rows.Close()

	var loans []Loan
	for rows.Next() {
		var l Loan
		if err := rows.Scan(&l.ID, &l.Lender, &l.Borrower, &l.Principal, &l.Status, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan loan: %w", err)
		}
		loans = append(loans, l)
	}
	return loans, rows.Err()
}

// ContractsBetween returns all contracts between the pair (either role
// assignment). End-time filtering happens at the scoring layer because
// end_at is free text.
func (db *DB) ContractsBetween(a, b string) ([]Contract, error) {
	rows, err := db.Query(`
		SELECT id, buyer, seller, price_per_unit, hourly_amount, end_at, created_at FROM contracts
		WHERE ((buyer = ? AND seller = ?) OR (buyer = ? AND seller = ?))
	`, a, b, b, a)
	if err != nil {
		return nil, fmt.Errorf("contracts between %s and %s: %w", a, b, err)
	}
	defer rows.Close()

	var contracts []Contract
	for rows.Next() {
		var c Contract
		var endAt sql.NullString
		if err := rows.Scan(&c.ID, &c.Buyer, &c.Seller, &c.PricePerUnit, &c.HourlyAmount, &endAt, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan contract: %w", err)
		}
		c.EndAt = endAt.String
		contracts = append(contracts, c)
	}
	return contracts, rows.Err()
}

// TransactionsBetween returns trades between the pair (either role
// assignment) executed at or after since.
func (db *DB) TransactionsBetween(a, b string, since time.Time) ([]Transaction, error) {
	rows, err := db.Query(`
		SELECT id, seller, buyer, price, executed_at FROM transactions
		WHERE ((seller = ? AND buyer = ?) OR (seller = ? AND buyer = ?))
		AND executed_at >= ?
	`, a, b, b, a, since.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("transactions between %s and %s: %w", a, b, err)
	}
	defer rows.Close()

	var txs []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.Seller, &t.Buyer, &t.Price, &t.ExecutedAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}
