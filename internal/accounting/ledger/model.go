package ledger

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType is the direction of a ledger posting.
type TransactionType string

const (
	TransactionDebit  TransactionType = "DEBIT"
	TransactionCredit TransactionType = "CREDIT"
)

// Valid reports whether t is a known posting direction.
func (t TransactionType) Valid() bool {
	return t == TransactionDebit || t == TransactionCredit
}

// Delta converts an absolute amount into a signed balance delta.
// CREDIT increases an account balance, DEBIT decreases it; the same
// convention applies to every account regardless of its group type.
func (t TransactionType) Delta(amount float64) float64 {
	if t == TransactionDebit {
		return -amount
	}
	return amount
}

// Entry is one immutable posting against an account. PreviousBalance
// snapshots the account balance the instant before this entry applied.
type Entry struct {
	ID              uuid.UUID       `json:"id"`
	AccountID       uuid.UUID       `json:"accountId"`
	VoucherID       *uuid.UUID      `json:"voucherId"`
	Type            TransactionType `json:"transactionType"`
	Amount          float64         `json:"amount"`
	PreviousBalance float64         `json:"previousBalance"`
	Narration       string          `json:"narration"`
	EntryDate       time.Time       `json:"entryDate"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}
