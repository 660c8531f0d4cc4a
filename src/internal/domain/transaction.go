package domain

import "time"

type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "DEPOSIT"
	TransactionTypeWithdrawal TransactionType = "WITHDRAWAL"
)

type TransactionStatus string

const TransactionStatusCompleted TransactionStatus = "COMPLETED"

// Transaction is immutable once persisted. A transfer is recorded as two
// transactions sharing a TRF-prefixed reference.
type Transaction struct {
	ID              string
	ReferenceNumber string
	// TransferReference correlates the two legs of a transfer; empty for
	// single-account transactions.
	TransferReference string
	AccountID         string
	Type              TransactionType
	Amount            Money
	BalanceAfter      Money
	Status            TransactionStatus
	Description       string
	CreatedAt         time.Time
}

// BalanceBefore derives the balance the account held immediately before
// this transaction applied.
func (t Transaction) BalanceBefore() (Money, error) {
	if t.Type == TransactionTypeDeposit {
		return t.BalanceAfter.Sub(t.Amount)
	}

	return t.BalanceAfter.Add(t.Amount)
}
