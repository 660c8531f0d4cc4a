package repo_interfaces

import (
	"context"
	"time"

	"github.com/api-sage/core-banking-ledger/src/internal/domain"
)

// LedgerStore is the storage port for accounts and transactions. Reads run
// outside any lock; every balance or status mutation goes through
// InTransaction so the per-account pessimistic locks and the persisted rows
// commit or roll back as one unit.
type LedgerStore interface {
	InTransaction(ctx context.Context, fn func(tx LedgerTx) error) error

	CreateAccount(ctx context.Context, account domain.Account) (domain.Account, error)
	GetAccountByID(ctx context.Context, id string) (domain.Account, error)
	GetAccountByNumber(ctx context.Context, accountNumber string) (domain.Account, error)

	// UpdateAccountFields is the optimistic path for non-financial field
	// updates: the write applies only if the stored version still matches
	// account.Version, otherwise domain.ErrVersionConflict.
	UpdateAccountFields(ctx context.Context, account domain.Account) (domain.Account, error)

	HasTransactionHistory(ctx context.Context, accountID string) (bool, error)
	ListTransactions(ctx context.Context, accountID string) ([]domain.Transaction, error)
	ListDormantAccounts(ctx context.Context, inactiveSince time.Time) ([]domain.Account, error)
}

// LedgerTx is the view of the store inside one atomic unit. LockAccounts
// acquires exclusive row locks in the canonical domain.LockOrder; a lock not
// granted within the configured timeout surfaces as domain.ErrResourceBusy.
type LedgerTx interface {
	LockAccounts(ctx context.Context, ids ...string) (map[string]domain.Account, error)
	SaveAccount(ctx context.Context, account domain.Account) (domain.Account, error)
	CreateTransaction(ctx context.Context, txn domain.Transaction) (domain.Transaction, error)
	DeleteAccount(ctx context.Context, id string) error
	HasTransactionHistory(ctx context.Context, accountID string) (bool, error)
}
