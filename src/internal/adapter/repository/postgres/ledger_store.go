package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/api-sage/core-banking-ledger/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/core-banking-ledger/src/internal/domain"
	"github.com/api-sage/core-banking-ledger/src/internal/logger"
	"github.com/lib/pq"
)

const (
	pqUniqueViolation   = "23505"
	pqLockNotAvailable  = "55P03"
	accountNumberUnique = "accounts_account_number_key"
)

const accountColumns = `id, account_number, owner_id, account_type, status, currency, balance, credit_limit, version, last_activity_at, created_at, updated_at`

type LedgerStore struct {
	db          *sql.DB
	lockTimeout time.Duration
}

func NewLedgerStore(db *sql.DB, lockTimeout time.Duration) *LedgerStore {
	return &LedgerStore{db: db, lockTimeout: lockTimeout}
}

// InTransaction runs fn inside one database transaction with a bounded lock
// wait. Row locks taken by LockAccounts are held until commit or rollback.
func (s *LedgerStore) InTransaction(ctx context.Context, fn func(tx repo_interfaces.LedgerTx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	timeout := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", s.lockTimeout.Milliseconds())
	if _, err := tx.ExecContext(ctx, timeout); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("set lock timeout: %w", err)
	}

	if err := fn(&ledgerTx{tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

func (s *LedgerStore) CreateAccount(ctx context.Context, account domain.Account) (domain.Account, error) {
	logger.Info("ledger store create account", logger.Fields{
		"accountNumber": account.AccountNumber,
		"ownerId":       account.OwnerID,
		"accountType":   account.Type,
	})

	const query = `
INSERT INTO accounts (
	account_number,
	owner_id,
	account_type,
	status,
	currency,
	balance,
	credit_limit,
	version,
	last_activity_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id, created_at, updated_at`

	var id string
	var createdAt, updatedAt time.Time

	if err := s.db.QueryRowContext(
		ctx,
		query,
		account.AccountNumber,
		account.OwnerID,
		account.Type,
		account.Status,
		account.Balance.Currency,
		account.Balance.StringFixed(),
		account.CreditLimit.StringFixed(),
		account.Version,
		account.LastActivityAt,
	).Scan(&id, &createdAt, &updatedAt); err != nil {
		if isUniqueViolation(err, accountNumberUnique) {
			return domain.Account{}, domain.ErrDuplicateAccountNumber
		}
		return domain.Account{}, fmt.Errorf("create account: %w", err)
	}

	account.ID = id
	account.CreatedAt = createdAt
	account.UpdatedAt = updatedAt

	return account, nil
}

func (s *LedgerStore) GetAccountByID(ctx context.Context, id string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	return scanAccount(row)
}

func (s *LedgerStore) GetAccountByNumber(ctx context.Context, accountNumber string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE account_number = $1`, accountNumber)
	return scanAccount(row)
}

func (s *LedgerStore) UpdateAccountFields(ctx context.Context, account domain.Account) (domain.Account, error) {
	const query = `
UPDATE accounts
SET account_type = $2, version = version + 1, updated_at = NOW()
WHERE id = $1 AND version = $3
RETURNING version, updated_at`

	var version int64
	var updatedAt time.Time

	err := s.db.QueryRowContext(ctx, query, account.ID, account.Type, account.Version).Scan(&version, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		// Distinguish a missing row from a stale version.
		if _, lookupErr := s.GetAccountByID(ctx, account.ID); lookupErr != nil {
			return domain.Account{}, lookupErr
		}
		return domain.Account{}, domain.ErrVersionConflict
	}
	if err != nil {
		return domain.Account{}, fmt.Errorf("update account fields: %w", err)
	}

	account.Version = version
	account.UpdatedAt = updatedAt

	return account, nil
}

func (s *LedgerStore) HasTransactionHistory(ctx context.Context, accountID string) (bool, error) {
	return hasTransactionHistory(ctx, s.db, accountID)
}

func (s *LedgerStore) ListTransactions(ctx context.Context, accountID string) ([]domain.Transaction, error) {
	const query = `
SELECT id, reference_number, transfer_reference, account_id, type, currency, amount, balance_after, status, description, created_at
FROM transactions
WHERE account_id = $1
ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []domain.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, txn)
	}

	return transactions, rows.Err()
}

func (s *LedgerStore) ListDormantAccounts(ctx context.Context, inactiveSince time.Time) ([]domain.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts WHERE status = $1 AND last_activity_at < $2`

	rows, err := s.db.QueryContext(ctx, query, domain.AccountStatusActive, inactiveSince)
	if err != nil {
		return nil, fmt.Errorf("list dormant accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	return accounts, rows.Err()
}

type ledgerTx struct {
	tx *sql.Tx
}

// LockAccounts takes the row locks in canonical order. Postgres acquires the
// FOR UPDATE locks in the ORDER BY sequence, so concurrent transfers over
// the same pair of accounts cannot deadlock.
func (t *ledgerTx) LockAccounts(ctx context.Context, ids ...string) (map[string]domain.Account, error) {
	ordered := domain.LockOrder(ids...)

	const query = `SELECT ` + accountColumns + ` FROM accounts WHERE id = ANY($1) ORDER BY id FOR UPDATE`

	rows, err := t.tx.QueryContext(ctx, query, pq.Array(ordered))
	if err != nil {
		if isLockNotAvailable(err) {
			return nil, domain.ErrResourceBusy
		}
		return nil, fmt.Errorf("lock accounts: %w", err)
	}
	defer rows.Close()

	accounts := make(map[string]domain.Account, len(ordered))
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts[account.ID] = account
	}
	if err := rows.Err(); err != nil {
		if isLockNotAvailable(err) {
			return nil, domain.ErrResourceBusy
		}
		return nil, fmt.Errorf("lock accounts: %w", err)
	}

	for _, id := range ordered {
		if _, ok := accounts[id]; !ok {
			return nil, domain.ErrRecordNotFound
		}
	}

	return accounts, nil
}

func (t *ledgerTx) SaveAccount(ctx context.Context, account domain.Account) (domain.Account, error) {
	const query = `
UPDATE accounts
SET status = $2, balance = $3, version = version + 1, last_activity_at = $4, updated_at = NOW()
WHERE id = $1
RETURNING version, updated_at`

	var version int64
	var updatedAt time.Time

	err := t.tx.QueryRowContext(ctx, query, account.ID, account.Status, account.Balance.StringFixed(), account.LastActivityAt).Scan(&version, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Account{}, domain.ErrRecordNotFound
	}
	if err != nil {
		return domain.Account{}, fmt.Errorf("save account: %w", err)
	}

	account.Version = version
	account.UpdatedAt = updatedAt

	return account, nil
}

func (t *ledgerTx) CreateTransaction(ctx context.Context, txn domain.Transaction) (domain.Transaction, error) {
	const query = `
INSERT INTO transactions (
	reference_number,
	transfer_reference,
	account_id,
	type,
	currency,
	amount,
	balance_after,
	status,
	description
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id, created_at`

	var id string
	var createdAt time.Time

	if err := t.tx.QueryRowContext(
		ctx,
		query,
		txn.ReferenceNumber,
		nullableString(txn.TransferReference),
		txn.AccountID,
		txn.Type,
		txn.Amount.Currency,
		txn.Amount.StringFixed(),
		txn.BalanceAfter.StringFixed(),
		txn.Status,
		txn.Description,
	).Scan(&id, &createdAt); err != nil {
		if isUniqueViolation(err, "transactions_reference_number_key") {
			return domain.Transaction{}, domain.ErrDuplicateReference
		}
		return domain.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	txn.ID = id
	txn.CreatedAt = createdAt

	return txn, nil
}

func (t *ledgerTx) DeleteAccount(ctx context.Context, id string) error {
	result, err := t.tx.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete account rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}

func (t *ledgerTx) HasTransactionHistory(ctx context.Context, accountID string) (bool, error) {
	return hasTransactionHistory(ctx, t.tx, accountID)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func hasTransactionHistory(ctx context.Context, q queryRower, accountID string) (bool, error) {
	var count int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(1) FROM transactions WHERE account_id = $1`, accountID).Scan(&count); err != nil {
		return false, fmt.Errorf("check transaction history: %w", err)
	}

	return count > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (domain.Account, error) {
	var account domain.Account
	var currency, balance, creditLimit string

	err := row.Scan(
		&account.ID,
		&account.AccountNumber,
		&account.OwnerID,
		&account.Type,
		&account.Status,
		&currency,
		&balance,
		&creditLimit,
		&account.Version,
		&account.LastActivityAt,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Account{}, domain.ErrRecordNotFound
	}
	if err != nil {
		return domain.Account{}, fmt.Errorf("scan account: %w", err)
	}

	account.Balance, err = domain.MoneyFromString(balance, currency)
	if err != nil {
		return domain.Account{}, err
	}
	account.CreditLimit, err = domain.MoneyFromString(creditLimit, currency)
	if err != nil {
		return domain.Account{}, err
	}

	return account, nil
}

func scanTransaction(row rowScanner) (domain.Transaction, error) {
	var txn domain.Transaction
	var currency, amount, balanceAfter string
	var transferReference sql.NullString

	err := row.Scan(
		&txn.ID,
		&txn.ReferenceNumber,
		&transferReference,
		&txn.AccountID,
		&txn.Type,
		&currency,
		&amount,
		&balanceAfter,
		&txn.Status,
		&txn.Description,
		&txn.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Transaction{}, domain.ErrRecordNotFound
	}
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}

	txn.TransferReference = transferReference.String
	txn.Amount, err = domain.MoneyFromString(amount, currency)
	if err != nil {
		return domain.Transaction{}, err
	}
	txn.BalanceAfter, err = domain.MoneyFromString(balanceAfter, currency)
	if err != nil {
		return domain.Transaction{}, err
	}

	return txn, nil
}

func nullableString(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}

func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pqUniqueViolation && (constraint == "" || pqErr.Constraint == constraint)
	}
	return false
}

func isLockNotAvailable(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pqLockNotAvailable
	}
	return false
}
