package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/api-sage/core-banking-ledger/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/core-banking-ledger/src/internal/domain"
)

func newTestStore(lockWait time.Duration) *LedgerStore {
	return NewLedgerStore(domain.UUIDGenerator{}, domain.SystemClock{}, lockWait)
}

func seedAccount(t *testing.T, store *LedgerStore, number, balance string) domain.Account {
	t.Helper()

	account, err := store.CreateAccount(context.Background(), domain.Account{
		AccountNumber:  number,
		OwnerID:        "owner-1",
		Type:           domain.AccountTypeChecking,
		Status:         domain.AccountStatusActive,
		Balance:        mustMoney(t, balance),
		CreditLimit:    domain.ZeroMoney("USD"),
		LastActivityAt: time.Now(),
	})
	require.NoError(t, err)

	return account
}

func mustMoney(t *testing.T, amount string) domain.Money {
	t.Helper()
	m, err := domain.MoneyFromString(amount, "USD")
	require.NoError(t, err)
	return m
}

func TestCreateAccountRejectsDuplicateNumber(t *testing.T) {
	store := newTestStore(time.Second)
	seedAccount(t, store, "0000000001", "100.00")

	_, err := store.CreateAccount(context.Background(), domain.Account{AccountNumber: "0000000001"})
	require.ErrorIs(t, err, domain.ErrDuplicateAccountNumber)
}

func TestLockTimeoutReturnsResourceBusy(t *testing.T) {
	store := newTestStore(50 * time.Millisecond)
	account := seedAccount(t, store, "0000000001", "100.00")

	holding := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = store.InTransaction(context.Background(), func(tx repo_interfaces.LedgerTx) error {
			if _, err := tx.LockAccounts(context.Background(), account.ID); err != nil {
				return err
			}
			close(holding)
			time.Sleep(300 * time.Millisecond)
			return nil
		})
	}()

	<-holding
	err := store.InTransaction(context.Background(), func(tx repo_interfaces.LedgerTx) error {
		_, err := tx.LockAccounts(context.Background(), account.ID)
		return err
	})
	require.ErrorIs(t, err, domain.ErrResourceBusy)
	<-done
}

func TestFailedUnitOfWorkLeavesNoTrace(t *testing.T) {
	store := newTestStore(time.Second)
	account := seedAccount(t, store, "0000000001", "100.00")
	boom := errors.New("boom")

	err := store.InTransaction(context.Background(), func(tx repo_interfaces.LedgerTx) error {
		locked, err := tx.LockAccounts(context.Background(), account.ID)
		if err != nil {
			return err
		}

		updated := locked[account.ID]
		updated.Balance = mustMoney(t, "999.00")
		if _, err := tx.SaveAccount(context.Background(), updated); err != nil {
			return err
		}
		if _, err := tx.CreateTransaction(context.Background(), domain.Transaction{
			ReferenceNumber: "TXN1",
			AccountID:       account.ID,
			Type:            domain.TransactionTypeDeposit,
			Amount:          mustMoney(t, "899.00"),
			BalanceAfter:    mustMoney(t, "999.00"),
		}); err != nil {
			return err
		}

		return boom
	})
	require.ErrorIs(t, err, boom)

	reloaded, err := store.GetAccountByID(context.Background(), account.ID)
	require.NoError(t, err)
	assert.Equal(t, "100.00", reloaded.Balance.StringFixed())
	assert.Equal(t, account.Version, reloaded.Version)

	history, err := store.ListTransactions(context.Background(), account.ID)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestDuplicateReferenceWithinAndAcrossUnits(t *testing.T) {
	store := newTestStore(time.Second)
	account := seedAccount(t, store, "0000000001", "100.00")

	txn := domain.Transaction{
		ReferenceNumber: "TXN-SAME",
		AccountID:       account.ID,
		Type:            domain.TransactionTypeDeposit,
		Amount:          mustMoney(t, "1.00"),
		BalanceAfter:    mustMoney(t, "101.00"),
	}

	t.Run("within one unit", func(t *testing.T) {
		err := store.InTransaction(context.Background(), func(tx repo_interfaces.LedgerTx) error {
			if _, err := tx.CreateTransaction(context.Background(), txn); err != nil {
				return err
			}
			_, err := tx.CreateTransaction(context.Background(), txn)
			return err
		})
		require.ErrorIs(t, err, domain.ErrDuplicateReference)
	})

	t.Run("across committed units", func(t *testing.T) {
		err := store.InTransaction(context.Background(), func(tx repo_interfaces.LedgerTx) error {
			_, err := tx.CreateTransaction(context.Background(), txn)
			return err
		})
		require.NoError(t, err)

		err = store.InTransaction(context.Background(), func(tx repo_interfaces.LedgerTx) error {
			_, err := tx.CreateTransaction(context.Background(), txn)
			return err
		})
		require.ErrorIs(t, err, domain.ErrDuplicateReference)
	})
}

func TestUpdateAccountFieldsVersioning(t *testing.T) {
	store := newTestStore(time.Second)
	account := seedAccount(t, store, "0000000001", "100.00")

	t.Run("matching version wins and bumps", func(t *testing.T) {
		account.Type = domain.AccountTypeSavings
		updated, err := store.UpdateAccountFields(context.Background(), account)
		require.NoError(t, err)
		assert.Equal(t, domain.AccountTypeSavings, updated.Type)
		assert.Equal(t, account.Version+1, updated.Version)
	})

	t.Run("stale version is rejected", func(t *testing.T) {
		_, err := store.UpdateAccountFields(context.Background(), account)
		require.ErrorIs(t, err, domain.ErrVersionConflict)
	})

	t.Run("unknown account", func(t *testing.T) {
		_, err := store.UpdateAccountFields(context.Background(), domain.Account{ID: "missing"})
		require.ErrorIs(t, err, domain.ErrRecordNotFound)
	})
}

func TestDeleteAccountRemovesNumberIndex(t *testing.T) {
	store := newTestStore(time.Second)
	account := seedAccount(t, store, "0000000001", "0.00")

	err := store.InTransaction(context.Background(), func(tx repo_interfaces.LedgerTx) error {
		if _, err := tx.LockAccounts(context.Background(), account.ID); err != nil {
			return err
		}
		return tx.DeleteAccount(context.Background(), account.ID)
	})
	require.NoError(t, err)

	_, err = store.GetAccountByID(context.Background(), account.ID)
	require.ErrorIs(t, err, domain.ErrRecordNotFound)
	_, err = store.GetAccountByNumber(context.Background(), "0000000001")
	require.ErrorIs(t, err, domain.ErrRecordNotFound)
}

func TestListDormantAccounts(t *testing.T) {
	store := newTestStore(time.Second)

	stale := seedAccount(t, store, "0000000001", "10.00")
	fresh := seedAccount(t, store, "0000000002", "10.00")

	cutoff := time.Now().Add(time.Minute)
	err := store.InTransaction(context.Background(), func(tx repo_interfaces.LedgerTx) error {
		locked, err := tx.LockAccounts(context.Background(), fresh.ID)
		if err != nil {
			return err
		}
		active := locked[fresh.ID]
		active.LastActivityAt = time.Now().Add(time.Hour)
		_, err = tx.SaveAccount(context.Background(), active)
		return err
	})
	require.NoError(t, err)

	dormant, err := store.ListDormantAccounts(context.Background(), cutoff)
	require.NoError(t, err)
	require.Len(t, dormant, 1)
	assert.Equal(t, stale.ID, dormant[0].ID)
}
