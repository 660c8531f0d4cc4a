package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/api-sage/core-banking-ledger/src/internal/domain"
)

func checkingAccount(t *testing.T, balance string) domain.Account {
	t.Helper()
	return domain.Account{
		Type:        domain.AccountTypeChecking,
		Status:      domain.AccountStatusActive,
		Balance:     usd(t, balance),
		CreditLimit: domain.ZeroMoney("USD"),
	}
}

func creditAccount(t *testing.T, balance, limit string) domain.Account {
	t.Helper()
	return domain.Account{
		Type:        domain.AccountTypeCredit,
		Status:      domain.AccountStatusActive,
		Balance:     usd(t, balance),
		CreditLimit: usd(t, limit),
	}
}

func TestComputeNewBalanceChecking(t *testing.T) {
	t.Run("deposit adds", func(t *testing.T) {
		got, err := domain.ComputeNewBalance(checkingAccount(t, "1000.00"), domain.TransactionTypeDeposit, usd(t, "500.00"))
		require.NoError(t, err)
		assert.Equal(t, "1500.00", got.StringFixed())
	})

	t.Run("withdrawal to exactly zero is allowed", func(t *testing.T) {
		got, err := domain.ComputeNewBalance(checkingAccount(t, "100.00"), domain.TransactionTypeWithdrawal, usd(t, "100.00"))
		require.NoError(t, err)
		assert.True(t, got.IsZero())
	})

	t.Run("overdraft is refused with available balance", func(t *testing.T) {
		_, err := domain.ComputeNewBalance(checkingAccount(t, "1000.00"), domain.TransactionTypeWithdrawal, usd(t, "1500.00"))
		require.ErrorIs(t, err, domain.ErrInsufficientFunds)

		var insufficient domain.InsufficientFundsError
		require.ErrorAs(t, err, &insufficient)
		assert.Equal(t, "1500.00", insufficient.Requested.StringFixed())
		assert.Equal(t, "1000.00", insufficient.Available.StringFixed())
	})

	t.Run("one cent over is refused", func(t *testing.T) {
		_, err := domain.ComputeNewBalance(checkingAccount(t, "100.00"), domain.TransactionTypeWithdrawal, usd(t, "100.01"))
		require.ErrorIs(t, err, domain.ErrInsufficientFunds)
	})
}

func TestComputeNewBalanceCredit(t *testing.T) {
	t.Run("withdrawal may run the balance negative up to the limit", func(t *testing.T) {
		got, err := domain.ComputeNewBalance(creditAccount(t, "0.00", "500.00"), domain.TransactionTypeWithdrawal, usd(t, "500.00"))
		require.NoError(t, err)
		assert.Equal(t, "-500.00", got.StringFixed())
	})

	t.Run("withdrawal past the limit is refused with remaining credit", func(t *testing.T) {
		_, err := domain.ComputeNewBalance(creditAccount(t, "-400.00", "500.00"), domain.TransactionTypeWithdrawal, usd(t, "100.01"))
		require.ErrorIs(t, err, domain.ErrInsufficientFunds)

		var insufficient domain.InsufficientFundsError
		require.ErrorAs(t, err, &insufficient)
		assert.Equal(t, "100.00", insufficient.Available.StringFixed())
	})

	t.Run("paying past zero into positive balance is allowed", func(t *testing.T) {
		got, err := domain.ComputeNewBalance(creditAccount(t, "-100.00", "500.00"), domain.TransactionTypeDeposit, usd(t, "150.00"))
		require.NoError(t, err)
		assert.Equal(t, "50.00", got.StringFixed())
	})
}

func TestDirectionOf(t *testing.T) {
	assert.Equal(t, domain.OperationCredit, domain.DirectionOf(domain.TransactionTypeDeposit))
	assert.Equal(t, domain.OperationDebit, domain.DirectionOf(domain.TransactionTypeWithdrawal))
}
