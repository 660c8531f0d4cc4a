package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/api-sage/core-banking-ledger/src/internal/domain"
)

func usd(t *testing.T, amount string) domain.Money {
	t.Helper()
	m, err := domain.MoneyFromString(amount, "USD")
	require.NoError(t, err)
	return m
}

func TestMoneyArithmetic(t *testing.T) {
	t.Run("addition and subtraction are exact", func(t *testing.T) {
		sum, err := usd(t, "0.10").Add(usd(t, "0.20"))
		require.NoError(t, err)
		assert.Equal(t, "0.30", sum.StringFixed())

		diff, err := usd(t, "1000.00").Sub(usd(t, "999.99"))
		require.NoError(t, err)
		assert.Equal(t, "0.01", diff.StringFixed())
	})

	t.Run("currency mismatch is refused", func(t *testing.T) {
		eur, err := domain.MoneyFromString("5.00", "EUR")
		require.NoError(t, err)

		_, err = usd(t, "5.00").Add(eur)
		require.ErrorIs(t, err, domain.ErrCurrencyMismatch)

		_, err = usd(t, "5.00").Cmp(eur)
		require.ErrorIs(t, err, domain.ErrCurrencyMismatch)
	})

	t.Run("comparison is exact", func(t *testing.T) {
		cmp, err := usd(t, "100.00").Cmp(usd(t, "100"))
		require.NoError(t, err)
		assert.Zero(t, cmp)

		assert.True(t, usd(t, "100.00").Equal(usd(t, "100")))
		assert.False(t, usd(t, "100.01").Equal(usd(t, "100.00")))
	})

	t.Run("sign helpers", func(t *testing.T) {
		assert.True(t, domain.ZeroMoney("USD").IsZero())
		assert.True(t, usd(t, "0.01").IsPositive())
		assert.True(t, usd(t, "5.00").Neg().IsNegative())
	})
}

func TestMoneyFromString(t *testing.T) {
	t.Run("normalizes currency and rounds to two places", func(t *testing.T) {
		m, err := domain.MoneyFromString("10.005", " usd ")
		require.NoError(t, err)
		assert.Equal(t, "USD", m.Currency)
		assert.Equal(t, "10.01", m.StringFixed())
	})

	t.Run("rejects non-numeric input", func(t *testing.T) {
		_, err := domain.MoneyFromString("ten", "USD")
		require.Error(t, err)
	})
}

func TestNewMoneyRounds(t *testing.T) {
	m := domain.NewMoney(decimal.RequireFromString("1.999"), "USD")
	assert.Equal(t, "2.00", m.StringFixed())
}
