package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an exact decimal amount in a single ISO currency. Amounts are
// stored rounded to two decimal places; arithmetic between different
// currencies is refused with ErrCurrencyMismatch.
type Money struct {
	Amount   decimal.Decimal
	Currency string
}

// NewMoney builds a Money from a decimal value, rounding to two places and
// normalizing the currency code to upper case.
func NewMoney(amount decimal.Decimal, currency string) Money {
	return Money{
		Amount:   amount.Round(2),
		Currency: strings.ToUpper(strings.TrimSpace(currency)),
	}
}

// ZeroMoney returns a zero amount in the given currency.
func ZeroMoney(currency string) Money {
	return NewMoney(decimal.Zero, currency)
}

// MoneyFromString parses a decimal string into Money.
func MoneyFromString(amount, currency string) (Money, error) {
	value, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return Money{}, fmt.Errorf("parse amount %q: %w", amount, err)
	}

	return NewMoney(value, currency), nil
}

func (m Money) sameCurrency(other Money) error {
	if m.Currency != other.Currency {
		return fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, m.Currency, other.Currency)
	}

	return nil
}

// Add returns m + other.
func (m Money) Add(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}

	return Money{Amount: m.Amount.Add(other.Amount), Currency: m.Currency}, nil
}

// Sub returns m - other.
func (m Money) Sub(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}

	return Money{Amount: m.Amount.Sub(other.Amount), Currency: m.Currency}, nil
}

// Cmp compares two amounts of the same currency: -1 if m < other, 0 if equal,
// 1 if m > other.
func (m Money) Cmp(other Money) (int, error) {
	if err := m.sameCurrency(other); err != nil {
		return 0, err
	}

	return m.Amount.Cmp(other.Amount), nil
}

// Neg returns the amount with its sign flipped.
func (m Money) Neg() Money {
	return Money{Amount: m.Amount.Neg(), Currency: m.Currency}
}

// Equal reports whether both currency and amount match exactly.
func (m Money) Equal(other Money) bool {
	return m.Currency == other.Currency && m.Amount.Equal(other.Amount)
}

func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}

func (m Money) IsPositive() bool {
	return m.Amount.IsPositive()
}

func (m Money) IsNegative() bool {
	return m.Amount.IsNegative()
}

// StringFixed renders the amount with exactly two decimal places.
func (m Money) StringFixed() string {
	return m.Amount.StringFixed(2)
}

func (m Money) String() string {
	return m.StringFixed() + " " + m.Currency
}
