package domain

import "time"

type AccountStatus string

const (
	AccountStatusActive   AccountStatus = "ACTIVE"
	AccountStatusFrozen   AccountStatus = "FROZEN"
	AccountStatusClosed   AccountStatus = "CLOSED"
	AccountStatusInactive AccountStatus = "INACTIVE"
)

type AccountType string

const (
	AccountTypeChecking AccountType = "CHECKING"
	AccountTypeSavings  AccountType = "SAVINGS"
	AccountTypeCredit   AccountType = "CREDIT"
)

type Account struct {
	ID             string
	AccountNumber  string
	OwnerID        string
	Type           AccountType
	Status         AccountStatus
	Balance        Money
	CreditLimit    Money
	Version        int64
	LastActivityAt time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// AvailableCredit is creditLimit + balance; the balance of a CREDIT account
// is zero or negative while debt is owed.
func (a Account) AvailableCredit() (Money, error) {
	return a.CreditLimit.Add(a.Balance)
}
