package models

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

type CreateAccountRequest struct {
	OwnerID        string `json:"ownerId"`
	AccountType    string `json:"accountType"`
	Currency       string `json:"currency"`
	InitialBalance string `json:"initialBalance,omitempty"`
	CreditLimit    string `json:"creditLimit,omitempty"`
}

func (r CreateAccountRequest) Validate() error {
	var errs []string

	if strings.TrimSpace(r.OwnerID) == "" {
		errs = append(errs, "ownerId is required")
	}

	accountType := strings.ToUpper(strings.TrimSpace(r.AccountType))
	if accountType != "CHECKING" && accountType != "SAVINGS" && accountType != "CREDIT" {
		errs = append(errs, "accountType must be one of CHECKING, SAVINGS, CREDIT")
	}

	currency := strings.ToUpper(strings.TrimSpace(r.Currency))
	if len(currency) != 3 {
		errs = append(errs, "currency must be 3 characters")
	}

	if raw := strings.TrimSpace(r.InitialBalance); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			errs = append(errs, "initialBalance must be numeric")
		} else if parsed.LessThan(decimal.Zero) {
			errs = append(errs, "initialBalance cannot be negative")
		} else if !parsed.Equal(parsed.Round(2)) {
			errs = append(errs, "initialBalance cannot have more than 2 decimal places")
		}
	}

	if accountType == "CREDIT" {
		parsed, err := decimal.NewFromString(strings.TrimSpace(r.CreditLimit))
		if err != nil {
			errs = append(errs, "creditLimit is required for CREDIT accounts and must be numeric")
		} else if parsed.LessThanOrEqual(decimal.Zero) {
			errs = append(errs, "creditLimit must be greater than zero")
		} else if !parsed.Equal(parsed.Round(2)) {
			errs = append(errs, "creditLimit cannot have more than 2 decimal places")
		}
	} else if strings.TrimSpace(r.CreditLimit) != "" {
		errs = append(errs, "creditLimit is only valid for CREDIT accounts")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

type AccountResponse struct {
	ID              string `json:"id"`
	AccountNumber   string `json:"accountNumber"`
	OwnerID         string `json:"ownerId"`
	AccountType     string `json:"accountType"`
	Status          string `json:"status"`
	Currency        string `json:"currency"`
	Balance         string `json:"balance"`
	CreditLimit     string `json:"creditLimit,omitempty"`
	AvailableCredit string `json:"availableCredit,omitempty"`
	Version         int64  `json:"version"`
	CreatedAt       string `json:"createdAt"`
	UpdatedAt       string `json:"updatedAt"`
}

type ChangeStatusRequest struct {
	AccountID   string `json:"accountId"`
	RequestedBy string `json:"requestedBy"`
	NewStatus   string `json:"newStatus"`
	Reason      string `json:"reason"`
}

func (r ChangeStatusRequest) Validate() error {
	var errs []string

	if strings.TrimSpace(r.AccountID) == "" {
		errs = append(errs, "accountId is required")
	}
	if strings.TrimSpace(r.RequestedBy) == "" {
		errs = append(errs, "requestedBy is required")
	}

	newStatus := strings.ToUpper(strings.TrimSpace(r.NewStatus))
	if newStatus != "ACTIVE" && newStatus != "FROZEN" && newStatus != "CLOSED" {
		errs = append(errs, "newStatus must be one of ACTIVE, FROZEN, CLOSED")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

type UpdateAccountRequest struct {
	AccountID   string `json:"accountId"`
	OwnerID     string `json:"ownerId"`
	AccountType string `json:"accountType"`
	Version     int64  `json:"version"`
}

func (r UpdateAccountRequest) Validate() error {
	var errs []string

	if strings.TrimSpace(r.AccountID) == "" {
		errs = append(errs, "accountId is required")
	}
	if strings.TrimSpace(r.OwnerID) == "" {
		errs = append(errs, "ownerId is required")
	}

	accountType := strings.ToUpper(strings.TrimSpace(r.AccountType))
	if accountType != "CHECKING" && accountType != "SAVINGS" && accountType != "CREDIT" {
		errs = append(errs, "accountType must be one of CHECKING, SAVINGS, CREDIT")
	}

	if r.Version < 0 {
		errs = append(errs, "version cannot be negative")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

type DeleteAccountRequest struct {
	AccountID string `json:"accountId"`
	OwnerID   string `json:"ownerId"`
}

func (r DeleteAccountRequest) Validate() error {
	var errs []string

	if strings.TrimSpace(r.AccountID) == "" {
		errs = append(errs, "accountId is required")
	}
	if strings.TrimSpace(r.OwnerID) == "" {
		errs = append(errs, "ownerId is required")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

type DeleteAccountResponse struct {
	AccountID string `json:"accountId"`
	Deleted   bool   `json:"deleted"`
}

type SweepDormantResponse struct {
	DeactivatedAccountIDs []string `json:"deactivatedAccountIds"`
}
