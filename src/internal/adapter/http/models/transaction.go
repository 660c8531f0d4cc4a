package models

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

type ProcessTransactionRequest struct {
	OwnerID     string `json:"ownerId"`
	AccountID   string `json:"accountId"`
	Type        string `json:"type"`
	Amount      string `json:"amount"`
	Description string `json:"description,omitempty"`
}

func (r ProcessTransactionRequest) Validate() error {
	var errs []string

	if strings.TrimSpace(r.OwnerID) == "" {
		errs = append(errs, "ownerId is required")
	}
	if strings.TrimSpace(r.AccountID) == "" {
		errs = append(errs, "accountId is required")
	}

	txType := strings.ToUpper(strings.TrimSpace(r.Type))
	if txType != "DEPOSIT" && txType != "WITHDRAWAL" {
		errs = append(errs, "type must be one of DEPOSIT, WITHDRAWAL")
	}

	amount := strings.TrimSpace(r.Amount)
	if amount == "" {
		errs = append(errs, "amount is required")
	} else {
		parsed, err := decimal.NewFromString(amount)
		if err != nil {
			errs = append(errs, "amount must be numeric")
		} else if parsed.LessThanOrEqual(decimal.Zero) {
			errs = append(errs, "amount must be greater than zero")
		} else if !parsed.Equal(parsed.Round(2)) {
			errs = append(errs, "amount cannot have more than 2 decimal places")
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

type TransactionResponse struct {
	ID              string `json:"id"`
	ReferenceNumber string `json:"referenceNumber"`
	AccountID       string `json:"accountId"`
	Type            string `json:"type"`
	Currency        string `json:"currency"`
	Amount          string `json:"amount"`
	BalanceBefore   string `json:"balanceBefore"`
	BalanceAfter    string `json:"balanceAfter"`
	Status          string `json:"status"`
	Description     string `json:"description,omitempty"`
	CreatedAt       string `json:"createdAt"`
}

type ListTransactionsResponse struct {
	AccountID    string                `json:"accountId"`
	Transactions []TransactionResponse `json:"transactions"`
}
