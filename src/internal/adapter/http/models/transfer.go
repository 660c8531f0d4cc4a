package models

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

type TransferRequest struct {
	InitiatorID     string `json:"initiatorId"`
	SourceAccountID string `json:"sourceAccountId"`
	TargetAccountID string `json:"targetAccountId"`
	Amount          string `json:"amount"`
	Description     string `json:"description,omitempty"`
}

func (r TransferRequest) Validate() error {
	var errs []string

	if strings.TrimSpace(r.InitiatorID) == "" {
		errs = append(errs, "initiatorId is required")
	}
	if strings.TrimSpace(r.SourceAccountID) == "" {
		errs = append(errs, "sourceAccountId is required")
	}
	if strings.TrimSpace(r.TargetAccountID) == "" {
		errs = append(errs, "targetAccountId is required")
	}
	if strings.TrimSpace(r.SourceAccountID) != "" &&
		strings.TrimSpace(r.SourceAccountID) == strings.TrimSpace(r.TargetAccountID) {
		errs = append(errs, "sourceAccountId and targetAccountId cannot be the same")
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

type TransferResponse struct {
	TransferReference string              `json:"transferReference"`
	SourceTransaction TransactionResponse `json:"sourceTransaction"`
	TargetTransaction TransactionResponse `json:"targetTransaction"`
	Status            string              `json:"status"`
}
