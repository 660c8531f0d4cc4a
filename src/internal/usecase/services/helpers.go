package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/api-sage/core-banking-ledger/src/internal/adapter/http/models"
	"github.com/api-sage/core-banking-ledger/src/internal/commons"
	"github.com/api-sage/core-banking-ledger/src/internal/domain"
)

// maxAllocationAttempts bounds the retries when a freshly generated account
// number or transaction reference collides with a persisted one.
const maxAllocationAttempts = 5

func failureResponse[T any](err error, fallback string) commons.Response[T] {
	switch {
	case errors.Is(err, domain.ErrRecordNotFound):
		return commons.ErrorResponse[T]("Account not found")
	case errors.Is(err, domain.ErrForbidden):
		return commons.ErrorResponse[T]("Forbidden", "Caller does not own this account")
	case errors.Is(err, domain.ErrInsufficientFunds):
		return commons.ErrorResponse[T]("Insufficient funds", err.Error())
	case errors.Is(err, domain.ErrInvalidStateTransition):
		return commons.ErrorResponse[T]("Invalid status transition", err.Error())
	case errors.Is(err, domain.ErrIllegalOperationForState):
		return commons.ErrorResponse[T]("Account state does not permit this operation", err.Error())
	case errors.Is(err, domain.ErrBalanceNotZero):
		return commons.ErrorResponse[T]("Conflict", "Account balance must be zero")
	case errors.Is(err, domain.ErrHasTransactionHistory):
		return commons.ErrorResponse[T]("Conflict", "Account has transaction history")
	case errors.Is(err, domain.ErrVersionConflict):
		return commons.ErrorResponse[T]("Conflict", "Account was modified concurrently, reload and retry")
	case errors.Is(err, domain.ErrCurrencyMismatch):
		return commons.ErrorResponse[T]("validation failed", err.Error())
	case errors.Is(err, domain.ErrResourceBusy):
		return commons.ErrorResponse[T]("Account is busy", "Another operation holds the account, retry with backoff")
	case errors.Is(err, domain.ErrReferenceAllocation):
		return commons.ErrorResponse[T]("Internal error", "Could not allocate a unique reference")
	default:
		return commons.ErrorResponse[T](fallback, "Unable to process the request right now")
	}
}

func mapAccountToResponse(account domain.Account) models.AccountResponse {
	response := models.AccountResponse{
		ID:            account.ID,
		AccountNumber: account.AccountNumber,
		OwnerID:       account.OwnerID,
		AccountType:   string(account.Type),
		Status:        string(account.Status),
		Currency:      account.Balance.Currency,
		Balance:       account.Balance.StringFixed(),
		Version:       account.Version,
		CreatedAt:     account.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     account.UpdatedAt.Format(time.RFC3339),
	}

	if account.Type == domain.AccountTypeCredit {
		response.CreditLimit = account.CreditLimit.StringFixed()
		if available, err := account.AvailableCredit(); err == nil {
			response.AvailableCredit = available.StringFixed()
		}
	}

	return response
}

func mapTransactionToResponse(txn domain.Transaction) models.TransactionResponse {
	response := models.TransactionResponse{
		ID:              txn.ID,
		ReferenceNumber: txn.ReferenceNumber,
		AccountID:       txn.AccountID,
		Type:            string(txn.Type),
		Currency:        txn.Amount.Currency,
		Amount:          txn.Amount.StringFixed(),
		BalanceAfter:    txn.BalanceAfter.StringFixed(),
		Status:          string(txn.Status),
		Description:     txn.Description,
		CreatedAt:       txn.CreatedAt.Format(time.RFC3339),
	}

	if before, err := txn.BalanceBefore(); err == nil {
		response.BalanceBefore = before.StringFixed()
	}

	return response
}

func generateAccountNumber(clock domain.Clock) string {
	return fmt.Sprintf("%010d", clock.Now().UnixNano()%10_000_000_000)
}
