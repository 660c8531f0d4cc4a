package domain

import (
	"errors"
	"fmt"
)

var ErrRecordNotFound = errors.New("Record not found")
var ErrForbidden = errors.New("Caller does not own this account")
var ErrInsufficientFunds = errors.New("Insufficient funds")
var ErrInvalidStateTransition = errors.New("Invalid account state transition")
var ErrIllegalOperationForState = errors.New("Account state does not permit this operation")
var ErrVersionConflict = errors.New("Account was modified concurrently")
var ErrBalanceNotZero = errors.New("Account balance must be zero")
var ErrHasTransactionHistory = errors.New("Account has transaction history")
var ErrResourceBusy = errors.New("Account is locked by another operation")
var ErrReferenceAllocation = errors.New("Could not allocate a unique reference")
var ErrDuplicateReference = errors.New("Reference already exists")
var ErrDuplicateAccountNumber = errors.New("Account number already exists")
var ErrCurrencyMismatch = errors.New("Currency mismatch")

// InsufficientFundsError carries the requested and available amounts so the
// API layer can surface them to the user. errors.Is matches ErrInsufficientFunds.
type InsufficientFundsError struct {
	Requested Money
	Available Money
}

func (e InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: requested %s, available %s", e.Requested, e.Available)
}

func (e InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}

// StateTransitionError reports a rejected status transition.
// errors.Is matches ErrInvalidStateTransition.
type StateTransitionError struct {
	From   AccountStatus
	To     AccountStatus
	Detail string
}

func (e StateTransitionError) Error() string {
	return fmt.Sprintf("cannot transition account from %s to %s: %s", e.From, e.To, e.Detail)
}

func (e StateTransitionError) Is(target error) bool {
	return target == ErrInvalidStateTransition
}
