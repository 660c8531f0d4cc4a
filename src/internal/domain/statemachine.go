package domain

import "strings"

// Operation classifies what a caller wants to do to an account. The status
// permission matrix below decides whether the current status allows it.
type Operation string

const (
	OperationDebit  Operation = "DEBIT"
	OperationCredit Operation = "CREDIT"
	OperationUpdate Operation = "UPDATE"
	OperationDelete Operation = "DELETE"
)

// ValidateTransition checks the status transition table. System-initiated
// transitions (the dormancy sweep and activity reactivation) do not require
// a reason; everything else does. Balance and history preconditions for
// closing an account are checked by the caller, which holds the account lock.
func ValidateTransition(from AccountStatus, to AccountStatus, reason string, systemInitiated bool) error {
	if from == to {
		return StateTransitionError{From: from, To: to, Detail: "account is already in this status"}
	}

	if from == AccountStatusClosed {
		return StateTransitionError{From: from, To: to, Detail: "closed accounts are terminal"}
	}

	allowed := false
	switch from {
	case AccountStatusActive:
		switch to {
		case AccountStatusFrozen, AccountStatusClosed:
			allowed = true
		case AccountStatusInactive:
			allowed = systemInitiated
		}
	case AccountStatusFrozen:
		allowed = to == AccountStatusActive || to == AccountStatusClosed
	case AccountStatusInactive:
		allowed = to == AccountStatusActive
	}

	if !allowed {
		return StateTransitionError{From: from, To: to, Detail: "transition is not allowed"}
	}

	if !systemInitiated && strings.TrimSpace(reason) == "" {
		return StateTransitionError{From: from, To: to, Detail: "reason is required"}
	}

	return nil
}

// StatusPermits is the per-status permission matrix consulted before any
// mutation. INACTIVE behaves like ACTIVE; the transaction that touches an
// inactive account reactivates it as a side effect.
func StatusPermits(status AccountStatus, op Operation) bool {
	switch status {
	case AccountStatusActive, AccountStatusInactive:
		return true
	case AccountStatusFrozen:
		return op == OperationCredit
	default:
		return false
	}
}
