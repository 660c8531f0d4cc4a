package domain

import (
	"context"
	"time"
)

type EventKind string

const (
	EventKindAccountCreated       EventKind = "ACCOUNT_CREATED"
	EventKindAccountStatusChanged EventKind = "ACCOUNT_STATUS_CHANGED"
	EventKindTransactionCompleted EventKind = "TRANSACTION_COMPLETED"
)

// Event is the closed set of domain events the ledger emits after commit.
type Event interface {
	EventKind() EventKind
}

type AccountCreatedEvent struct {
	AccountID     string
	AccountNumber string
	OwnerID       string
	AccountType   AccountType
	OccurredAt    time.Time
}

func (AccountCreatedEvent) EventKind() EventKind { return EventKindAccountCreated }

type AccountStatusChangedEvent struct {
	AccountID  string
	From       AccountStatus
	To         AccountStatus
	Reason     string
	ChangedBy  string
	OccurredAt time.Time
}

func (AccountStatusChangedEvent) EventKind() EventKind { return EventKindAccountStatusChanged }

type TransactionCompletedEvent struct {
	TransactionID     string
	ReferenceNumber   string
	TransferReference string
	AccountID         string
	Type              TransactionType
	Amount            Money
	BalanceAfter      Money
	OccurredAt        time.Time
}

func (TransactionCompletedEvent) EventKind() EventKind { return EventKindTransactionCompleted }

// EventPublisher consumes domain events for audit and metrics. Publication
// happens after the persisting transaction commits; a publish failure is
// logged by the implementation and never rolls back the financial operation.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}
