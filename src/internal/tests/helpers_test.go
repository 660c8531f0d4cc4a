package tests

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/api-sage/core-banking-ledger/src/internal/adapter/http/models"
	"github.com/api-sage/core-banking-ledger/src/internal/adapter/repository/memory"
	"github.com/api-sage/core-banking-ledger/src/internal/domain"
	"github.com/api-sage/core-banking-ledger/src/internal/usecase/services"
)

// fakeClock advances by a microsecond on every read so generated account
// numbers stay distinct, and can be jumped forward for dormancy scenarios.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Microsecond)
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// capturePublisher records every published event for assertions.
type capturePublisher struct {
	mu     sync.Mutex
	events []domain.Event
}

func (p *capturePublisher) Publish(_ context.Context, event domain.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturePublisher) kinds() []domain.EventKind {
	p.mu.Lock()
	defer p.mu.Unlock()

	kinds := make([]domain.EventKind, 0, len(p.events))
	for _, event := range p.events {
		kinds = append(kinds, event.EventKind())
	}
	return kinds
}

func (p *capturePublisher) ofKind(kind domain.EventKind) []domain.Event {
	p.mu.Lock()
	defer p.mu.Unlock()

	var matched []domain.Event
	for _, event := range p.events {
		if event.EventKind() == kind {
			matched = append(matched, event)
		}
	}
	return matched
}

const dormancyDays = 180

type fixture struct {
	store        *memory.LedgerStore
	publisher    *capturePublisher
	clock        *fakeClock
	accounts     *services.AccountService
	transactions *services.TransactionService
	transfers    *services.TransferService
}

func newFixture() *fixture {
	clock := newFakeClock()
	store := memory.NewLedgerStore(domain.UUIDGenerator{}, clock, 5*time.Second)
	publisher := &capturePublisher{}
	references := domain.NewReferenceGenerator(clock)

	return &fixture{
		store:        store,
		publisher:    publisher,
		clock:        clock,
		accounts:     services.NewAccountService(store, publisher, clock, dormancyDays),
		transactions: services.NewTransactionService(store, publisher, references, clock),
		transfers:    services.NewTransferService(store, publisher, references, clock),
	}
}

func (f *fixture) createChecking(t *testing.T, ownerID, initialBalance string) models.AccountResponse {
	t.Helper()

	response, err := f.accounts.CreateAccount(context.Background(), models.CreateAccountRequest{
		OwnerID:        ownerID,
		AccountType:    "CHECKING",
		Currency:       "USD",
		InitialBalance: initialBalance,
	})
	require.NoError(t, err)
	require.True(t, response.Success)
	require.NotNil(t, response.Data)

	return *response.Data
}

func (f *fixture) createCredit(t *testing.T, ownerID, creditLimit string) models.AccountResponse {
	t.Helper()

	response, err := f.accounts.CreateAccount(context.Background(), models.CreateAccountRequest{
		OwnerID:     ownerID,
		AccountType: "CREDIT",
		Currency:    "USD",
		CreditLimit: creditLimit,
	})
	require.NoError(t, err)
	require.True(t, response.Success)
	require.NotNil(t, response.Data)

	return *response.Data
}

func (f *fixture) process(ownerID, accountID, txType, amount string) (models.TransactionResponse, error) {
	response, err := f.transactions.ProcessTransaction(context.Background(), models.ProcessTransactionRequest{
		OwnerID:   ownerID,
		AccountID: accountID,
		Type:      txType,
		Amount:    amount,
	})
	if err != nil {
		return models.TransactionResponse{}, err
	}
	return *response.Data, nil
}

func (f *fixture) transfer(initiatorID, sourceID, targetID, amount string) (models.TransferResponse, error) {
	response, err := f.transfers.TransferFunds(context.Background(), models.TransferRequest{
		InitiatorID:     initiatorID,
		SourceAccountID: sourceID,
		TargetAccountID: targetID,
		Amount:          amount,
	})
	if err != nil {
		return models.TransferResponse{}, err
	}
	return *response.Data, nil
}

func (f *fixture) balance(t *testing.T, accountID string) string {
	t.Helper()

	account, err := f.store.GetAccountByID(context.Background(), accountID)
	require.NoError(t, err)
	return account.Balance.StringFixed()
}

func (f *fixture) status(t *testing.T, accountID string) domain.AccountStatus {
	t.Helper()

	account, err := f.store.GetAccountByID(context.Background(), accountID)
	require.NoError(t, err)
	return account.Status
}

func (f *fixture) freeze(t *testing.T, accountID string) {
	t.Helper()

	response, err := f.accounts.ChangeStatus(context.Background(), models.ChangeStatusRequest{
		AccountID:   accountID,
		RequestedBy: "ops",
		NewStatus:   "FROZEN",
		Reason:      "review",
	})
	require.NoError(t, err)
	require.True(t, response.Success)
}
