package tests

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/api-sage/core-banking-ledger/src/internal/adapter/http/models"
	"github.com/api-sage/core-banking-ledger/src/internal/adapter/repository/memory"
	"github.com/api-sage/core-banking-ledger/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/core-banking-ledger/src/internal/domain"
	"github.com/api-sage/core-banking-ledger/src/internal/usecase/services"
)

// scriptedClock replays a fixed sequence of instants, holding the last one
// once the script runs out, and counts how often it was read. Feeding it to
// the reference generator pins the timestamp part of generated references.
type scriptedClock struct {
	mu    sync.Mutex
	times []time.Time
	idx   int
	calls int
}

func (c *scriptedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls++
	at := c.times[c.idx]
	if c.idx < len(c.times)-1 {
		c.idx++
	}
	return at
}

func (c *scriptedClock) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func newReferenceFixture(refClock domain.Clock) *fixture {
	clock := newFakeClock()
	store := memory.NewLedgerStore(domain.UUIDGenerator{}, clock, 5*time.Second)
	publisher := &capturePublisher{}
	references := domain.NewReferenceGenerator(refClock)

	return &fixture{
		store:        store,
		publisher:    publisher,
		clock:        clock,
		accounts:     services.NewAccountService(store, publisher, clock, dormancyDays),
		transactions: services.NewTransactionService(store, publisher, references, clock),
		transfers:    services.NewTransferService(store, publisher, references, clock),
	}
}

// seedReferences persists a transaction for every reference the generator
// can produce within one millisecond, so any reference generated at that
// instant collides.
func seedReferences(t *testing.T, store *memory.LedgerStore, prefix string, at time.Time) {
	t.Helper()

	millis := at.UTC().UnixMilli()
	err := store.InTransaction(context.Background(), func(tx repo_interfaces.LedgerTx) error {
		for i := 0; i < 10000; i++ {
			if _, err := tx.CreateTransaction(context.Background(), domain.Transaction{
				ReferenceNumber: fmt.Sprintf("%s%d%04d", prefix, millis, i),
				AccountID:       "reference-seed",
				Type:            domain.TransactionTypeDeposit,
				Status:          domain.TransactionStatusCompleted,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
}

var (
	collideAt = time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	freshAt   = collideAt.Add(time.Second)
)

func TestTransactionReferenceAllocation(t *testing.T) {
	t.Run("single collision is retried transparently", func(t *testing.T) {
		refClock := &scriptedClock{times: []time.Time{collideAt, freshAt}}
		f := newReferenceFixture(refClock)
		seedReferences(t, f.store, "TXN", collideAt)
		account := f.createChecking(t, "owner-1", "100.00")

		txn, err := f.process("owner-1", account.ID, "DEPOSIT", "10.00")
		require.NoError(t, err)
		assert.Contains(t, txn.ReferenceNumber, strconv.FormatInt(freshAt.UnixMilli(), 10))
		assert.Equal(t, "110.00", f.balance(t, account.ID))
		assert.Equal(t, 2, refClock.callCount())
	})

	t.Run("exhausted attempts surface as allocation failure", func(t *testing.T) {
		refClock := &scriptedClock{times: []time.Time{collideAt}}
		f := newReferenceFixture(refClock)
		seedReferences(t, f.store, "TXN", collideAt)
		account := f.createChecking(t, "owner-1", "100.00")

		response, err := f.transactions.ProcessTransaction(context.Background(), models.ProcessTransactionRequest{
			OwnerID:   "owner-1",
			AccountID: account.ID,
			Type:      "DEPOSIT",
			Amount:    "10.00",
		})
		require.ErrorIs(t, err, domain.ErrReferenceAllocation)
		assert.Equal(t, "Internal error", response.Message)

		// One reference per attempt, bounded at five attempts.
		assert.Equal(t, 5, refClock.callCount())
		assert.Equal(t, "100.00", f.balance(t, account.ID))
		assert.Empty(t, f.publisher.ofKind(domain.EventKindTransactionCompleted))
	})
}

func TestTransferReferenceAllocation(t *testing.T) {
	t.Run("single collision is retried transparently", func(t *testing.T) {
		refClock := &scriptedClock{times: []time.Time{collideAt, collideAt, collideAt, freshAt}}
		f := newReferenceFixture(refClock)
		seedReferences(t, f.store, "TRF", collideAt)
		source := f.createChecking(t, "alice", "100.00")
		target := f.createChecking(t, "bob", "")

		transfer, err := f.transfer("alice", source.ID, target.ID, "40.00")
		require.NoError(t, err)
		assert.Contains(t, transfer.TransferReference, strconv.FormatInt(freshAt.UnixMilli(), 10))
		assert.Equal(t, "60.00", f.balance(t, source.ID))
		assert.Equal(t, "40.00", f.balance(t, target.ID))
	})

	t.Run("exhausted attempts surface as allocation failure", func(t *testing.T) {
		refClock := &scriptedClock{times: []time.Time{collideAt}}
		f := newReferenceFixture(refClock)
		seedReferences(t, f.store, "TRF", collideAt)
		source := f.createChecking(t, "alice", "100.00")
		target := f.createChecking(t, "bob", "")

		response, err := f.transfers.TransferFunds(context.Background(), models.TransferRequest{
			InitiatorID:     "alice",
			SourceAccountID: source.ID,
			TargetAccountID: target.ID,
			Amount:          "40.00",
		})
		require.ErrorIs(t, err, domain.ErrReferenceAllocation)
		assert.Equal(t, "Internal error", response.Message)

		// Three references per attempt, bounded at five attempts.
		assert.Equal(t, 15, refClock.callCount())
		assert.Equal(t, "100.00", f.balance(t, source.ID))
		assert.Equal(t, "0.00", f.balance(t, target.ID))
		assert.Empty(t, f.publisher.ofKind(domain.EventKindTransactionCompleted))
	})
}
