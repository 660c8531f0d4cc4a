package memory

import (
	"context"
	"sync"
	"time"

	"github.com/api-sage/core-banking-ledger/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/core-banking-ledger/src/internal/domain"
)

// LedgerStore is an in-memory implementation of the storage port. Each
// account row carries its own binary-semaphore lock; LockAccounts acquires
// them in canonical order with a bounded wait, mirroring the row locks the
// Postgres store takes with FOR UPDATE. Mutations inside a unit of work are
// buffered and applied only when the whole unit succeeds.
type LedgerStore struct {
	mu           sync.Mutex
	accounts     map[string]*accountSlot
	byNumber     map[string]string
	transactions map[string][]domain.Transaction
	references   map[string]struct{}
	ids          domain.IDGenerator
	clock        domain.Clock
	lockWait     time.Duration
}

type accountSlot struct {
	sem     chan struct{}
	account domain.Account
}

func NewLedgerStore(ids domain.IDGenerator, clock domain.Clock, lockWait time.Duration) *LedgerStore {
	return &LedgerStore{
		accounts:     make(map[string]*accountSlot),
		byNumber:     make(map[string]string),
		transactions: make(map[string][]domain.Transaction),
		references:   make(map[string]struct{}),
		ids:          ids,
		clock:        clock,
		lockWait:     lockWait,
	}
}

func (s *LedgerStore) InTransaction(ctx context.Context, fn func(tx repo_interfaces.LedgerTx) error) error {
	tx := &ledgerTx{
		store:       s,
		saved:       make(map[string]domain.Account),
		pendingRefs: make(map[string]struct{}),
	}
	defer tx.release()

	if err := fn(tx); err != nil {
		return err
	}

	tx.commit()
	return nil
}

func (s *LedgerStore) CreateAccount(_ context.Context, account domain.Account) (domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byNumber[account.AccountNumber]; exists {
		return domain.Account{}, domain.ErrDuplicateAccountNumber
	}

	now := s.clock.Now()
	account.ID = s.ids.NewID()
	account.CreatedAt = now
	account.UpdatedAt = now

	s.accounts[account.ID] = &accountSlot{
		sem:     make(chan struct{}, 1),
		account: account,
	}
	s.byNumber[account.AccountNumber] = account.ID

	return account, nil
}

func (s *LedgerStore) GetAccountByID(_ context.Context, id string) (domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.accounts[id]
	if !ok {
		return domain.Account{}, domain.ErrRecordNotFound
	}

	return slot.account, nil
}

func (s *LedgerStore) GetAccountByNumber(_ context.Context, accountNumber string) (domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byNumber[accountNumber]
	if !ok {
		return domain.Account{}, domain.ErrRecordNotFound
	}

	return s.accounts[id].account, nil
}

func (s *LedgerStore) UpdateAccountFields(ctx context.Context, account domain.Account) (domain.Account, error) {
	s.mu.Lock()
	slot, ok := s.accounts[account.ID]
	s.mu.Unlock()
	if !ok {
		return domain.Account{}, domain.ErrRecordNotFound
	}

	if err := acquire(ctx, slot.sem, s.lockWait); err != nil {
		return domain.Account{}, err
	}
	defer func() { <-slot.sem }()

	s.mu.Lock()
	defer s.mu.Unlock()

	if slot.account.Version != account.Version {
		return domain.Account{}, domain.ErrVersionConflict
	}

	slot.account.Type = account.Type
	slot.account.Version++
	slot.account.UpdatedAt = s.clock.Now()

	return slot.account, nil
}

func (s *LedgerStore) HasTransactionHistory(_ context.Context, accountID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.transactions[accountID]) > 0, nil
}

func (s *LedgerStore) ListTransactions(_ context.Context, accountID string) ([]domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := s.transactions[accountID]
	out := make([]domain.Transaction, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		out = append(out, stored[i])
	}

	return out, nil
}

func (s *LedgerStore) ListDormantAccounts(_ context.Context, inactiveSince time.Time) ([]domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var dormant []domain.Account
	for _, slot := range s.accounts {
		if slot.account.Status == domain.AccountStatusActive && slot.account.LastActivityAt.Before(inactiveSince) {
			dormant = append(dormant, slot.account)
		}
	}

	return dormant, nil
}

type ledgerTx struct {
	store       *LedgerStore
	locked      []*accountSlot
	saved       map[string]domain.Account
	created     []domain.Transaction
	deleted     []string
	pendingRefs map[string]struct{}
}

func (t *ledgerTx) LockAccounts(ctx context.Context, ids ...string) (map[string]domain.Account, error) {
	ordered := domain.LockOrder(ids...)

	slots := make([]*accountSlot, 0, len(ordered))
	t.store.mu.Lock()
	for _, id := range ordered {
		slot, ok := t.store.accounts[id]
		if !ok {
			t.store.mu.Unlock()
			return nil, domain.ErrRecordNotFound
		}
		slots = append(slots, slot)
	}
	t.store.mu.Unlock()

	for _, slot := range slots {
		if err := acquire(ctx, slot.sem, t.store.lockWait); err != nil {
			return nil, err
		}
		t.locked = append(t.locked, slot)
	}

	accounts := make(map[string]domain.Account, len(ordered))
	t.store.mu.Lock()
	for _, slot := range slots {
		accounts[slot.account.ID] = slot.account
	}
	t.store.mu.Unlock()

	return accounts, nil
}

func (t *ledgerTx) SaveAccount(_ context.Context, account domain.Account) (domain.Account, error) {
	account.Version++
	account.UpdatedAt = t.store.clock.Now()
	t.saved[account.ID] = account

	return account, nil
}

func (t *ledgerTx) CreateTransaction(_ context.Context, txn domain.Transaction) (domain.Transaction, error) {
	t.store.mu.Lock()
	_, taken := t.store.references[txn.ReferenceNumber]
	t.store.mu.Unlock()
	if !taken {
		_, taken = t.pendingRefs[txn.ReferenceNumber]
	}
	if taken {
		return domain.Transaction{}, domain.ErrDuplicateReference
	}

	txn.ID = t.store.ids.NewID()
	txn.CreatedAt = t.store.clock.Now()
	t.created = append(t.created, txn)
	t.pendingRefs[txn.ReferenceNumber] = struct{}{}

	return txn, nil
}

func (t *ledgerTx) DeleteAccount(_ context.Context, id string) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	if _, ok := t.store.accounts[id]; !ok {
		return domain.ErrRecordNotFound
	}

	t.deleted = append(t.deleted, id)
	return nil
}

func (t *ledgerTx) HasTransactionHistory(ctx context.Context, accountID string) (bool, error) {
	for _, txn := range t.created {
		if txn.AccountID == accountID {
			return true, nil
		}
	}

	return t.store.HasTransactionHistory(ctx, accountID)
}

// commit applies the buffered mutations. The caller still holds every lock
// acquired through LockAccounts, so nobody observes a partial unit.
func (t *ledgerTx) commit() {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	for id, account := range t.saved {
		if slot, ok := t.store.accounts[id]; ok {
			slot.account = account
		}
	}

	for _, txn := range t.created {
		t.store.transactions[txn.AccountID] = append(t.store.transactions[txn.AccountID], txn)
		t.store.references[txn.ReferenceNumber] = struct{}{}
	}

	for _, id := range t.deleted {
		if slot, ok := t.store.accounts[id]; ok {
			delete(t.store.byNumber, slot.account.AccountNumber)
			delete(t.store.accounts, id)
		}
	}
}

func (t *ledgerTx) release() {
	for i := len(t.locked) - 1; i >= 0; i-- {
		<-t.locked[i].sem
	}
	t.locked = nil
}

func acquire(ctx context.Context, sem chan struct{}, wait time.Duration) error {
	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case sem <- struct{}{}:
		return nil
	case <-timer.C:
		return domain.ErrResourceBusy
	case <-ctx.Done():
		return ctx.Err()
	}
}
