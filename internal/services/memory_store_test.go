package services

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/tuckshop/backend/internal/models"
	"github.com/tuckshop/backend/internal/store"
)

// memoryStore is an in-process UnitOfWork with the same locking contract
// as Postgres: LockAccount holds a per-account mutex until the unit ends.
type memoryStore struct {
	mu       sync.Mutex // protects accounts, items and ledger
	accounts map[uuid.UUID]models.Account
	items    map[uuid.UUID]models.Item
	ledger   []models.Transaction

	locksMu sync.Mutex // protects locks
	locks   map[uuid.UUID]*sync.Mutex
}

var _ store.UnitOfWork = (*memoryStore)(nil)

func newMemoryStore() *memoryStore {
	return &memoryStore{
		accounts: make(map[uuid.UUID]models.Account),
		items:    make(map[uuid.UUID]models.Item),
		locks:    make(map[uuid.UUID]*sync.Mutex),
	}
}

func (m *memoryStore) addAccount(balance int64) uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New()
	m.accounts[id] = models.Account{ID: id, Name: "Ada", Role: models.RoleStudent, Balance: balance, Version: 1}
	return id
}

func (m *memoryStore) addItem(name string, price int64) uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New()
	m.items[id] = models.Item{ID: id, Name: name, Price: price}
	return id
}

func (m *memoryStore) balance(id uuid.UUID) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accounts[id].Balance
}

func (m *memoryStore) entries() []models.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Transaction(nil), m.ledger...)
}

func (m *memoryStore) accountLock(id uuid.UUID) *sync.Mutex {
	m.locksMu.Lock()
	defer m.locksMu.Unlock()
	if _, ok := m.locks[id]; !ok {
		m.locks[id] = &sync.Mutex{}
	}
	return m.locks[id]
}

func (m *memoryStore) WithinTx(ctx context.Context, fn func(tx store.LedgerTx) error) error {
	tx := &memoryTx{store: m, balances: make(map[uuid.UUID]int64)}
	defer tx.release()

	if err := fn(tx); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, balance := range tx.balances {
		a := m.accounts[id]
		a.Balance = balance
		a.Version++
		m.accounts[id] = a
	}
	m.ledger = append(m.ledger, tx.appended...)
	return nil
}

type memoryTx struct {
	store    *memoryStore
	held     []*sync.Mutex
	balances map[uuid.UUID]int64
	appended []models.Transaction
}

func (t *memoryTx) release() {
	for _, l := range t.held {
		l.Unlock()
	}
}

func (t *memoryTx) LockAccount(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	l := t.store.accountLock(id)
	l.Lock()
	t.held = append(t.held, l)

	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	a, ok := t.store.accounts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &a, nil
}

func (t *memoryTx) UpdateBalance(ctx context.Context, id uuid.UUID, newBalance int64, version int) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	if t.store.accounts[id].Version != version {
		return store.ErrConflict
	}
	t.balances[id] = newBalance
	return nil
}

func (t *memoryTx) PriceItems(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Item, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	out := make(map[uuid.UUID]models.Item)
	for _, id := range ids {
		if item, ok := t.store.items[id]; ok {
			out[id] = item
		}
	}
	return out, nil
}

func (t *memoryTx) AppendTransaction(ctx context.Context, tx *models.Transaction) error {
	t.appended = append(t.appended, *tx)
	return nil
}
