package ledger

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore implements Store with in-memory storage. It backs local
// development and tests.
type MemoryStore struct {
	mu sync.RWMutex

	transactions map[string]*Transaction
	budgets      map[string]*Budget
	lastModified map[string]time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		transactions: make(map[string]*Transaction),
		budgets:      make(map[string]*Budget),
		lastModified: make(map[string]time.Time),
	}
}

func (m *MemoryStore) CreateTransaction(ctx context.Context, tx *Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now()
	}
	m.transactions[tx.ID] = tx
	m.touch(tx.UserID)
	return nil
}

func (m *MemoryStore) GetTransaction(ctx context.Context, id string) (*Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tx, ok := m.transactions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return tx, nil
}

func (m *MemoryStore) DeleteTransaction(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx, ok := m.transactions[id]
	if !ok {
		return ErrNotFound
	}
	delete(m.transactions, id)
	m.touch(tx.UserID)
	return nil
}

func (m *MemoryStore) ListTransactions(ctx context.Context, userID string, start, end time.Time) ([]*Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	txs := m.inWindow(userID, start, end, "")
	sort.Slice(txs, func(i, j int) bool {
		if !txs[i].Date.Equal(txs[j].Date) {
			return txs[i].Date.Before(txs[j].Date)
		}
		return txs[i].ID < txs[j].ID
	})
	return txs, nil
}

func (m *MemoryStore) SetBudget(ctx context.Context, b *Budget) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	// One budget per (user, category): replace any existing entry.
	for id, existing := range m.budgets {
		if existing.UserID == b.UserID && existing.Category == b.Category {
			delete(m.budgets, id)
		}
	}
	m.budgets[b.ID] = b
	m.touch(b.UserID)
	return nil
}

func (m *MemoryStore) ListBudgets(ctx context.Context, userID string) ([]*Budget, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var budgets []*Budget
	for _, b := range m.budgets {
		if b.UserID == userID {
			budgets = append(budgets, b)
		}
	}
	sort.Slice(budgets, func(i, j int) bool {
		return budgets[i].Category < budgets[j].Category
	})
	return budgets, nil
}

func (m *MemoryStore) SumByGroup(ctx context.Context, userID string, kind Kind, start, end time.Time, groupBy GroupBy) ([]GroupedSum, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return foldGroups(m.inWindow(userID, start, end, kind), groupBy), nil
}

func (m *MemoryStore) RawExpenses(ctx context.Context, userID string, start, end time.Time) ([]*Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	txs := m.inWindow(userID, start, end, KindExpense)
	sort.Slice(txs, func(i, j int) bool {
		if !txs[i].Date.Equal(txs[j].Date) {
			return txs[i].Date.Before(txs[j].Date)
		}
		return txs[i].ID < txs[j].ID
	})
	return txs, nil
}

func (m *MemoryStore) BudgetStatus(ctx context.Context, userID string, period time.Time) ([]BudgetStatus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	start, end := monthWindow(period)
	actual := make(map[string]float64)
	for _, tx := range m.inWindow(userID, start, end, KindExpense) {
		actual[tx.Category] += tx.Amount
	}

	var budgets []*Budget
	for _, b := range m.budgets {
		if b.UserID == userID {
			budgets = append(budgets, b)
		}
	}
	return budgetStatuses(budgets, actual), nil
}

func (m *MemoryStore) LastModified(ctx context.Context, userID string) (time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.lastModified[userID], nil
}

// inWindow returns the user's transactions within [start, end], optionally
// filtered by kind. Callers must hold at least a read lock.
func (m *MemoryStore) inWindow(userID string, start, end time.Time, kind Kind) []*Transaction {
	var txs []*Transaction
	for _, tx := range m.transactions {
		if tx.UserID != userID {
			continue
		}
		if kind != "" && tx.Kind != kind {
			continue
		}
		if tx.Date.Before(start) || tx.Date.After(end) {
			continue
		}
		txs = append(txs, tx)
	}
	return txs
}

func (m *MemoryStore) touch(userID string) {
	m.lastModified[userID] = time.Now()
}
