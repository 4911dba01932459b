package ledger

import (
	"context"
	"errors"
	"time"
)

//go:generate mockgen -source=store.go -destination=store_mock.go -package=ledger

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("ledger: not found")

// Store is the interface the analytics engine and the CRUD handlers depend
// on. All read operations are user-scoped; an empty window yields empty
// results, not an error.
type Store interface {
	// Transaction operations
	CreateTransaction(ctx context.Context, tx *Transaction) error
	GetTransaction(ctx context.Context, id string) (*Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error
	ListTransactions(ctx context.Context, userID string, start, end time.Time) ([]*Transaction, error)

	// Budget operations
	SetBudget(ctx context.Context, b *Budget) error
	ListBudgets(ctx context.Context, userID string) ([]*Budget, error)

	// Aggregate reads consumed by the analytics engine
	SumByGroup(ctx context.Context, userID string, kind Kind, start, end time.Time, groupBy GroupBy) ([]GroupedSum, error)
	RawExpenses(ctx context.Context, userID string, start, end time.Time) ([]*Transaction, error)
	BudgetStatus(ctx context.Context, userID string, period time.Time) ([]BudgetStatus, error)

	// LastModified returns the most recent mutation instant for the user's
	// ledger. Report caching keys on it so a write invalidates cached reports.
	LastModified(ctx context.Context, userID string) (time.Time, error)
}
