package ledger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	transactionsCollection = "transactions"
	budgetsCollection      = "budgets"
	ledgerMetaCollection   = "ledgerMeta"
)

// FirestoreStore implements Store on Firestore. Firestore has no server-side
// GROUP BY, so grouped sums scan the user's window and fold client-side.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore creates a Firestore-backed store.
func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

type ledgerMeta struct {
	LastModified time.Time `firestore:"LastModified"`
}

func (s *FirestoreStore) CreateTransaction(ctx context.Context, tx *Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now()
	}

	if _, err := s.client.Collection(transactionsCollection).Doc(tx.ID).Set(ctx, tx); err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	return s.touch(ctx, tx.UserID)
}

func (s *FirestoreStore) GetTransaction(ctx context.Context, id string) (*Transaction, error) {
	doc, err := s.client.Collection(transactionsCollection).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}

	var tx Transaction
	if err := doc.DataTo(&tx); err != nil {
		return nil, fmt.Errorf("parse transaction: %w", err)
	}
	return &tx, nil
}

func (s *FirestoreStore) DeleteTransaction(ctx context.Context, id string) error {
	tx, err := s.GetTransaction(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.client.Collection(transactionsCollection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return s.touch(ctx, tx.UserID)
}

func (s *FirestoreStore) ListTransactions(ctx context.Context, userID string, start, end time.Time) ([]*Transaction, error) {
	return s.queryWindow(ctx, userID, start, end, "")
}

func (s *FirestoreStore) SetBudget(ctx context.Context, b *Budget) error {
	if b.ID == "" {
		// Deterministic doc id keeps one budget per (user, category).
		b.ID = fmt.Sprintf("%s_%s", b.UserID, b.Category)
	}
	if _, err := s.client.Collection(budgetsCollection).Doc(b.ID).Set(ctx, b); err != nil {
		return fmt.Errorf("set budget: %w", err)
	}
	return s.touch(ctx, b.UserID)
}

func (s *FirestoreStore) ListBudgets(ctx context.Context, userID string) ([]*Budget, error) {
	docs, err := s.client.Collection(budgetsCollection).
		Where("UserID", "==", userID).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}

	budgets := make([]*Budget, 0, len(docs))
	for _, doc := range docs {
		var b Budget
		if err := doc.DataTo(&b); err != nil {
			return nil, fmt.Errorf("parse budget: %w", err)
		}
		budgets = append(budgets, &b)
	}
	sort.Slice(budgets, func(i, j int) bool {
		return budgets[i].Category < budgets[j].Category
	})
	return budgets, nil
}

func (s *FirestoreStore) SumByGroup(ctx context.Context, userID string, kind Kind, start, end time.Time, groupBy GroupBy) ([]GroupedSum, error) {
	txs, err := s.queryWindow(ctx, userID, start, end, kind)
	if err != nil {
		return nil, err
	}
	return foldGroups(txs, groupBy), nil
}

func (s *FirestoreStore) RawExpenses(ctx context.Context, userID string, start, end time.Time) ([]*Transaction, error) {
	return s.queryWindow(ctx, userID, start, end, KindExpense)
}

func (s *FirestoreStore) BudgetStatus(ctx context.Context, userID string, period time.Time) ([]BudgetStatus, error) {
	budgets, err := s.ListBudgets(ctx, userID)
	if err != nil {
		return nil, err
	}

	start, end := monthWindow(period)
	txs, err := s.queryWindow(ctx, userID, start, end, KindExpense)
	if err != nil {
		return nil, err
	}
	actual := make(map[string]float64)
	for _, tx := range txs {
		actual[tx.Category] += tx.Amount
	}
	return budgetStatuses(budgets, actual), nil
}

func (s *FirestoreStore) LastModified(ctx context.Context, userID string) (time.Time, error) {
	doc, err := s.client.Collection(ledgerMetaCollection).Doc(userID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("get ledger meta: %w", err)
	}

	var meta ledgerMeta
	if err := doc.DataTo(&meta); err != nil {
		return time.Time{}, fmt.Errorf("parse ledger meta: %w", err)
	}
	return meta.LastModified, nil
}

// queryWindow fetches the user's transactions within [start, end], optionally
// filtered by kind, ordered by date then document id.
// NOTE: field names must match the Go struct field names, which is how
// Firestore serializes the structs.
func (s *FirestoreStore) queryWindow(ctx context.Context, userID string, start, end time.Time, kind Kind) ([]*Transaction, error) {
	query := s.client.Collection(transactionsCollection).
		Where("UserID", "==", userID).
		Where("Date", ">=", start).
		Where("Date", "<=", end)
	if kind != "" {
		query = query.Where("Kind", "==", string(kind))
	}
	query = query.OrderBy("Date", firestore.Asc).OrderBy(firestore.DocumentID, firestore.Asc)

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}

	txs := make([]*Transaction, 0, len(docs))
	for _, doc := range docs {
		var tx Transaction
		if err := doc.DataTo(&tx); err != nil {
			return nil, fmt.Errorf("parse transaction: %w", err)
		}
		txs = append(txs, &tx)
	}
	return txs, nil
}

func (s *FirestoreStore) touch(ctx context.Context, userID string) error {
	_, err := s.client.Collection(ledgerMetaCollection).Doc(userID).
		Set(ctx, ledgerMeta{LastModified: time.Now()})
	if err != nil {
		return fmt.Errorf("update ledger meta: %w", err)
	}
	return nil
}
