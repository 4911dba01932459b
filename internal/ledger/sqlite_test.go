package ledger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStoreTransactionLifecycle(t *testing.T) {
	store := newSQLiteTestStore(t)
	ctx := context.Background()

	date := time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)
	tx := seedTransaction(t, store, "user-1", "groceries", KindExpense, 42.50, date)

	got, err := store.GetTransaction(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, tx.ID, got.ID)
	assert.Equal(t, tx.UserID, got.UserID)
	assert.Equal(t, 42.50, got.Amount)
	assert.Equal(t, KindExpense, got.Kind)
	assert.True(t, got.Date.Equal(date))

	require.NoError(t, store.DeleteTransaction(ctx, tx.ID))
	_, err = store.GetTransaction(ctx, tx.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStoreSumByGroup(t *testing.T) {
	store := newSQLiteTestStore(t)
	ctx := context.Background()

	mon1 := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	mon2 := time.Date(2026, 6, 8, 0, 0, 0, 0, time.UTC)
	sat := time.Date(2026, 6, 6, 0, 0, 0, 0, time.UTC)
	may := time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC)

	seedTransaction(t, store, "user-1", "groceries", KindExpense, 40, mon1)
	seedTransaction(t, store, "user-1", "transport", KindExpense, 10, mon2)
	seedTransaction(t, store, "user-1", "dining", KindExpense, 80, sat)
	seedTransaction(t, store, "user-1", "dining", KindExpense, 60, may)
	seedTransaction(t, store, "user-1", "salary", KindIncome, 3000, mon1)
	seedTransaction(t, store, "user-2", "dining", KindExpense, 999, mon1)

	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

	t.Run("by weekday", func(t *testing.T) {
		got, err := store.SumByGroup(ctx, "user-1", KindExpense, start, end, GroupByWeekday)
		require.NoError(t, err)
		require.Len(t, got, 3)

		assert.Equal(t, time.Monday, got[0].Weekday)
		assert.Equal(t, 50.0, got[0].Total)
		assert.Equal(t, 2, got[0].Count)
		assert.Equal(t, []string{"groceries", "transport"}, got[0].Categories)
	})

	t.Run("by month", func(t *testing.T) {
		got, err := store.SumByGroup(ctx, "user-1", KindExpense, start, end, GroupByMonth)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "2026-05", got[0].Month)
		assert.Equal(t, 60.0, got[0].Total)
		assert.Equal(t, "2026-06", got[1].Month)
		assert.Equal(t, 130.0, got[1].Total)
	})

	t.Run("by month and category", func(t *testing.T) {
		got, err := store.SumByGroup(ctx, "user-1", KindExpense, start, end, GroupByMonthCategory)
		require.NoError(t, err)
		require.Len(t, got, 4)
		assert.Equal(t, "2026-05", got[0].Month)
		assert.Equal(t, "dining", got[0].Category)
	})
}

func TestSQLiteStoreBudgetStatus(t *testing.T) {
	store := newSQLiteTestStore(t)
	ctx := context.Background()

	period := time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC)
	inMonth := time.Date(2026, 7, 5, 0, 0, 0, 0, time.UTC)

	seedTransaction(t, store, "user-1", "dining", KindExpense, 270, inMonth)
	seedTransaction(t, store, "user-1", "groceries", KindExpense, 120, inMonth)

	require.NoError(t, store.SetBudget(ctx, &Budget{UserID: "user-1", Category: "dining", Amount: 200}))
	require.NoError(t, store.SetBudget(ctx, &Budget{UserID: "user-1", Category: "groceries", Amount: 300}))
	// Budget upsert keeps one row per category.
	require.NoError(t, store.SetBudget(ctx, &Budget{UserID: "user-1", Category: "groceries", Amount: 350}))

	budgets, err := store.ListBudgets(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, budgets, 2)
	assert.Equal(t, 350.0, budgets[1].Amount)

	got, err := store.BudgetStatus(ctx, "user-1", period)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, BudgetOver, got[0].Status)
	assert.Equal(t, 270.0, got[0].Actual)
	assert.Equal(t, BudgetUnder, got[1].Status)
}

func TestSQLiteStoreLastModified(t *testing.T) {
	store := newSQLiteTestStore(t)
	ctx := context.Background()

	initial, err := store.LastModified(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, initial.IsZero())

	seedTransaction(t, store, "user-1", "dining", KindExpense, 10, time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC))

	afterWrite, err := store.LastModified(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, afterWrite.IsZero())
}
