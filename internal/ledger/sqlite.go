package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const (
	dayLayout  = "2006-01-02"
	tsLayout   = time.RFC3339Nano
	metaUpsert = `INSERT INTO ledger_meta (user_id, last_modified) VALUES (?, ?)
		ON CONFLICT (user_id) DO UPDATE SET last_modified = excluded.last_modified`
)

// SQLiteStore implements Store on a local SQLite database. Grouped sums are
// pushed down into SQL.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at dbPath and runs
// pending migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateTransaction(ctx context.Context, tx *Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (id, user_id, amount, kind, category, occurred_on, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.UserID, tx.Amount, string(tx.Kind), tx.Category,
		tx.Date.Format(dayLayout), tx.CreatedAt.Format(tsLayout))
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return s.touch(ctx, tx.UserID)
}

func (s *SQLiteStore) GetTransaction(ctx context.Context, id string) (*Transaction, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, amount, kind, category, occurred_on, created_at
		 FROM transactions WHERE id = ?`, id)
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return tx, nil
}

func (s *SQLiteStore) DeleteTransaction(ctx context.Context, id string) error {
	var userID string
	err := s.db.QueryRowContext(ctx, `SELECT user_id FROM transactions WHERE id = ?`, id).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("lookup transaction: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return s.touch(ctx, userID)
}

func (s *SQLiteStore) ListTransactions(ctx context.Context, userID string, start, end time.Time) ([]*Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, amount, kind, category, occurred_on, created_at
		 FROM transactions
		 WHERE user_id = ? AND occurred_on BETWEEN ? AND ?
		 ORDER BY occurred_on, id`,
		userID, start.Format(dayLayout), end.Format(dayLayout))
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()
	return collectTransactions(rows)
}

func (s *SQLiteStore) SetBudget(ctx context.Context, b *Budget) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO budgets (id, user_id, category, amount) VALUES (?, ?, ?, ?)
		 ON CONFLICT (user_id, category) DO UPDATE SET amount = excluded.amount`,
		b.ID, b.UserID, b.Category, b.Amount)
	if err != nil {
		return fmt.Errorf("set budget: %w", err)
	}
	return s.touch(ctx, b.UserID)
}

func (s *SQLiteStore) ListBudgets(ctx context.Context, userID string) ([]*Budget, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, category, amount FROM budgets WHERE user_id = ? ORDER BY category`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []*Budget
	for rows.Next() {
		var b Budget
		if err := rows.Scan(&b.ID, &b.UserID, &b.Category, &b.Amount); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		budgets = append(budgets, &b)
	}
	return budgets, rows.Err()
}

func (s *SQLiteStore) SumByGroup(ctx context.Context, userID string, kind Kind, start, end time.Time, groupBy GroupBy) ([]GroupedSum, error) {
	args := []any{userID, string(kind), start.Format(dayLayout), end.Format(dayLayout)}
	where := `user_id = ? AND kind = ? AND occurred_on BETWEEN ? AND ?`

	var query string
	switch groupBy {
	case GroupByWeekday:
		query = `SELECT CAST(strftime('%w', occurred_on) AS INTEGER) AS wd,
			SUM(amount), COUNT(*), GROUP_CONCAT(DISTINCT category)
			FROM transactions WHERE ` + where + ` GROUP BY wd ORDER BY wd`
	case GroupByMonth:
		query = `SELECT strftime('%Y-%m', occurred_on) AS m, SUM(amount), COUNT(*)
			FROM transactions WHERE ` + where + ` GROUP BY m ORDER BY m`
	case GroupByCategory:
		query = `SELECT category, SUM(amount), COUNT(*)
			FROM transactions WHERE ` + where + ` GROUP BY category ORDER BY category`
	case GroupByMonthCategory:
		query = `SELECT strftime('%Y-%m', occurred_on) AS m, category, SUM(amount), COUNT(*)
			FROM transactions WHERE ` + where + ` GROUP BY m, category ORDER BY m, category`
	default:
		return nil, fmt.Errorf("unsupported group by: %q", groupBy)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sum by %s: %w", groupBy, err)
	}
	defer rows.Close()

	var sums []GroupedSum
	for rows.Next() {
		var row GroupedSum
		switch groupBy {
		case GroupByWeekday:
			var wd int
			var cats sql.NullString
			if err := rows.Scan(&wd, &row.Total, &row.Count, &cats); err != nil {
				return nil, fmt.Errorf("scan weekday sum: %w", err)
			}
			row.Weekday = time.Weekday(wd)
			if cats.Valid && cats.String != "" {
				row.Categories = splitSorted(cats.String)
			}
		case GroupByMonth:
			if err := rows.Scan(&row.Month, &row.Total, &row.Count); err != nil {
				return nil, fmt.Errorf("scan month sum: %w", err)
			}
		case GroupByCategory:
			if err := rows.Scan(&row.Category, &row.Total, &row.Count); err != nil {
				return nil, fmt.Errorf("scan category sum: %w", err)
			}
		case GroupByMonthCategory:
			if err := rows.Scan(&row.Month, &row.Category, &row.Total, &row.Count); err != nil {
				return nil, fmt.Errorf("scan month category sum: %w", err)
			}
		}
		sums = append(sums, row)
	}
	return sums, rows.Err()
}

func (s *SQLiteStore) RawExpenses(ctx context.Context, userID string, start, end time.Time) ([]*Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, amount, kind, category, occurred_on, created_at
		 FROM transactions
		 WHERE user_id = ? AND kind = 'expense' AND occurred_on BETWEEN ? AND ?
		 ORDER BY occurred_on, id`,
		userID, start.Format(dayLayout), end.Format(dayLayout))
	if err != nil {
		return nil, fmt.Errorf("list raw expenses: %w", err)
	}
	defer rows.Close()
	return collectTransactions(rows)
}

func (s *SQLiteStore) BudgetStatus(ctx context.Context, userID string, period time.Time) ([]BudgetStatus, error) {
	budgets, err := s.ListBudgets(ctx, userID)
	if err != nil {
		return nil, err
	}

	start, end := monthWindow(period)
	sums, err := s.SumByGroup(ctx, userID, KindExpense, start, end, GroupByCategory)
	if err != nil {
		return nil, err
	}
	actual := make(map[string]float64, len(sums))
	for _, row := range sums {
		actual[row.Category] = row.Total
	}
	return budgetStatuses(budgets, actual), nil
}

func (s *SQLiteStore) LastModified(ctx context.Context, userID string) (time.Time, error) {
	var ts string
	err := s.db.QueryRowContext(ctx,
		`SELECT last_modified FROM ledger_meta WHERE user_id = ?`, userID).Scan(&ts)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("get last modified: %w", err)
	}
	t, err := time.Parse(tsLayout, ts)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse last modified: %w", err)
	}
	return t, nil
}

func (s *SQLiteStore) touch(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, metaUpsert, userID, time.Now().Format(tsLayout))
	if err != nil {
		return fmt.Errorf("update ledger meta: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*Transaction, error) {
	var tx Transaction
	var kind, day, created string
	if err := row.Scan(&tx.ID, &tx.UserID, &tx.Amount, &kind, &tx.Category, &day, &created); err != nil {
		return nil, err
	}
	tx.Kind = Kind(kind)

	var err error
	if tx.Date, err = time.Parse(dayLayout, day); err != nil {
		return nil, fmt.Errorf("parse transaction date: %w", err)
	}
	if tx.CreatedAt, err = time.Parse(tsLayout, created); err != nil {
		return nil, fmt.Errorf("parse transaction created_at: %w", err)
	}
	return &tx, nil
}

func collectTransactions(rows *sql.Rows) ([]*Transaction, error) {
	var txs []*Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}
