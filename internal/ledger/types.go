package ledger

import (
	"fmt"
	"time"
)

// Kind distinguishes money coming in from money going out.
type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

// Valid reports whether k is one of the two supported kinds.
func (k Kind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

// GroupBy selects the dimension for a grouped-sum query.
type GroupBy string

const (
	GroupByWeekday       GroupBy = "weekday"
	GroupByMonth         GroupBy = "month"
	GroupByCategory      GroupBy = "category"
	GroupByMonthCategory GroupBy = "month_category"
)

// Transaction is a single ledger entry. Amount is always positive; Kind
// determines its sign in any balance computation.
type Transaction struct {
	ID        string    `json:"id" firestore:"ID"`
	UserID    string    `json:"user_id" firestore:"UserID"`
	Amount    float64   `json:"amount" firestore:"Amount"`
	Kind      Kind      `json:"kind" firestore:"Kind"`
	Category  string    `json:"category" firestore:"Category"`
	Date      time.Time `json:"date" firestore:"Date"`
	CreatedAt time.Time `json:"created_at" firestore:"CreatedAt"`
}

// Validate checks the invariants the store enforces on write.
func (t *Transaction) Validate() error {
	if t.UserID == "" {
		return fmt.Errorf("transaction user id is required")
	}
	if t.Amount <= 0 {
		return fmt.Errorf("transaction amount must be positive, got %v", t.Amount)
	}
	if !t.Kind.Valid() {
		return fmt.Errorf("transaction kind must be %q or %q, got %q", KindIncome, KindExpense, t.Kind)
	}
	if t.Category == "" {
		return fmt.Errorf("transaction category is required")
	}
	if t.Date.IsZero() {
		return fmt.Errorf("transaction date is required")
	}
	return nil
}

// Budget is a monthly spending cap for one category.
type Budget struct {
	ID       string  `json:"id" firestore:"ID"`
	UserID   string  `json:"user_id" firestore:"UserID"`
	Category string  `json:"category" firestore:"Category"`
	Amount   float64 `json:"amount" firestore:"Amount"`
}

// GroupedSum is one row of a grouped aggregate. Which key fields are set
// depends on the GroupBy dimension: Weekday for weekday grouping, Month
// ("2006-01") for month grouping, Category for category grouping, and both
// Month and Category for month×category. Weekday rows additionally carry the
// distinct categories observed on that weekday.
type GroupedSum struct {
	Weekday    time.Weekday
	Month      string
	Category   string
	Total      float64
	Count      int
	Categories []string
}

// Budget status values for a category in the current period.
const (
	BudgetUnder = "under"
	BudgetOver  = "over"
)

// BudgetStatus compares one category's budget against actual spend.
type BudgetStatus struct {
	Category string  `json:"category"`
	Budgeted float64 `json:"budgeted"`
	Actual   float64 `json:"actual"`
	Status   string  `json:"status"`
}

// MonthKey formats a date as the month label used by grouped aggregates.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}
