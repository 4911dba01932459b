package ledger

import (
	"sort"
	"strings"
	"time"
)

// foldGroups aggregates transactions into grouped sums in memory. The memory
// and Firestore stores share it; the SQLite store pushes the same grouping
// into SQL.
func foldGroups(txs []*Transaction, groupBy GroupBy) []GroupedSum {
	type bucket struct {
		weekday    time.Weekday
		month      string
		category   string
		total      float64
		count      int
		categories map[string]struct{}
	}

	buckets := make(map[string]*bucket)
	for _, tx := range txs {
		var key string
		var b bucket
		switch groupBy {
		case GroupByWeekday:
			b.weekday = tx.Date.Weekday()
			key = b.weekday.String()
		case GroupByMonth:
			b.month = MonthKey(tx.Date)
			key = b.month
		case GroupByCategory:
			b.category = tx.Category
			key = b.category
		case GroupByMonthCategory:
			b.month = MonthKey(tx.Date)
			b.category = tx.Category
			key = b.month + "\x00" + b.category
		default:
			continue
		}

		existing, ok := buckets[key]
		if !ok {
			b.categories = make(map[string]struct{})
			existing = &b
			buckets[key] = existing
		}
		existing.total += tx.Amount
		existing.count++
		existing.categories[tx.Category] = struct{}{}
	}

	sums := make([]GroupedSum, 0, len(buckets))
	for _, b := range buckets {
		row := GroupedSum{
			Weekday:  b.weekday,
			Month:    b.month,
			Category: b.category,
			Total:    b.total,
			Count:    b.count,
		}
		if groupBy == GroupByWeekday {
			for c := range b.categories {
				row.Categories = append(row.Categories, c)
			}
			sort.Strings(row.Categories)
		}
		sums = append(sums, row)
	}

	// Deterministic order so repeated reads of an unchanged ledger are
	// byte-identical downstream.
	sort.Slice(sums, func(i, j int) bool {
		if sums[i].Weekday != sums[j].Weekday {
			return sums[i].Weekday < sums[j].Weekday
		}
		if sums[i].Month != sums[j].Month {
			return sums[i].Month < sums[j].Month
		}
		return sums[i].Category < sums[j].Category
	})
	return sums
}

// splitSorted splits a GROUP_CONCAT value into sorted parts.
func splitSorted(s string) []string {
	parts := strings.Split(s, ",")
	sort.Strings(parts)
	return parts
}

// monthWindow returns the bounds of the calendar month containing t.
func monthWindow(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return start, end
}

// budgetStatuses compares budgets against actual spend per category.
func budgetStatuses(budgets []*Budget, actualByCategory map[string]float64) []BudgetStatus {
	statuses := make([]BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		actual := actualByCategory[b.Category]
		status := BudgetUnder
		if actual > b.Amount {
			status = BudgetOver
		}
		statuses = append(statuses, BudgetStatus{
			Category: b.Category,
			Budgeted: b.Amount,
			Actual:   actual,
			Status:   status,
		})
	}
	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].Category < statuses[j].Category
	})
	return statuses
}
