package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/finsight-app/backend/internal/ledger"
)

// Supported report periods. Anything else falls back to six months rather
// than failing the request.
const (
	PeriodSixMonths = "6months"
	PeriodOneYear   = "1year"
)

// Aggregator issues the grouped and raw Ledger Store queries the analyzers
// need and shapes the rows into typed series. It has no side effects.
type Aggregator struct {
	store ledger.Store
}

// NewAggregator wraps a Ledger Store.
func NewAggregator(store ledger.Store) *Aggregator {
	return &Aggregator{store: store}
}

// ResolvePeriod clamps a requested period string to a supported span,
// returning the normalized label and the window length in months.
func ResolvePeriod(period string) (string, int) {
	switch period {
	case PeriodOneYear:
		return PeriodOneYear, 12
	case PeriodSixMonths:
		return PeriodSixMonths, 6
	default:
		return PeriodSixMonths, 6
	}
}

// Window returns the trailing window [now-months, now].
func Window(now time.Time, months int) (time.Time, time.Time) {
	return now.AddDate(0, -months, 0), now
}

// WeekdayExpenseSums returns expense totals grouped by day of the week.
func (a *Aggregator) WeekdayExpenseSums(ctx context.Context, userID string, start, end time.Time) ([]ledger.GroupedSum, error) {
	return a.store.SumByGroup(ctx, userID, ledger.KindExpense, start, end, ledger.GroupByWeekday)
}

// MonthCategoryExpenseSums returns expense totals grouped by (month, category).
func (a *Aggregator) MonthCategoryExpenseSums(ctx context.Context, userID string, start, end time.Time) ([]ledger.GroupedSum, error) {
	return a.store.SumByGroup(ctx, userID, ledger.KindExpense, start, end, ledger.GroupByMonthCategory)
}

// CategoryExpenseSums returns expense totals grouped by category.
func (a *Aggregator) CategoryExpenseSums(ctx context.Context, userID string, start, end time.Time) ([]ledger.GroupedSum, error) {
	return a.store.SumByGroup(ctx, userID, ledger.KindExpense, start, end, ledger.GroupByCategory)
}

// MonthlySums returns totals for one kind grouped by month, chronologically.
func (a *Aggregator) MonthlySums(ctx context.Context, userID string, kind ledger.Kind, start, end time.Time) ([]ledger.GroupedSum, error) {
	return a.store.SumByGroup(ctx, userID, kind, start, end, ledger.GroupByMonth)
}

// MonthlySeries is the per-category expense history the trend predictor works
// on: chronological (month, total) points, months without spending simply
// absent.
type MonthlySeries struct {
	Category string
	Months   []string
	Values   []float64
}

const maxSeriesPoints = 12

// MonthlyCategorySeries builds one MonthlySeries per category from the
// trailing window, capped at the 12 most recent points.
func (a *Aggregator) MonthlyCategorySeries(ctx context.Context, userID string, start, end time.Time) ([]MonthlySeries, error) {
	rows, err := a.MonthCategoryExpenseSums(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}

	byCategory := make(map[string]*MonthlySeries)
	for _, row := range rows {
		series, ok := byCategory[row.Category]
		if !ok {
			series = &MonthlySeries{Category: row.Category}
			byCategory[row.Category] = series
		}
		series.Months = append(series.Months, row.Month)
		series.Values = append(series.Values, row.Total)
	}

	out := make([]MonthlySeries, 0, len(byCategory))
	for _, series := range byCategory {
		// Store rows arrive ordered by month, but re-sort so the series
		// contract does not depend on a particular store implementation.
		sort.Sort(byMonth{series})
		if len(series.Months) > maxSeriesPoints {
			series.Months = series.Months[len(series.Months)-maxSeriesPoints:]
			series.Values = series.Values[len(series.Values)-maxSeriesPoints:]
		}
		out = append(out, *series)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}

type byMonth struct{ s *MonthlySeries }

func (b byMonth) Len() int           { return len(b.s.Months) }
func (b byMonth) Less(i, j int) bool { return b.s.Months[i] < b.s.Months[j] }
func (b byMonth) Swap(i, j int) {
	b.s.Months[i], b.s.Months[j] = b.s.Months[j], b.s.Months[i]
	b.s.Values[i], b.s.Values[j] = b.s.Values[j], b.s.Values[i]
}
