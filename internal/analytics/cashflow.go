package analytics

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"sort"
	"time"

	"github.com/finsight-app/backend/internal/ledger"
)

const (
	historyMonths    = 6
	projectionMonths = 3
	// jitterSpread bounds the run-rate perturbation to ±5%.
	jitterSpread = 0.05
)

// projectCashFlow projects the next three months of income, expenses and
// running balance from trailing-six-month run rates.
//
// The projection perturbs each month's run rate by a bounded random factor.
// The generator is seeded from (user, generation month) so repeated calls
// within a month are reproducible.
func (s *Service) projectCashFlow(ctx context.Context, userID string, now time.Time) (*CashFlowProjection, error) {
	start, end := Window(now, historyMonths)

	incomeRows, err := s.agg.MonthlySums(ctx, userID, ledger.KindIncome, start, end)
	if err != nil {
		return nil, fmt.Errorf("income sums: %w", err)
	}
	expenseRows, err := s.agg.MonthlySums(ctx, userID, ledger.KindExpense, start, end)
	if err != nil {
		return nil, fmt.Errorf("expense sums: %w", err)
	}

	incomeByMonth := make(map[string]float64, len(incomeRows))
	for _, row := range incomeRows {
		incomeByMonth[row.Month] = row.Total
	}
	expenseByMonth := make(map[string]float64, len(expenseRows))
	for _, row := range expenseRows {
		expenseByMonth[row.Month] = row.Total
	}

	months := make(map[string]struct{})
	for m := range incomeByMonth {
		months[m] = struct{}{}
	}
	for m := range expenseByMonth {
		months[m] = struct{}{}
	}

	if len(months) == 0 {
		return &CashFlowProjection{
			Projection: []ProjectionPoint{},
			Confidence: ConfidenceLow,
			Message:    "Not enough transaction history to project cash flow.",
			Trends: CashFlowTrends{
				IncomeTrend:  TrendStable,
				ExpenseTrend: TrendStable,
			},
		}, nil
	}

	ordered := make([]string, 0, len(months))
	for m := range months {
		ordered = append(ordered, m)
	}
	sort.Strings(ordered)

	incomeSeries := make([]float64, len(ordered))
	expenseSeries := make([]float64, len(ordered))
	var totalIncome, totalExpense float64
	for i, m := range ordered {
		incomeSeries[i] = incomeByMonth[m]
		expenseSeries[i] = expenseByMonth[m]
		totalIncome += incomeSeries[i]
		totalExpense += expenseSeries[i]
	}
	avgIncome := totalIncome / float64(len(ordered))
	avgExpense := totalExpense / float64(len(ordered))

	rng := rand.New(rand.NewSource(projectionSeed(userID, now)))
	projection := make([]ProjectionPoint, 0, projectionMonths)
	// Anchor on the first of the current month: AddDate normalizes month-end
	// dates (Jan 31 + one month is Mar 3), which would skip short months.
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	var balance float64
	for i := 1; i <= projectionMonths; i++ {
		income := round2(avgIncome * jitter(rng))
		expense := round2(avgExpense * jitter(rng))
		net := round2(income - expense)
		balance = round2(balance + net)
		projection = append(projection, ProjectionPoint{
			Month:             monthStart.AddDate(0, i, 0).Format("2006-01"),
			ProjectedIncome:   income,
			ProjectedExpenses: expense,
			NetFlow:           net,
			RunningBalance:    balance,
		})
	}

	confidence := ConfidenceMedium
	if len(ordered) >= 4 {
		confidence = ConfidenceHigh
	}

	return &CashFlowProjection{
		Projection: projection,
		Confidence: confidence,
		Trends: CashFlowTrends{
			IncomeTrend:  trendLabel(linearSlope(incomeSeries)),
			ExpenseTrend: trendLabel(linearSlope(expenseSeries)),
		},
	}, nil
}

// jitter returns a factor in [1-jitterSpread, 1+jitterSpread).
func jitter(rng *rand.Rand) float64 {
	return 1 - jitterSpread + rng.Float64()*2*jitterSpread
}

// projectionSeed derives a deterministic seed from the user and the month the
// report is generated in.
func projectionSeed(userID string, now time.Time) int64 {
	h := fnv.New64a()
	h.Write([]byte(userID))
	h.Write([]byte(now.Format("2006-01")))
	return int64(h.Sum64())
}
