package analytics

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/finsight-app/backend/internal/ledger"
)

// Health factor names.
const (
	factorSavingsRate     = "Savings Rate"
	factorBudgetAdherence = "Budget Adherence"
	factorDiversity       = "Category Diversity"
	factorIncomePresence  = "Income Tracking"
)

// scoreHealth computes the composite financial-health score from the
// trailing three months of activity and the current month's budget status.
func (s *Service) scoreHealth(ctx context.Context, userID string, now time.Time) (*HealthScore, error) {
	start, end := Window(now, 3)

	incomeRows, err := s.agg.MonthlySums(ctx, userID, ledger.KindIncome, start, end)
	if err != nil {
		return nil, fmt.Errorf("income sums: %w", err)
	}
	expenseRows, err := s.agg.MonthlySums(ctx, userID, ledger.KindExpense, start, end)
	if err != nil {
		return nil, fmt.Errorf("expense sums: %w", err)
	}
	categoryRows, err := s.agg.CategoryExpenseSums(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("category sums: %w", err)
	}
	budgets, err := s.store.BudgetStatus(ctx, userID, now)
	if err != nil {
		return nil, fmt.Errorf("budget status: %w", err)
	}

	var totalIncome, totalExpenses float64
	for _, row := range incomeRows {
		totalIncome += row.Total
	}
	for _, row := range expenseRows {
		totalExpenses += row.Total
	}

	savingsRate := 0.0
	if totalIncome > 0 {
		savingsRate = (totalIncome - totalExpenses) / totalIncome * 100
	}

	factors := []HealthFactor{
		savingsFactor(savingsRate),
		adherenceFactor(budgets),
		diversityFactor(len(categoryRows)),
		incomeFactor(totalIncome),
	}

	score := 0
	for _, f := range factors {
		score += f.Points
	}
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	budgetsUnder := 0
	for _, b := range budgets {
		if b.Status == ledger.BudgetUnder {
			budgetsUnder++
		}
	}

	return &HealthScore{
		OverallScore:    score,
		Grade:           gradeFor(score),
		Factors:         factors,
		Recommendations: healthRecommendations(score, factors),
		Metrics: map[string]float64{
			"savings_rate":     round2(savingsRate),
			"total_income":     round2(totalIncome),
			"total_expenses":   round2(totalExpenses),
			"category_count":   float64(len(categoryRows)),
			"budgets_total":    float64(len(budgets)),
			"budgets_on_track": float64(budgetsUnder),
		},
	}, nil
}

func savingsFactor(rate float64) HealthFactor {
	f := HealthFactor{Name: factorSavingsRate}
	switch {
	case rate >= 20:
		f.Points, f.Status = 30, StatusPositive
	case rate >= 10:
		f.Points, f.Status = 20, StatusPositive
	case rate >= 0:
		f.Points, f.Status = 10, StatusNeutral
	default:
		f.Points, f.Status = 0, StatusNegative
	}
	return f
}

func adherenceFactor(budgets []ledger.BudgetStatus) HealthFactor {
	f := HealthFactor{Name: factorBudgetAdherence}
	if len(budgets) == 0 {
		f.Status = StatusNeutral
		return f
	}

	under := 0
	for _, b := range budgets {
		if b.Status == ledger.BudgetUnder {
			under++
		}
	}
	ratio := float64(under) / float64(len(budgets))
	f.Points = int(math.Round(ratio * 25))
	switch {
	case ratio >= 0.8:
		f.Status = StatusPositive
	case ratio >= 0.5:
		f.Status = StatusNeutral
	default:
		f.Status = StatusNegative
	}
	return f
}

func diversityFactor(categories int) HealthFactor {
	f := HealthFactor{Name: factorDiversity}
	capped := categories
	if capped > 8 {
		capped = 8
	}
	f.Points = int(math.Round(float64(capped) / 8 * 20))
	switch {
	case categories >= 5:
		f.Status = StatusPositive
	case categories >= 3:
		f.Status = StatusNeutral
	default:
		f.Status = StatusNegative
	}
	return f
}

func incomeFactor(totalIncome float64) HealthFactor {
	f := HealthFactor{Name: factorIncomePresence}
	if totalIncome > 0 {
		f.Points, f.Status = 25, StatusPositive
	} else {
		f.Status = StatusNegative
	}
	return f
}

// gradeFor maps a score to its letter grade; boundaries are inclusive at the
// lower bound.
func gradeFor(score int) string {
	switch {
	case score >= 90:
		return "A+"
	case score >= 80:
		return "A"
	case score >= 70:
		return "B"
	case score >= 60:
		return "C"
	case score >= 50:
		return "D"
	default:
		return "F"
	}
}

// healthRecommendations surfaces the most pressing action: below 50 that is
// always an emergency buffer; otherwise the weakest negative factor.
func healthRecommendations(score int, factors []HealthFactor) []string {
	if score < 50 {
		return []string{"Your financial health needs attention: start by building an emergency savings buffer covering one month of expenses."}
	}

	var weakest *HealthFactor
	for i := range factors {
		if factors[i].Status != StatusNegative {
			continue
		}
		if weakest == nil || factors[i].Points < weakest.Points {
			weakest = &factors[i]
		}
	}
	if weakest == nil {
		return nil
	}

	switch weakest.Name {
	case factorSavingsRate:
		return []string{"You are spending more than you earn; aim to save at least 10% of your income."}
	case factorBudgetAdherence:
		return []string{"Most of your budgets are exceeded; review the categories that are over and adjust spending or limits."}
	case factorDiversity:
		return []string{"Your spending is concentrated in very few categories; categorize transactions more precisely to spot savings."}
	case factorIncomePresence:
		return []string{"No income is recorded for this period; track income to get a complete financial picture."}
	default:
		return nil
	}
}
