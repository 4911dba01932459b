package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// analyzeSpendingPatterns builds the weekday and monthly spending
// distributions for the report window and derives insight messages.
func (s *Service) analyzeSpendingPatterns(ctx context.Context, userID string, start, end time.Time) (*SpendingPatterns, error) {
	weekdayRows, err := s.agg.WeekdayExpenseSums(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("weekday sums: %w", err)
	}

	weekly := make([]WeekdayStat, 0, len(weekdayRows))
	for _, row := range weekdayRows {
		avg := 0.0
		if row.Count > 0 {
			avg = round2(row.Total / float64(row.Count))
		}
		weekly = append(weekly, WeekdayStat{
			Weekday:          row.Weekday.String(),
			AverageAmount:    avg,
			TransactionCount: row.Count,
			Categories:       row.Categories,
		})
	}

	monthRows, err := s.agg.MonthCategoryExpenseSums(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("month category sums: %w", err)
	}

	monthly := make([]MonthlyCategoryStat, 0, len(monthRows))
	for _, row := range monthRows {
		monthly = append(monthly, MonthlyCategoryStat{
			Month:     row.Month,
			Category:  row.Category,
			Total:     round2(row.Total),
			Frequency: row.Count,
		})
	}
	// Chronological by month, largest totals first within each month.
	sort.Slice(monthly, func(i, j int) bool {
		if monthly[i].Month != monthly[j].Month {
			return monthly[i].Month < monthly[j].Month
		}
		if monthly[i].Total != monthly[j].Total {
			return monthly[i].Total > monthly[j].Total
		}
		return monthly[i].Category < monthly[j].Category
	})

	return &SpendingPatterns{
		WeeklyDistribution: weekly,
		MonthlyTrend:       monthly,
		Insights:           patternInsights(weekly, monthly),
	}, nil
}

// patternInsights derives human-readable observations from the
// distributions. The highest-average weekday is always reported when any
// spending exists.
func patternInsights(weekly []WeekdayStat, monthly []MonthlyCategoryStat) []string {
	var insights []string

	var topDay *WeekdayStat
	for i := range weekly {
		if topDay == nil || weekly[i].AverageAmount > topDay.AverageAmount {
			topDay = &weekly[i]
		}
	}
	if topDay != nil {
		insights = append(insights, fmt.Sprintf(
			"Your highest spending day is %s, averaging $%.2f per transaction.",
			topDay.Weekday, topDay.AverageAmount))
	}

	categoryTotals := make(map[string]float64)
	for _, stat := range monthly {
		categoryTotals[stat.Category] += stat.Total
	}
	var topCategory string
	var topTotal float64
	for cat, total := range categoryTotals {
		if total > topTotal || (total == topTotal && cat < topCategory) {
			topCategory = cat
			topTotal = total
		}
	}
	if topCategory != "" {
		insights = append(insights, fmt.Sprintf(
			"%s is your largest expense category with $%.2f over this period.",
			topCategory, round2(topTotal)))
	}

	return insights
}
