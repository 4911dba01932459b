package analytics

import (
	"context"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/finsight-app/backend/internal/ledger"
)

func TestAnalyzeSpendingPatterns(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := ledger.NewMockStore(ctrl)
	svc := newTestService(mockStore)

	userID := "user-123"
	start := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC)

	mockStore.EXPECT().
		SumByGroup(gomock.Any(), userID, ledger.KindExpense, start, end, ledger.GroupByWeekday).
		Return([]ledger.GroupedSum{
			{Weekday: time.Monday, Total: 120, Count: 4, Categories: []string{"groceries", "transport"}},
			{Weekday: time.Saturday, Total: 450, Count: 5, Categories: []string{"dining", "entertainment"}},
		}, nil)
	mockStore.EXPECT().
		SumByGroup(gomock.Any(), userID, ledger.KindExpense, start, end, ledger.GroupByMonthCategory).
		Return([]ledger.GroupedSum{
			{Month: "2026-06", Category: "dining", Total: 300, Count: 6},
			{Month: "2026-06", Category: "groceries", Total: 220, Count: 8},
			{Month: "2026-07", Category: "dining", Total: 150, Count: 3},
		}, nil)

	got, err := svc.analyzeSpendingPatterns(context.Background(), userID, start, end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got.WeeklyDistribution) != 2 {
		t.Fatalf("expected 2 weekday stats, got %d", len(got.WeeklyDistribution))
	}
	saturday := got.WeeklyDistribution[1]
	if saturday.Weekday != "Saturday" {
		t.Errorf("weekday = %q, want Saturday", saturday.Weekday)
	}
	if saturday.AverageAmount != 90.00 {
		t.Errorf("saturday average = %v, want 90.00", saturday.AverageAmount)
	}
	if saturday.TransactionCount != 5 {
		t.Errorf("saturday count = %d, want 5", saturday.TransactionCount)
	}

	if len(got.MonthlyTrend) != 3 {
		t.Fatalf("expected 3 monthly stats, got %d", len(got.MonthlyTrend))
	}
	// Chronological by month, largest totals first within each month.
	if got.MonthlyTrend[0].Category != "dining" || got.MonthlyTrend[0].Month != "2026-06" {
		t.Errorf("first trend row = %+v, want 2026-06 dining", got.MonthlyTrend[0])
	}
	if got.MonthlyTrend[2].Month != "2026-07" {
		t.Errorf("last trend row month = %q, want 2026-07", got.MonthlyTrend[2].Month)
	}

	if len(got.Insights) != 2 {
		t.Fatalf("expected 2 insights, got %d: %v", len(got.Insights), got.Insights)
	}
	wantDay := "Your highest spending day is Saturday, averaging $90.00 per transaction."
	if got.Insights[0] != wantDay {
		t.Errorf("insight = %q, want %q", got.Insights[0], wantDay)
	}
	wantCategory := "dining is your largest expense category with $450.00 over this period."
	if got.Insights[1] != wantCategory {
		t.Errorf("insight = %q, want %q", got.Insights[1], wantCategory)
	}
}

func TestAnalyzeSpendingPatternsEmptyLedger(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := ledger.NewMockStore(ctrl)
	svc := newTestService(mockStore)

	mockStore.EXPECT().
		SumByGroup(gomock.Any(), "user-123", ledger.KindExpense, gomock.Any(), gomock.Any(), ledger.GroupByWeekday).
		Return(nil, nil)
	mockStore.EXPECT().
		SumByGroup(gomock.Any(), "user-123", ledger.KindExpense, gomock.Any(), gomock.Any(), ledger.GroupByMonthCategory).
		Return(nil, nil)

	got, err := svc.analyzeSpendingPatterns(context.Background(), "user-123", time.Now().AddDate(0, -6, 0), time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.WeeklyDistribution) != 0 || len(got.MonthlyTrend) != 0 {
		t.Errorf("expected empty distributions, got %+v", got)
	}
	if len(got.Insights) != 0 {
		t.Errorf("expected no insights for empty ledger, got %v", got.Insights)
	}
}
