package analytics

import (
	"context"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/finsight-app/backend/internal/ledger"
)

func TestScoreHealth(t *testing.T) {
	userID := "user-123"
	now := time.Date(2026, 7, 15, 12, 0, 0, 0, time.UTC)

	t.Run("healthy finances score an A+", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockStore := ledger.NewMockStore(ctrl)
		svc := newTestService(mockStore)

		// 25% savings rate over the window.
		mockStore.EXPECT().
			SumByGroup(gomock.Any(), userID, ledger.KindIncome, gomock.Any(), gomock.Any(), ledger.GroupByMonth).
			Return([]ledger.GroupedSum{
				{Month: "2026-05", Total: 2000},
				{Month: "2026-06", Total: 2000},
				{Month: "2026-07", Total: 2000},
			}, nil)
		mockStore.EXPECT().
			SumByGroup(gomock.Any(), userID, ledger.KindExpense, gomock.Any(), gomock.Any(), ledger.GroupByMonth).
			Return([]ledger.GroupedSum{
				{Month: "2026-05", Total: 1500},
				{Month: "2026-06", Total: 1500},
				{Month: "2026-07", Total: 1500},
			}, nil)
		mockStore.EXPECT().
			SumByGroup(gomock.Any(), userID, ledger.KindExpense, gomock.Any(), gomock.Any(), ledger.GroupByCategory).
			Return([]ledger.GroupedSum{
				{Category: "dining", Total: 800},
				{Category: "groceries", Total: 900},
				{Category: "rent", Total: 1800},
				{Category: "transport", Total: 400},
				{Category: "utilities", Total: 300},
				{Category: "entertainment", Total: 300},
			}, nil)
		mockStore.EXPECT().
			BudgetStatus(gomock.Any(), userID, now).
			Return([]ledger.BudgetStatus{
				{Category: "dining", Budgeted: 300, Actual: 250, Status: ledger.BudgetUnder},
				{Category: "groceries", Budgeted: 350, Actual: 300, Status: ledger.BudgetUnder},
			}, nil)

		got, err := svc.scoreHealth(context.Background(), userID, now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// 30 savings + 25 adherence + 15 diversity + 25 income = 95.
		if got.OverallScore != 95 {
			t.Errorf("overall score = %d, want 95", got.OverallScore)
		}
		if got.Grade != "A+" {
			t.Errorf("grade = %q, want A+", got.Grade)
		}
		if len(got.Factors) != 4 {
			t.Fatalf("expected 4 factors, got %d", len(got.Factors))
		}
		if got.Recommendations != nil {
			t.Errorf("expected no recommendations, got %v", got.Recommendations)
		}
		if got.Metrics["savings_rate"] != 25.00 {
			t.Errorf("savings_rate metric = %v, want 25.00", got.Metrics["savings_rate"])
		}
		if got.Metrics["budgets_on_track"] != 2 {
			t.Errorf("budgets_on_track metric = %v, want 2", got.Metrics["budgets_on_track"])
		}
	})

	t.Run("no income and thin data fails with emergency advice", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockStore := ledger.NewMockStore(ctrl)
		svc := newTestService(mockStore)

		mockStore.EXPECT().
			SumByGroup(gomock.Any(), userID, ledger.KindIncome, gomock.Any(), gomock.Any(), ledger.GroupByMonth).
			Return(nil, nil)
		mockStore.EXPECT().
			SumByGroup(gomock.Any(), userID, ledger.KindExpense, gomock.Any(), gomock.Any(), ledger.GroupByMonth).
			Return([]ledger.GroupedSum{{Month: "2026-07", Total: 900}}, nil)
		mockStore.EXPECT().
			SumByGroup(gomock.Any(), userID, ledger.KindExpense, gomock.Any(), gomock.Any(), ledger.GroupByCategory).
			Return([]ledger.GroupedSum{
				{Category: "dining", Total: 500},
				{Category: "transport", Total: 400},
			}, nil)
		mockStore.EXPECT().
			BudgetStatus(gomock.Any(), userID, now).
			Return(nil, nil)

		got, err := svc.scoreHealth(context.Background(), userID, now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// 10 savings + 0 adherence + 5 diversity + 0 income = 15.
		if got.OverallScore != 15 {
			t.Errorf("overall score = %d, want 15", got.OverallScore)
		}
		if got.Grade != "F" {
			t.Errorf("grade = %q, want F", got.Grade)
		}
		if len(got.Recommendations) != 1 {
			t.Fatalf("expected 1 recommendation, got %d", len(got.Recommendations))
		}
	})
}

func TestGradeFor(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{100, "A+"},
		{90, "A+"},
		{89, "A"},
		{80, "A"},
		{79, "B"},
		{70, "B"},
		{69, "C"},
		{60, "C"},
		{59, "D"},
		{50, "D"},
		{49, "F"},
		{0, "F"},
	}
	for _, tt := range tests {
		if got := gradeFor(tt.score); got != tt.want {
			t.Errorf("gradeFor(%d) = %q, want %q", tt.score, got, tt.want)
		}
	}
}
