package analytics

import "time"

// Report is the response envelope for the analytics query. Any section may be
// nil when its computation failed; the remaining sections are still returned.
type Report struct {
	UserID             string              `json:"user_id"`
	GeneratedAt        time.Time           `json:"generated_at"`
	Period             string              `json:"period"`
	SpendingPatterns   *SpendingPatterns   `json:"spending_patterns"`
	Predictions        *Predictions        `json:"predictions"`
	HealthScore        *HealthScore        `json:"health_score"`
	Anomalies          *Anomalies          `json:"anomalies"`
	CashFlowProjection *CashFlowProjection `json:"cash_flow_projection"`
}

// WeekdayStat summarizes expense activity on one day of the week.
type WeekdayStat struct {
	Weekday          string   `json:"weekday"`
	AverageAmount    float64  `json:"average_amount"`
	TransactionCount int      `json:"transaction_count"`
	Categories       []string `json:"categories"`
}

// MonthlyCategoryStat is one (month, category) spending total.
type MonthlyCategoryStat struct {
	Month     string  `json:"month"`
	Category  string  `json:"category"`
	Total     float64 `json:"total"`
	Frequency int     `json:"frequency"`
}

// SpendingPatterns holds the weekday and monthly spending distributions plus
// derived insight messages.
type SpendingPatterns struct {
	WeeklyDistribution []WeekdayStat         `json:"weekly_distribution"`
	MonthlyTrend       []MonthlyCategoryStat `json:"monthly_trend"`
	Insights           []string              `json:"insights"`
}

// Confidence levels for forecasts and projections.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// Trend labels derived from a regression slope.
const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"
)

// CategoryForecast is the next-period spending prediction for one category.
type CategoryForecast struct {
	PredictedAmount float64 `json:"predicted_amount"`
	Confidence      string  `json:"confidence"`
	Trend           string  `json:"trend"`
}

// Predictions maps categories to forecasts along with the aggregate total and
// budget-cap recommendations.
type Predictions struct {
	Categories             map[string]CategoryForecast `json:"categories"`
	TotalPredictedSpending float64                     `json:"total_predicted_spending"`
	Recommendations        []string                    `json:"recommendations"`
}

// Factor statuses for the health score breakdown.
const (
	StatusPositive = "positive"
	StatusNeutral  = "neutral"
	StatusNegative = "negative"
)

// HealthFactor is one scored component of the composite health score.
type HealthFactor struct {
	Name   string `json:"name"`
	Points int    `json:"points"`
	Status string `json:"status"`
}

// HealthScore is the composite 0-100 financial health assessment.
type HealthScore struct {
	OverallScore    int                `json:"overall_score"`
	Grade           string             `json:"grade"`
	Factors         []HealthFactor     `json:"factors"`
	Recommendations []string           `json:"recommendations"`
	Metrics         map[string]float64 `json:"metrics"`
}

// Severity tiers for flagged transactions.
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

// UnusualTransaction is one expense flagged as an outlier against its
// category baseline.
type UnusualTransaction struct {
	TransactionID       string  `json:"transaction_id"`
	Category            string  `json:"category"`
	Amount              float64 `json:"amount"`
	ExpectedAmount      float64 `json:"expected_amount"`
	ZScore              float64 `json:"z_score"`
	Severity            string  `json:"severity"`
	DeviationPercentage float64 `json:"deviation_percentage"`
	Date                string  `json:"date"`
}

// AnomalySummary aggregates the outcome of an anomaly scan.
type AnomalySummary struct {
	Total             int `json:"total"`
	HighSeverityCount int `json:"high_severity_count"`
}

// Anomalies is the outlier-detection section of the report.
type Anomalies struct {
	UnusualTransactions []UnusualTransaction `json:"unusual_transactions"`
	Summary             AnomalySummary       `json:"summary"`
}

// ProjectionPoint is one projected future month of cash flow.
type ProjectionPoint struct {
	Month             string  `json:"month"`
	ProjectedIncome   float64 `json:"projected_income"`
	ProjectedExpenses float64 `json:"projected_expenses"`
	NetFlow           float64 `json:"net_flow"`
	RunningBalance    float64 `json:"running_balance"`
}

// CashFlowTrends labels the direction of the historical income and expense
// series.
type CashFlowTrends struct {
	IncomeTrend  string `json:"income_trend"`
	ExpenseTrend string `json:"expense_trend"`
}

// CashFlowProjection is the forward-looking cash-flow section.
type CashFlowProjection struct {
	Projection []ProjectionPoint `json:"projection"`
	Confidence string            `json:"confidence"`
	Message    string            `json:"message,omitempty"`
	Trends     CashFlowTrends    `json:"trends"`
}
