package analytics

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"
)

const (
	// minSeriesPoints is the smallest monthly history a category needs before
	// a forecast is attempted.
	minSeriesPoints = 3
	// budgetCapThreshold is the forecast level above which an increasing
	// category earns a budget-cap recommendation.
	budgetCapThreshold = 200.0
)

// predictSpending forecasts next-month spending per category from the
// trailing 12 months of expense history using an OLS trend.
func (s *Service) predictSpending(ctx context.Context, userID string, now time.Time) (*Predictions, error) {
	start, end := Window(now, 12)
	series, err := s.agg.MonthlyCategorySeries(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("monthly category series: %w", err)
	}

	predictions := &Predictions{
		Categories: make(map[string]CategoryForecast, len(series)),
	}
	var total float64
	for _, sr := range series {
		if len(sr.Values) < minSeriesPoints {
			continue
		}
		forecast := forecastSeries(sr.Values)
		predictions.Categories[sr.Category] = forecast
		total += forecast.PredictedAmount
	}
	predictions.TotalPredictedSpending = round2(total)

	categories := make([]string, 0, len(predictions.Categories))
	for cat := range predictions.Categories {
		categories = append(categories, cat)
	}
	sort.Strings(categories)
	for _, cat := range categories {
		f := predictions.Categories[cat]
		if f.Trend == TrendIncreasing && f.PredictedAmount > budgetCapThreshold {
			predictions.Recommendations = append(predictions.Recommendations, fmt.Sprintf(
				"%s spending is trending up with $%.2f projected next month; consider setting a budget cap.",
				cat, f.PredictedAmount))
		}
	}

	return predictions, nil
}

// forecastSeries turns one chronological monthly series into a forecast.
// The prediction is the series mean shifted by one slope step, floored at
// zero; confidence is the inverse of the coefficient of variation.
func forecastSeries(values []float64) CategoryForecast {
	slope := linearSlope(values)
	avg := mean(values)
	predicted := round2(math.Max(0, avg+slope))

	confidence := ConfidenceLow
	if len(values) >= minSeriesPoints && avg > 0 {
		cv := stddev(values, avg) / avg
		switch {
		case cv < 0.30:
			confidence = ConfidenceHigh
		case cv < 0.60:
			confidence = ConfidenceMedium
		}
	}

	return CategoryForecast{
		PredictedAmount: predicted,
		Confidence:      confidence,
		Trend:           trendLabel(slope),
	}
}
