package analytics

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"
)

const (
	// minBaselineSamples is the statistical validity floor: categories with
	// fewer qualifying transactions carry no baseline and are never flagged.
	minBaselineSamples = 5
	// anomalyZThreshold flags transactions more than two standard deviations
	// from their category mean.
	anomalyZThreshold = 2.0
	// maxFlagged caps the number of transactions returned, highest z first.
	maxFlagged = 10

	baselineMonths   = 6
	recentWindowDays = 30
)

// categoryBaseline holds the dispersion statistics for one category over the
// trailing baseline window.
type categoryBaseline struct {
	mean   float64
	stddev float64
	count  int
}

// detectAnomalies flags recent expense outliers against per-category
// baselines built from the trailing six months.
func (s *Service) detectAnomalies(ctx context.Context, userID string, now time.Time) (*Anomalies, error) {
	start, end := Window(now, baselineMonths)
	expenses, err := s.store.RawExpenses(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("raw expenses: %w", err)
	}

	amounts := make(map[string][]float64)
	for _, tx := range expenses {
		amounts[tx.Category] = append(amounts[tx.Category], tx.Amount)
	}

	baselines := make(map[string]categoryBaseline)
	for category, values := range amounts {
		if len(values) < minBaselineSamples {
			continue
		}
		m := mean(values)
		baselines[category] = categoryBaseline{
			mean:   m,
			stddev: stddev(values, m),
			count:  len(values),
		}
	}

	recentStart := now.AddDate(0, 0, -recentWindowDays)
	var flagged []UnusualTransaction
	highCount := 0
	for _, tx := range expenses {
		if tx.Date.Before(recentStart) {
			continue
		}
		baseline, ok := baselines[tx.Category]
		if !ok || baseline.stddev == 0 {
			// No valid baseline, or zero dispersion makes the z-score
			// meaningless.
			continue
		}
		z := math.Abs(tx.Amount-baseline.mean) / baseline.stddev
		if z <= anomalyZThreshold {
			continue
		}

		severity := severityFor(z)
		if severity == SeverityHigh {
			highCount++
		}
		flagged = append(flagged, UnusualTransaction{
			TransactionID:       tx.ID,
			Category:            tx.Category,
			Amount:              tx.Amount,
			ExpectedAmount:      round2(baseline.mean),
			ZScore:              round2(z),
			Severity:            severity,
			DeviationPercentage: round1((tx.Amount - baseline.mean) / baseline.mean * 100),
			Date:                tx.Date.Format("2006-01-02"),
		})
	}

	sort.Slice(flagged, func(i, j int) bool {
		if flagged[i].ZScore != flagged[j].ZScore {
			return flagged[i].ZScore > flagged[j].ZScore
		}
		return flagged[i].TransactionID < flagged[j].TransactionID
	})

	total := len(flagged)
	if len(flagged) > maxFlagged {
		flagged = flagged[:maxFlagged]
	}

	return &Anomalies{
		UnusualTransactions: flagged,
		Summary: AnomalySummary{
			Total:             total,
			HighSeverityCount: highCount,
		},
	}, nil
}

func severityFor(z float64) string {
	switch {
	case z > 3:
		return SeverityHigh
	case z > 2.5:
		return SeverityMedium
	default:
		return SeverityLow
	}
}
