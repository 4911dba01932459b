package analytics

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/finsight-app/backend/internal/cache"
	"github.com/finsight-app/backend/internal/ledger"
	"github.com/finsight-app/backend/internal/log"
)

const (
	defaultTaskTimeout = 5 * time.Second
	reportCacheSize    = 256
	reportCacheTTL     = 10 * time.Minute
)

// Service produces analytics reports over a ledger store. The five report
// sections run concurrently; a failed section is logged and omitted rather
// than failing the whole report.
type Service struct {
	store       ledger.Store
	agg         *Aggregator
	logger      *log.Logger
	taskTimeout time.Duration
	reports     *cache.LRUCache[*Report]
	now         func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithTaskTimeout overrides the per-section timeout.
func WithTaskTimeout(d time.Duration) Option {
	return func(s *Service) { s.taskTimeout = d }
}

// WithClock overrides the report clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates an analytics service backed by the given store.
func NewService(store ledger.Store, logger *log.Logger, opts ...Option) *Service {
	s := &Service{
		store:       store,
		agg:         NewAggregator(store),
		logger:      logger.WithComponent("analytics"),
		taskTimeout: defaultTaskTimeout,
		reports:     cache.NewLRUCache[*Report](reportCacheSize, reportCacheTTL),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetAnalytics assembles the full report for a user. Results are cached per
// (user, period, ledger version), so a report is only recomputed after the
// user's data changes or the cache entry expires.
func (s *Service) GetAnalytics(ctx context.Context, userID string, period string) (*Report, error) {
	resolved, months := ResolvePeriod(period)
	now := s.now()

	version, err := s.store.LastModified(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ledger version: %w", err)
	}
	cacheKey := fmt.Sprintf("%s|%s|%d", userID, resolved, version.UnixNano())
	if report, ok := s.reports.Get(cacheKey); ok {
		s.logger.DebugContext(ctx, "report cache hit", "user_id", userID, "period", resolved)
		return report, nil
	}

	start, end := Window(now, months)

	report := &Report{
		UserID:      userID,
		GeneratedAt: now.UTC(),
		Period:      resolved,
	}

	var degraded atomic.Bool
	g, gctx := errgroup.WithContext(ctx)
	g.Go(s.section(gctx, "spending_patterns", &degraded, func(tctx context.Context) error {
		res, err := s.analyzeSpendingPatterns(tctx, userID, start, end)
		if err != nil {
			return err
		}
		report.SpendingPatterns = res
		return nil
	}))
	g.Go(s.section(gctx, "predictions", &degraded, func(tctx context.Context) error {
		res, err := s.predictSpending(tctx, userID, now)
		if err != nil {
			return err
		}
		report.Predictions = res
		return nil
	}))
	g.Go(s.section(gctx, "health_score", &degraded, func(tctx context.Context) error {
		res, err := s.scoreHealth(tctx, userID, now)
		if err != nil {
			return err
		}
		report.HealthScore = res
		return nil
	}))
	g.Go(s.section(gctx, "anomalies", &degraded, func(tctx context.Context) error {
		res, err := s.detectAnomalies(tctx, userID, now)
		if err != nil {
			return err
		}
		report.Anomalies = res
		return nil
	}))
	g.Go(s.section(gctx, "cash_flow_projection", &degraded, func(tctx context.Context) error {
		res, err := s.projectCashFlow(tctx, userID, now)
		if err != nil {
			return err
		}
		report.CashFlowProjection = res
		return nil
	}))

	// Section errors are swallowed inside section(), so Wait only surfaces
	// context cancellation.
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// A report missing a section because its task failed must not be
	// cached: the ledger version is unchanged by a store read failure, so
	// the entry would keep serving the hole until the TTL runs out.
	if !degraded.Load() {
		s.reports.Set(cacheKey, report)
	}
	return report, nil
}

// section wraps one report task with its own timeout. Task failures are
// logged and absorbed; the section stays nil in the report and degraded is
// set so the assembled report skips the cache. Cancellation of the parent
// context still propagates.
func (s *Service) section(ctx context.Context, name string, degraded *atomic.Bool, fn func(context.Context) error) func() error {
	return func() error {
		tctx, cancel := context.WithTimeout(ctx, s.taskTimeout)
		defer cancel()

		if err := fn(tctx); err != nil {
			degraded.Store(true)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.WarnContext(ctx, "report section failed", "section", name, "error", err)
		}
		return nil
	}
}
