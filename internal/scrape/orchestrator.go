package scrape

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ecomlens/reviewradar/internal/metrics"
	"github.com/ecomlens/reviewradar/internal/publisher"
	"github.com/ecomlens/reviewradar/internal/store"
	"github.com/ecomlens/reviewradar/pkg/model"
)

// Fetcher is the paired fetch capability the orchestrator fans out over.
// Implementations must contain their own failures: FetchProduct reports
// errors through the record's Err field and FetchCriticalReviews degrades to
// an empty slice.
type Fetcher interface {
	FetchProduct(ctx context.Context, asin, locale string) model.ProductRecord
	FetchCriticalReviews(ctx context.Context, asin, locale string) []model.ReviewRecord
}

// Options tune batch scheduling behaviour.
type Options struct {
	StaggerMin     time.Duration // lower bound of the inter-schedule delay
	StaggerMax     time.Duration // upper bound of the inter-schedule delay
	MaxConcurrency int           // max in-flight fetch tasks; 0 = unlimited
}

// Orchestrator fans out one product fetch and one review fetch per ASIN,
// fans the outcomes back in keyed by ASIN, and reconciles partial failures:
// a failed product fetch drops the ASIN, a failed review fetch degrades to
// zero negative reviews. One ASIN's failure never blocks or corrupts
// another's result, and no fetch is ever retried.
type Orchestrator struct {
	logger  *zap.Logger
	fetcher Fetcher
	cache   store.Cache          // optional; nil disables caching
	events  *publisher.Publisher // nil-safe
	opts    Options

	mu  sync.Mutex
	rng *rand.Rand
}

// New creates an Orchestrator. rng drives the stagger delays and is
// injectable for deterministic tests; nil gets a time-seeded source.
func New(logger *zap.Logger, fetcher Fetcher, cache store.Cache, events *publisher.Publisher, rng *rand.Rand, opts Options) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Orchestrator{
		logger:  logger,
		fetcher: fetcher,
		cache:   cache,
		events:  events,
		opts:    opts,
		rng:     rng,
	}
}

// slot collects both fetch outcomes for a single ASIN. Slots are exclusively
// owned: the product goroutine writes product, the review goroutine writes
// reviews, and nothing reads either until the WaitGroup settles. Pairing is
// by slot identity, never by index arithmetic across a flat task list.
type slot struct {
	asin    string
	cached  *model.CombinedResult
	product model.ProductRecord
	reviews []model.ReviewRecord
}

// Run scrapes a batch. Tasks are scheduled in input order with a random
// stagger between ASINs; they complete in any order, and output order is
// restored from the input-ordered slot list. Run always returns a report —
// even a batch where every ASIN failed yields status "success" with an empty
// result list.
func (o *Orchestrator) Run(ctx context.Context, asins []string, locale string) *model.BatchReport {
	start := time.Now()
	batchID := uuid.New()

	o.logger.Info("scrape.batch_started",
		zap.String("batch_id", batchID.String()),
		zap.Int("asins", len(asins)),
		zap.String("locale", locale))

	var sem chan struct{}
	if o.opts.MaxConcurrency > 0 {
		sem = make(chan struct{}, o.opts.MaxConcurrency)
	}

	slots := make([]*slot, len(asins))
	var wg sync.WaitGroup
	for i, asin := range asins {
		s := &slot{asin: asin}
		slots[i] = s

		if o.cache != nil {
			if res, ok := o.cache.GetResult(ctx, locale, asin); ok {
				s.cached = res
				continue
			}
		}

		wg.Add(2)
		go o.runProduct(ctx, &wg, sem, s, locale)
		go o.runReviews(ctx, &wg, sem, s, locale)

		// Load shaping, not correctness: spread the outbound burst.
		if i < len(asins)-1 {
			o.stagger(ctx)
		}
	}
	wg.Wait()

	results := o.reconcile(ctx, slots, locale)
	report := BuildReport(batchID, results, start)

	metrics.ObserveBatch(report.Status, len(asins), start)
	o.logger.Info("scrape.batch_completed",
		zap.String("batch_id", batchID.String()),
		zap.Int("requested", len(asins)),
		zap.Int("succeeded", len(results)),
		zap.Float64("duration_seconds", report.DurationSeconds))

	if err := o.events.PublishBatchCompleted(ctx, model.BatchEvent{
		BatchID:         batchID,
		Locale:          locale,
		Requested:       len(asins),
		Succeeded:       len(results),
		DurationSeconds: report.DurationSeconds,
		Timestamp:       report.Timestamp,
	}); err != nil {
		o.logger.Warn("scrape.event_publish_failed",
			zap.String("batch_id", batchID.String()),
			zap.Error(err))
	}

	return report
}

// runProduct executes one product fetch task. A panic escaping the fetcher is
// converted into a record-level error so the ASIN is dropped like any other
// product-side failure.
func (o *Orchestrator) runProduct(ctx context.Context, wg *sync.WaitGroup, sem chan struct{}, s *slot, locale string) {
	defer wg.Done()
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("scrape.product_task_panicked",
				zap.String("asin", s.asin),
				zap.Any("panic", r))
			s.product = model.ProductRecord{ASIN: s.asin, Locale: locale, Err: fmt.Sprintf("internal: %v", r)}
		}
	}()

	if sem != nil {
		sem <- struct{}{}
		defer func() { <-sem }()
	}
	s.product = o.fetcher.FetchProduct(ctx, s.asin, locale)
}

// runReviews executes one review fetch task. Panics degrade to an empty
// review list — a missing review list still carries useful product data.
func (o *Orchestrator) runReviews(ctx context.Context, wg *sync.WaitGroup, sem chan struct{}, s *slot, locale string) {
	defer wg.Done()
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("scrape.review_task_panicked",
				zap.String("asin", s.asin),
				zap.Any("panic", r))
			s.reviews = nil
		}
	}()

	if sem != nil {
		sem <- struct{}{}
		defer func() { <-sem }()
	}
	s.reviews = o.fetcher.FetchCriticalReviews(ctx, s.asin, locale)
}

// reconcile pairs each slot's outcomes in input order. ASINs whose product
// fetch failed are dropped entirely — never emitted with null fields.
func (o *Orchestrator) reconcile(ctx context.Context, slots []*slot, locale string) []model.CombinedResult {
	results := make([]model.CombinedResult, 0, len(slots))
	for _, s := range slots {
		if s.cached != nil {
			results = append(results, *s.cached)
			continue
		}

		if s.product.Err != "" {
			o.logger.Warn("scrape.asin_skipped",
				zap.String("asin", s.asin),
				zap.String("error", s.product.Err))
			continue
		}

		reviews := s.reviews
		if reviews == nil {
			reviews = []model.ReviewRecord{}
		}
		res := model.CombinedResult{
			ProductRecord:       s.product,
			NegativeReviews:     reviews,
			NegativeReviewCount: len(reviews),
		}
		results = append(results, res)

		if o.cache != nil {
			if err := o.cache.SetResult(ctx, locale, s.asin, res); err != nil {
				o.logger.Debug("scrape.cache_store_failed",
					zap.String("asin", s.asin),
					zap.Error(err))
			}
		}
	}
	return results
}

// stagger sleeps for a uniform random delay between the configured bounds.
func (o *Orchestrator) stagger(ctx context.Context) {
	min, max := o.opts.StaggerMin, o.opts.StaggerMax
	if max <= min {
		if min <= 0 {
			return
		}
		max = min
	}

	o.mu.Lock()
	delay := min + time.Duration(o.rng.Int63n(int64(max-min)+1))
	o.mu.Unlock()

	select {
	case <-time.After(delay):
	case <-ctx.Done():
	}
}
