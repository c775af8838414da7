package amazon

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/ecomlens/reviewradar/internal/metrics"
	"github.com/ecomlens/reviewradar/pkg/model"
)

const (
	reviewBoxSelector  = `div[data-hook="review"]`
	reviewStarSelector = `[data-hook="review-star-rating"]`
	reviewBodySelector = `[data-hook="review-body"]`
	reviewDateSelector = `[data-hook="review-date"]`
)

// FetchCriticalReviews retrieves the first page of critical (1-3 star)
// reviews sorted most-recent-first and extracts one record per review
// container, preserving page order.
//
// Any failure — non-2xx status, transport error, unparsable page — yields an
// empty slice rather than an error: callers cannot distinguish "no negative
// reviews exist" from "review fetch failed". That information loss is a
// deliberate simplification; a missing review list degrades gracefully to
// zero negative reviews and must never drop the ASIN from the batch.
func (c *Client) FetchCriticalReviews(ctx context.Context, asin, locale string) []model.ReviewRecord {
	params := url.Values{}
	params.Set("ie", "UTF8")
	params.Set("reviewerType", "all_reviews")
	params.Set("filterByStar", "critical")
	params.Set("pageNumber", "1")
	params.Set("sortBy", "recent")
	endpoint := c.siteRoot(locale) + "/product-reviews/" + url.PathEscape(asin) + "/?" + params.Encode()

	reviews := []model.ReviewRecord{}

	start := time.Now()
	status, body, err := c.fetchPage(ctx, endpoint)
	if err != nil {
		outcome := "error"
		if isTimeout(err) {
			outcome = "timeout"
		}
		c.logger.Error("amazon.reviews_fetch_failed",
			zap.String("asin", asin),
			zap.String("locale", locale),
			zap.Error(err))
		metrics.ObservePageFetch("reviews", outcome, start)
		return reviews
	}

	if status < 200 || status >= 300 {
		c.logger.Warn("amazon.reviews_http_error",
			zap.String("asin", asin),
			zap.Int("status", status))
		metrics.ObservePageFetch("reviews", "http_error", start)
		return reviews
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		c.logger.Error("amazon.reviews_parse_failed", zap.String("asin", asin), zap.Error(err))
		metrics.ObservePageFetch("reviews", "error", start)
		return reviews
	}

	doc.Find(reviewBoxSelector).Each(func(_ int, box *goquery.Selection) {
		rec, ok := extractReview(box)
		if !ok {
			// One malformed container must not abort the rest of the page.
			return
		}
		reviews = append(reviews, rec)
	})

	metrics.ObservePageFetch("reviews", "ok", start)
	c.logger.Debug("amazon.reviews_fetched",
		zap.String("asin", asin),
		zap.Int("count", len(reviews)),
		zap.Duration("elapsed", time.Since(start)))
	return reviews
}

// extractReview pulls star rating, body text and date out of one review
// container. ok is false when any required element is missing or the star
// token does not parse.
func extractReview(box *goquery.Selection) (model.ReviewRecord, bool) {
	starSel := box.Find(reviewStarSelector).First()
	bodySel := box.Find(reviewBodySelector).First()
	dateSel := box.Find(reviewDateSelector).First()
	if starSel.Length() == 0 || bodySel.Length() == 0 || dateSel.Length() == 0 {
		return model.ReviewRecord{}, false
	}

	fields := strings.Fields(starSel.Text())
	if len(fields) == 0 {
		return model.ReviewRecord{}, false
	}
	star, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return model.ReviewRecord{}, false
	}

	return model.ReviewRecord{
		Star:   star,
		Review: strings.TrimSpace(bodySel.Text()),
		Date:   strings.TrimSpace(dateSel.Text()),
	}, true
}
