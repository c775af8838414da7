package amazon

import (
	"context"
	"fmt"
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
	ratingSelector      = "#acrPopover span.a-icon-alt"
	reviewCountSelector = "#acrCustomerReviewText"

	// blockErrMsg is the error recorded when a success-status response turns
	// out to be a bot wall. The origin answers 200 for these pages, so status
	// checks alone cannot catch them.
	blockErrMsg   = "CAPTCHA or block page detected"
	timeoutErrMsg = "Request timed out"
)

// blockMarkers are case-insensitive body substrings identifying a soft block.
var blockMarkers = []string{
	"captcha",
	"api-services-support@amazon.com",
}

// FetchProduct retrieves one product page and extracts its rating and review
// count. Every failure is folded into the returned record's Err field; the
// function never returns a Go error, so the fan-in step treats all outcomes
// uniformly.
func (c *Client) FetchProduct(ctx context.Context, asin, locale string) model.ProductRecord {
	endpoint := c.siteRoot(locale) + "/dp/" + url.PathEscape(asin) + "?th=1&psc=1"
	rec := model.ProductRecord{ASIN: asin, Locale: locale, SourceURL: endpoint}

	start := time.Now()
	status, body, err := c.fetchPage(ctx, endpoint)
	if err != nil {
		if isTimeout(err) {
			c.logger.Error("amazon.product_timeout", zap.String("asin", asin), zap.String("locale", locale))
			metrics.ObservePageFetch("product", "timeout", start)
			rec.Err = timeoutErrMsg
			return rec
		}
		c.logger.Error("amazon.product_fetch_failed",
			zap.String("asin", asin),
			zap.String("locale", locale),
			zap.Error(err))
		metrics.ObservePageFetch("product", "error", start)
		rec.Err = err.Error()
		return rec
	}

	if status < 200 || status >= 300 {
		// Body is kept for diagnostics only, never handed back to callers.
		c.logger.Error("amazon.product_http_error",
			zap.String("asin", asin),
			zap.Int("status", status),
			zap.String("body", truncate(body, 512)))
		metrics.ObservePageFetch("product", "http_error", start)
		rec.Err = fmt.Sprintf("HTTP %d", status)
		return rec
	}

	if IsBlockPage(body) {
		c.logger.Warn("amazon.block_page_detected",
			zap.String("asin", asin),
			zap.String("locale", locale))
		metrics.BlockPagesTotal.Inc()
		metrics.ObservePageFetch("product", "blocked", start)
		rec.Err = blockErrMsg
		return rec
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		c.logger.Error("amazon.product_parse_failed", zap.String("asin", asin), zap.Error(err))
		metrics.ObservePageFetch("product", "error", start)
		rec.Err = err.Error()
		return rec
	}

	rec.Rating = parseRating(doc)
	rec.ReviewCount = parseReviewCount(doc)

	metrics.ObservePageFetch("product", "ok", start)
	c.logger.Debug("amazon.product_fetched",
		zap.String("asin", asin),
		zap.Int("status", status),
		zap.Duration("elapsed", time.Since(start)))
	return rec
}

// IsBlockPage reports whether an HTTP-successful body is a bot-wall page.
func IsBlockPage(body string) bool {
	lower := strings.ToLower(body)
	for _, marker := range blockMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// parseRating extracts the average star rating from the rating badge, e.g.
// "4.3 out of 5 stars" -> 4.3. A missing badge or unparsable token yields
// nil; products without ratings are expected.
func parseRating(doc *goquery.Document) *float64 {
	sel := doc.Find(ratingSelector).First()
	if sel.Length() == 0 {
		return nil
	}
	fields := strings.Fields(sel.Text())
	if len(fields) == 0 {
		return nil
	}
	f, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return nil
	}
	return &f
}

// parseReviewCount concatenates the digits of the review-count element, e.g.
// "1,234 ratings" -> 1234. Missing element or no digits yields nil.
func parseReviewCount(doc *goquery.Document) *int {
	sel := doc.Find(reviewCountSelector).First()
	if sel.Length() == 0 {
		return nil
	}
	var digits strings.Builder
	for _, r := range sel.Text() {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return nil
	}
	n, err := strconv.Atoi(digits.String())
	if err != nil {
		return nil
	}
	return &n
}
