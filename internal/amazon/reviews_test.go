package amazon

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const reviewsPageHTML = `<html><body>
<div data-hook="review">
  <i data-hook="review-star-rating"><span>1.0 out of 5 stars</span></i>
  <span data-hook="review-body">Broke after two days.</span>
  <span data-hook="review-date">Reviewed on 1 August 2026</span>
</div>
<div data-hook="review">
  <i data-hook="review-star-rating"><span>2.0 out of 5 stars</span></i>
  <span data-hook="review-body">Battery barely lasts an hour.</span>
  <span data-hook="review-date">Reviewed on 28 July 2026</span>
</div>
<div data-hook="review">
  <i data-hook="review-star-rating"><span>3.0 out of 5 stars</span></i>
  <span data-hook="review-body">Mediocre build quality.</span>
  <span data-hook="review-date">Reviewed on 20 July 2026</span>
</div>
</body></html>`

// Middle container has no star-rating element.
const reviewsPageMalformedHTML = `<html><body>
<div data-hook="review">
  <i data-hook="review-star-rating"><span>1.0 out of 5 stars</span></i>
  <span data-hook="review-body">First.</span>
  <span data-hook="review-date">Reviewed on 1 August 2026</span>
</div>
<div data-hook="review">
  <span data-hook="review-body">No star element here.</span>
  <span data-hook="review-date">Reviewed on 28 July 2026</span>
</div>
<div data-hook="review">
  <i data-hook="review-star-rating"><span>2.0 out of 5 stars</span></i>
  <span data-hook="review-body">Third.</span>
  <span data-hook="review-date">Reviewed on 20 July 2026</span>
</div>
</body></html>`

func TestFetchCriticalReviews_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/product-reviews/B0TEST1234/", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "critical", q.Get("filterByStar"))
		assert.Equal(t, "recent", q.Get("sortBy"))
		assert.Equal(t, "1", q.Get("pageNumber"))
		assert.Equal(t, "all_reviews", q.Get("reviewerType"))
		_, _ = w.Write([]byte(reviewsPageHTML))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 5*time.Second)
	reviews := c.FetchCriticalReviews(context.Background(), "B0TEST1234", "com.au")

	require.Len(t, reviews, 3)
	assert.Equal(t, 1.0, reviews[0].Star)
	assert.Equal(t, "Broke after two days.", reviews[0].Review)
	assert.Equal(t, "Reviewed on 1 August 2026", reviews[0].Date)
	// Page presentation order, not re-sorted.
	assert.Equal(t, 2.0, reviews[1].Star)
	assert.Equal(t, 3.0, reviews[2].Star)
}

func TestFetchCriticalReviews_MalformedContainerSkipped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(reviewsPageMalformedHTML))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 5*time.Second)
	reviews := c.FetchCriticalReviews(context.Background(), "B0TEST1234", "com")

	require.Len(t, reviews, 2)
	assert.Equal(t, "First.", reviews[0].Review)
	assert.Equal(t, "Third.", reviews[1].Review)
}

func TestFetchCriticalReviews_UnparsableStarSkipped(t *testing.T) {
	page := `<html><body>
<div data-hook="review">
  <i data-hook="review-star-rating"><span>garbage stars</span></i>
  <span data-hook="review-body">Bad star token.</span>
  <span data-hook="review-date">Reviewed on 1 August 2026</span>
</div>
<div data-hook="review">
  <i data-hook="review-star-rating"><span>2.0 out of 5 stars</span></i>
  <span data-hook="review-body">Fine.</span>
  <span data-hook="review-date">Reviewed on 28 July 2026</span>
</div>
</body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 5*time.Second)
	reviews := c.FetchCriticalReviews(context.Background(), "B0TEST1234", "com")

	require.Len(t, reviews, 1)
	assert.Equal(t, "Fine.", reviews[0].Review)
}

func TestFetchCriticalReviews_HTTPErrorReturnsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 5*time.Second)
	reviews := c.FetchCriticalReviews(context.Background(), "B0TEST1234", "com")

	assert.NotNil(t, reviews)
	assert.Empty(t, reviews)
}

func TestFetchCriticalReviews_TimeoutReturnsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 20*time.Millisecond)
	reviews := c.FetchCriticalReviews(context.Background(), "B0TEST1234", "com")

	assert.NotNil(t, reviews)
	assert.Empty(t, reviews)
}

func TestFetchCriticalReviews_NoContainers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><p>No critical reviews yet.</p></body></html>`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 5*time.Second)
	reviews := c.FetchCriticalReviews(context.Background(), "B0TEST1234", "com")

	assert.Empty(t, reviews)
}
