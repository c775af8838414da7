package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ecomlens/reviewradar/pkg/model"
)

func newTestCache(t *testing.T, ttl time.Duration) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return &RedisCache{redis: rdb, ttl: ttl, logger: zap.NewNop()}, mr
}

func sampleResult() model.CombinedResult {
	r := 4.2
	n := 321
	return model.CombinedResult{
		ProductRecord: model.ProductRecord{
			ASIN:        "B0TEST1234",
			Locale:      "com.au",
			SourceURL:   "https://www.amazon.com.au/dp/B0TEST1234?th=1&psc=1",
			Rating:      &r,
			ReviewCount: &n,
		},
		NegativeReviews: []model.ReviewRecord{
			{Star: 1, Review: "Stopped working.", Date: "1 Aug 2026"},
		},
		NegativeReviewCount: 1,
	}
}

func TestSetAndGetResult(t *testing.T) {
	ctx := context.Background()
	cache, mr := newTestCache(t, time.Minute)
	defer mr.Close()

	want := sampleResult()
	require.NoError(t, cache.SetResult(ctx, "com.au", "B0TEST1234", want))

	got, ok := cache.GetResult(ctx, "com.au", "B0TEST1234")
	require.True(t, ok)
	assert.Equal(t, want.ASIN, got.ASIN)
	require.NotNil(t, got.Rating)
	assert.InDelta(t, 4.2, *got.Rating, 0.001)
	assert.Equal(t, want.NegativeReviewCount, got.NegativeReviewCount)
	assert.Len(t, got.NegativeReviews, got.NegativeReviewCount)
}

func TestGetResult_Miss(t *testing.T) {
	cache, mr := newTestCache(t, time.Minute)
	defer mr.Close()

	got, ok := cache.GetResult(context.Background(), "com", "UNKNOWN")
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestGetResult_ExpiresWithTTL(t *testing.T) {
	ctx := context.Background()
	cache, mr := newTestCache(t, time.Minute)
	defer mr.Close()

	require.NoError(t, cache.SetResult(ctx, "com", "B0TEST1234", sampleResult()))

	mr.FastForward(2 * time.Minute)

	_, ok := cache.GetResult(ctx, "com", "B0TEST1234")
	assert.False(t, ok)
}

func TestGetResult_LocaleScoped(t *testing.T) {
	ctx := context.Background()
	cache, mr := newTestCache(t, time.Minute)
	defer mr.Close()

	require.NoError(t, cache.SetResult(ctx, "com.au", "B0TEST1234", sampleResult()))

	_, ok := cache.GetResult(ctx, "de", "B0TEST1234")
	assert.False(t, ok, "same ASIN under another locale is a distinct entry")
}

func TestGetResult_CorruptEntryTreatedAsMiss(t *testing.T) {
	ctx := context.Background()
	cache, mr := newTestCache(t, time.Minute)
	defer mr.Close()

	require.NoError(t, mr.Set(resultKey("com", "B0TEST1234"), "not json"))

	got, ok := cache.GetResult(ctx, "com", "B0TEST1234")
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestHealthCheck(t *testing.T) {
	cache, mr := newTestCache(t, time.Minute)

	assert.NoError(t, cache.HealthCheck(context.Background()))

	mr.Close()
	assert.Error(t, cache.HealthCheck(context.Background()))
}
