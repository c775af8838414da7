package config

import (
	"time"

	"github.com/joho/godotenv"
)

// Config holds the core runtime configuration for a service instance.
// It supports environment-based initialization, with sensible defaults.
type Config struct {
	ServiceName string // e.g. "reviewradar"
	Env         string // e.g. "dev", "uat", "prod"
	LogLevel    string // "debug", "info", etc.
	Port        int    // service HTTP port

	// Marketplace fetch behaviour
	DefaultLocale  string        // marketplace domain suffix, e.g. "com.au"
	FetchTimeout   time.Duration // per-request timeout inside each fetcher
	StaggerMin     time.Duration // lower bound of the inter-schedule stagger delay
	StaggerMax     time.Duration // upper bound of the inter-schedule stagger delay
	MaxConcurrency int           // max in-flight fetches per batch; 0 = unlimited
	MaxReviewPages int           // review pages fetched per identifier (first page only for now)

	// Outbound rate limiting (token bucket, per marketplace host)
	RateLimitRPS   int
	RateLimitBurst int

	// Result cache (Redis); disabled when RedisAddr is empty
	RedisAddr string
	RedisDB   int
	RedisPass string
	CacheTTL  time.Duration

	// Batch event publishing (NATS); disabled when NATSURL is empty
	NATSURL      string
	EventSubject string
}

// Load loads configuration from environment variables and .env file if present.
func Load() *Config {
	// load .env silently (no error if missing)
	_ = godotenv.Load()

	return &Config{
		ServiceName: GetEnv("SERVICE_NAME", "reviewradar"),
		Env:         GetEnv("ENV", "dev"),
		LogLevel:    GetEnv("LOG_LEVEL", "info"),
		Port:        GetEnvInt("PORT", 8000),

		DefaultLocale:  GetEnv("DEFAULT_LOCALE", "com.au"),
		FetchTimeout:   GetEnvDuration("FETCH_TIMEOUT", 15*time.Second),
		StaggerMin:     GetEnvDuration("STAGGER_MIN", 200*time.Millisecond),
		StaggerMax:     GetEnvDuration("STAGGER_MAX", 500*time.Millisecond),
		MaxConcurrency: GetEnvInt("MAX_CONCURRENCY", 0),
		MaxReviewPages: GetEnvInt("MAX_REVIEW_PAGES", 1),

		RateLimitRPS:   GetEnvInt("RATE_LIMIT_RPS", 5),
		RateLimitBurst: GetEnvInt("RATE_LIMIT_BURST", 10),

		RedisAddr: GetEnv("REDIS_ADDR", ""),
		RedisDB:   GetEnvInt("REDIS_DB", 0),
		RedisPass: GetEnv("REDIS_PASS", ""),
		CacheTTL:  GetEnvDuration("CACHE_TTL", 15*time.Minute),

		NATSURL:      GetEnv("NATS_URL", ""),
		EventSubject: GetEnv("EVENT_SUBJECT", "evt.scrape.batch.v1"),
	}
}
