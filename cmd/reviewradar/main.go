package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"

	"github.com/ecomlens/reviewradar/internal/amazon"
	"github.com/ecomlens/reviewradar/internal/api"
	"github.com/ecomlens/reviewradar/internal/headers"
	"github.com/ecomlens/reviewradar/internal/publisher"
	"github.com/ecomlens/reviewradar/internal/rate"
	"github.com/ecomlens/reviewradar/internal/scrape"
	"github.com/ecomlens/reviewradar/internal/store"
	"github.com/ecomlens/reviewradar/pkg/config"
	"github.com/ecomlens/reviewradar/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Load configuration ---
	cfg := config.Load()

	logger.Init(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	defer logger.Sync()
	logg := logger.S()
	logg.Info("starting [reviewradar]...")

	// --- Result cache (optional) ---
	var cache store.Cache
	if cfg.RedisAddr != "" {
		rc, err := store.NewRedis(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, cfg.CacheTTL, logger.L())
		if err != nil {
			logg.Fatalw("failed to init result cache", "error", err)
		}
		cache = rc
		defer rc.Close() //nolint:errcheck
		logg.Infow("result cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.CacheTTL)
	}

	// --- Batch event publisher (optional) ---
	var events *publisher.Publisher
	if cfg.NATSURL != "" {
		nc, err := nats.Connect(cfg.NATSURL)
		if err != nil {
			logg.Fatalw("failed to connect to NATS", "error", err)
		}
		defer nc.Drain() //nolint:errcheck

		events, err = publisher.New(nc, cfg.EventSubject, cfg.ServiceName, logger.L())
		if err != nil {
			logg.Fatalw("failed to init publisher", "error", err)
		}
		logg.Infow("batch events enabled", "nats", cfg.NATSURL, "subject", cfg.EventSubject)
	}

	// --- Rate limiter ---
	rateMgr := rate.NewManager(rate.Config{
		RequestsPerSecond: cfg.RateLimitRPS,
		Burst:             cfg.RateLimitBurst,
	})

	// --- Marketplace client + orchestrator (core pipeline) ---
	synth := headers.New(nil)
	client := amazon.NewClient(logger.L(), cfg.FetchTimeout, synth, rateMgr)

	orch := scrape.New(logger.L(), client, cache, events, nil, scrape.Options{
		StaggerMin:     cfg.StaggerMin,
		StaggerMax:     cfg.StaggerMax,
		MaxConcurrency: cfg.MaxConcurrency,
	})

	// --- HTTP API ---
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if fe, ok := err.(*fiber.Error); ok {
				code = fe.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	h := api.NewScrapeHandler(logger.L(), orch, cfg.DefaultLocale)
	api.RegisterRoutes(app, h, cache)

	go func() {
		logg.Infof("HTTP API listening on :%d", cfg.Port)
		if err := app.Listen(fmt.Sprintf(":%d", cfg.Port)); err != nil {
			logg.Fatalw("fiber.listen_failed", "error", err)
		}
	}()

	logg.Infow("[reviewradar] running",
		"default_locale", cfg.DefaultLocale,
		"fetch_timeout", cfg.FetchTimeout,
		"max_concurrency", cfg.MaxConcurrency)

	<-ctx.Done()
	stop()
	logg.Info("shutting down [reviewradar]...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	app.ShutdownWithContext(shutdownCtx) //nolint:errcheck
}
