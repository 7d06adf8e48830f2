package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"spendtrail/internal/audit/store/postgres"
	"spendtrail/internal/ingest"
	"spendtrail/internal/platform/config"
	"spendtrail/internal/platform/httpserver"
	"spendtrail/internal/platform/kafka"
	"spendtrail/internal/platform/kafka/consumer"
	"spendtrail/internal/platform/logger"
	"spendtrail/internal/platform/metrics"
	platformredis "spendtrail/internal/platform/redis"
	httptransport "spendtrail/internal/transport/http"
)

// main wires the audit ingestor: a consumer group over every domain topic,
// materializing audit records and diverting unprocessable messages to the
// redis dead-letter list. A small HTTP server exposes health and metrics.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.DatabaseURL == "" || cfg.RedisURL == "" {
		log.Error("DATABASE_URL and REDIS_URL are required")
		return
	}

	store, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("connect audit store", "error", err)
		return
	}
	defer store.Close()
	if err := store.Migrate(ctx); err != nil {
		log.Error("migrate audit store", "error", err)
		return
	}

	redisClient, err := platformredis.New(ctx, cfg.RedisURL)
	if err != nil {
		log.Error("connect redis", "error", err)
		return
	}
	defer redisClient.Close()

	if err := kafka.EnsureTopics(ctx, cfg.Brokers, cfg.TopicPartitions, cfg.Topics.All()...); err != nil {
		log.Error("ensure topics", "error", err)
		return
	}

	deadLetters := ingest.NewRedisDeadLetters(redisClient, cfg.DeadLetterKey)
	ingestor := ingest.New(store, deadLetters, log, ingest.WithMetrics(metrics.NewIngest()))

	// Every domain topic feeds the same audit projection; the router keeps
	// room for topic-specific handling later.
	router := consumer.NewRouter(log, ingestor)

	group, err := consumer.New(cfg.Brokers, cfg.ConsumerGroup, cfg.Topics.All(), router, log)
	if err != nil {
		log.Error("create consumer", "error", err)
		return
	}

	srv := httpserver.New(cfg.Addr, httptransport.NewRouter(
		httptransport.NewAuditHandler(store),
		nil,
		httptransport.NewDeadLetterHandler(deadLetters),
	))

	log.Info("starting spendtrail ingestor",
		"group", cfg.ConsumerGroup,
		"topics", cfg.Topics.All(),
		"addr", cfg.Addr,
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return group.Run(gctx)
	})
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("ingestor exited", "error", err)
	}
}
