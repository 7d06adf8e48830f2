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
	"spendtrail/internal/expense"
	"spendtrail/internal/ingest"
	"spendtrail/internal/platform/config"
	"spendtrail/internal/platform/httpserver"
	"spendtrail/internal/platform/kafka"
	"spendtrail/internal/platform/logger"
	"spendtrail/internal/platform/metrics"
	platformredis "spendtrail/internal/platform/redis"
	"spendtrail/internal/producer"
	httptransport "spendtrail/internal/transport/http"
)

// main wires the producer-side service: the domain REST surface that emits
// change events, and the audit query API. Business logic lives in internal
// services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.DatabaseURL == "" {
		log.Error("DATABASE_URL is required")
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

	if err := kafka.EnsureTopics(ctx, cfg.Brokers, cfg.TopicPartitions, cfg.Topics.All()...); err != nil {
		log.Error("ensure topics", "error", err)
		return
	}
	transport, err := kafka.NewProducer(ctx, cfg.Brokers)
	if err != nil {
		log.Error("connect kafka", "error", err)
		return
	}
	defer transport.Close()

	producerMetrics := metrics.NewProducer()
	expenseProducer := producer.New(
		producer.Expense(cfg.Topics.Expense),
		transport,
		producer.WithTimeout(cfg.PublishTimeout),
		producer.WithLogger(log),
		producer.WithMetrics(producerMetrics),
	)
	expenseService := expense.NewService(expense.NewInMemoryStore(), expenseProducer, cfg.Defaults)

	var deadLetterHandler *httptransport.DeadLetterHandler
	if cfg.RedisURL != "" {
		redisClient, err := platformredis.New(ctx, cfg.RedisURL)
		if err != nil {
			log.Error("connect redis", "error", err)
			return
		}
		defer redisClient.Close()
		deadLetterHandler = httptransport.NewDeadLetterHandler(
			ingest.NewRedisDeadLetters(redisClient, cfg.DeadLetterKey))
	}

	router := httptransport.NewRouter(
		httptransport.NewAuditHandler(store),
		httptransport.NewExpenseHandler(expenseService),
		deadLetterHandler,
	)
	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting spendtrail server", "addr", cfg.Addr, "brokers", cfg.Brokers)

	g, gctx := errgroup.WithContext(ctx)
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

	if err := g.Wait(); err != nil {
		log.Error("server exited", "error", err)
	}
}
