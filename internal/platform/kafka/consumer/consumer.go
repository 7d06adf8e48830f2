// Package consumer runs a Kafka consumer group and hands messages to a
// handler one partition at a time. Partitions are processed concurrently,
// records within a partition strictly in delivery order, which is what keeps
// a single user's audit history replayable in order.
package consumer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
	"golang.org/x/sync/errgroup"
)

// Message is one delivered record, decoupled from the client library so
// handlers stay testable without a broker.
type Message struct {
	Topic     string
	Partition int32
	Offset    int64
	Key       []byte
	Value     []byte
	// Timestamp is the broker delivery timestamp, not the event time carried
	// inside the payload.
	Timestamp time.Time
}

// Handler processes one message. Returning nil acknowledges it; returning an
// error stops the consumer without committing, so the broker redelivers
// (at-least-once).
type Handler interface {
	Handle(ctx context.Context, msg *Message) error
}

// Consumer polls a consumer group and dispatches to a Handler. Offsets are
// committed only after the handler succeeds.
type Consumer struct {
	client  *kgo.Client
	handler Handler
	logger  *slog.Logger
}

// New joins the consumer group for the given topics. Auto-commit is disabled;
// the Run loop commits explicitly.
func New(brokers []string, group string, topics []string, handler Handler, logger *slog.Logger) (*Consumer, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ConsumerGroup(group),
		kgo.ConsumeTopics(topics...),
		kgo.DisableAutoCommit(),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka consumer: %w", err)
	}
	return &Consumer{client: client, handler: handler, logger: logger}, nil
}

// Run polls until the context is canceled or a handler reports a hard
// failure. On failure the already-handled prefix of each partition is still
// committed; the failed record and everything after it will be redelivered.
// An in-flight message always finishes before shutdown completes.
func (c *Consumer) Run(ctx context.Context) error {
	defer c.client.Close()

	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			c.logger.Error("fetch error",
				"topic", topic,
				"partition", partition,
				"error", err,
			)
		})

		var (
			mu      sync.Mutex
			handled []*kgo.Record
		)
		// Detached from cancellation so the current message finishes cleanly
		// on shutdown; the poll loop observes ctx between polls.
		handleCtx := context.WithoutCancel(ctx)

		g := new(errgroup.Group)
		fetches.EachPartition(func(ftp kgo.FetchTopicPartition) {
			records := ftp.Records
			g.Go(func() error {
				for _, rec := range records {
					msg := &Message{
						Topic:     rec.Topic,
						Partition: rec.Partition,
						Offset:    rec.Offset,
						Key:       rec.Key,
						Value:     rec.Value,
						Timestamp: rec.Timestamp,
					}
					if err := c.handler.Handle(handleCtx, msg); err != nil {
						return fmt.Errorf("handle %s[%d]@%d: %w",
							rec.Topic, rec.Partition, rec.Offset, err)
					}
					mu.Lock()
					handled = append(handled, rec)
					mu.Unlock()
				}
				return nil
			})
		})
		handleErr := g.Wait()

		if len(handled) > 0 {
			if err := c.client.CommitRecords(handleCtx, handled...); err != nil {
				c.logger.Error("offset commit failed", "error", err)
			}
		}
		if handleErr != nil {
			return handleErr
		}
	}
}
