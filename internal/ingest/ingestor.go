// Package ingest consumes domain-change events and materializes immutable
// audit records. Delivery is at-least-once, so the store write is idempotent
// on the event's natural key; malformed messages go to the dead-letter path
// instead of blocking their partition.
package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"spendtrail/internal/audit"
	"spendtrail/internal/event"
	"spendtrail/internal/platform/kafka/consumer"
	"spendtrail/internal/platform/metrics"
)

// DeadLetterSink preserves messages that cannot be processed normally.
type DeadLetterSink interface {
	Divert(ctx context.Context, msg *consumer.Message, cause error) error
}

// Ingestor maps envelopes 1:1 onto audit records. It implements
// consumer.Handler.
type Ingestor struct {
	store       audit.Store
	deadLetters DeadLetterSink
	logger      *slog.Logger
	metrics     *metrics.Ingest
	tracer      trace.Tracer
}

// Option configures an Ingestor.
type Option func(*Ingestor)

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Ingest) Option {
	return func(i *Ingestor) { i.metrics = m }
}

// New builds an ingestor writing through the given store.
func New(store audit.Store, deadLetters DeadLetterSink, logger *slog.Logger, opts ...Option) *Ingestor {
	ing := &Ingestor{
		store:       store,
		deadLetters: deadLetters,
		logger:      logger,
		tracer:      otel.Tracer("spendtrail/ingest"),
	}
	for _, opt := range opts {
		opt(ing)
	}
	return ing
}

// Handle processes one delivered message. A nil return acknowledges it.
//
// Malformed or invalid payloads are diverted to the dead-letter sink and then
// acknowledged, so one bad message never blocks its partition. Store write
// failures return an error without acknowledging: the broker redelivers and
// the idempotent append absorbs any duplicates that causes.
func (i *Ingestor) Handle(ctx context.Context, msg *consumer.Message) error {
	ctx, span := i.tracer.Start(ctx, "ingest.Handle",
		trace.WithAttributes(
			attribute.String("messaging.source", msg.Topic),
			attribute.Int("messaging.partition", int(msg.Partition)),
		))
	defer span.End()

	env, err := event.Decode(msg.Value)
	if err != nil {
		return i.divert(ctx, msg, err)
	}
	if err := event.ValidateBase(env); err != nil {
		return i.divert(ctx, msg, err)
	}

	rec := audit.FromEnvelope(env)
	inserted, err := i.store.Append(ctx, rec)
	if err != nil {
		if i.metrics != nil {
			i.metrics.StoreErrors.Inc()
		}
		return fmt.Errorf("append audit record: %w", err)
	}

	if !inserted {
		if i.metrics != nil {
			i.metrics.Duplicates.Inc()
		}
		i.logger.DebugContext(ctx, "duplicate delivery absorbed",
			"event_type", rec.EventType,
			"entity_id", rec.EntityID,
			"user_id", rec.UserID,
		)
		return nil
	}

	if i.metrics != nil {
		i.metrics.Ingested.Inc()
	}
	i.logger.DebugContext(ctx, "audit record stored",
		"event_type", rec.EventType,
		"entity_id", rec.EntityID,
		"user_id", rec.UserID,
		"action", rec.Action,
	)
	return nil
}

// divert routes a bad message to the dead-letter sink. Only when the sink
// itself fails does the message stay unacknowledged, so it is preserved
// either way: in the dead-letter path or through broker redelivery.
func (i *Ingestor) divert(ctx context.Context, msg *consumer.Message, cause error) error {
	if err := i.deadLetters.Divert(ctx, msg, cause); err != nil {
		return fmt.Errorf("divert to dead letter: %w", err)
	}
	if i.metrics != nil {
		i.metrics.DeadLettered.Inc()
	}
	i.logger.WarnContext(ctx, "message dead-lettered",
		"topic", msg.Topic,
		"partition", msg.Partition,
		"offset", msg.Offset,
		"reason", cause,
	)
	return nil
}
