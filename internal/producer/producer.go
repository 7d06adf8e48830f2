// Package producer implements the shared event publishing pipeline every
// domain service goes through: beforeSend hook, validation, partition key
// derivation, topic resolution, and the transport emit. The per-domain
// variation points live in a Definition rather than subclass hooks, keeping
// the stage order fixed in one place.
package producer

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"spendtrail/internal/event"
	"spendtrail/internal/platform/metrics"
)

// Transport is the boundary to the message broker. Implementations guarantee
// at-least-once delivery and in-order delivery within a partition key.
type Transport interface {
	Emit(ctx context.Context, topic, key string, payload []byte) error
}

// Definition parameterizes the pipeline for one domain event type. Topic is a
// per-definition constant so all events of one type land on one topic; it
// never depends on event content.
type Definition struct {
	// Topic the broker topic all events of this type are routed to.
	Topic string
	// EventType stamped onto envelopes that do not carry one yet.
	EventType string
	// Validate holds type-specific rules applied after the base rules. Nil
	// means base rules only.
	Validate func(event.Envelope) error
	// Key overrides the default user partition key strategy. Nil means
	// event.UserKey.
	Key event.KeyFunc
	// BeforeSend is a side-effect-only hook (logging, counters). It must not
	// mutate mandatory envelope fields.
	BeforeSend func(event.Envelope)
}

// Producer drives the fixed-order publish pipeline. It holds no mutable
// per-call state and is safe for concurrent use across goroutines.
type Producer struct {
	def       Definition
	transport Transport
	timeout   time.Duration
	logger    *slog.Logger
	metrics   *metrics.Producer
	tracer    trace.Tracer
}

// Option configures a Producer.
type Option func(*Producer)

// WithTimeout bounds the transport call inside Publish. A timeout surfaces as
// a PublishFailure, never as a silent success.
func WithTimeout(d time.Duration) Option {
	return func(p *Producer) { p.timeout = d }
}

// WithLogger sets a logger for publish outcomes.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Producer) { p.logger = logger }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Producer) Option {
	return func(p *Producer) { p.metrics = m }
}

// New builds a producer for one domain event type.
func New(def Definition, transport Transport, opts ...Option) *Producer {
	p := &Producer{
		def:       def,
		transport: transport,
		timeout:   10 * time.Second,
		tracer:    otel.Tracer("spendtrail/producer"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Topic returns the topic this producer routes to.
func (p *Producer) Topic() string {
	return p.def.Topic
}

// Publish runs the pipeline for one envelope. Validation failures return a
// *event.ValidationError with zero transport calls made; transport failures
// and timeouts return a *PublishFailure. The caller decides whether to fail
// its business operation or proceed degraded.
func (p *Producer) Publish(ctx context.Context, env event.Envelope) error {
	ctx, span := p.tracer.Start(ctx, "producer.Publish",
		trace.WithAttributes(
			attribute.String("messaging.destination", p.def.Topic),
			attribute.String("event.type", p.def.EventType),
		))
	defer span.End()

	if env.EventType == "" {
		env.EventType = p.def.EventType
	}

	if p.def.BeforeSend != nil {
		p.def.BeforeSend(env)
	}

	if err := p.validate(env); err != nil {
		if p.metrics != nil {
			p.metrics.ValidationFailures.WithLabelValues(p.def.Topic).Inc()
		}
		return err
	}

	key := p.partitionKey(env)

	payload, err := env.Encode()
	if err != nil {
		if p.metrics != nil {
			p.metrics.ValidationFailures.WithLabelValues(p.def.Topic).Inc()
		}
		return &event.ValidationError{Field: "payload", Reason: "is not serializable"}
	}

	emitCtx := ctx
	var cancel context.CancelFunc
	if p.timeout > 0 {
		emitCtx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	start := time.Now()
	if err := p.transport.Emit(emitCtx, p.def.Topic, key, payload); err != nil {
		if p.metrics != nil {
			p.metrics.PublishFailures.WithLabelValues(p.def.Topic).Inc()
		}
		if p.logger != nil {
			p.logger.ErrorContext(ctx, "event publish failed",
				"topic", p.def.Topic,
				"key", key,
				"event_type", env.EventType,
				"error", err,
			)
		}
		return &PublishFailure{Topic: p.def.Topic, Key: key, Err: err}
	}

	if p.metrics != nil {
		p.metrics.Published.WithLabelValues(p.def.Topic).Inc()
		p.metrics.PublishDuration.Observe(time.Since(start).Seconds())
	}
	if p.logger != nil {
		p.logger.DebugContext(ctx, "event published",
			"topic", p.def.Topic,
			"key", key,
			"event_type", env.EventType,
			"action", env.Action,
		)
	}
	return nil
}

// validate applies base rules, then the definition's own. Validation always
// runs to completion before any transport I/O is attempted.
func (p *Producer) validate(env event.Envelope) error {
	if err := event.ValidateBase(env); err != nil {
		return err
	}
	if p.def.Validate != nil {
		return p.def.Validate(env)
	}
	return nil
}

func (p *Producer) partitionKey(env event.Envelope) string {
	if p.def.Key != nil {
		return p.def.Key(env)
	}
	return event.UserKey(env)
}
