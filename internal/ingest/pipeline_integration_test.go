//go:build integration

package ingest_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"spendtrail/internal/audit/store/memory"
	"spendtrail/internal/event"
	"spendtrail/internal/ingest"
	"spendtrail/internal/platform/kafka"
	"spendtrail/internal/platform/kafka/consumer"
	"spendtrail/internal/producer"
	"spendtrail/pkg/testutil/containers"
)

// collectingSink records diverted messages in memory so the test can assert
// on the dead-letter path without a redis instance.
type collectingSink struct {
	mu     sync.Mutex
	causes []error
}

func (s *collectingSink) Divert(_ context.Context, _ *consumer.Message, cause error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.causes = append(s.causes, cause)
	return nil
}

func (s *collectingSink) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.causes)
}

// TestPipelineEndToEnd drives the full path against a real broker: publish
// through the producer pipeline, consume through the group consumer, and
// materialize audit records. Covers durable delivery, duplicate absorption,
// and dead-lettering of garbage bytes without losing neighbors.
func TestPipelineEndToEnd(t *testing.T) {
	broker := containers.NewRedpandaContainer(t)
	brokers := []string{broker.Broker}
	ctx := context.Background()

	const topic = "expense-events"
	require.NoError(t, kafka.EnsureTopics(ctx, brokers, 2, topic))

	transport, err := kafka.NewProducer(ctx, brokers)
	require.NoError(t, err)
	defer transport.Close()

	log := slog.New(slog.DiscardHandler)
	store := memory.New()
	sink := &collectingSink{}

	group, err := consumer.New(brokers, "pipeline-test", []string{topic},
		ingest.New(store, sink, log), log)
	require.NoError(t, err)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- group.Run(runCtx) }()

	pub := producer.New(producer.Expense(topic), transport, producer.WithLogger(log))

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	payload, _ := json.Marshal(map[string]any{"amount": 25.50})
	actions := []event.Action{event.ActionCreate, event.ActionUpdate, event.ActionDelete}
	for i, action := range actions {
		env := event.Envelope{
			EntityID:  "100",
			UserID:    "42",
			Action:    action,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Payload:   payload,
		}
		require.NoError(t, pub.Publish(ctx, env))
	}

	// Redeliver the first event verbatim; the natural key must absorb it.
	require.NoError(t, pub.Publish(ctx, event.Envelope{
		EntityID:  "100",
		UserID:    "42",
		Action:    event.ActionCreate,
		Timestamp: base,
		Payload:   payload,
	}))

	// Garbage bytes must be diverted, not looped or dropped silently.
	require.NoError(t, transport.Emit(ctx, topic, "user-42", []byte("not json")))

	require.Eventually(t, func() bool {
		records, err := store.ListByUser(ctx, "42")
		return err == nil && len(records) == 3 && sink.len() == 1
	}, 30*time.Second, 100*time.Millisecond)

	records, err := store.ListByUser(ctx, "42")
	require.NoError(t, err)
	require.Len(t, records, 3)
	for i, action := range actions {
		require.Equal(t, action, records[i].Action)
		require.True(t, records[i].Timestamp.Equal(base.Add(time.Duration(i)*time.Minute)))
	}

	cancel()
	select {
	case <-done:
	case <-time.After(30 * time.Second):
		t.Fatal("consumer did not stop after cancel")
	}
}
