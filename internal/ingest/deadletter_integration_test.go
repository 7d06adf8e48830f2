//go:build integration

package ingest_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendtrail/internal/ingest"
	"spendtrail/internal/platform/kafka/consumer"
	"spendtrail/pkg/testutil/containers"
)

func TestRedisDeadLetters(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	rc := containers.NewRedisContainer(t)
	ctx := context.Background()
	sink := ingest.NewRedisDeadLetters(rc.Client, "test:dead-letters")

	msg := &consumer.Message{
		Topic:     "expense-events",
		Partition: 3,
		Offset:    17,
		Value:     []byte(`{"eventType": broken`),
	}
	require.NoError(t, sink.Divert(ctx, msg, errors.New("decode envelope: unexpected token")))

	letters, err := sink.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, letters, 1)
	assert.Equal(t, "expense-events", letters[0].Topic)
	assert.Equal(t, int32(3), letters[0].Partition)
	assert.Equal(t, int64(17), letters[0].Offset)
	assert.Equal(t, []byte(`{"eventType": broken`), letters[0].Payload)
	assert.Contains(t, letters[0].Reason, "decode envelope")

	// Newest first.
	require.NoError(t, sink.Divert(ctx, msg, errors.New("second failure")))
	letters, err = sink.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, letters, 2)
	assert.Equal(t, "second failure", letters[0].Reason)
}
