package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"spendtrail/internal/platform/kafka/consumer"
)

// DeadLetter is one preserved message, kept for manual inspection. Payload is
// the raw delivered bytes, which may not be valid JSON.
type DeadLetter struct {
	At        time.Time `json:"at"`
	Reason    string    `json:"reason"`
	Topic     string    `json:"topic"`
	Partition int32     `json:"partition"`
	Offset    int64     `json:"offset"`
	Payload   []byte    `json:"payload"`
}

// RedisDeadLetters keeps dead letters in a Redis list, newest first. There is
// no automated replay or expiry; entries stay until someone inspects and
// clears them.
type RedisDeadLetters struct {
	client *redis.Client
	key    string
}

// NewRedisDeadLetters creates a sink writing to the given list key.
func NewRedisDeadLetters(client *redis.Client, key string) *RedisDeadLetters {
	if key == "" {
		key = "spendtrail:dead-letters"
	}
	return &RedisDeadLetters{client: client, key: key}
}

// Divert preserves the message. An error here means the message was NOT
// preserved and must not be acknowledged.
func (s *RedisDeadLetters) Divert(ctx context.Context, msg *consumer.Message, cause error) error {
	entry := DeadLetter{
		At:        time.Now().UTC(),
		Reason:    cause.Error(),
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Payload:   msg.Value,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal dead letter: %w", err)
	}
	if err := s.client.LPush(ctx, s.key, data).Err(); err != nil {
		return fmt.Errorf("push dead letter: %w", err)
	}
	return nil
}

// List returns up to limit dead letters, newest first.
func (s *RedisDeadLetters) List(ctx context.Context, limit int64) ([]DeadLetter, error) {
	if limit <= 0 {
		limit = 50
	}
	raw, err := s.client.LRange(ctx, s.key, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("list dead letters: %w", err)
	}
	letters := make([]DeadLetter, 0, len(raw))
	for _, item := range raw {
		var dl DeadLetter
		if err := json.Unmarshal([]byte(item), &dl); err != nil {
			return nil, fmt.Errorf("unmarshal dead letter: %w", err)
		}
		letters = append(letters, dl)
	}
	return letters, nil
}
