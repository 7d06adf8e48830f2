package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	pkgstrings "spendtrail/pkg/platform/strings"
)

// Config captures everything the two binaries read from the environment so
// main stays lean. Loading is deliberately dumb: strings in, defaults out.
type Config struct {
	Addr            string
	Brokers         []string
	ConsumerGroup   string
	DatabaseURL     string
	RedisURL        string
	DeadLetterKey   string
	PublishTimeout  time.Duration
	TopicPartitions int32
	Topics          Topics
	Defaults        Defaults
}

// Topics names one broker topic per domain event type. Topic choice never
// depends on event content, only on the producing domain.
type Topics struct {
	Expense      string
	Category     string
	Bill         string
	Notification string
	Friendship   string
}

// All returns every domain topic, for topic bootstrap and the ingestor's
// subscription list.
func (t Topics) All() []string {
	return []string{t.Expense, t.Category, t.Bill, t.Notification, t.Friendship}
}

// Defaults is the shared value set domain services fall back to when a
// request omits optional fields. It is passed explicitly instead of living in
// package-level state so producers stay pure and testable.
type Defaults struct {
	PaymentMethod string
	Comment       string
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	return Config{
		Addr:            getEnv("SPENDTRAIL_ADDR", ":8080"),
		Brokers:         splitAndTrim(getEnv("KAFKA_BROKERS", "localhost:9092")),
		ConsumerGroup:   getEnv("KAFKA_GROUP_ID", "audit-ingestors"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		RedisURL:        getEnv("REDIS_URL", ""),
		DeadLetterKey:   getEnv("DEAD_LETTER_KEY", "spendtrail:dead-letters"),
		PublishTimeout:  getEnvDuration("PUBLISH_TIMEOUT", 10*time.Second),
		TopicPartitions: int32(getEnvInt("TOPIC_PARTITIONS", 6)),
		Topics: Topics{
			Expense:      getEnv("TOPIC_EXPENSE", "expense-events"),
			Category:     getEnv("TOPIC_CATEGORY", "category-events"),
			Bill:         getEnv("TOPIC_BILL", "bill-events"),
			Notification: getEnv("TOPIC_NOTIFICATION", "notification-events"),
			Friendship:   getEnv("TOPIC_FRIENDSHIP", "friendship-events"),
		},
		Defaults: Defaults{
			PaymentMethod: getEnv("DEFAULT_PAYMENT_METHOD", "CASH"),
			Comment:       getEnv("DEFAULT_COMMENT", ""),
		},
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}

func splitAndTrim(s string) []string {
	return pkgstrings.DedupeAndTrim(strings.Split(s, ","))
}
