package audit

import (
	"context"
	"time"

	"spendtrail/internal/event"
)

// Store is the durable home of audit records. Implementations must be safe
// for concurrent writers (one per partition consumer) and readers, and every
// query returns records in non-decreasing timestamp order.
//
// Append is idempotent on the record's natural key: re-delivery of the same
// logical event reports inserted=false instead of creating a second record.
type Store interface {
	Append(ctx context.Context, rec Record) (inserted bool, err error)
	ListByEntity(ctx context.Context, entityID string) ([]Record, error)
	ListByUser(ctx context.Context, userID string) ([]Record, error)
	// ListByWindow returns records with start <= timestamp <= end, closed at
	// both ends.
	ListByWindow(ctx context.Context, start, end time.Time) ([]Record, error)
	// ListRecent returns records with timestamp >= since.
	ListRecent(ctx context.Context, since time.Time) ([]Record, error)
	ListByAction(ctx context.Context, action event.Action) ([]Record, error)
	ListByEntityAndAction(ctx context.Context, entityID string, action event.Action) ([]Record, error)
}
