package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"spendtrail/internal/audit"
	"spendtrail/internal/event"
	"spendtrail/pkg/platform/sentinel"

	// Register the pgx database/sql driver.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Store persists audit records in PostgreSQL. Idempotency rides on a unique
// index over the natural key (event_type, entity_id, user_id, action,
// timestamp); duplicate deliveries insert zero rows instead of failing.
type Store struct {
	db *sql.DB
}

// Open connects with the pgx stdlib driver and verifies the connection.
func Open(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{db: db}, nil
}

// New wraps an existing connection pool (used by tests).
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Schema is the table this store owns. Applied at startup; IF NOT EXISTS
// keeps restarts idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS audit_records (
	id          BIGSERIAL PRIMARY KEY,
	event_type  TEXT        NOT NULL,
	entity_id   TEXT        NOT NULL,
	user_id     TEXT        NOT NULL,
	action      TEXT        NOT NULL,
	timestamp   TIMESTAMPTZ NOT NULL,
	payload     JSONB,
	metadata    TEXT        NOT NULL DEFAULT ''
);
CREATE UNIQUE INDEX IF NOT EXISTS audit_records_natural_key
	ON audit_records (event_type, entity_id, user_id, action, timestamp);
CREATE INDEX IF NOT EXISTS audit_records_user_ts ON audit_records (user_id, timestamp);
CREATE INDEX IF NOT EXISTS audit_records_entity_ts ON audit_records (entity_id, timestamp);
CREATE INDEX IF NOT EXISTS audit_records_ts ON audit_records (timestamp);
`

// Migrate creates the audit_records table and its indexes.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("migrate audit schema: %w", err)
	}
	return nil
}

const selectColumns = `id, event_type, entity_id, user_id, action, timestamp, payload, metadata`

// Append inserts the record, reporting inserted=false when a record with the
// same natural key already exists.
func (s *Store) Append(ctx context.Context, rec audit.Record) (bool, error) {
	query := `
		INSERT INTO audit_records (event_type, entity_id, user_id, action, timestamp, payload, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (event_type, entity_id, user_id, action, timestamp) DO NOTHING
	`
	var payload any
	if len(rec.PayloadSnapshot) > 0 {
		payload = []byte(rec.PayloadSnapshot)
	}
	res, err := s.db.ExecContext(ctx, query,
		rec.EventType,
		rec.EntityID,
		rec.UserID,
		string(rec.Action),
		rec.Timestamp,
		payload,
		rec.Metadata,
	)
	if err != nil {
		return false, s.wrap("insert audit record", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert audit record: %w", err)
	}
	return n > 0, nil
}

func (s *Store) ListByEntity(ctx context.Context, entityID string) ([]audit.Record, error) {
	return s.list(ctx, `
		SELECT `+selectColumns+`
		FROM audit_records
		WHERE entity_id = $1
		ORDER BY timestamp ASC, id ASC
	`, entityID)
}

func (s *Store) ListByUser(ctx context.Context, userID string) ([]audit.Record, error) {
	return s.list(ctx, `
		SELECT `+selectColumns+`
		FROM audit_records
		WHERE user_id = $1
		ORDER BY timestamp ASC, id ASC
	`, userID)
}

func (s *Store) ListByWindow(ctx context.Context, start, end time.Time) ([]audit.Record, error) {
	return s.list(ctx, `
		SELECT `+selectColumns+`
		FROM audit_records
		WHERE timestamp >= $1 AND timestamp <= $2
		ORDER BY timestamp ASC, id ASC
	`, start, end)
}

func (s *Store) ListRecent(ctx context.Context, since time.Time) ([]audit.Record, error) {
	return s.list(ctx, `
		SELECT `+selectColumns+`
		FROM audit_records
		WHERE timestamp >= $1
		ORDER BY timestamp ASC, id ASC
	`, since)
}

func (s *Store) ListByAction(ctx context.Context, action event.Action) ([]audit.Record, error) {
	return s.list(ctx, `
		SELECT `+selectColumns+`
		FROM audit_records
		WHERE action = $1
		ORDER BY timestamp ASC, id ASC
	`, string(action))
}

func (s *Store) ListByEntityAndAction(ctx context.Context, entityID string, action event.Action) ([]audit.Record, error) {
	return s.list(ctx, `
		SELECT `+selectColumns+`
		FROM audit_records
		WHERE entity_id = $1 AND action = $2
		ORDER BY timestamp ASC, id ASC
	`, entityID, string(action))
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]audit.Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, s.wrap("query audit records", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]audit.Record, error) {
	var records []audit.Record
	for rows.Next() {
		var (
			rec     audit.Record
			action  string
			payload []byte
		)
		err := rows.Scan(
			&rec.ID,
			&rec.EventType,
			&rec.EntityID,
			&rec.UserID,
			&action,
			&rec.Timestamp,
			&payload,
			&rec.Metadata,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}
		rec.Action = event.Action(action)
		rec.PayloadSnapshot = payload
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit records: %w", err)
	}
	return records, nil
}

// wrap tags connectivity failures as sentinel.ErrUnavailable so the ingestor
// can distinguish "store is down, do not ack" from plain query errors.
func (s *Store) wrap(op string, err error) error {
	if errors.Is(err, sql.ErrConnDone) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %v", op, sentinel.ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
