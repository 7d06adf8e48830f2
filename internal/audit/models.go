package audit

import (
	"encoding/json"
	"time"

	"spendtrail/internal/event"
)

// Record is the persisted, queryable projection of an event envelope. The
// store assigns ID; everything else is copied verbatim at ingestion time and
// never mutated afterwards. Timestamp is event time, not ingestion time.
type Record struct {
	ID              int64           `json:"id"`
	EventType       string          `json:"eventType"`
	EntityID        string          `json:"entityId"`
	UserID          string          `json:"userId"`
	Action          event.Action    `json:"action"`
	Timestamp       time.Time       `json:"timestamp"`
	PayloadSnapshot json.RawMessage `json:"payloadSnapshot,omitempty"`
	Metadata        string          `json:"metadata,omitempty"`
}

// FromEnvelope maps an envelope 1:1 onto a record. The payload is snapshotted
// as delivered so the audit trail reflects what was actually emitted.
func FromEnvelope(env event.Envelope) Record {
	return Record{
		EventType:       env.EventType,
		EntityID:        env.EntityID,
		UserID:          env.UserID,
		Action:          env.Action,
		Timestamp:       env.Timestamp,
		PayloadSnapshot: env.Payload,
		Metadata:        env.Metadata,
	}
}

// NaturalKey mirrors event.Envelope.NaturalKey on the stored projection.
func (r Record) NaturalKey() string {
	env := event.Envelope{
		EventType: r.EventType,
		EntityID:  r.EntityID,
		UserID:    r.UserID,
		Action:    r.Action,
		Timestamp: r.Timestamp,
	}
	return env.NaturalKey()
}
