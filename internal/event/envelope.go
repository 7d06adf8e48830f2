package event

import (
	"encoding/json"
	"fmt"
	"time"
)

// Action is the enumerated verb describing what happened to an entity.
type Action string

const (
	ActionCreate         Action = "CREATE"
	ActionUpdate         Action = "UPDATE"
	ActionDelete         Action = "DELETE"
	ActionApprove        Action = "APPROVE"
	ActionReject         Action = "REJECT"
	ActionBudgetExceeded Action = "BUDGET_EXCEEDED"
	ActionPaid           Action = "PAID"
	ActionReminder       Action = "REMINDER"
	ActionOverdue        Action = "OVERDUE"
)

// Envelope is the canonical shape every domain change event conforms to.
// It is constructed once by the originating service and never mutated after;
// the producer rejects envelopes missing UserID, Action, or Timestamp.
type Envelope struct {
	EventType string          `json:"eventType"`
	EntityID  string          `json:"entityId"`
	UserID    string          `json:"userId"`
	Action    Action          `json:"action"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Metadata  string          `json:"metadata,omitempty"`
}

// Encode serializes the envelope to its JSON wire form.
func (e Envelope) Encode() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}
	return data, nil
}

// Decode parses a wire payload back into an Envelope. Unknown fields are
// ignored so newer producers remain compatible with older consumers.
func Decode(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	return env, nil
}

// NaturalKey identifies a logical event independently of any store-assigned
// id. Two envelopes with identical natural keys are the same event; the audit
// store uses this for deduplication under at-least-once delivery.
func (e Envelope) NaturalKey() string {
	return fmt.Sprintf("%s|%s|%s|%s|%d",
		e.EventType, e.EntityID, e.UserID, e.Action, e.Timestamp.UnixNano())
}
