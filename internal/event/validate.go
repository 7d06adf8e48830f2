package event

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ValidationError reports a mandatory field that is missing or blank. It is
// always raised before any transport I/O so callers can correct and retry.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid event: %s %s", e.Field, e.Reason)
}

// ValidateBase applies the rules every envelope must satisfy regardless of
// event type. It is pure and has no side effects.
func ValidateBase(env Envelope) error {
	if strings.TrimSpace(env.UserID) == "" {
		return &ValidationError{Field: "userId", Reason: "must not be blank"}
	}
	if strings.TrimSpace(string(env.Action)) == "" {
		return &ValidationError{Field: "action", Reason: "must not be blank"}
	}
	if env.Timestamp.IsZero() {
		return &ValidationError{Field: "timestamp", Reason: "must be set"}
	}
	return nil
}

// RequirePayloadFields returns a validator that checks the envelope payload
// carries each named field with a non-null value. Domain event types layer
// this on top of ValidateBase (e.g. expense events require "amount").
func RequirePayloadFields(fields ...string) func(Envelope) error {
	return func(env Envelope) error {
		if len(env.Payload) == 0 {
			return &ValidationError{Field: "payload", Reason: "must not be empty"}
		}
		var body map[string]json.RawMessage
		if err := json.Unmarshal(env.Payload, &body); err != nil {
			return &ValidationError{Field: "payload", Reason: "must be a JSON object"}
		}
		for _, f := range fields {
			raw, ok := body[f]
			if !ok || string(raw) == "null" {
				return &ValidationError{Field: "payload." + f, Reason: "must not be null"}
			}
		}
		return nil
	}
}
