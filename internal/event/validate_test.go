package event

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validEnvelope() Envelope {
	return Envelope{
		EventType: "ExpenseCreated",
		EntityID:  "100",
		UserID:    "42",
		Action:    ActionCreate,
		Timestamp: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		Payload:   json.RawMessage(`{"amount":25.50,"description":"lunch"}`),
	}
}

func TestValidateBase(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Envelope)
		field   string
		wantErr bool
	}{
		{name: "valid envelope", mutate: func(*Envelope) {}},
		{name: "missing user", mutate: func(e *Envelope) { e.UserID = "" }, field: "userId", wantErr: true},
		{name: "blank user", mutate: func(e *Envelope) { e.UserID = "   " }, field: "userId", wantErr: true},
		{name: "missing action", mutate: func(e *Envelope) { e.Action = "" }, field: "action", wantErr: true},
		{name: "zero timestamp", mutate: func(e *Envelope) { e.Timestamp = time.Time{} }, field: "timestamp", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := validEnvelope()
			tt.mutate(&env)

			err := ValidateBase(env)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestRequirePayloadFields(t *testing.T) {
	validate := RequirePayloadFields("amount")

	t.Run("present field passes", func(t *testing.T) {
		require.NoError(t, validate(validEnvelope()))
	})

	t.Run("missing field fails", func(t *testing.T) {
		env := validEnvelope()
		env.Payload = json.RawMessage(`{"description":"lunch"}`)

		var verr *ValidationError
		require.ErrorAs(t, validate(env), &verr)
		assert.Equal(t, "payload.amount", verr.Field)
	})

	t.Run("null field fails", func(t *testing.T) {
		env := validEnvelope()
		env.Payload = json.RawMessage(`{"amount":null}`)
		require.Error(t, validate(env))
	})

	t.Run("empty payload fails", func(t *testing.T) {
		env := validEnvelope()
		env.Payload = nil
		require.Error(t, validate(env))
	})
}
