package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_IgnoresUnknownFields(t *testing.T) {
	wire := []byte(`{
		"eventType": "ExpenseCreated",
		"entityId": "100",
		"userId": "42",
		"action": "CREATE",
		"timestamp": "2026-03-01T10:00:00Z",
		"payload": {"amount": 25.5},
		"schemaVersion": 3,
		"producedBy": "expense-service"
	}`)

	env, err := Decode(wire)
	require.NoError(t, err)
	assert.Equal(t, "ExpenseCreated", env.EventType)
	assert.Equal(t, "42", env.UserID)
	assert.Equal(t, ActionCreate, env.Action)
}

func TestDecode_Malformed(t *testing.T) {
	_, err := Decode([]byte(`{"eventType": `))
	require.Error(t, err)
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	env := validEnvelope()

	data, err := env.Encode()
	require.NoError(t, err)

	got, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, env.EventType, got.EventType)
	assert.Equal(t, env.EntityID, got.EntityID)
	assert.True(t, env.Timestamp.Equal(got.Timestamp))
	assert.JSONEq(t, string(env.Payload), string(got.Payload))
}

func TestNaturalKey(t *testing.T) {
	a := validEnvelope()
	b := validEnvelope()
	assert.Equal(t, a.NaturalKey(), b.NaturalKey(), "identical logical events share a key")

	b.Timestamp = b.Timestamp.Add(time.Nanosecond)
	assert.NotEqual(t, a.NaturalKey(), b.NaturalKey())
}

func TestUserKey(t *testing.T) {
	a := validEnvelope()
	assert.Equal(t, "user-42", UserKey(a))

	// Same user, different everything else: identical key.
	b := a
	b.EntityID = "999"
	b.Action = ActionDelete
	b.Timestamp = b.Timestamp.Add(time.Hour)
	assert.Equal(t, UserKey(a), UserKey(b))

	// Different users never share the default key.
	c := a
	c.UserID = "7"
	assert.NotEqual(t, UserKey(a), UserKey(c))
}
