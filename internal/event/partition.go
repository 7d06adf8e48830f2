package event

// KeyFunc derives the broker partition key for an envelope. Implementations
// must be deterministic pure functions of the envelope content: all events
// sharing a key land on the same partition and are observed in emission order.
type KeyFunc func(Envelope) string

// UserKey is the default strategy. Keying by user totally orders a single
// user's event history for every consumer of a topic, which is the ordering
// guarantee the audit trail depends on. Cross-user ordering is unspecified.
func UserKey(env Envelope) string {
	return "user-" + env.UserID
}
