package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and transport adapters
// return these (optionally wrapped) so services can translate them without
// depending on driver-specific error types.
//
// - ErrNotFound: record does not exist in the store
// - ErrUnavailable: store or broker temporarily unreachable; safe to retry
//
// Contract-level failures (bad input, transport give-up) use the typed errors
// in internal/event and internal/producer instead.
var (
	ErrNotFound    = errors.New("not found")
	ErrUnavailable = errors.New("unavailable")
)
