package producer

import "fmt"

// PublishFailure means the transport gave up on an emit after its own retry
// budget (or timed out). The envelope was valid; it simply never reached the
// broker. Callers must handle this visibly: fail the business operation,
// queue for later, or proceed degraded, but never swallow it.
type PublishFailure struct {
	Topic string
	Key   string
	Err   error
}

func (e *PublishFailure) Error() string {
	return fmt.Sprintf("publish to %s (key %s) failed: %v", e.Topic, e.Key, e.Err)
}

func (e *PublishFailure) Unwrap() error {
	return e.Err
}
