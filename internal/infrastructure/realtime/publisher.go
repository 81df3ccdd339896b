package realtime

import (
	"context"

	"github.com/visaflow/backend/internal/domain/payment"
)

// Event is the payload fanned out to subscribers after a committed
// mutation. It names the action, the affected ledger and client ids,
// and the small pre-aggregated view a subscriber needs for an in-place
// update. A subscriber that missed it re-derives state from an
// explicit read.
type Event struct {
	payment.MutationInfo
	EventID string `json:"event_id"`
}

// Publisher pushes events to logical channels. Delivery is
// at-most-once and unacknowledged: there is no queue, no replay, and a
// disconnected subscriber simply misses the event. This core only
// publishes, never subscribes.
type Publisher interface {
	Publish(ctx context.Context, channel string, event Event) error
}

// NoopPublisher is the null object used when no transport is
// configured; publishes vanish silently.
type NoopPublisher struct{}

// NewNoopPublisher creates a no-op publisher
func NewNoopPublisher() *NoopPublisher {
	return &NoopPublisher{}
}

// Publish discards the event
func (NoopPublisher) Publish(ctx context.Context, channel string, event Event) error {
	return nil
}

var _ Publisher = (*NoopPublisher)(nil)
