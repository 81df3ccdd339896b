package realtime

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/visaflow/backend/internal/domain/payment"
	"github.com/visaflow/backend/internal/domain/shared"
)

// FanoutHook publishes one event per committed mutation to every
// interested channel. It runs as a post-commit hook: a transport
// failure is logged by the hook runner and never reaches the caller.
type FanoutHook struct {
	publisher Publisher
	logger    *zap.Logger
}

// NewFanoutHook creates a fan-out hook
func NewFanoutHook(publisher Publisher, logger *zap.Logger) *FanoutHook {
	return &FanoutHook{publisher: publisher, logger: logger}
}

// Name identifies the hook in logs
func (h *FanoutHook) Name() string { return "realtime-fanout" }

// Handle fans the mutation out to the actor's private channel, the
// admin channel, and any role channels the action concerns. Each
// channel publish is independent: one failing does not stop the rest.
func (h *FanoutHook) Handle(ctx context.Context, event shared.DomainEvent) error {
	mutation, ok := event.(payment.MutationEvent)
	if !ok {
		return nil
	}
	info := mutation.Mutation()

	out := Event{MutationInfo: info, EventID: event.EventID().String()}
	var firstErr error
	for _, channel := range ChannelsFor(info.Action, info.ActorID) {
		if err := h.publisher.Publish(ctx, channel, out); err != nil {
			h.logger.Warn("fan-out publish failed",
				zap.String("channel", channel),
				zap.String("action", info.Action),
				zap.String("ledger_id", info.LedgerID.String()),
				zap.Error(err),
			)
			if firstErr == nil {
				firstErr = fmt.Errorf("publish %s: %w", channel, err)
			}
		}
	}
	return firstErr
}

var _ shared.PostCommitHook = (*FanoutHook)(nil)
