package cache

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/visaflow/backend/internal/domain/payment"
	"github.com/visaflow/backend/internal/domain/shared"
)

// InvalidationHook removes every cache entry a committed mutation
// could have made stale: the point keys for the affected row and
// client, then the prefix-scanned families holding derived views.
// It runs before fan-out so subscribers that react to an event with a
// read never see pre-mutation cache state.
type InvalidationHook struct {
	store  Store
	logger *zap.Logger
}

// NewInvalidationHook creates a cache invalidation hook
func NewInvalidationHook(store Store, logger *zap.Logger) *InvalidationHook {
	return &InvalidationHook{store: store, logger: logger}
}

// Name identifies the hook in logs
func (h *InvalidationHook) Name() string { return "cache-invalidation" }

// Handle drops the stale entries. Best-effort: a cache backend failure
// is logged by the hook runner and never fails the write.
func (h *InvalidationHook) Handle(ctx context.Context, event shared.DomainEvent) error {
	mutation, ok := event.(payment.MutationEvent)
	if !ok {
		return nil
	}
	info := mutation.Mutation()

	if err := h.store.Delete(ctx, MutationKeys(info.LedgerID, info.ClientID)...); err != nil {
		return fmt.Errorf("point key invalidation: %w", err)
	}
	for _, prefix := range ClientFamilyPrefixes(info.ClientID) {
		if err := h.store.DeleteByPrefix(ctx, prefix); err != nil {
			return fmt.Errorf("family invalidation %s: %w", prefix, err)
		}
	}
	h.logger.Debug("cache invalidated",
		zap.String("action", info.Action),
		zap.String("client_id", info.ClientID.String()),
	)
	return nil
}

var _ shared.PostCommitHook = (*InvalidationHook)(nil)
