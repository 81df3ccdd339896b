package shared

import (
	"context"
)

// PostCommitHook processes a domain event after the authoritative
// write has committed. Hooks are best-effort side effects: the runner
// gives each one its own error boundary, logs failures and never
// propagates them - a hook can never fail or roll back the write that
// triggered it.
type PostCommitHook interface {
	// Name identifies the hook in logs
	Name() string
	Handle(ctx context.Context, event DomainEvent) error
}
