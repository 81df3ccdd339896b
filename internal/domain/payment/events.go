package payment

import (
	"github.com/google/uuid"

	"github.com/visaflow/backend/internal/domain/shared"
)

// Aggregate type name used in event envelopes
const aggregateLedger = "LedgerRow"

// Mutation action names carried in events
const (
	ActionCreated  = "created"
	ActionUpdated  = "updated"
	ActionApproved = "approved"
	ActionRejected = "rejected"
	ActionDeleted  = "deleted"
)

// MutationInfo is the cross-cutting view of a payment mutation that
// post-commit hooks (cache invalidation, fan-out) consume without
// type-switching over every event shape.
type MutationInfo struct {
	Action   string         `json:"action"`
	LedgerID uuid.UUID      `json:"ledger_id"`
	ClientID uuid.UUID      `json:"client_id"`
	ActorID  uuid.UUID      `json:"actor_id"`
	Summary  *ClientSummary `json:"summary,omitempty"`
}

// MutationEvent is implemented by every payment domain event
type MutationEvent interface {
	shared.DomainEvent
	Mutation() MutationInfo
}

// mutationBody carries the shared mutation fields. ActorID and Summary
// are filled by the coordinator before the event is dispatched: the
// aggregate does not know who acted or what the dashboard view is.
type mutationBody struct {
	Action   string         `json:"action"`
	LedgerID uuid.UUID      `json:"ledger_id"`
	ClientID uuid.UUID      `json:"client_id"`
	ActorID  uuid.UUID      `json:"actor_id"`
	Summary  *ClientSummary `json:"summary,omitempty"`
}

// Mutation returns the hook-facing view of the event
func (b *mutationBody) Mutation() MutationInfo {
	return MutationInfo{
		Action:   b.Action,
		LedgerID: b.LedgerID,
		ClientID: b.ClientID,
		ActorID:  b.ActorID,
		Summary:  b.Summary,
	}
}

// SetActor records the acting user on the event
func (b *mutationBody) SetActor(actorID uuid.UUID) {
	b.ActorID = actorID
}

// SetSummary attaches the pre-aggregated client view
func (b *mutationBody) SetSummary(summary *ClientSummary) {
	b.Summary = summary
}

// EnrichableEvent is a mutation event the coordinator can stamp with
// the actor and the client summary before dispatching hooks
type EnrichableEvent interface {
	MutationEvent
	SetActor(actorID uuid.UUID)
	SetSummary(summary *ClientSummary)
}

// PaymentCreatedEvent is raised when a payment is recorded
type PaymentCreatedEvent struct {
	shared.BaseDomainEvent
	mutationBody
	ProductType ProductType `json:"product_type"`
	EntityKind  EntityKind  `json:"entity_kind"`
}

// EventType returns the event type name
func (e *PaymentCreatedEvent) EventType() string { return "PaymentCreated" }

// NewPaymentCreatedEvent creates a new PaymentCreatedEvent
func NewPaymentCreatedEvent(row *LedgerRow) *PaymentCreatedEvent {
	return &PaymentCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PaymentCreated", aggregateLedger, row.ID),
		mutationBody: mutationBody{
			Action:   ActionCreated,
			LedgerID: row.ID,
			ClientID: row.ClientID,
		},
		ProductType: row.ProductType,
		EntityKind:  row.EntityKind,
	}
}

// PaymentUpdatedEvent is raised when a payment or its detail is edited
type PaymentUpdatedEvent struct {
	shared.BaseDomainEvent
	mutationBody
	EntityKind EntityKind `json:"entity_kind"`
}

// EventType returns the event type name
func (e *PaymentUpdatedEvent) EventType() string { return "PaymentUpdated" }

// NewPaymentUpdatedEvent creates a new PaymentUpdatedEvent
func NewPaymentUpdatedEvent(row *LedgerRow) *PaymentUpdatedEvent {
	return &PaymentUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PaymentUpdated", aggregateLedger, row.ID),
		mutationBody: mutationBody{
			Action:   ActionUpdated,
			LedgerID: row.ID,
			ClientID: row.ClientID,
		},
		EntityKind: row.EntityKind,
	}
}

// PaymentDeletedEvent is raised when a payment and its detail are removed
type PaymentDeletedEvent struct {
	shared.BaseDomainEvent
	mutationBody
	EntityKind EntityKind `json:"entity_kind"`
}

// EventType returns the event type name
func (e *PaymentDeletedEvent) EventType() string { return "PaymentDeleted" }

// NewPaymentDeletedEvent creates a new PaymentDeletedEvent
func NewPaymentDeletedEvent(row *LedgerRow) *PaymentDeletedEvent {
	return &PaymentDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PaymentDeleted", aggregateLedger, row.ID),
		mutationBody: mutationBody{
			Action:   ActionDeleted,
			LedgerID: row.ID,
			ClientID: row.ClientID,
		},
		EntityKind: row.EntityKind,
	}
}

// FinancingApprovedEvent is raised when a pending financing payment is approved
type FinancingApprovedEvent struct {
	shared.BaseDomainEvent
	mutationBody
	FinancingID uuid.UUID `json:"financing_id"`
}

// EventType returns the event type name
func (e *FinancingApprovedEvent) EventType() string { return "FinancingApproved" }

// NewFinancingApprovedEvent creates a new FinancingApprovedEvent
func NewFinancingApprovedEvent(row *LedgerRow, financingID, approvedBy uuid.UUID) *FinancingApprovedEvent {
	return &FinancingApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("FinancingApproved", aggregateLedger, row.ID),
		mutationBody: mutationBody{
			Action:   ActionApproved,
			LedgerID: row.ID,
			ClientID: row.ClientID,
			ActorID:  approvedBy,
		},
		FinancingID: financingID,
	}
}

// FinancingRejectedEvent is raised when a pending financing payment is rejected
type FinancingRejectedEvent struct {
	shared.BaseDomainEvent
	mutationBody
	FinancingID uuid.UUID `json:"financing_id"`
}

// EventType returns the event type name
func (e *FinancingRejectedEvent) EventType() string { return "FinancingRejected" }

// NewFinancingRejectedEvent creates a new FinancingRejectedEvent
func NewFinancingRejectedEvent(row *LedgerRow, financingID, rejectedBy uuid.UUID) *FinancingRejectedEvent {
	return &FinancingRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("FinancingRejected", aggregateLedger, row.ID),
		mutationBody: mutationBody{
			Action:   ActionRejected,
			LedgerID: row.ID,
			ClientID: row.ClientID,
			ActorID:  rejectedBy,
		},
		FinancingID: financingID,
	}
}
