package payment

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerRepository is the storage contract for ledger rows.
// Finders return (nil, nil) when the row does not exist.
type LedgerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*LedgerRow, error)
	FindByClient(ctx context.Context, clientID uuid.UUID) ([]LedgerRow, error)
	// FindByEntityID locates the ledger row pointing at a detail record
	FindByEntityID(ctx context.Context, kind EntityKind, entityID uuid.UUID) (*LedgerRow, error)
	Create(ctx context.Context, row *LedgerRow) error
	Save(ctx context.Context, row *LedgerRow) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ExistsByInvoiceNo pre-checks the row-level invoice number for
	// collisions; excludeID skips the row's own id on update
	ExistsByInvoiceNo(ctx context.Context, invoiceNo string, excludeID uuid.UUID) (bool, error)
}

// ClientSummary is the per-client aggregate carried in fan-out
// payloads. It is derived from the merged projection because the
// amounts live across the ledger and detail tables.
type ClientSummary struct {
	ClientID       uuid.UUID       `json:"client_id"`
	PaymentCount   int64           `json:"payment_count"`
	TotalCollected decimal.Decimal `json:"total_collected"`
}

// DetailRepository is the type-dispatched storage contract for the 13
// detail shapes. Implementations switch exhaustively on EntityKind so a
// missing case is a compile- or test-time failure, never a silent
// default.
type DetailRepository interface {
	Create(ctx context.Context, detail Detail) error
	Update(ctx context.Context, detail Detail) error
	Delete(ctx context.Context, kind EntityKind, id uuid.UUID) error
	// FindByID returns (nil, nil) when the record does not exist
	FindByID(ctx context.Context, kind EntityKind, id uuid.UUID) (Detail, error)
	// FindByIDs batch-loads one kind's records, keyed by detail id.
	// Missing ids are simply absent from the map.
	FindByIDs(ctx context.Context, kind EntityKind, ids []uuid.UUID) (map[uuid.UUID]Detail, error)
	// ExistsByColumn pre-checks a business-unique column for collisions;
	// excludeID skips the record's own id on update
	ExistsByColumn(ctx context.Context, kind EntityKind, column, value string, excludeID uuid.UUID) (bool, error)
	// TransitionFinancingStatus performs the conditional
	// pending-guarded update and reports whether a row was affected.
	// A false return means another caller won the race.
	TransitionFinancingStatus(ctx context.Context, id uuid.UUID, to ApprovalStatus, approvedBy *uuid.UUID) (bool, error)
}

// ActorDirectory resolves actor ids to display identities. Identity
// management itself is owned elsewhere; this core only reads.
type ActorDirectory interface {
	// DisplayName returns ("", nil) when the actor is unknown
	DisplayName(ctx context.Context, id uuid.UUID) (string, error)
}
