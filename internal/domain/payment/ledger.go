package payment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/visaflow/backend/internal/domain/shared"
)

// LedgerRow is the canonical payment record linking a client, a product
// type and (for detail-backed kinds) a detail entity. Exactly one of
// Amount / EntityID is populated, selected by EntityKind: the
// constructors are the only way to build a row, so the "entityId null
// but kind isn't master_only" state cannot be reached.
type LedgerRow struct {
	shared.BaseAggregateRoot
	ClientID    uuid.UUID        `gorm:"type:uuid;not null;index"`
	ProductType ProductType      `gorm:"type:varchar(40);not null"`
	EntityKind  EntityKind       `gorm:"type:varchar(30);not null;index"`
	EntityID    *uuid.UUID       `gorm:"type:uuid;index"`
	Amount      *decimal.Decimal `gorm:"type:decimal(18,2)"`
	PaymentDate *time.Time
	InvoiceNo   *string `gorm:"type:varchar(50);uniqueIndex"`
	Remarks     string  `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (LedgerRow) TableName() string { return "payment_ledger" }

// NewMasterOnlyRow creates a ledger row for a product with no detail
// table: the payment fields live on the row itself.
func NewMasterOnlyRow(clientID uuid.UUID, productType ProductType, amount decimal.Decimal, paymentDate time.Time, invoiceNo *string, remarks string) (*LedgerRow, error) {
	kind, err := productType.EntityKind()
	if err != nil {
		return nil, shared.NewValidationError("productType", "is not a known product")
	}
	if kind != KindMasterOnly {
		return nil, shared.NewValidationError("productType", "requires a detail record")
	}
	if clientID == uuid.Nil {
		return nil, shared.NewValidationError("clientId", "is required")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewValidationError("amount", "must be positive")
	}
	if paymentDate.IsZero() {
		paymentDate = time.Now()
	}

	row := &LedgerRow{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ClientID:          clientID,
		ProductType:       productType,
		EntityKind:        KindMasterOnly,
		Amount:            &amount,
		PaymentDate:       &paymentDate,
		InvoiceNo:         invoiceNo,
		Remarks:           remarks,
	}
	row.AddDomainEvent(NewPaymentCreatedEvent(row))
	return row, nil
}

// NewDetailRow creates a ledger row pointing at a detail record. The
// row's own amount/date/invoice stay empty; the detail is the source
// of truth.
func NewDetailRow(clientID uuid.UUID, productType ProductType, detailID uuid.UUID) (*LedgerRow, error) {
	kind, err := productType.EntityKind()
	if err != nil {
		return nil, shared.NewValidationError("productType", "is not a known product")
	}
	if kind == KindMasterOnly {
		return nil, shared.NewValidationError("productType", "does not take a detail record")
	}
	if clientID == uuid.Nil {
		return nil, shared.NewValidationError("clientId", "is required")
	}
	if detailID == uuid.Nil {
		return nil, shared.NewValidationError("entityId", "is required")
	}

	row := &LedgerRow{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ClientID:          clientID,
		ProductType:       productType,
		EntityKind:        kind,
		EntityID:          &detailID,
	}
	row.AddDomainEvent(NewPaymentCreatedEvent(row))
	return row, nil
}

// IsMasterOnly returns true if the payment fields live on the row
func (r *LedgerRow) IsMasterOnly() bool {
	return r.EntityKind == KindMasterOnly
}

// HasDetail returns true once the row points at a detail record
func (r *LedgerRow) HasDetail() bool {
	return r.EntityID != nil
}

// LinkDetail backfills the detail pointer on the documented
// lazy-creation path: the row existed without a detail and the first
// edit carrying a detail payload creates one.
func (r *LedgerRow) LinkDetail(detailID uuid.UUID) error {
	if r.IsMasterOnly() {
		return shared.NewInvalidStateError("master-only rows do not take a detail record")
	}
	if r.EntityID != nil {
		return shared.NewInvalidStateError("row already points at a detail record")
	}
	if detailID == uuid.Nil {
		return shared.NewValidationError("entityId", "is required")
	}
	r.EntityID = &detailID
	r.Touch()
	return nil
}

// PatchMasterFields updates the row-level payment fields for a
// master-only payment, preserving any field the payload omitted.
func (r *LedgerRow) PatchMasterFields(amount *decimal.Decimal, paymentDate *time.Time, invoiceNo *string, remarks *string) error {
	if !r.IsMasterOnly() {
		return shared.NewInvalidStateError("payment fields live on the detail record for this kind")
	}
	if amount != nil {
		if amount.LessThanOrEqual(decimal.Zero) {
			return shared.NewValidationError("amount", "must be positive")
		}
		r.Amount = amount
	}
	if paymentDate != nil {
		r.PaymentDate = paymentDate
	}
	if invoiceNo != nil {
		r.InvoiceNo = invoiceNo
	}
	if remarks != nil {
		r.Remarks = *remarks
	}
	r.Touch()
	r.AddDomainEvent(NewPaymentUpdatedEvent(r))
	return nil
}

// Validate re-checks the master-only XOR detail-pointer invariant.
// Rows loaded from storage pass through here before use.
func (r *LedgerRow) Validate() error {
	if !r.EntityKind.IsValid() {
		return shared.NewValidationError("entityKind", "is not a known kind")
	}
	if r.IsMasterOnly() {
		if r.Amount == nil {
			return shared.NewValidationError("amount", "is required for master-only payments")
		}
		if r.EntityID != nil {
			return shared.NewValidationError("entityId", "must be empty for master-only payments")
		}
		return nil
	}
	if r.Amount != nil {
		return shared.NewValidationError("amount", "lives on the detail record for this kind")
	}
	return nil
}
