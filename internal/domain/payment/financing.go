package payment

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/visaflow/backend/internal/domain/shared"
)

// ApprovalStatus is the workflow state of a financing detail
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// IsValid returns true for the three known states
func (s ApprovalStatus) IsValid() bool {
	switch s {
	case ApprovalPending, ApprovalApproved, ApprovalRejected:
		return true
	}
	return false
}

// IsTerminal returns true once approve/reject has been decided
func (s ApprovalStatus) IsTerminal() bool {
	return s == ApprovalApproved || s == ApprovalRejected
}

// FinancingDetail is the approval-bearing detail shape. A financing
// payment flagged as partial starts pending and must be approved by a
// manager before it counts; a full payment is approved on creation.
type FinancingDetail struct {
	ID uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	DetailBase
	PartialPayment bool            `gorm:"not null;default:false" json:"partial_payment"`
	ApprovalStatus ApprovalStatus  `gorm:"type:varchar(20);not null;default:'pending';index" json:"approval_status"`
	ApprovedBy     *uuid.UUID      `gorm:"type:uuid" json:"approved_by,omitempty"`
	SecondAmount   *decimal.Decimal `gorm:"type:decimal(18,2)" json:"second_amount,omitempty"`
	SecondDate     *time.Time      `json:"second_date,omitempty"`
}

func (FinancingDetail) TableName() string { return "financing_details" }

func (d *FinancingDetail) Kind() EntityKind    { return KindFinancing }
func (d *FinancingDetail) DetailID() uuid.UUID { return d.ID }

func (d *FinancingDetail) Validate() error {
	if err := d.validateBase(); err != nil {
		return err
	}
	if !d.ApprovalStatus.IsValid() {
		return shared.NewValidationError("approvalStatus", "must be 'pending', 'approved' or 'rejected'")
	}
	if d.SecondAmount != nil && d.SecondAmount.LessThanOrEqual(decimal.Zero) {
		return shared.NewValidationError("secondAmount", "must be positive")
	}
	return nil
}

// ApplyDefaults sets the initial approval state: partial payments
// enter the workflow pending, full payments are approved outright.
func (d *FinancingDetail) ApplyDefaults() {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.ApprovalStatus == "" {
		if d.PartialPayment {
			d.ApprovalStatus = ApprovalPending
		} else {
			d.ApprovalStatus = ApprovalApproved
		}
	}
	d.applyBaseDefaults()
}

func (d *FinancingDetail) UniqueFields() []UniqueField { return d.invoiceUniqueField() }

// Approve transitions pending -> approved and records the actor.
// Any other starting state is an invalid-state error.
func (d *FinancingDetail) Approve(actorID uuid.UUID) error {
	if actorID == uuid.Nil {
		return shared.NewValidationError("actorId", "is required")
	}
	if d.ApprovalStatus != ApprovalPending {
		return shared.NewInvalidStateError(fmt.Sprintf("already %s", d.ApprovalStatus))
	}
	d.ApprovalStatus = ApprovalApproved
	d.ApprovedBy = &actorID
	d.UpdatedAt = time.Now()
	return nil
}

// Reject transitions pending -> rejected. The actor is recorded only
// on approval; a rejection leaves approved_by empty.
func (d *FinancingDetail) Reject(actorID uuid.UUID) error {
	if actorID == uuid.Nil {
		return shared.NewValidationError("actorId", "is required")
	}
	if d.ApprovalStatus != ApprovalPending {
		return shared.NewInvalidStateError(fmt.Sprintf("already %s", d.ApprovalStatus))
	}
	d.ApprovalStatus = ApprovalRejected
	d.ApprovedBy = nil
	d.UpdatedAt = time.Now()
	return nil
}

// ResetForResubmission is the only exit from a terminal state: an
// ordinary field edit on a rejected entity puts it back in the queue
// and clears the prior approver.
func (d *FinancingDetail) ResetForResubmission() {
	if d.ApprovalStatus == ApprovalRejected {
		d.ApprovalStatus = ApprovalPending
		d.ApprovedBy = nil
		d.UpdatedAt = time.Now()
	}
}
