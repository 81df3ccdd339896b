package payment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/visaflow/backend/internal/domain/payment"
)

// CreatePaymentInput is the request to record a payment for a client.
// The payload is shaped per entity kind; fields irrelevant to the
// resolved kind are ignored.
type CreatePaymentInput struct {
	ClientID    uuid.UUID           `json:"client_id"`
	ProductType payment.ProductType `json:"product_type"`
	ActorID     uuid.UUID           `json:"actor_id"`
	Payload     DetailPayload       `json:"payload"`
}

// UpdatePaymentInput is the request to edit an existing payment.
// Omitted (nil) payload fields are preserved.
type UpdatePaymentInput struct {
	LedgerID uuid.UUID     `json:"ledger_id"`
	ActorID  uuid.UUID     `json:"actor_id"`
	Payload  DetailPayload `json:"payload"`
}

// DetailPayload is the union of fields the 14 shapes accept. Nil means
// the caller omitted the field. The dispatcher picks the fields its
// kind knows and validates them; the rest are ignored.
type DetailPayload struct {
	// Shared payment fields
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	PaymentDate *time.Time       `json:"payment_date,omitempty"`
	InvoiceNo   *string          `json:"invoice_no,omitempty"`
	Remarks     *string          `json:"remarks,omitempty"`

	// Sim card
	Provider  *string `json:"provider,omitempty"`
	SimNumber *string `json:"sim_number,omitempty"`
	SimStatus *string `json:"sim_status,omitempty"`

	// Air ticket
	Airline    *string    `json:"airline,omitempty"`
	TicketNo   *string    `json:"ticket_no,omitempty"`
	Side       *string    `json:"side,omitempty"`
	TravelDate *time.Time `json:"travel_date,omitempty"`

	// Test enrollment
	TestName   *string    `json:"test_name,omitempty"`
	BookingRef *string    `json:"booking_ref,omitempty"`
	ExamDate   *time.Time `json:"exam_date,omitempty"`

	// Loan / account opening / credit card
	Bank             *string          `json:"bank,omitempty"`
	SanctionedAmount *decimal.Decimal `json:"sanctioned_amount,omitempty"`
	AccountType      *string          `json:"account_type,omitempty"`
	CardType         *string          `json:"card_type,omitempty"`

	// Forex
	CardProvider   *string          `json:"card_provider,omitempty"`
	CurrencyLoaded *string          `json:"currency_loaded,omitempty"`
	ConversionRate *decimal.Decimal `json:"conversion_rate,omitempty"`
	TransferRef    *string          `json:"transfer_ref,omitempty"`
	Beneficiary    *string          `json:"beneficiary,omitempty"`

	// Tuition
	Institution *string `json:"institution,omitempty"`
	Intake      *string `json:"intake,omitempty"`

	// Insurance
	PolicyNo       *string `json:"policy_no,omitempty"`
	CoverageMonths *int    `json:"coverage_months,omitempty"`

	// Visa extension
	VisaType       *string    `json:"visa_type,omitempty"`
	ExtensionUntil *time.Time `json:"extension_until,omitempty"`

	// General sale
	Description *string `json:"description,omitempty"`
	SaleType    *string `json:"sale_type,omitempty"`

	// Financing
	PartialPayment *bool            `json:"partial_payment,omitempty"`
	SecondAmount   *decimal.Decimal `json:"second_amount,omitempty"`
	SecondDate     *time.Time       `json:"second_date,omitempty"`
}

// HasDetailFields reports whether the payload carries anything beyond
// the shared payment fields. The lazy-creation path only fires when a
// detail payload is actually present.
func (p DetailPayload) HasDetailFields() bool {
	return p.Provider != nil || p.SimNumber != nil || p.SimStatus != nil ||
		p.Airline != nil || p.TicketNo != nil || p.Side != nil || p.TravelDate != nil ||
		p.TestName != nil || p.BookingRef != nil || p.ExamDate != nil ||
		p.Bank != nil || p.SanctionedAmount != nil || p.AccountType != nil || p.CardType != nil ||
		p.CardProvider != nil || p.CurrencyLoaded != nil || p.ConversionRate != nil ||
		p.TransferRef != nil || p.Beneficiary != nil ||
		p.Institution != nil || p.Intake != nil ||
		p.PolicyNo != nil || p.CoverageMonths != nil ||
		p.VisaType != nil || p.ExtensionUntil != nil ||
		p.Description != nil || p.SaleType != nil ||
		p.PartialPayment != nil || p.SecondAmount != nil || p.SecondDate != nil ||
		p.Amount != nil
}

// PaymentView is the normalized ledger+detail projection returned to
// callers. For master-only payments the amount fields are row-level
// and Entity is nil; for detail-backed payments Entity carries the
// merged detail record, or nil when the pointed-to record is missing.
type PaymentView struct {
	ID          uuid.UUID           `json:"id"`
	ClientID    uuid.UUID           `json:"client_id"`
	ProductType payment.ProductType `json:"product_type"`
	EntityKind  payment.EntityKind  `json:"entity_kind"`
	Amount      *decimal.Decimal    `json:"amount,omitempty"`
	PaymentDate *time.Time          `json:"payment_date,omitempty"`
	InvoiceNo   *string             `json:"invoice_no,omitempty"`
	Remarks     string              `json:"remarks,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	Entity      interface{}         `json:"entity"`
}

// FinancingView embeds the approver's display identity alongside the
// financing record
type FinancingView struct {
	*payment.FinancingDetail
	ApproverName string `json:"approver_name,omitempty"`
}
