package payment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/visaflow/backend/internal/domain/shared"
)

// Detail is implemented by every detail shape. A ledger row of a
// detail-backed kind points at exactly one Detail record, which is the
// source of truth for the payment's amount, date and invoice number.
type Detail interface {
	Kind() EntityKind
	DetailID() uuid.UUID
	// Base exposes the shared payment fields for projection building
	Base() *DetailBase
	// Validate checks the shape's required fields and enum values
	Validate() error
	// ApplyDefaults fills server-side defaults for fields the payload
	// omitted but the schema requires
	ApplyDefaults()
	// UniqueFields lists the business-unique fields to pre-check for
	// collisions before insert/update
	UniqueFields() []UniqueField
}

// UniqueField names a business-unique column and its current value
type UniqueField struct {
	Name   string // caller-facing field name, e.g. "invoiceNo"
	Column string // storage column, e.g. "invoice_no"
	Value  string
}

// DetailBase carries the fields every detail shape shares. The primary
// key is declared per shape because one table keeps a non-standard
// identifier column.
type DetailBase struct {
	Amount      decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	PaymentDate time.Time       `gorm:"not null" json:"payment_date"`
	InvoiceNo   *string         `gorm:"type:varchar(50);uniqueIndex" json:"invoice_no,omitempty"`
	Remarks     string          `gorm:"type:varchar(500)" json:"remarks,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Base returns the shared payment fields. Promotion through embedding
// makes every shape satisfy the Detail interface with this one method.
func (b *DetailBase) Base() *DetailBase { return b }

// applyBaseDefaults fills shared defaults: a missing payment date
// becomes the current date.
func (b *DetailBase) applyBaseDefaults() {
	if b.PaymentDate.IsZero() {
		b.PaymentDate = time.Now()
	}
	if b.CreatedAt.IsZero() {
		now := time.Now()
		b.CreatedAt = now
		b.UpdatedAt = now
	}
}

// validateBase checks the fields every shape requires
func (b *DetailBase) validateBase() error {
	if b.Amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewValidationError("amount", "must be positive")
	}
	return nil
}

// invoiceUniqueField returns the invoiceNo unique field when set
func (b *DetailBase) invoiceUniqueField() []UniqueField {
	if b.InvoiceNo == nil || *b.InvoiceNo == "" {
		return nil
	}
	return []UniqueField{{Name: "invoiceNo", Column: "invoice_no", Value: *b.InvoiceNo}}
}

// TicketSide distinguishes the two directions an air ticket is sold for
type TicketSide string

const (
	TicketSideArrival   TicketSide = "arrival"
	TicketSideDeparture TicketSide = "departure"
)

// IsValid returns true for the two permitted values
func (s TicketSide) IsValid() bool {
	return s == TicketSideArrival || s == TicketSideDeparture
}

// SimStatus is the activation state a sim-card sale is recorded with
type SimStatus string

const (
	SimStatusActivated SimStatus = "activated"
	SimStatusPending   SimStatus = "pending"
)

// IsValid returns true for the two permitted values
func (s SimStatus) IsValid() bool {
	return s == SimStatusActivated || s == SimStatusPending
}

// SimCardDetail records a sim-card activation sale
type SimCardDetail struct {
	ID uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	DetailBase
	Provider  string    `gorm:"type:varchar(100);not null" json:"provider"`
	SimNumber string    `gorm:"type:varchar(30)" json:"sim_number,omitempty"`
	Status    SimStatus `gorm:"type:varchar(20);not null" json:"status"`
}

func (SimCardDetail) TableName() string { return "sim_card_details" }

func (d *SimCardDetail) Kind() EntityKind    { return KindSimCard }
func (d *SimCardDetail) DetailID() uuid.UUID { return d.ID }

func (d *SimCardDetail) Validate() error {
	if err := d.validateBase(); err != nil {
		return err
	}
	if d.Provider == "" {
		return shared.NewValidationError("provider", "is required")
	}
	if !d.Status.IsValid() {
		return shared.NewValidationError("status", "must be 'activated' or 'pending'")
	}
	return nil
}

func (d *SimCardDetail) ApplyDefaults() {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	d.applyBaseDefaults()
}

func (d *SimCardDetail) UniqueFields() []UniqueField { return d.invoiceUniqueField() }

// AirTicketDetail records an air-ticket sale
type AirTicketDetail struct {
	ID uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	DetailBase
	Airline    string     `gorm:"type:varchar(100);not null" json:"airline"`
	TicketNo   *string    `gorm:"type:varchar(50);uniqueIndex" json:"ticket_no,omitempty"`
	Side       TicketSide `gorm:"type:varchar(20);not null" json:"side"`
	TravelDate *time.Time `json:"travel_date,omitempty"`
}

func (AirTicketDetail) TableName() string { return "air_ticket_details" }

func (d *AirTicketDetail) Kind() EntityKind    { return KindAirTicket }
func (d *AirTicketDetail) DetailID() uuid.UUID { return d.ID }

func (d *AirTicketDetail) Validate() error {
	if err := d.validateBase(); err != nil {
		return err
	}
	if d.Airline == "" {
		return shared.NewValidationError("airline", "is required")
	}
	if !d.Side.IsValid() {
		return shared.NewValidationError("side", "must be 'arrival' or 'departure'")
	}
	return nil
}

func (d *AirTicketDetail) ApplyDefaults() {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	d.applyBaseDefaults()
}

func (d *AirTicketDetail) UniqueFields() []UniqueField {
	fields := d.invoiceUniqueField()
	if d.TicketNo != nil && *d.TicketNo != "" {
		fields = append(fields, UniqueField{Name: "ticketNo", Column: "ticket_no", Value: *d.TicketNo})
	}
	return fields
}

// TestEnrollmentDetail records a language/aptitude test booking.
// The table predates the rest of the schema and keeps enrollment_id
// as its identifier column.
type TestEnrollmentDetail struct {
	EnrollmentID uuid.UUID `gorm:"type:uuid;primary_key;column:enrollment_id" json:"enrollment_id"`
	DetailBase
	TestName   string     `gorm:"type:varchar(50);not null" json:"test_name"`
	BookingRef string     `gorm:"type:varchar(50);not null" json:"booking_ref"`
	ExamDate   *time.Time `json:"exam_date,omitempty"`
}

func (TestEnrollmentDetail) TableName() string { return "test_enrollment_details" }

func (d *TestEnrollmentDetail) Kind() EntityKind    { return KindTestEnrollment }
func (d *TestEnrollmentDetail) DetailID() uuid.UUID { return d.EnrollmentID }

func (d *TestEnrollmentDetail) Validate() error {
	if err := d.validateBase(); err != nil {
		return err
	}
	if d.TestName == "" {
		return shared.NewValidationError("testName", "is required")
	}
	return nil
}

func (d *TestEnrollmentDetail) ApplyDefaults() {
	if d.EnrollmentID == uuid.Nil {
		d.EnrollmentID = uuid.New()
	}
	// A booking reference is required by the schema; synthesize one
	// when the payload omits it.
	if d.BookingRef == "" {
		d.BookingRef = "ENR-" + uuid.NewString()[:8]
	}
	d.applyBaseDefaults()
}

func (d *TestEnrollmentDetail) UniqueFields() []UniqueField { return d.invoiceUniqueField() }

// LoanDetail records an education-loan disbursement fee
type LoanDetail struct {
	ID uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	DetailBase
	Bank             string          `gorm:"type:varchar(100);not null" json:"bank"`
	SanctionedAmount decimal.Decimal `gorm:"type:decimal(18,2)" json:"sanctioned_amount"`
}

func (LoanDetail) TableName() string { return "loan_details" }

func (d *LoanDetail) Kind() EntityKind    { return KindLoan }
func (d *LoanDetail) DetailID() uuid.UUID { return d.ID }

func (d *LoanDetail) Validate() error {
	if err := d.validateBase(); err != nil {
		return err
	}
	if d.Bank == "" {
		return shared.NewValidationError("bank", "is required")
	}
	return nil
}

func (d *LoanDetail) ApplyDefaults() {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	d.applyBaseDefaults()
}

func (d *LoanDetail) UniqueFields() []UniqueField { return d.invoiceUniqueField() }

// ForexCardDetail records a forex-card issuance
type ForexCardDetail struct {
	ID uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	DetailBase
	CardProvider     string          `gorm:"type:varchar(100);not null" json:"card_provider"`
	CurrencyLoaded   string          `gorm:"type:varchar(10)" json:"currency_loaded,omitempty"`
	ConversionRate   decimal.Decimal `gorm:"type:decimal(12,4)" json:"conversion_rate"`
}

func (ForexCardDetail) TableName() string { return "forex_card_details" }

func (d *ForexCardDetail) Kind() EntityKind    { return KindForexCard }
func (d *ForexCardDetail) DetailID() uuid.UUID { return d.ID }

func (d *ForexCardDetail) Validate() error {
	if err := d.validateBase(); err != nil {
		return err
	}
	if d.CardProvider == "" {
		return shared.NewValidationError("cardProvider", "is required")
	}
	return nil
}

func (d *ForexCardDetail) ApplyDefaults() {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	d.applyBaseDefaults()
}

func (d *ForexCardDetail) UniqueFields() []UniqueField { return d.invoiceUniqueField() }

// ForexFeeDetail records a forex transfer fee
type ForexFeeDetail struct {
	ID uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	DetailBase
	TransferRef string `gorm:"type:varchar(50)" json:"transfer_ref,omitempty"`
	Beneficiary string `gorm:"type:varchar(200);not null" json:"beneficiary"`
}

func (ForexFeeDetail) TableName() string { return "forex_fee_details" }

func (d *ForexFeeDetail) Kind() EntityKind    { return KindForexFee }
func (d *ForexFeeDetail) DetailID() uuid.UUID { return d.ID }

func (d *ForexFeeDetail) Validate() error {
	if err := d.validateBase(); err != nil {
		return err
	}
	if d.Beneficiary == "" {
		return shared.NewValidationError("beneficiary", "is required")
	}
	return nil
}

func (d *ForexFeeDetail) ApplyDefaults() {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	d.applyBaseDefaults()
}

func (d *ForexFeeDetail) UniqueFields() []UniqueField { return d.invoiceUniqueField() }

// TuitionDetail records a tuition or application fee remittance
type TuitionDetail struct {
	ID uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	DetailBase
	Institution string `gorm:"type:varchar(200);not null" json:"institution"`
	Intake      string `gorm:"type:varchar(50)" json:"intake,omitempty"`
}

func (TuitionDetail) TableName() string { return "tuition_details" }

func (d *TuitionDetail) Kind() EntityKind    { return KindTuition }
func (d *TuitionDetail) DetailID() uuid.UUID { return d.ID }

func (d *TuitionDetail) Validate() error {
	if err := d.validateBase(); err != nil {
		return err
	}
	if d.Institution == "" {
		return shared.NewValidationError("institution", "is required")
	}
	return nil
}

func (d *TuitionDetail) ApplyDefaults() {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	d.applyBaseDefaults()
}

func (d *TuitionDetail) UniqueFields() []UniqueField { return d.invoiceUniqueField() }

// InsuranceDetail records a travel/health insurance policy sale
type InsuranceDetail struct {
	ID uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	DetailBase
	Provider       string  `gorm:"type:varchar(100);not null" json:"provider"`
	PolicyNo       *string `gorm:"type:varchar(50);uniqueIndex" json:"policy_no,omitempty"`
	CoverageMonths int     `gorm:"not null;default:12" json:"coverage_months"`
}

func (InsuranceDetail) TableName() string { return "insurance_details" }

func (d *InsuranceDetail) Kind() EntityKind    { return KindInsurance }
func (d *InsuranceDetail) DetailID() uuid.UUID { return d.ID }

func (d *InsuranceDetail) Validate() error {
	if err := d.validateBase(); err != nil {
		return err
	}
	if d.Provider == "" {
		return shared.NewValidationError("provider", "is required")
	}
	if d.CoverageMonths < 0 {
		return shared.NewValidationError("coverageMonths", "cannot be negative")
	}
	return nil
}

func (d *InsuranceDetail) ApplyDefaults() {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.CoverageMonths == 0 {
		d.CoverageMonths = 12
	}
	d.applyBaseDefaults()
}

func (d *InsuranceDetail) UniqueFields() []UniqueField {
	fields := d.invoiceUniqueField()
	if d.PolicyNo != nil && *d.PolicyNo != "" {
		fields = append(fields, UniqueField{Name: "policyNo", Column: "policy_no", Value: *d.PolicyNo})
	}
	return fields
}

// AccountOpeningDetail records a bank/GIC account opening service
type AccountOpeningDetail struct {
	ID uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	DetailBase
	Bank        string `gorm:"type:varchar(100);not null" json:"bank"`
	AccountType string `gorm:"type:varchar(50)" json:"account_type,omitempty"`
}

func (AccountOpeningDetail) TableName() string { return "account_opening_details" }

func (d *AccountOpeningDetail) Kind() EntityKind    { return KindAccountOpening }
func (d *AccountOpeningDetail) DetailID() uuid.UUID { return d.ID }

func (d *AccountOpeningDetail) Validate() error {
	if err := d.validateBase(); err != nil {
		return err
	}
	if d.Bank == "" {
		return shared.NewValidationError("bank", "is required")
	}
	return nil
}

func (d *AccountOpeningDetail) ApplyDefaults() {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	d.applyBaseDefaults()
}

func (d *AccountOpeningDetail) UniqueFields() []UniqueField { return d.invoiceUniqueField() }

// CreditCardDetail records a credit-card referral sale
type CreditCardDetail struct {
	ID uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	DetailBase
	Bank     string `gorm:"type:varchar(100);not null" json:"bank"`
	CardType string `gorm:"type:varchar(50)" json:"card_type,omitempty"`
}

func (CreditCardDetail) TableName() string { return "credit_card_details" }

func (d *CreditCardDetail) Kind() EntityKind    { return KindCreditCard }
func (d *CreditCardDetail) DetailID() uuid.UUID { return d.ID }

func (d *CreditCardDetail) Validate() error {
	if err := d.validateBase(); err != nil {
		return err
	}
	if d.Bank == "" {
		return shared.NewValidationError("bank", "is required")
	}
	return nil
}

func (d *CreditCardDetail) ApplyDefaults() {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	d.applyBaseDefaults()
}

func (d *CreditCardDetail) UniqueFields() []UniqueField { return d.invoiceUniqueField() }

// VisaExtensionDetail records a visa-extension filing
type VisaExtensionDetail struct {
	ID uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	DetailBase
	VisaType       string     `gorm:"type:varchar(50);not null" json:"visa_type"`
	ExtensionUntil *time.Time `json:"extension_until,omitempty"`
}

func (VisaExtensionDetail) TableName() string { return "visa_extension_details" }

func (d *VisaExtensionDetail) Kind() EntityKind    { return KindVisaExtension }
func (d *VisaExtensionDetail) DetailID() uuid.UUID { return d.ID }

func (d *VisaExtensionDetail) Validate() error {
	if err := d.validateBase(); err != nil {
		return err
	}
	if d.VisaType == "" {
		return shared.NewValidationError("visaType", "is required")
	}
	return nil
}

func (d *VisaExtensionDetail) ApplyDefaults() {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	d.applyBaseDefaults()
}

func (d *VisaExtensionDetail) UniqueFields() []UniqueField { return d.invoiceUniqueField() }

// GeneralSaleDetail records a miscellaneous sale
type GeneralSaleDetail struct {
	ID uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	DetailBase
	Description string `gorm:"type:varchar(500);not null" json:"description"`
	SaleType    string `gorm:"type:varchar(50)" json:"sale_type,omitempty"`
}

func (GeneralSaleDetail) TableName() string { return "general_sale_details" }

func (d *GeneralSaleDetail) Kind() EntityKind    { return KindGeneralSale }
func (d *GeneralSaleDetail) DetailID() uuid.UUID { return d.ID }

func (d *GeneralSaleDetail) Validate() error {
	if err := d.validateBase(); err != nil {
		return err
	}
	if d.Description == "" {
		return shared.NewValidationError("description", "is required")
	}
	return nil
}

func (d *GeneralSaleDetail) ApplyDefaults() {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	d.applyBaseDefaults()
}

func (d *GeneralSaleDetail) UniqueFields() []UniqueField { return d.invoiceUniqueField() }
