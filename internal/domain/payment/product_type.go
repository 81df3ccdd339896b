package payment

import (
	"fmt"
)

// ProductType identifies what a client paid for. The set is closed:
// adding a product requires adding it to resolveKind, which the
// exhaustiveness test enforces.
type ProductType string

const (
	// Master-only products: no detail table, fields live on the ledger row
	ProductVisitorVisaFee      ProductType = "visitor_visa_fee"
	ProductStudentVisaFee      ProductType = "student_visa_fee"
	ProductWorkVisaFee         ProductType = "work_visa_fee"
	ProductConsultationFee     ProductType = "consultation_fee"
	ProductDocumentAttestation ProductType = "document_attestation"
	ProductCourierCharge       ProductType = "courier_charge"
	ProductEmbassyFee          ProductType = "embassy_fee"

	// Test enrollments
	ProductIELTSBooking  ProductType = "ielts_booking"
	ProductPTEBooking    ProductType = "pte_booking"
	ProductTOEFLBooking  ProductType = "toefl_booking"
	ProductOETBooking    ProductType = "oet_booking"
	ProductCELPIPBooking ProductType = "celpip_booking"

	// One product per detail shape
	ProductSimCard            ProductType = "sim_card"
	ProductAirTicket          ProductType = "air_ticket"
	ProductEducationLoan      ProductType = "education_loan"
	ProductForexCard          ProductType = "forex_card"
	ProductForexTransfer      ProductType = "forex_transfer"
	ProductTuitionFee         ProductType = "tuition_fee"
	ProductApplicationFee     ProductType = "application_fee"
	ProductTravelInsurance    ProductType = "travel_insurance"
	ProductHealthInsurance    ProductType = "health_insurance"
	ProductBankAccountOpening ProductType = "bank_account_opening"
	ProductGICAccount         ProductType = "gic_account"
	ProductCreditCard         ProductType = "credit_card"
	ProductFinancing          ProductType = "financing"
	ProductVisaExtension      ProductType = "visa_extension"
	ProductGeneralSale        ProductType = "general_sale"
)

// AllProductTypes lists every known product type
var AllProductTypes = []ProductType{
	ProductVisitorVisaFee, ProductStudentVisaFee, ProductWorkVisaFee,
	ProductConsultationFee, ProductDocumentAttestation, ProductCourierCharge,
	ProductEmbassyFee,
	ProductIELTSBooking, ProductPTEBooking, ProductTOEFLBooking,
	ProductOETBooking, ProductCELPIPBooking,
	ProductSimCard, ProductAirTicket, ProductEducationLoan,
	ProductForexCard, ProductForexTransfer,
	ProductTuitionFee, ProductApplicationFee,
	ProductTravelInsurance, ProductHealthInsurance,
	ProductBankAccountOpening, ProductGICAccount,
	ProductCreditCard, ProductFinancing, ProductVisaExtension,
	ProductGeneralSale,
}

// IsValid returns true if the product type is known
func (p ProductType) IsValid() bool {
	_, err := p.EntityKind()
	return err == nil
}

// EntityKind resolves the product type to its entity kind.
// The mapping is total over valid product types.
func (p ProductType) EntityKind() (EntityKind, error) {
	switch p {
	case ProductVisitorVisaFee, ProductStudentVisaFee, ProductWorkVisaFee,
		ProductConsultationFee, ProductDocumentAttestation,
		ProductCourierCharge, ProductEmbassyFee:
		return KindMasterOnly, nil
	case ProductIELTSBooking, ProductPTEBooking, ProductTOEFLBooking,
		ProductOETBooking, ProductCELPIPBooking:
		return KindTestEnrollment, nil
	case ProductSimCard:
		return KindSimCard, nil
	case ProductAirTicket:
		return KindAirTicket, nil
	case ProductEducationLoan:
		return KindLoan, nil
	case ProductForexCard:
		return KindForexCard, nil
	case ProductForexTransfer:
		return KindForexFee, nil
	case ProductTuitionFee, ProductApplicationFee:
		return KindTuition, nil
	case ProductTravelInsurance, ProductHealthInsurance:
		return KindInsurance, nil
	case ProductBankAccountOpening, ProductGICAccount:
		return KindAccountOpening, nil
	case ProductCreditCard:
		return KindCreditCard, nil
	case ProductFinancing:
		return KindFinancing, nil
	case ProductVisaExtension:
		return KindVisaExtension, nil
	case ProductGeneralSale:
		return KindGeneralSale, nil
	default:
		return "", fmt.Errorf("unknown product type %q", string(p))
	}
}

// EntityKind identifies the detail shape a ledger row points at.
// KindMasterOnly means the ledger row itself holds the payment fields.
type EntityKind string

const (
	KindMasterOnly     EntityKind = "master_only"
	KindSimCard        EntityKind = "sim_card"
	KindAirTicket      EntityKind = "air_ticket"
	KindTestEnrollment EntityKind = "test_enrollment"
	KindLoan           EntityKind = "loan"
	KindForexCard      EntityKind = "forex_card"
	KindForexFee       EntityKind = "forex_fee"
	KindTuition        EntityKind = "tuition"
	KindInsurance      EntityKind = "insurance"
	KindAccountOpening EntityKind = "account_opening"
	KindCreditCard     EntityKind = "credit_card"
	KindFinancing      EntityKind = "financing"
	KindVisaExtension  EntityKind = "visa_extension"
	KindGeneralSale    EntityKind = "general_sale"
)

// AllEntityKinds lists every entity kind including master_only
var AllEntityKinds = []EntityKind{
	KindMasterOnly, KindSimCard, KindAirTicket, KindTestEnrollment,
	KindLoan, KindForexCard, KindForexFee, KindTuition, KindInsurance,
	KindAccountOpening, KindCreditCard, KindFinancing, KindVisaExtension,
	KindGeneralSale,
}

// DetailKinds lists the kinds backed by a detail table
var DetailKinds = AllEntityKinds[1:]

// IsValid returns true if the entity kind is known
func (k EntityKind) IsValid() bool {
	for _, known := range AllEntityKinds {
		if k == known {
			return true
		}
	}
	return false
}

// HasDetail returns true if rows of this kind point at a detail record
func (k EntityKind) HasDetail() bool {
	return k != KindMasterOnly && k.IsValid()
}

// Storage describes where a detail kind persists its rows
type Storage struct {
	Table    string
	IDColumn string
}

// StorageFor returns the storage descriptor for a detail-backed kind.
// Defined for every kind except master_only; the test-enrollment table
// keeps its historical identifier column name.
func StorageFor(kind EntityKind) (Storage, error) {
	switch kind {
	case KindSimCard:
		return Storage{Table: "sim_card_details", IDColumn: "id"}, nil
	case KindAirTicket:
		return Storage{Table: "air_ticket_details", IDColumn: "id"}, nil
	case KindTestEnrollment:
		return Storage{Table: "test_enrollment_details", IDColumn: "enrollment_id"}, nil
	case KindLoan:
		return Storage{Table: "loan_details", IDColumn: "id"}, nil
	case KindForexCard:
		return Storage{Table: "forex_card_details", IDColumn: "id"}, nil
	case KindForexFee:
		return Storage{Table: "forex_fee_details", IDColumn: "id"}, nil
	case KindTuition:
		return Storage{Table: "tuition_details", IDColumn: "id"}, nil
	case KindInsurance:
		return Storage{Table: "insurance_details", IDColumn: "id"}, nil
	case KindAccountOpening:
		return Storage{Table: "account_opening_details", IDColumn: "id"}, nil
	case KindCreditCard:
		return Storage{Table: "credit_card_details", IDColumn: "id"}, nil
	case KindFinancing:
		return Storage{Table: "financing_details", IDColumn: "id"}, nil
	case KindVisaExtension:
		return Storage{Table: "visa_extension_details", IDColumn: "id"}, nil
	case KindGeneralSale:
		return Storage{Table: "general_sale_details", IDColumn: "id"}, nil
	case KindMasterOnly:
		return Storage{}, fmt.Errorf("kind %s has no detail storage", kind)
	default:
		return Storage{}, fmt.Errorf("unknown entity kind %q", string(kind))
	}
}
