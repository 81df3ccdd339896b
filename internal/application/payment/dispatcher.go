package payment

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/visaflow/backend/internal/domain/payment"
	"github.com/visaflow/backend/internal/domain/shared"
)

// buildDetail constructs the concrete detail record for a kind from the
// request payload. The switch is exhaustive over the detail kinds; an
// unlisted kind is a programming error surfaced as an explicit failure,
// never a silently ignored default.
func buildDetail(kind payment.EntityKind, p DetailPayload) (payment.Detail, error) {
	base := payment.DetailBase{}
	if p.Amount != nil {
		base.Amount = *p.Amount
	}
	if p.PaymentDate != nil {
		base.PaymentDate = *p.PaymentDate
	}
	if p.InvoiceNo != nil && *p.InvoiceNo != "" {
		base.InvoiceNo = p.InvoiceNo
	}
	if p.Remarks != nil {
		base.Remarks = *p.Remarks
	}

	switch kind {
	case payment.KindSimCard:
		d := &payment.SimCardDetail{DetailBase: base}
		if p.Provider != nil {
			d.Provider = *p.Provider
		}
		if p.SimNumber != nil {
			d.SimNumber = *p.SimNumber
		}
		if p.SimStatus != nil {
			d.Status = payment.SimStatus(*p.SimStatus)
		} else {
			d.Status = payment.SimStatusPending
		}
		return d, nil
	case payment.KindAirTicket:
		d := &payment.AirTicketDetail{DetailBase: base}
		if p.Airline != nil {
			d.Airline = *p.Airline
		}
		if p.TicketNo != nil && *p.TicketNo != "" {
			d.TicketNo = p.TicketNo
		}
		if p.Side != nil {
			d.Side = payment.TicketSide(*p.Side)
		}
		d.TravelDate = p.TravelDate
		return d, nil
	case payment.KindTestEnrollment:
		d := &payment.TestEnrollmentDetail{DetailBase: base}
		if p.TestName != nil {
			d.TestName = *p.TestName
		}
		if p.BookingRef != nil {
			d.BookingRef = *p.BookingRef
		}
		d.ExamDate = p.ExamDate
		return d, nil
	case payment.KindLoan:
		d := &payment.LoanDetail{DetailBase: base}
		if p.Bank != nil {
			d.Bank = *p.Bank
		}
		if p.SanctionedAmount != nil {
			d.SanctionedAmount = *p.SanctionedAmount
		}
		return d, nil
	case payment.KindForexCard:
		d := &payment.ForexCardDetail{DetailBase: base}
		if p.CardProvider != nil {
			d.CardProvider = *p.CardProvider
		}
		if p.CurrencyLoaded != nil {
			d.CurrencyLoaded = *p.CurrencyLoaded
		}
		if p.ConversionRate != nil {
			d.ConversionRate = *p.ConversionRate
		}
		return d, nil
	case payment.KindForexFee:
		d := &payment.ForexFeeDetail{DetailBase: base}
		if p.TransferRef != nil {
			d.TransferRef = *p.TransferRef
		}
		if p.Beneficiary != nil {
			d.Beneficiary = *p.Beneficiary
		}
		return d, nil
	case payment.KindTuition:
		d := &payment.TuitionDetail{DetailBase: base}
		if p.Institution != nil {
			d.Institution = *p.Institution
		}
		if p.Intake != nil {
			d.Intake = *p.Intake
		}
		return d, nil
	case payment.KindInsurance:
		d := &payment.InsuranceDetail{DetailBase: base}
		if p.Provider != nil {
			d.Provider = *p.Provider
		}
		if p.PolicyNo != nil && *p.PolicyNo != "" {
			d.PolicyNo = p.PolicyNo
		}
		if p.CoverageMonths != nil {
			d.CoverageMonths = *p.CoverageMonths
		}
		return d, nil
	case payment.KindAccountOpening:
		d := &payment.AccountOpeningDetail{DetailBase: base}
		if p.Bank != nil {
			d.Bank = *p.Bank
		}
		if p.AccountType != nil {
			d.AccountType = *p.AccountType
		}
		return d, nil
	case payment.KindCreditCard:
		d := &payment.CreditCardDetail{DetailBase: base}
		if p.Bank != nil {
			d.Bank = *p.Bank
		}
		if p.CardType != nil {
			d.CardType = *p.CardType
		}
		return d, nil
	case payment.KindVisaExtension:
		d := &payment.VisaExtensionDetail{DetailBase: base}
		if p.VisaType != nil {
			d.VisaType = *p.VisaType
		}
		d.ExtensionUntil = p.ExtensionUntil
		return d, nil
	case payment.KindGeneralSale:
		d := &payment.GeneralSaleDetail{DetailBase: base}
		if p.Description != nil {
			d.Description = *p.Description
		}
		if p.SaleType != nil {
			d.SaleType = *p.SaleType
		}
		return d, nil
	case payment.KindFinancing:
		d := &payment.FinancingDetail{DetailBase: base}
		if p.PartialPayment != nil {
			d.PartialPayment = *p.PartialPayment
		}
		d.SecondAmount = p.SecondAmount
		d.SecondDate = p.SecondDate
		return d, nil
	}
	return nil, shared.NewValidationError("entityKind", fmt.Sprintf("%q has no detail shape", kind))
}

// applyPayload copies the payload's set fields onto an existing detail
// record, preserving omitted ones. The type switch covers every detail
// shape; a shape without a case fails loudly.
func applyPayload(detail payment.Detail, p DetailPayload) error {
	applyBase := func(b *payment.DetailBase) {
		if p.Amount != nil {
			b.Amount = *p.Amount
		}
		if p.PaymentDate != nil {
			b.PaymentDate = *p.PaymentDate
		}
		if p.InvoiceNo != nil {
			if *p.InvoiceNo == "" {
				b.InvoiceNo = nil
			} else {
				b.InvoiceNo = p.InvoiceNo
			}
		}
		if p.Remarks != nil {
			b.Remarks = *p.Remarks
		}
	}

	switch d := detail.(type) {
	case *payment.SimCardDetail:
		applyBase(&d.DetailBase)
		if p.Provider != nil {
			d.Provider = *p.Provider
		}
		if p.SimNumber != nil {
			d.SimNumber = *p.SimNumber
		}
		if p.SimStatus != nil {
			d.Status = payment.SimStatus(*p.SimStatus)
		}
	case *payment.AirTicketDetail:
		applyBase(&d.DetailBase)
		if p.Airline != nil {
			d.Airline = *p.Airline
		}
		if p.TicketNo != nil {
			if *p.TicketNo == "" {
				d.TicketNo = nil
			} else {
				d.TicketNo = p.TicketNo
			}
		}
		if p.Side != nil {
			d.Side = payment.TicketSide(*p.Side)
		}
		if p.TravelDate != nil {
			d.TravelDate = p.TravelDate
		}
	case *payment.TestEnrollmentDetail:
		applyBase(&d.DetailBase)
		if p.TestName != nil {
			d.TestName = *p.TestName
		}
		if p.BookingRef != nil && *p.BookingRef != "" {
			d.BookingRef = *p.BookingRef
		}
		if p.ExamDate != nil {
			d.ExamDate = p.ExamDate
		}
	case *payment.LoanDetail:
		applyBase(&d.DetailBase)
		if p.Bank != nil {
			d.Bank = *p.Bank
		}
		if p.SanctionedAmount != nil {
			d.SanctionedAmount = *p.SanctionedAmount
		}
	case *payment.ForexCardDetail:
		applyBase(&d.DetailBase)
		if p.CardProvider != nil {
			d.CardProvider = *p.CardProvider
		}
		if p.CurrencyLoaded != nil {
			d.CurrencyLoaded = *p.CurrencyLoaded
		}
		if p.ConversionRate != nil {
			d.ConversionRate = *p.ConversionRate
		}
	case *payment.ForexFeeDetail:
		applyBase(&d.DetailBase)
		if p.TransferRef != nil {
			d.TransferRef = *p.TransferRef
		}
		if p.Beneficiary != nil {
			d.Beneficiary = *p.Beneficiary
		}
	case *payment.TuitionDetail:
		applyBase(&d.DetailBase)
		if p.Institution != nil {
			d.Institution = *p.Institution
		}
		if p.Intake != nil {
			d.Intake = *p.Intake
		}
	case *payment.InsuranceDetail:
		applyBase(&d.DetailBase)
		if p.Provider != nil {
			d.Provider = *p.Provider
		}
		if p.PolicyNo != nil {
			if *p.PolicyNo == "" {
				d.PolicyNo = nil
			} else {
				d.PolicyNo = p.PolicyNo
			}
		}
		if p.CoverageMonths != nil {
			d.CoverageMonths = *p.CoverageMonths
		}
	case *payment.AccountOpeningDetail:
		applyBase(&d.DetailBase)
		if p.Bank != nil {
			d.Bank = *p.Bank
		}
		if p.AccountType != nil {
			d.AccountType = *p.AccountType
		}
	case *payment.CreditCardDetail:
		applyBase(&d.DetailBase)
		if p.Bank != nil {
			d.Bank = *p.Bank
		}
		if p.CardType != nil {
			d.CardType = *p.CardType
		}
	case *payment.VisaExtensionDetail:
		applyBase(&d.DetailBase)
		if p.VisaType != nil {
			d.VisaType = *p.VisaType
		}
		if p.ExtensionUntil != nil {
			d.ExtensionUntil = p.ExtensionUntil
		}
	case *payment.GeneralSaleDetail:
		applyBase(&d.DetailBase)
		if p.Description != nil {
			d.Description = *p.Description
		}
		if p.SaleType != nil {
			d.SaleType = *p.SaleType
		}
	case *payment.FinancingDetail:
		applyBase(&d.DetailBase)
		if p.SecondAmount != nil {
			d.SecondAmount = p.SecondAmount
		}
		if p.SecondDate != nil {
			d.SecondDate = p.SecondDate
		}
		// PartialPayment is fixed at creation; the approval workflow,
		// not an edit, decides what happens to a partial payment.
		// An edit to a rejected record re-enters the approval queue.
		d.ResetForResubmission()
	default:
		return shared.NewValidationError("entityKind", fmt.Sprintf("unhandled detail shape %T", detail))
	}
	return nil
}

// checkUniqueFields pre-checks every business-unique field the detail
// declares. excludeID skips the record's own row on update.
func checkUniqueFields(ctx context.Context, repo payment.DetailRepository, detail payment.Detail, excludeID uuid.UUID) error {
	for _, f := range detail.UniqueFields() {
		taken, err := repo.ExistsByColumn(ctx, detail.Kind(), f.Column, f.Value, excludeID)
		if err != nil {
			return err
		}
		if taken {
			return shared.NewDuplicateKeyError(f.Name, f.Value)
		}
	}
	return nil
}

// createDetail builds, defaults, validates and persists a new detail
// record of the given kind.
func createDetail(ctx context.Context, repo payment.DetailRepository, kind payment.EntityKind, p DetailPayload) (payment.Detail, error) {
	detail, err := buildDetail(kind, p)
	if err != nil {
		return nil, err
	}
	detail.ApplyDefaults()
	if err := detail.Validate(); err != nil {
		return nil, err
	}
	if err := checkUniqueFields(ctx, repo, detail, uuid.Nil); err != nil {
		return nil, err
	}
	if err := repo.Create(ctx, detail); err != nil {
		return nil, err
	}
	return detail, nil
}

// updateDetail loads an existing detail record, applies the payload's
// set fields and persists the result.
func updateDetail(ctx context.Context, repo payment.DetailRepository, kind payment.EntityKind, id uuid.UUID, p DetailPayload) (payment.Detail, error) {
	detail, err := repo.FindByID(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if detail == nil {
		return nil, shared.NewNotFoundError(fmt.Sprintf("%s record %s", kind, id))
	}
	if err := applyPayload(detail, p); err != nil {
		return nil, err
	}
	if err := detail.Validate(); err != nil {
		return nil, err
	}
	if err := checkUniqueFields(ctx, repo, detail, detail.DetailID()); err != nil {
		return nil, err
	}
	if err := repo.Update(ctx, detail); err != nil {
		return nil, err
	}
	return detail, nil
}
