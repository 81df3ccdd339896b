package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/visaflow/backend/internal/domain/payment"
	"github.com/visaflow/backend/internal/domain/shared"
)

// GormDetailRepository implements payment.DetailRepository. Every
// operation dispatches on the entity kind with an exhaustive switch so
// an unmapped kind fails loudly instead of writing to a wrong table.
type GormDetailRepository struct {
	db *gorm.DB
}

// NewGormDetailRepository creates a new GormDetailRepository
func NewGormDetailRepository(db *gorm.DB) *GormDetailRepository {
	return &GormDetailRepository{db: db}
}

// Create inserts a detail record. A unique-constraint violation is
// never swallowed: it comes back as a DuplicateKeyError naming the
// offending field and value.
func (r *GormDetailRepository) Create(ctx context.Context, detail payment.Detail) error {
	if err := r.db.WithContext(ctx).Create(detail).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return r.namedDuplicate(ctx, detail, uuid.Nil, err)
		}
		return shared.NewStorageError("detail insert", err)
	}
	return nil
}

// Update persists changes to an existing detail record
func (r *GormDetailRepository) Update(ctx context.Context, detail payment.Detail) error {
	if err := r.db.WithContext(ctx).Save(detail).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return r.namedDuplicate(ctx, detail, detail.DetailID(), err)
		}
		return shared.NewStorageError("detail update", err)
	}
	return nil
}

// namedDuplicate identifies which business-unique field fired the
// constraint so the caller sees the field and value, not engine text
func (r *GormDetailRepository) namedDuplicate(ctx context.Context, detail payment.Detail, excludeID uuid.UUID, cause error) error {
	for _, f := range detail.UniqueFields() {
		exists, err := r.ExistsByColumn(ctx, detail.Kind(), f.Column, f.Value, excludeID)
		if err == nil && exists {
			return shared.NewDuplicateKeyError(f.Name, f.Value)
		}
	}
	return shared.NewStorageError("detail write", cause)
}

// Delete removes a detail record. A missing record is not an error:
// delete is called from the transactional ledger delete, which must
// tolerate an orphaned pointer.
func (r *GormDetailRepository) Delete(ctx context.Context, kind payment.EntityKind, id uuid.UUID) error {
	model, err := emptyDetail(kind)
	if err != nil {
		return err
	}
	storage, err := payment.StorageFor(kind)
	if err != nil {
		return shared.NewValidationError("entityKind", err.Error())
	}
	if err := r.db.WithContext(ctx).
		Where(storage.IDColumn+" = ?", id).
		Delete(model).Error; err != nil {
		return shared.NewStorageError("detail delete", err)
	}
	return nil
}

// FindByID loads one detail record, returning (nil, nil) when absent
func (r *GormDetailRepository) FindByID(ctx context.Context, kind payment.EntityKind, id uuid.UUID) (payment.Detail, error) {
	found, err := r.FindByIDs(ctx, kind, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	detail, ok := found[id]
	if !ok {
		return nil, nil
	}
	return detail, nil
}

// FindByIDs batch-loads one kind's records in a single query, the
// building block for the per-kind fetch in the client projection
func (r *GormDetailRepository) FindByIDs(ctx context.Context, kind payment.EntityKind, ids []uuid.UUID) (map[uuid.UUID]payment.Detail, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]payment.Detail{}, nil
	}
	switch kind {
	case payment.KindSimCard:
		return loadDetails[payment.SimCardDetail](ctx, r.db, "id", ids)
	case payment.KindAirTicket:
		return loadDetails[payment.AirTicketDetail](ctx, r.db, "id", ids)
	case payment.KindTestEnrollment:
		return loadDetails[payment.TestEnrollmentDetail](ctx, r.db, "enrollment_id", ids)
	case payment.KindLoan:
		return loadDetails[payment.LoanDetail](ctx, r.db, "id", ids)
	case payment.KindForexCard:
		return loadDetails[payment.ForexCardDetail](ctx, r.db, "id", ids)
	case payment.KindForexFee:
		return loadDetails[payment.ForexFeeDetail](ctx, r.db, "id", ids)
	case payment.KindTuition:
		return loadDetails[payment.TuitionDetail](ctx, r.db, "id", ids)
	case payment.KindInsurance:
		return loadDetails[payment.InsuranceDetail](ctx, r.db, "id", ids)
	case payment.KindAccountOpening:
		return loadDetails[payment.AccountOpeningDetail](ctx, r.db, "id", ids)
	case payment.KindCreditCard:
		return loadDetails[payment.CreditCardDetail](ctx, r.db, "id", ids)
	case payment.KindFinancing:
		return loadDetails[payment.FinancingDetail](ctx, r.db, "id", ids)
	case payment.KindVisaExtension:
		return loadDetails[payment.VisaExtensionDetail](ctx, r.db, "id", ids)
	case payment.KindGeneralSale:
		return loadDetails[payment.GeneralSaleDetail](ctx, r.db, "id", ids)
	default:
		return nil, shared.NewValidationError("entityKind", "has no detail storage")
	}
}

// detailPtr constrains the batch loader to pointer types implementing
// payment.Detail
type detailPtr[T any] interface {
	*T
	payment.Detail
}

func loadDetails[T any, PT detailPtr[T]](ctx context.Context, db *gorm.DB, idColumn string, ids []uuid.UUID) (map[uuid.UUID]payment.Detail, error) {
	var rows []T
	if err := db.WithContext(ctx).Where(idColumn+" IN ?", ids).Find(&rows).Error; err != nil {
		return nil, shared.NewStorageError("detail batch load", err)
	}
	out := make(map[uuid.UUID]payment.Detail, len(rows))
	for i := range rows {
		d := PT(&rows[i])
		out[d.DetailID()] = d
	}
	return out, nil
}

// ExistsByColumn pre-checks a business-unique column for a collision,
// excluding the record's own id on update
func (r *GormDetailRepository) ExistsByColumn(ctx context.Context, kind payment.EntityKind, column, value string, excludeID uuid.UUID) (bool, error) {
	storage, err := payment.StorageFor(kind)
	if err != nil {
		return false, shared.NewValidationError("entityKind", err.Error())
	}
	query := r.db.WithContext(ctx).
		Table(storage.Table).
		Where(column+" = ?", value)
	if excludeID != uuid.Nil {
		query = query.Where(storage.IDColumn+" <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, shared.NewStorageError("collision check", err)
	}
	return count > 0, nil
}

// TransitionFinancingStatus performs the pending-guarded conditional
// update. Two racing approve/reject calls can both observe pending;
// the WHERE clause ensures only one write lands, and the loser sees
// zero rows affected.
func (r *GormDetailRepository) TransitionFinancingStatus(ctx context.Context, id uuid.UUID, to payment.ApprovalStatus, approvedBy *uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&payment.FinancingDetail{}).
		Where("id = ? AND approval_status = ?", id, payment.ApprovalPending).
		Updates(map[string]interface{}{
			"approval_status": to,
			"approved_by":     approvedBy,
			"updated_at":      time.Now(),
		})
	if result.Error != nil {
		return false, shared.NewStorageError("approval transition", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// emptyDetail returns a zero value of the kind's shape for delete
func emptyDetail(kind payment.EntityKind) (payment.Detail, error) {
	switch kind {
	case payment.KindSimCard:
		return &payment.SimCardDetail{}, nil
	case payment.KindAirTicket:
		return &payment.AirTicketDetail{}, nil
	case payment.KindTestEnrollment:
		return &payment.TestEnrollmentDetail{}, nil
	case payment.KindLoan:
		return &payment.LoanDetail{}, nil
	case payment.KindForexCard:
		return &payment.ForexCardDetail{}, nil
	case payment.KindForexFee:
		return &payment.ForexFeeDetail{}, nil
	case payment.KindTuition:
		return &payment.TuitionDetail{}, nil
	case payment.KindInsurance:
		return &payment.InsuranceDetail{}, nil
	case payment.KindAccountOpening:
		return &payment.AccountOpeningDetail{}, nil
	case payment.KindCreditCard:
		return &payment.CreditCardDetail{}, nil
	case payment.KindFinancing:
		return &payment.FinancingDetail{}, nil
	case payment.KindVisaExtension:
		return &payment.VisaExtensionDetail{}, nil
	case payment.KindGeneralSale:
		return &payment.GeneralSaleDetail{}, nil
	default:
		return nil, shared.NewValidationError("entityKind", "has no detail storage")
	}
}

var _ payment.DetailRepository = (*GormDetailRepository)(nil)
