package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/visaflow/backend/internal/domain/payment"
	"github.com/visaflow/backend/internal/domain/shared"
)

// GormLedgerRepository implements payment.LedgerRepository using GORM
type GormLedgerRepository struct {
	db *gorm.DB
}

// NewGormLedgerRepository creates a new GormLedgerRepository
func NewGormLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

// FindByID finds a ledger row by ID, returning (nil, nil) when absent
func (r *GormLedgerRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.LedgerRow, error) {
	var row payment.LedgerRow
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, shared.NewStorageError("ledger lookup", err)
	}
	return &row, nil
}

// FindByClient returns all ledger rows for a client, newest first
func (r *GormLedgerRepository) FindByClient(ctx context.Context, clientID uuid.UUID) ([]payment.LedgerRow, error) {
	var rows []payment.LedgerRow
	if err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, shared.NewStorageError("ledger list", err)
	}
	return rows, nil
}

// FindByEntityID locates the ledger row pointing at a detail record
func (r *GormLedgerRepository) FindByEntityID(ctx context.Context, kind payment.EntityKind, entityID uuid.UUID) (*payment.LedgerRow, error) {
	var row payment.LedgerRow
	if err := r.db.WithContext(ctx).
		First(&row, "entity_kind = ? AND entity_id = ?", kind, entityID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, shared.NewStorageError("ledger lookup by entity", err)
	}
	return &row, nil
}

// Create inserts a new ledger row
func (r *GormLedgerRepository) Create(ctx context.Context, row *payment.LedgerRow) error {
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) && row.InvoiceNo != nil {
			return shared.NewDuplicateKeyError("invoiceNo", *row.InvoiceNo)
		}
		return shared.NewStorageError("ledger insert", err)
	}
	return nil
}

// Save persists changes to an existing ledger row
func (r *GormLedgerRepository) Save(ctx context.Context, row *payment.LedgerRow) error {
	if err := r.db.WithContext(ctx).Save(row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) && row.InvoiceNo != nil {
			return shared.NewDuplicateKeyError("invoiceNo", *row.InvoiceNo)
		}
		return shared.NewStorageError("ledger update", err)
	}
	return nil
}

// Delete removes a ledger row by ID
func (r *GormLedgerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&payment.LedgerRow{}, "id = ?", id)
	if result.Error != nil {
		return shared.NewStorageError("ledger delete", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("payment")
	}
	return nil
}

// ExistsByInvoiceNo pre-checks the row-level invoice number for a
// collision, excluding the row's own id on update
func (r *GormLedgerRepository) ExistsByInvoiceNo(ctx context.Context, invoiceNo string, excludeID uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).
		Model(&payment.LedgerRow{}).
		Where("invoice_no = ?", invoiceNo)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, shared.NewStorageError("invoice collision check", err)
	}
	return count > 0, nil
}

var _ payment.LedgerRepository = (*GormLedgerRepository)(nil)
