package persistence

import (
	"context"

	apppayment "github.com/visaflow/backend/internal/application/payment"
	"github.com/visaflow/backend/internal/domain/payment"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// It provides atomic execution of multiple repository operations, so a
// detail insert and its ledger link commit or roll back together.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos apppayment.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormTransactionalRepositories{tx: tx}
		return fn(repos)
	})
}

// gormTransactionalRepositories provides access to the payment
// repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// Ledger returns the ledger repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Ledger() payment.LedgerRepository {
	return NewGormLedgerRepository(r.tx)
}

// Details returns the detail repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Details() payment.DetailRepository {
	return NewGormDetailRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ apppayment.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ apppayment.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
