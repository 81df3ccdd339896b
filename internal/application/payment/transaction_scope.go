package payment

import (
	"context"

	"github.com/visaflow/backend/internal/domain/payment"
)

// TransactionScope provides transactional access to the payment repositories.
// When a function is executed within a transaction scope, all repository
// operations are part of the same database transaction and are committed or
// rolled back atomically. The detail insert and the ledger link for a
// detail-backed payment always execute inside one scope so the ledger never
// points at a record that was not persisted.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the payment repositories
// within a transaction. Both repositories share the same underlying
// database transaction.
type TransactionalRepositories interface {
	// Ledger returns the ledger repository scoped to the current transaction
	Ledger() payment.LedgerRepository
	// Details returns the detail repository scoped to the current transaction
	Details() payment.DetailRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. This is useful for testing or when transaction support is
// not required.
type NoOpTransactionScope struct {
	ledgerRepo payment.LedgerRepository
	detailRepo payment.DetailRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(ledgerRepo payment.LedgerRepository, detailRepo payment.DetailRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		ledgerRepo: ledgerRepo,
		detailRepo: detailRepo,
	}
}

// Execute runs the function without a real transaction (for testing/compatibility).
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Ledger returns the ledger repository.
func (s *NoOpTransactionScope) Ledger() payment.LedgerRepository {
	return s.ledgerRepo
}

// Details returns the detail repository.
func (s *NoOpTransactionScope) Details() payment.DetailRepository {
	return s.detailRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
