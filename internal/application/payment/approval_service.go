package payment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/visaflow/backend/internal/domain/payment"
	"github.com/visaflow/backend/internal/domain/shared"
)

// ApprovalService drives the financing approval workflow. The decision
// write is a conditional update guarded on the pending state, so two
// managers racing on the same record cannot both win: the loser's
// update matches zero rows and surfaces as an invalid-state error.
type ApprovalService struct {
	ledger *LedgerService
	logger *zap.Logger
}

// NewApprovalService creates a new ApprovalService sharing the ledger
// service's repositories and post-commit hooks.
func NewApprovalService(ledger *LedgerService, logger *zap.Logger) *ApprovalService {
	return &ApprovalService{
		ledger: ledger,
		logger: logger,
	}
}

// Approve transitions a pending financing payment to approved and
// records the acting manager.
func (s *ApprovalService) Approve(ctx context.Context, financingID, actorID uuid.UUID) (*FinancingView, error) {
	return s.decide(ctx, financingID, actorID, payment.ApprovalApproved)
}

// Reject transitions a pending financing payment to rejected. The
// actor is not recorded as approver; a later edit re-enters the queue.
func (s *ApprovalService) Reject(ctx context.Context, financingID, actorID uuid.UUID) (*FinancingView, error) {
	return s.decide(ctx, financingID, actorID, payment.ApprovalRejected)
}

func (s *ApprovalService) decide(ctx context.Context, financingID, actorID uuid.UUID, to payment.ApprovalStatus) (*FinancingView, error) {
	detail, err := s.ledger.detailRepo.FindByID(ctx, payment.KindFinancing, financingID)
	if err != nil {
		return nil, err
	}
	if detail == nil {
		return nil, shared.NewNotFoundError(fmt.Sprintf("financing record %s", financingID))
	}
	fin, ok := detail.(*payment.FinancingDetail)
	if !ok {
		return nil, shared.NewStorageError("load financing record", fmt.Errorf("unexpected detail shape %T", detail))
	}

	// The domain transition validates the starting state and mutates
	// the in-memory record; the conditional update below is what makes
	// the decision stick.
	switch to {
	case payment.ApprovalApproved:
		err = fin.Approve(actorID)
	case payment.ApprovalRejected:
		err = fin.Reject(actorID)
	default:
		err = shared.NewValidationError("status", fmt.Sprintf("%q is not a decision", to))
	}
	if err != nil {
		return nil, err
	}

	won, err := s.ledger.detailRepo.TransitionFinancingStatus(ctx, financingID, to, fin.ApprovedBy)
	if err != nil {
		return nil, err
	}
	if !won {
		// Another decision landed between our read and the update
		return nil, shared.NewInvalidStateError("already decided")
	}

	s.emitDecision(ctx, fin, actorID, to)
	return s.ledger.financingView(ctx, fin), nil
}

// emitDecision locates the linking ledger row and runs the post-commit
// hooks. A financing record without a ledger row is a data defect worth
// logging, but the decision itself already stuck.
func (s *ApprovalService) emitDecision(ctx context.Context, fin *payment.FinancingDetail, actorID uuid.UUID, to payment.ApprovalStatus) {
	row, err := s.ledger.ledgerRepo.FindByEntityID(ctx, payment.KindFinancing, fin.ID)
	if err != nil {
		s.logger.Warn("locating ledger row for financing decision failed",
			zap.String("financingId", fin.ID.String()), zap.Error(err))
		return
	}
	if row == nil {
		s.logger.Warn("financing record has no ledger row",
			zap.String("financingId", fin.ID.String()))
		return
	}

	if to == payment.ApprovalApproved {
		row.AddDomainEvent(payment.NewFinancingApprovedEvent(row, fin.ID, actorID))
	} else {
		row.AddDomainEvent(payment.NewFinancingRejectedEvent(row, fin.ID, actorID))
	}
	s.ledger.afterCommit(ctx, row, actorID)
}
